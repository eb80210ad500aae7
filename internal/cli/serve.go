// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package cli

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"github.com/likexian/selfca"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"net/http"
	"os/signal"
	"pwned-range/internal/api"
	"pwned-range/internal/checker"
	"syscall"
	"time"
)

var (
	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve the API for checking passwords against the Pwned Passwords range API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serveCommand(cmd)
		},
	}
)

func init() {
	serveCmd.Flags().BoolVar(&selfTLS, "self-tls", false,
		"If the server should use a self-signed certificate when starting. The certificate is renewed on each server restart")
	serveCmd.Flags().StringVar(&tlsCert, "tls-cert", "", "Path to the PEM encoded TLS certificate to be used by the server")
	serveCmd.Flags().StringVar(&tlsKey, "tls-key", "", "Path to the PEM encoded TLS private key to be used by the server")
	serveCmd.Flags().Uint16VarP(&port, "port", "p", 3100, "Port to be used by the server")
	serveCmd.Flags().BoolVar(&serveStrength, "strength", true, "Include a strength estimate in password check responses")

	rootCmd.AddCommand(serveCmd)
}

func serveCommand(cmd *cobra.Command) error {
	if (tlsCert == "") != (tlsKey == "") {
		return errors.New("--tls-cert and --tls-key must be set together")
	}

	if tlsCert == "" && !selfTLS {
		return errors.New("server requires TLS configuration to start. " +
			"Please use either the --self-tls flag or set a certificate with the --tls-cert and --tls-key flags")
	}

	c, cfg, cleanup, err := newChecker(cmd, checker.Options{Strength: serveStrength})
	if err != nil {
		return err
	}
	defer cleanup()

	router := api.NewRouter(c, verbose || cfg.Debug)

	srvAddr := fmt.Sprintf(":%d", port)
	srv := &http.Server{
		Addr:              srvAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if tlsCert == "" {
		log.Warn().Msgf("using auto self-signed certificate for TLS. This is not recommended for production. Please consider using your own certificates.")
		if srv.TLSConfig, err = selfSignedTLS(); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	served := make(chan error, 1)
	go func() {
		log.Info().Msgf("listening with TLS on %s", srvAddr)
		// With a TLSConfig set, empty cert and key paths are ignored.
		served <- srv.ListenAndServeTLS(tlsCert, tlsKey)
	}()

	return waitAndShutdown(ctx, srv, served)
}

// selfSignedTLS issues a throwaway CA certificate, valid for 30 days, on every start.
func selfSignedTLS() (*tls.Config, error) {
	now := time.Now()
	der, key, err := selfca.GenerateCertificate(selfca.Certificate{
		IsCA:      true,
		KeySize:   2048,
		NotBefore: now,
		NotAfter:  now.AddDate(0, 0, 30),
	})
	if err != nil {
		return nil, fmt.Errorf("generating self-signed certificate: %w", err)
	}

	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
	pair, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		return nil, fmt.Errorf("loading self-signed certificate: %w", err)
	}

	return &tls.Config{Certificates: []tls.Certificate{pair}, MinVersion: tls.VersionTLS12}, nil
}

// waitAndShutdown blocks until the server fails or ctx is done, then drains open requests for up to 5 seconds.
func waitAndShutdown(ctx context.Context, srv *http.Server, served <-chan error) error {
	select {
	case err := <-served:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving API: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("server did not shut down cleanly")
	}
	log.Info().Msg("server stopped")
	return nil
}
