// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package cli

import (
	"context"
	"fmt"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"pwned-range/internal/checker"
	"pwned-range/internal/config"
	"pwned-range/internal/util"
	"pwned-range/pkg/cache"
	"pwned-range/pkg/hibp"
)

var (
	rootCmd = &cobra.Command{
		Use:   "pwdcheck [COMMAND] [OPTIONS]",
		Short: "Check passwords against the Pwned Passwords range API",
		Long: "Check passwords against Pwned Passwords (haveibeenpwned.com) using k-anonymity. " +
			"Passwords are hashed locally with SHA1 and only the first 5 characters of the hash are sent to the API.",
		SilenceUsage: true,
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print more information on the processing")
	rootCmd.PersistentFlags().BoolVar(&profile, "profile", false, "Enable the profiling server (pprof) when running commands")
	rootCmd.PersistentFlags().Uint16Var(&pprofPort, "profile-port", 6060, "The port to use for the pprof server. Only used if the profile flag is set")
	rootCmd.PersistentFlags().String("api-url", hibp.DefaultBaseURL, "Base URL of the Pwned Passwords API [PWNED_API_URL]")
	rootCmd.PersistentFlags().Duration("timeout", hibp.DefaultTimeout, "Timeout of each range request [PWNED_TIMEOUT]")
	rootCmd.PersistentFlags().Bool("padding", false, "Ask the API to pad range responses [PWNED_PADDING]")
	rootCmd.PersistentFlags().Bool("cache", true, "Cache range responses by hash prefix [PWNED_CACHE_ENABLED]")
	rootCmd.PersistentFlags().Duration("cache-ttl", hibp.DefaultCacheTTL, "How long a cached range response is kept [PWNED_CACHE_TTL]")
	rootCmd.PersistentFlags().String("redis-url", "", "Share the range cache through Redis, e.g. redis://localhost:6379/0 [PWNED_REDIS_URL]")
}

func Execute() error {
	return rootCmd.Execute()
}

// newChecker wires the range client, the optional cache and the checker from flags and environment.
// The returned func releases the cache.
func newChecker(cmd *cobra.Command, opts checker.Options) (*checker.Checker, config.Config, func(), error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, cfg, nil, err
	}

	util.ApplyCliSettings(verbose || cfg.Debug, profile, pprofPort)

	var querier hibp.RangeQuerier = hibp.NewClient(cfg.ClientOptions())
	cleanup := func() {}

	if cfg.CacheEnabled {
		if cfg.RedisURL != "" {
			client, err := cache.Dial(context.Background(), cfg.RedisURL)
			if err != nil {
				return nil, cfg, nil, fmt.Errorf("error connecting to the range cache: %w", err)
			}

			r := cache.NewRedis(client, "")
			querier = hibp.NewCachedQuerier(querier, r, cfg.CacheTTL)
			cleanup = func() {
				if err := r.Close(); err != nil {
					log.Warn().Err(err).Msg("error closing redis connection")
				}
			}
			log.Debug().Msgf("caching range responses in redis for %v", cfg.CacheTTL)
		} else {
			m, err := cache.NewMemory(cache.DefaultMaxEntries)
			if err != nil {
				return nil, cfg, nil, fmt.Errorf("error creating the range cache: %w", err)
			}

			querier = hibp.NewCachedQuerier(querier, m, cfg.CacheTTL)
			cleanup = m.Close
			log.Debug().Msgf("caching range responses in memory for %v", cfg.CacheTTL)
		}
	}

	return checker.New(querier, opts), cfg, cleanup, nil
}
