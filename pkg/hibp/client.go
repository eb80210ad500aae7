// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package hibp

import (
	"context"
	"crypto/tls"
	"fmt"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog/log"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://api.pwnedpasswords.com"
	DefaultTimeout = 10 * time.Second
	userAgent      = "golang-pwned-range/1.0"
)

// RangeQuerier fetches the raw range response for a hash prefix. ok is false whenever the response is not usable.
type RangeQuerier interface {
	Query(ctx context.Context, prefix string) (body string, ok bool)
}

type ClientOptions struct {
	BaseURL string
	Timeout time.Duration
	// Padding asks the API to pad responses with zero count records, hiding the real response size.
	Padding bool
}

// Client queries the Pwned Passwords range API. Every call is a single attempt, failures are never retried.
type Client struct {
	baseURL string
	padding bool
	http    *retryablehttp.Client
}

func NewClient(opts ClientOptions) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}

	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	return &Client{
		baseURL: strings.TrimSuffix(opts.BaseURL, "/"),
		padding: opts.Padding,
		http:    initHttpClient(opts.Timeout),
	}
}

func initHttpClient(timeout time.Duration) *retryablehttp.Client {
	client := retryablehttp.NewClient()
	// The client logs full URLs on every attempt, we log failures ourselves.
	client.Logger = nil

	// One attempt per query.
	client.RetryMax = 0
	client.CheckRetry = func(ctx context.Context, _ *http.Response, _ error) (bool, error) {
		return false, ctx.Err()
	}

	client.HTTPClient = &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
			DialContext: (&net.Dialer{
				Timeout:   timeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:          10,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   timeout,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}

	return client
}

func (c *Client) rangeHttpRequest(ctx context.Context, prefix string) (*retryablehttp.Request, error) {
	req, err := retryablehttp.NewRequestWithContext(
		ctx,
		http.MethodGet,
		fmt.Sprintf("%s/range/%s", c.baseURL, prefix),
		nil,
	)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", userAgent)
	if c.padding {
		req.Header.Set("Add-Padding", "true")
	}
	return req, nil
}

// Query returns the response body verbatim when the API answers 200 OK. Network errors, timeouts and any
// other status are reported as ok == false, callers cannot tell them apart.
func (c *Client) Query(ctx context.Context, prefix string) (string, bool) {
	timer := time.Now()
	body, err := c.queryRange(ctx, prefix)
	if err != nil {
		log.Debug().Err(err).Msgf("range %s unavailable", prefix)
		return "", false
	}

	log.Debug().Msgf("range %s fetched in %d ms", prefix, time.Since(timer).Milliseconds())
	return body, true
}

func (c *Client) queryRange(ctx context.Context, prefix string) (string, error) {
	req, err := c.rangeHttpRequest(ctx, prefix)
	if err != nil {
		return "", err
	}

	res, err := c.http.Do(req)
	if err != nil {
		return "", err
	}

	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			log.Warn().Err(err).Msgf("error closing body for range %s", prefix)
		}
	}(res.Body)

	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("range request failed with status [%d] %s", res.StatusCode, res.Status)
	}

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return "", err
	}

	return string(resBody), nil
}
