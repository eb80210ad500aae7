// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package hibp

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

const passwordRange = "003D68EB55068C33ACE09247EE4C639306B:3\r\n" +
	"1E4C9B93F3F0682250B6CF8331B7EE68FD8:10434004\r\n" +
	"FFFFF00000000000000000000000000000B:1"

func newRangeServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *int32) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestClient_Query(t *testing.T) {
	var gotPath, gotAgent, gotPadding string
	srv, calls := newRangeServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAgent = r.Header.Get("User-Agent")
		gotPadding = r.Header.Get("Add-Padding")
		_, _ = fmt.Fprint(w, passwordRange)
	})

	client := NewClient(ClientOptions{BaseURL: srv.URL + "/", Timeout: time.Second, Padding: true})
	body, ok := client.Query(context.Background(), "5BAA6")
	if !ok {
		t.Fatalf("Query should succeed")
	}

	if body != passwordRange {
		t.Errorf("Body should be returned verbatim, got: %q", body)
	}

	if gotPath != "/range/5BAA6" {
		t.Errorf("Request path: %s, want: /range/5BAA6", gotPath)
	}

	if gotAgent != userAgent {
		t.Errorf("User-Agent: %s, want: %s", gotAgent, userAgent)
	}

	if gotPadding != "true" {
		t.Errorf("Add-Padding header should be set")
	}

	if n := atomic.LoadInt32(calls); n != 1 {
		t.Errorf("Query should make exactly one request, made %d", n)
	}
}

func TestClient_Query_Unavailable(t *testing.T) {
	cases := []int{http.StatusNotFound, http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusServiceUnavailable}

	for _, status := range cases {
		t.Run(http.StatusText(status), func(t *testing.T) {
			srv, calls := newRangeServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(status)
				_, _ = fmt.Fprint(w, passwordRange)
			})

			client := NewClient(ClientOptions{BaseURL: srv.URL, Timeout: time.Second})
			body, ok := client.Query(context.Background(), "5BAA6")
			if ok {
				t.Errorf("Query should be unavailable on status %d", status)
			}
			if body != "" {
				t.Errorf("Unavailable query should not return a body")
			}
			if n := atomic.LoadInt32(calls); n != 1 {
				t.Errorf("Query should not retry, made %d requests", n)
			}
		})
	}
}

func TestClient_Query_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv, _ := newRangeServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	client := NewClient(ClientOptions{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	if _, ok := client.Query(context.Background(), "5BAA6"); ok {
		t.Errorf("Query should be unavailable after the timeout")
	}
}

func TestClient_Query_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := NewClient(ClientOptions{BaseURL: url, Timeout: time.Second})
	if _, ok := client.Query(context.Background(), "5BAA6"); ok {
		t.Errorf("Query should be unavailable when the server is down")
	}
}

func TestNewClient_Defaults(t *testing.T) {
	client := NewClient(ClientOptions{})
	if client.baseURL != DefaultBaseURL {
		t.Errorf("Base URL: %s, want: %s", client.baseURL, DefaultBaseURL)
	}

	if client.http.HTTPClient.Timeout != DefaultTimeout {
		t.Errorf("Timeout: %v, want: %v", client.http.HTTPClient.Timeout, DefaultTimeout)
	}

	if client.http.RetryMax != 0 {
		t.Errorf("Client should never retry")
	}
}
