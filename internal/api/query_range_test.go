// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"pwned-range/internal/checker"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeQuerier struct {
	body     string
	ok       bool
	prefixes []string
}

func (f *fakeQuerier) Query(_ context.Context, prefix string) (string, bool) {
	f.prefixes = append(f.prefixes, prefix)
	return f.body, f.ok
}

const passwordRange = "003D68EB55068C33ACE09247EE4C639306B:3\r\n1E4C9B93F3F0682250B6CF8331B7EE68FD8:10434004"

func post(t *testing.T, q *fakeQuerier, path string, body string) *httptest.ResponseRecorder {
	t.Helper()
	router := NewRouter(checker.New(q, checker.Options{Strength: true}), false)

	req, err := http.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestCheckPassword_Found(t *testing.T) {
	q := &fakeQuerier{body: passwordRange, ok: true}
	w := post(t, q, "/v1/check/password", `{"password":"password"}`)

	require.Equal(t, http.StatusOK, w.Code)
	out := decode(t, w)
	assert.Equal(t, true, out["pwned"])
	assert.EqualValues(t, 10434004, out["count"])
	assert.NotNil(t, out["strength"])
	assert.Equal(t, []string{"5BAA6"}, q.prefixes)
	assert.NotContains(t, w.Body.String(), "1E4C9B93F3F0682250B6CF8331B7EE68FD8")
}

func TestCheckPassword_NotFound(t *testing.T) {
	q := &fakeQuerier{body: "003D68EB55068C33ACE09247EE4C639306B:3", ok: true}
	w := post(t, q, "/v1/check/password", `{"password":"password"}`)

	require.Equal(t, http.StatusOK, w.Code)
	out := decode(t, w)
	assert.Equal(t, false, out["pwned"])
	assert.EqualValues(t, 0, out["count"])
}

func TestCheckPassword_Unavailable(t *testing.T) {
	q := &fakeQuerier{ok: false}
	w := post(t, q, "/v1/check/password", `{"password":"password"}`)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, decode(t, w), "error")
}

func TestCheckPassword_BadRequest(t *testing.T) {
	cases := []string{`{}`, `{"password":""}`, `not json`}

	for _, body := range cases {
		q := &fakeQuerier{ok: true}
		w := post(t, q, "/v1/check/password", body)

		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.Empty(t, q.prefixes, "bad requests should never reach the range API")
	}
}

func TestCheckHash(t *testing.T) {
	q := &fakeQuerier{body: passwordRange, ok: true}
	w := post(t, q, "/v1/check/hash", `{"hash":"5baa61e4c9b93f3f0682250b6cf8331b7ee68fd8"}`)

	require.Equal(t, http.StatusOK, w.Code)
	out := decode(t, w)
	assert.Equal(t, true, out["pwned"])
	assert.EqualValues(t, 10434004, out["count"])
	assert.NotContains(t, out, "strength")
}

func TestCheckHash_Invalid(t *testing.T) {
	q := &fakeQuerier{ok: true}
	w := post(t, q, "/v1/check/hash", `{"hash":"5baa61e4"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "SHA1"))
	assert.Empty(t, q.prefixes)
}

func TestMetrics(t *testing.T) {
	q := &fakeQuerier{body: passwordRange, ok: true}
	post(t, q, "/v1/check/password", `{"password":"password"}`)

	router := NewRouter(checker.New(q, checker.Options{}), false)
	req, err := http.NewRequest(http.MethodGet, "/metrics", nil)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "pwned_range_checks_total")
}
