// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

// Package checker runs a full k-anonymity lookup: hash locally, query the range of the hash prefix and look for
// the suffix in the response.
//
// Plaintext passwords and digests are dropped as soon as they are no longer needed. Go strings are immutable and
// garbage collected, so this narrows the time they stay reachable but cannot wipe them from memory.
package checker

import (
	"context"
	"errors"
	"github.com/nbutton23/zxcvbn-go"
	"pwned-range/internal/util"
	"pwned-range/pkg/hibp"
	"time"
)

var ErrEmptyPassword = errors.New("please enter a password first")

type Options struct {
	// Strength estimates the password strength with zxcvbn before the plaintext is dropped.
	Strength bool
	// Preview keeps the start of the raw range response in the result.
	Preview bool
}

type Checker struct {
	querier hibp.RangeQuerier
	opts    Options
}

func New(querier hibp.RangeQuerier, opts Options) *Checker {
	return &Checker{querier: querier, opts: opts}
}

// Check looks up a plaintext password. An empty password is rejected before anything is hashed or sent.
func (c *Checker) Check(ctx context.Context, password string) (Result, error) {
	if password == "" {
		return Result{}, ErrEmptyPassword
	}

	digest := hibp.HashPassword(password)

	var strength *Strength
	if c.opts.Strength {
		strength = estimateStrength(password)
	}
	password = ""

	res, err := c.CheckDigest(ctx, digest)
	if err != nil {
		return Result{}, err
	}
	res.Strength = strength
	return res, nil
}

// CheckDigest looks up an already hashed password. A digest not built by hibp.HashPassword or hibp.ParseDigest
// fails with hibp.ErrInvalidDigest before anything is sent.
func (c *Checker) CheckDigest(ctx context.Context, digest hibp.Digest) (Result, error) {
	if !digest.Valid() {
		return Result{}, hibp.ErrInvalidDigest
	}

	prefix, suffix := digest.Prefix(), digest.Suffix()
	digest = ""

	timer := time.Now()
	body, ok := c.querier.Query(ctx, prefix)
	queryDurationMs.Observe(float64(time.Since(timer).Microseconds()) / 1000.0)

	count := hibp.MatchCount(body, suffix)

	var res Result
	switch {
	case !ok:
		res = Result{Outcome: Unavailable}
	case count > 0:
		res = Result{Outcome: Found, Count: count}
	default:
		res = Result{Outcome: NotFound}
	}

	if c.opts.Preview && ok {
		res.Preview = util.Truncate(body, PreviewLen)
	}

	checksTotal.WithLabelValues(res.Outcome.String()).Inc()
	return res, nil
}

func estimateStrength(password string) *Strength {
	entropy := zxcvbn.PasswordStrength(password, nil)
	return &Strength{
		Score:            entropy.Score,
		Entropy:          entropy.Entropy,
		CrackTime:        entropy.CrackTime,
		CrackTimeDisplay: entropy.CrackTimeDisplay,
	}
}
