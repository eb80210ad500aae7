// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package checker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	checksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pwned_range_checks_total",
		Help: "Password checks by outcome",
	}, []string{"outcome"})

	queryDurationMs = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pwned_range_query_duration_ms",
		Help:    "Latency of range queries in milliseconds, cache hits included",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
	})
)
