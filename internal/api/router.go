// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package api

import (
	"github.com/gin-contrib/logger"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"pwned-range/internal/checker"
)

// NewRouter builds the API: POST /v1/check/password, POST /v1/check/hash and GET /metrics.
func NewRouter(c *checker.Checker, debug bool) *gin.Engine {
	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}

	access := zerolog.New(gin.DefaultWriter).With().Timestamp().Str("component", "api").Logger()

	router := gin.New()
	// Only method, path, status and latency are logged, never request bodies. Scrapes are skipped.
	router.Use(
		logger.SetLogger(
			logger.WithLogger(func(*gin.Context, zerolog.Logger) zerolog.Logger { return access }),
			logger.WithSkipPath([]string{"/metrics"}),
		),
		gin.Recovery(),
	)

	v1 := router.Group("/v1")

	pwned := v1.Group("/check")
	RegisterQueryApi(pwned, c)
	RegisterMetrics(router)

	return router
}
