// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package api

import (
	"errors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"net/http"
	"pwned-range/internal/checker"
	"pwned-range/pkg/hibp"
)

type queryApi struct {
	checker *checker.Checker
}

func (q *queryApi) checkPassword(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": checker.ErrEmptyPassword.Error()})
		return
	}

	res, err := q.checker.Check(c.Request.Context(), req.Password)
	req.Password = ""
	if errors.Is(err, checker.ErrEmptyPassword) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	respond(c, res)
}

func (q *queryApi) checkHash(c *gin.Context) {
	var req hashRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	digest, err := hibp.ParseDigest(req.Hash)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := q.checker.CheckDigest(c.Request.Context(), digest)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	respond(c, res)
}

func respond(c *gin.Context, res checker.Result) {
	if res.Outcome == checker.Unavailable {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "could not reach the Pwned Passwords API, try again later"})
		return
	}

	c.JSON(http.StatusOK, queryResponse{
		Pwned:    res.Pwned(),
		Count:    res.Count,
		Strength: res.Strength,
	})
}

func RegisterQueryApi(group *gin.RouterGroup, c *checker.Checker) {
	q := &queryApi{checker: c}

	group.POST("/password", q.checkPassword)
	group.POST("/hash", q.checkHash)
}

func RegisterMetrics(router gin.IRoutes) {
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
