package api

import "pwned-range/internal/checker"

type queryRequest struct {
	Password string `json:"password" binding:"required"`
}

type queryResponse struct {
	Pwned    bool              `json:"pwned"`
	Count    int               `json:"count"`
	Strength *checker.Strength `json:"strength,omitempty"`
}

type hashRequest struct {
	Hash string `json:"hash" binding:"required"`
}
