// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package checker

// Outcome of a single check. Unavailable is never folded into NotFound.
type Outcome int

const (
	Unavailable Outcome = iota
	NotFound
	Found
)

func (o Outcome) String() string {
	switch o {
	case NotFound:
		return "not_found"
	case Found:
		return "found"
	default:
		return "unavailable"
	}
}

// PreviewLen bounds the raw response kept for debugging.
const PreviewLen = 1000

type Strength struct {
	Score            int     `json:"score"`
	Entropy          float64 `json:"entropy"`
	CrackTime        float64 `json:"crackTime"`
	CrackTimeDisplay string  `json:"crackTimeDisplay"`
}

type Result struct {
	Outcome Outcome
	// Count is the number of times the password appears in breaches, 0 unless Outcome is Found.
	Count int
	// Strength is only set when the checker estimates strength and a plaintext password was checked.
	Strength *Strength
	// Preview is the first PreviewLen characters of the range response, only set on request.
	Preview string
}

func (r Result) Pwned() bool {
	return r.Outcome == Found
}
