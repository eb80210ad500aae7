// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package hibp

import (
	"strconv"
	"strings"
)

// MatchCount scans a range response for the suffix and returns the number of times it was seen in breaches.
// An empty body, a missing suffix or an unreadable count all yield 0. The first matching record wins.
func MatchCount(body string, suffix string) int {
	if body == "" {
		return 0
	}

	want := strings.ToUpper(strings.TrimSpace(suffix))
	for _, line := range strings.Split(body, "\n") {
		parts := strings.Split(line, ":")
		if len(parts) != 2 {
			continue
		}

		if strings.ToUpper(strings.TrimSpace(parts[0])) != want {
			continue
		}

		count, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil || count < 0 {
			return 0
		}

		return count
	}

	return 0
}
