// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package hibp

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"regexp"
	"strings"
)

const (
	// DigestLen is the length of a hex encoded SHA1 digest.
	DigestLen = sha1.Size * 2
	// PrefixLen is the part of the digest sent to the range API. k-anonymity needs the hash like this.
	PrefixLen = 5
	// SuffixLen is the part of the digest that never leaves the process.
	SuffixLen = DigestLen - PrefixLen
)

var (
	ErrInvalidDigest = errors.New("input is not a valid SHA1 Hexadecimal hash")

	digestPattern = regexp.MustCompile("^[a-fA-F\\d]{40}$")
)

// Digest is an uppercase hex encoded SHA1 hash. Build it with HashPassword or ParseDigest; any other value is
// not Valid and has an empty prefix and suffix.
type Digest string

// HashPassword returns the uppercase SHA1 hex digest of the password bytes.
func HashPassword(password string) Digest {
	sum := sha1.Sum([]byte(password))
	return Digest(strings.ToUpper(hex.EncodeToString(sum[:])))
}

// ParseDigest validates an already hashed password. Lowercase input is accepted, the digest is stored uppercase.
func ParseDigest(hash string) (Digest, error) {
	if !digestPattern.MatchString(hash) {
		return "", ErrInvalidDigest
	}

	return Digest(strings.ToUpper(hash)), nil
}

// Valid reports whether d is 40 uppercase hex characters.
func (d Digest) Valid() bool {
	if len(d) != DigestLen {
		return false
	}

	for i := 0; i < len(d); i++ {
		c := d[i]
		if (c < '0' || c > '9') && (c < 'A' || c > 'F') {
			return false
		}
	}
	return true
}

func (d Digest) Prefix() string {
	if !d.Valid() {
		return ""
	}
	return string(d[:PrefixLen])
}

func (d Digest) Suffix() string {
	if !d.Valid() {
		return ""
	}
	return string(d[PrefixLen:])
}
