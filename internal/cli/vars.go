// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package cli

var (
	// audit
	inputFile string
	// root
	verbose bool
	// root
	profile bool
	// root
	pprofPort uint16
	// query
	interactive bool
	// query
	hashed bool
	// query
	strength bool
	// query
	preview bool
	// audit
	threads int
	// serve
	selfTLS bool
	// serve
	tlsCert string
	// serve
	tlsKey string
	// serve
	port uint16
	// serve
	serveStrength bool
)
