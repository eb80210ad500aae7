// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package cli

import (
	"fmt"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"os"
	"pwned-range/internal/audit"
	"pwned-range/internal/checker"
)

var (
	auditCmd = &cobra.Command{
		Use:   "audit",
		Short: "Check every password of a file, one per line, against the Pwned Passwords range API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return auditCommand(cmd)
		},
	}
)

//goland:noinspection GoUnhandledErrorResult
func init() {
	auditCmd.Flags().StringVarP(&inputFile, "in-file", "i", "", "Passwords file, one password per line (required)")
	auditCmd.MarkFlagRequired("in-file")
	auditCmd.Flags().IntVarP(&threads, "threads", "t", 0, "Number of concurrent checks. If omitted or less than 1, defaults to twice the number of logical processors of the machine.")

	rootCmd.AddCommand(auditCmd)
}

func auditCommand(cmd *cobra.Command) error {
	c, _, cleanup, err := newChecker(cmd, checker.Options{})
	if err != nil {
		return err
	}
	defer cleanup()

	file, err := os.Open(inputFile)
	if err != nil {
		return err
	}

	defer func(file *os.File) {
		if err = file.Close(); err != nil {
			log.Error().Err(err).Msg("error closing passwords file")
		}
	}(file)

	report, err := audit.NewAuditor(c, threads).Run(cmd.Context(), file)
	if err != nil {
		return err
	}

	p := message.NewPrinter(language.English)
	out := cmd.OutOrStdout()
	for _, line := range report.BreachedLines {
		_, _ = p.Fprintf(out, "line %d: found %d times\n", line, report.Counts[line])
	}

	if report.Unavailable > 0 {
		return fmt.Errorf("%d passwords could not be checked, the Pwned Passwords API was unavailable", report.Unavailable)
	}

	return nil
}
