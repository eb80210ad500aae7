// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package cli

import (
	"context"
	"errors"
	"fmt"
	"github.com/manifoldco/promptui"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"io"
	"pwned-range/internal/checker"
	"pwned-range/pkg/hibp"
)

var (
	queryCmd = &cobra.Command{
		Use:   "query [password]",
		Short: "Check a password against the Pwned Passwords range API",
		Long: "Check a password against the Pwned Passwords range API. Passing the password as an argument " +
			"leaves it in your shell history, prefer the interactive mode for real passwords.",
		Args: func(cmd *cobra.Command, args []string) error {
			if !interactive {
				if err := cobra.ExactArgs(1)(cmd, args); err != nil {
					return err
				}
			}

			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if interactive {
				return queryCommand(cmd, "")
			} else {
				return queryCommand(cmd, args[0])
			}
		},
	}
)

func init() {
	queryCmd.Flags().BoolVarP(&interactive, "interactive", "n", false, "Interactive mode, the password is typed in a masked prompt.")
	queryCmd.Flags().BoolVarP(&hashed, "hashed", "s", false, "If the supplied password will be a Hexadecimal SHA1 hash or a plain text string.")
	queryCmd.Flags().BoolVar(&strength, "strength", false, "Estimate the strength of the password.")
	queryCmd.Flags().BoolVar(&preview, "preview", false, "Print the first 1000 characters of the raw range response. For debugging.")

	rootCmd.AddCommand(queryCmd)
}

func queryCommand(cmd *cobra.Command, password string) error {
	c, _, cleanup, err := newChecker(cmd, checker.Options{Strength: strength && !hashed, Preview: preview})
	if err != nil {
		return err
	}
	defer cleanup()

	if !interactive {
		checkInput(cmd.Context(), c, password, cmd.OutOrStdout())
		return nil
	}

	var label string
	if hashed {
		label = "SHA1 Hex hash"
		log.Info().Msgf("Flag 'hashed' is set. Please use SHA1 Hashed passwords.")
	} else {
		label = "Password"
	}

	prompt := promptui.Prompt{
		Label: label,
		Validate: func(input string) error {
			if len(input) == 0 {
				return checker.ErrEmptyPassword
			}

			if hashed {
				if _, err := hibp.ParseDigest(input); err != nil {
					return err
				}
			}
			return nil
		},
	}

	if !hashed {
		prompt.Mask = '*'
	}

	log.Info().Msgf("Running interactive session. ^C to exit")
	if err = runInteractiveSession(cmd.Context(), prompt, c, cmd.OutOrStdout()); err != nil {
		if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
			log.Info().Msgf("Goodbye")
		} else {
			log.Error().Err(err).Msgf("Error during interactive session")
		}
	}

	// No error to avoid the default cobra error message
	return nil
}

func runInteractiveSession(ctx context.Context, prompt promptui.Prompt, c *checker.Checker, out io.Writer) error {
	for {
		input, err := prompt.Run()
		if err != nil {
			return err
		}

		checkInput(ctx, c, input, out)
	}
}

// checkInput runs one check and reports the outcome. Input errors are warnings, the session goes on.
func checkInput(ctx context.Context, c *checker.Checker, input string, out io.Writer) {
	if ctx == nil {
		ctx = context.Background()
	}

	var res checker.Result
	var err error
	if hashed {
		var digest hibp.Digest
		if digest, err = hibp.ParseDigest(input); err == nil {
			res, err = c.CheckDigest(ctx, digest)
		}
	} else {
		res, err = c.Check(ctx, input)
	}

	if err != nil {
		log.Warn().Msg(err.Error())
		return
	}

	report(res, out)
}

func report(res checker.Result, out io.Writer) {
	p := message.NewPrinter(language.English)

	switch res.Outcome {
	case checker.Unavailable:
		log.Error().Msg("Could not reach the Pwned Passwords API (network or server error). Try again later.")
	case checker.Found:
		log.Warn().Msgf("This password was found %s times in data breaches", p.Sprintf("%d", res.Count))
		log.Warn().Msg("Stop using this password anywhere and change it on important accounts now. " +
			"Use a password manager to create strong, unique passwords and enable MFA where possible.")
	default:
		log.Info().Msg("Good news, this password was NOT found in the Pwned Passwords dataset")
	}

	if res.Strength != nil {
		log.Info().Msgf("Strength score %d/4, estimated crack time %s", res.Strength.Score, res.Strength.CrackTimeDisplay)
	}

	if preview {
		if res.Preview == "" {
			_, _ = fmt.Fprintln(out, "No data")
		} else {
			_, _ = fmt.Fprintln(out, res.Preview)
		}
	}
}
