package main

import (
	"fmt"

	"github.com/BearBump/ShipTrack/internal/services/tracknumber"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newNumberCmd() *cobra.Command {
	numberCmd := &cobra.Command{
		Use:   "number",
		Short: "Tracking number helpers",
	}

	var count int
	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Print fresh tracking numbers (not reserved in the store)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if count < 1 {
				return errors.New("--count must be positive")
			}
			g := tracknumber.New()
			for i := 0; i < count; i++ {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), g.Generate()); err != nil {
					return err
				}
			}
			return nil
		},
	}
	generateCmd.Flags().IntVarP(&count, "count", "n", 1, "how many numbers to print")

	validateCmd := &cobra.Command{
		Use:   "validate <tracking-number>",
		Short: "Check that a number matches the generated format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !tracknumber.Valid(args[0]) {
				return errors.Errorf("%q is not a generated tracking number", args[0])
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return err
		},
	}

	numberCmd.AddCommand(generateCmd, validateCmd)
	return numberCmd
}
