package main

import (
	"os"

	"github.com/aretw0/markov/internal/cli"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the scheme for invalid formulas",
	Long:  `Builds the scheme and reports every formula that cannot be parsed with the configured alphabet and syntax.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.Validate(cmd.Context(), schemeFlags, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
