package main

import (
	"fmt"
	"os"

	"github.com/aretw0/markov/internal/cli"
	"github.com/spf13/cobra"
)

var schemeFlags = &cli.SchemeFlags{}

var rootCmd = &cobra.Command{
	Use:   "markov",
	Short: "Markov is an interpreter for Markov normal algorithms",
	Long: `Markov applies a scheme of substitution formulas to an input word.

A formula has the form <pattern>→<replacement>, or <pattern>→⋅<replacement>
for a final formula. On every step the first formula whose pattern occurs in
the word rewrites its leftmost occurrence.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	schemeFlags.Bind(rootCmd.PersistentFlags())
	rootCmd.PersistentFlags().Bool("debug", false, "Log every step to stderr")
}
