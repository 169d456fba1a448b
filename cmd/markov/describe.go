package main

import (
	"os"

	"github.com/aretw0/markov/internal/cli"
	"github.com/aretw0/markov/internal/presentation/tui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var describeCmd = &cobra.Command{
	Use:   "describe",
	Short: "Print the formulas of the scheme",
	Long:  `Prints the alphabet, syntax and formulas of the scheme as a markdown table, or as a Mermaid flowchart with --mermaid.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		mermaid, _ := cmd.Flags().GetBool("mermaid")
		opts := cli.DescribeOptions{
			Scheme:  schemeFlags,
			Mermaid: mermaid,
			Out:     os.Stdout,
		}
		if term.IsTerminal(int(os.Stdout.Fd())) {
			opts.Render = tui.NewRenderer()
		}
		return cli.Describe(cmd.Context(), opts)
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)
	describeCmd.Flags().Bool("mermaid", false, "Print a Mermaid flowchart instead of the table")
}
