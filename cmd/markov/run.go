package main

import (
	"os"

	"github.com/aretw0/markov/internal/cli"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var runCmd = &cobra.Command{
	Use:   "run [flags] INPUT",
	Short: "Apply the scheme to an input word",
	Long: `Applies the scheme to INPUT until a final formula fires, no formula applies
or the step limit is reached.

With --interactive every transformation is printed and the run pauses until
ENTER is pressed; type quit to stop. With --session the run is persisted in
--store after every step and can be resumed by running the same session again.`,
	Example: `  markov run --scheme add.txt --limit 100 '||+|||'
  markov run --scheme add.yaml --interactive '||+|||'
  markov run --scheme add.txt --limit 100 --session demo --store file '||+|||'`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		opts := cli.RunOptions{
			Scheme: schemeFlags,
			In:     os.Stdin,
			Out:    os.Stdout,
			Err:    os.Stderr,
			Color:  term.IsTerminal(int(os.Stdout.Fd())),
		}
		if len(args) > 0 {
			opts.Input = args[0]
		}
		opts.Limit, _ = flags.GetInt("limit")
		opts.Interactive, _ = flags.GetBool("interactive")
		opts.Trace, _ = flags.GetBool("trace")
		opts.Quiet, _ = flags.GetBool("quiet")
		opts.StrictLimit, _ = flags.GetBool("strict-limit")
		opts.Mermaid, _ = flags.GetBool("mermaid")
		opts.SessionID, _ = flags.GetString("session")
		opts.StoreDSN, _ = flags.GetString("store")
		opts.Debug, _ = flags.GetBool("debug")
		opts.Store.HistoryLimit, _ = flags.GetInt("history-limit")

		storeOpts, err := cli.StoreOptionsFromEnv()
		if err != nil {
			return err
		}
		opts.Store.Key, opts.Store.FallbackKeys = storeOpts.Key, storeOpts.FallbackKeys

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()
		return cli.Run(ctx, opts)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().IntP("limit", "n", 0, "Maximum number of steps (required unless --interactive)")
	runCmd.Flags().BoolP("interactive", "i", false, "Pause after every transformation")
	runCmd.Flags().BoolP("trace", "t", false, "Print every transformation without pausing")
	runCmd.Flags().BoolP("quiet", "q", false, "Print only the resulting word")
	runCmd.Flags().Bool("strict-limit", false, "Fail when the step limit is reached")
	runCmd.Flags().Bool("mermaid", false, "Append a Mermaid flowchart of the run")
	runCmd.Flags().String("session", "", "Persist the run under this session ID")
	runCmd.Flags().Int("history-limit", 0, "Keep only the last N steps of a persisted session (0 keeps all)")
	runCmd.Flags().String("store", "file", "Session store: memory, file[:DIR], bolt:PATH or redis://host:port/db")
}
