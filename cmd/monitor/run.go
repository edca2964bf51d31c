package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Fetch disconnected accounts, update history and notify about new ones",
	Long: `Run one check: negotiate auth, fetch SMTP-failed and IMAP-failed accounts,
reconcile them with the stored history and send one notification per group
for accounts that became disconnected since the previous run.

Meant to be invoked by an external scheduler; runs must not overlap.

Examples:
  disconnectmon run
  disconnectmon run --json   # print the run summary as JSON`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		ctx, cancel := context.WithTimeout(ctx, cfg.RunTimeout)
		defer cancel()

		store, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		m, err := newMonitor(store)
		if err != nil {
			return err
		}

		summary, err := m.Run(ctx)
		if err != nil {
			return err
		}

		if jsonOutput {
			return printJSON(os.Stdout, summary)
		}
		fmt.Printf("# New disconnects: %d | Execution time: %.2fs\n", summary.New, summary.Elapsed.Seconds())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
