package main

import (
	"os"

	"github.com/spf13/cobra"
)

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "Stream every email account as JSON lines",
	Long: `Page through the full, unfiltered account listing and write one JSON
object per account to stdout. Logs go to stderr.

Examples:
  disconnectmon accounts > accounts.jsonl`,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := newMonitor(nil)
		if err != nil {
			return err
		}

		n, err := m.Export(cmd.Context(), os.Stdout)
		if err != nil {
			return err
		}
		logger.Info("export finished", "accounts", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(accountsCmd)
}
