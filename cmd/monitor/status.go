package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/mixelka/disconnectmon/internal/database"
	"github.com/mixelka/disconnectmon/internal/display"
	"github.com/mixelka/disconnectmon/pkg/models"
)

var statusAll bool

var statusCmd = &cobra.Command{
	Use:     "status [account-id]",
	Aliases: []string{"st"},
	Short:   "List stored disconnected accounts",
	Long: `List accounts from the disconnect history, or show one account in detail.

Examples:
  disconnectmon status          # currently disconnected accounts
  disconnectmon status --all    # include reconnected accounts
  disconnectmon status 4812     # one account by Smartlead id
  disconnectmon status --json   # machine-readable output`,
	Args:        cobra.MaximumNArgs(1),
	Annotations: map[string]string{annotationLocalOnly: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		store, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		if len(args) == 1 {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid account id %q", args[0])
			}
			return showAccount(cmd, store, id)
		}

		// The header counts the whole history even when only current rows are listed
		rows, err := store.ListDisconnected(ctx, true)
		if err != nil {
			return err
		}
		shown, current := filterHistory(rows, statusAll)

		if jsonOutput {
			return printJSON(os.Stdout, shown)
		}

		fmt.Println(display.Summary(current, len(rows)))
		if len(shown) == 0 {
			if !quietFlag {
				fmt.Println(display.Muted.Render("  nothing recorded"))
			}
			return nil
		}

		now := time.Now()
		for _, r := range shown {
			fmt.Println("  " + display.Row(r, now))
		}
		return nil
	},
}

func showAccount(cmd *cobra.Command, store database.Store, id int64) error {
	row, err := store.GetDisconnected(cmd.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		return fmt.Errorf("account %d has never been recorded as disconnected", id)
	}
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(os.Stdout, row)
	}
	fmt.Println(display.Detail(*row, time.Now()))
	return nil
}

// filterHistory returns the rows to list and how many are currently disconnected
func filterHistory(rows []models.DisconnectedAccount, all bool) ([]models.DisconnectedAccount, int) {
	shown := make([]models.DisconnectedAccount, 0, len(rows))
	current := 0
	for _, r := range rows {
		if r.CurrentlyDisconnected {
			current++
		}
		if all || r.CurrentlyDisconnected {
			shown = append(shown, r)
		}
	}
	return shown, current
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	statusCmd.Flags().BoolVar(&statusAll, "all", false, "Include reconnected accounts")
	rootCmd.AddCommand(statusCmd)
}
