package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Check which Authorization format the API accepts for the token",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := newMonitor(nil)
		if err != nil {
			return err
		}

		scheme, err := m.Probe(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Println(scheme)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(probeCmd)
}
