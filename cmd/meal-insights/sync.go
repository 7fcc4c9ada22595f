package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Pull plans, logs and goals from the hosted backend",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := application.Sync(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Synced %d plans, %d logs, %d goals\n", res.Plans, res.Logs, res.Goals)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
