package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Show LLM token usage for recent days",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		days, _ := cmd.Flags().GetInt("days")
		usage, err := application.Usage(cmd.Context(), days)
		if err != nil {
			return err
		}
		if jsonOutput {
			return writeJSON(cmd.OutOrStdout(), usage)
		}
		out := cmd.OutOrStdout()
		if len(usage.Daily) == 0 {
			fmt.Fprintln(out, "No LLM activity recorded")
		}
		for _, d := range usage.Daily {
			fmt.Fprintf(out, "%s  %6d prompt  %6d completion  %3d calls\n", d.Date, d.TotalPrompt, d.TotalCompletion, d.TotalExecution)
		}
		fmt.Fprintf(out, "Data dir: %s\n", usage.Health.DataDiskSize)
		return nil
	},
}

var metricsCleanupCmd = &cobra.Command{
	Use:   "metrics-cleanup",
	Short: "Delete LLM usage records older than --days",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		days, _ := cmd.Flags().GetInt("days")
		if days <= 0 {
			return fmt.Errorf("--days must be positive, got %d", days)
		}
		n, err := application.CleanupMetrics(cmd.Context(), days)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d records\n", n)
		return nil
	},
}

func init() {
	metricsCmd.Flags().Int("days", 7, "Days of usage to show")
	metricsCleanupCmd.Flags().Int("days", 30, "Keep records newer than this many days")
	rootCmd.AddCommand(metricsCmd, metricsCleanupCmd)
}
