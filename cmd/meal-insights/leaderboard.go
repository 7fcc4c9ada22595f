package main

import (
	"meal-insights/internal/leaderboard"

	"github.com/spf13/cobra"
)

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Rank users by their nutrition logs",
	Long: `Rank users over a trailing window of days.

Examples:
  meal-insights leaderboard                         # Meals logged this week
  meal-insights leaderboard --metric goals          # Days within 10% of the calorie goal
  meal-insights leaderboard --window month -n 3     # Top 3 over 30 days`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		metricFlag, _ := cmd.Flags().GetString("metric")
		windowFlag, _ := cmd.Flags().GetString("window")
		limit, _ := cmd.Flags().GetInt("limit")

		metric, err := leaderboard.ParseMetric(metricFlag)
		if err != nil {
			return err
		}
		window, err := leaderboard.ParseWindow(windowFlag)
		if err != nil {
			return err
		}

		entries, err := application.Leaderboard(cmd.Context(), metric, window)
		if err != nil {
			return err
		}
		if limit > 0 && len(entries) > limit {
			entries = entries[:limit]
		}
		if jsonOutput {
			return writeJSON(cmd.OutOrStdout(), entries)
		}
		renderLeaderboard(cmd.OutOrStdout(), metric, window, entries)
		return nil
	},
}

func init() {
	leaderboardCmd.Flags().String("metric", string(leaderboard.MetricMeals), "Ranking metric: meals, streak, goals or protein")
	leaderboardCmd.Flags().String("window", string(leaderboard.WindowWeek), "Window: week or month")
	leaderboardCmd.Flags().IntP("limit", "n", 0, "Show at most this many rows (default LEADERBOARD_SIZE)")
	rootCmd.AddCommand(leaderboardCmd)
}
