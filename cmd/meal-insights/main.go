package main

import (
	"context"
	"fmt"
	"os"

	"meal-insights/internal/app"
	"meal-insights/internal/config"
	"meal-insights/internal/logger"

	"github.com/spf13/cobra"
)

var (
	application *app.App
	appLog      *logger.Logger
	cleanup     func()
	jsonOutput  bool
)

var rootCmd = &cobra.Command{
	Use:   "meal-insights",
	Short: "Grocery lists, leaderboards and analytics over meal plans",
	Long: `meal-insights mirrors meal plans, nutrition logs and goals from the hosted
backend into a local SQLite database and derives grocery lists, leaderboards
and plan analytics from them.

Run "meal-insights sync" first to pull the latest data.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.NewFromEnv()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		appLog, err = logger.New(cfg.LogMode)
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		application, cleanup, err = app.Build(cmd.Context(), cfg, appLog)
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print results as JSON")
}

// run executes the command line. Resources opened by PersistentPreRunE are
// released here since cobra skips post-run hooks when a command fails.
func run(ctx context.Context) error {
	defer shutdown()
	return rootCmd.ExecuteContext(ctx)
}

func shutdown() {
	if cleanup != nil {
		cleanup()
		cleanup = nil
	}
	if appLog != nil {
		appLog.Sync()
	}
}

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
