package main

import (
	"strings"

	"meal-insights/internal/planner"

	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate <request>",
	Short: "Generate and store a meal plan with the configured LLM",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		days, _ := cmd.Flags().GetInt("days")
		diet, _ := cmd.Flags().GetString("diet")

		plan, err := application.GeneratePlan(cmd.Context(), planner.Request{
			Text:     strings.Join(args, " "),
			DietType: diet,
			Days:     days,
		})
		if err != nil {
			return err
		}
		if jsonOutput {
			return writeJSON(cmd.OutOrStdout(), plan)
		}
		renderPlan(cmd.OutOrStdout(), plan)
		return nil
	},
}

var importRecipeCmd = &cobra.Command{
	Use:   "import-recipe <url>",
	Short: "Extract a meal from a recipe web page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		meal, err := application.ImportMeal(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if jsonOutput {
			return writeJSON(cmd.OutOrStdout(), meal)
		}
		renderMeal(cmd.OutOrStdout(), meal)
		return nil
	},
}

func init() {
	generateCmd.Flags().Int("days", 7, "Number of days to plan")
	generateCmd.Flags().String("diet", "", "Diet type, e.g. vegetarian")
	rootCmd.AddCommand(generateCmd, importRecipeCmd)
}
