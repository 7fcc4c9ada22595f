package main

import (
	"github.com/spf13/cobra"
)

var groceryCmd = &cobra.Command{
	Use:   "grocery <plan-id>",
	Short: "Show the categorised grocery list for a meal plan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		plan, list, err := application.GroceryList(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if jsonOutput {
			return writeJSON(cmd.OutOrStdout(), list)
		}
		renderGroceryList(cmd.OutOrStdout(), plan.Name, list)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(groceryCmd)
}
