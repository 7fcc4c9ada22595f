package main

import (
	"encoding/json"
	"fmt"
	"io"

	"meal-insights/internal/analytics"
	"meal-insights/internal/grocery"
	"meal-insights/internal/leaderboard"
	"meal-insights/internal/planner"

	"github.com/fatih/color"
)

// styleColors maps grocery style colors onto terminal colors.
var styleColors = map[string]color.Attribute{
	"red":   color.FgRed,
	"green": color.FgGreen,
	"amber": color.FgYellow,
	"blue":  color.FgBlue,
	"pink":  color.FgMagenta,
	"gray":  color.FgHiBlack,
}

var (
	headerColor = color.New(color.Bold, color.FgCyan)
	dimColor    = color.New(color.FgHiBlack)
)

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderGroceryList(w io.Writer, planName string, list grocery.List) {
	headerColor.Fprintf(w, "Grocery list: %s\n", planName)
	if list.Count() == 0 {
		dimColor.Fprintln(w, "  No ingredients detected")
		return
	}
	for _, cat := range grocery.Categories {
		items := list[cat]
		if len(items) == 0 {
			continue
		}
		style := grocery.StyleFor(cat)
		c := color.New(color.Bold, styleColors[style.Color])
		c.Fprintf(w, "\n%s %s (%d)\n", style.Emoji, style.Label, len(items))
		for _, item := range items {
			fmt.Fprintf(w, "  - %s\n", item)
		}
	}
}

func renderLeaderboard(w io.Writer, metric leaderboard.Metric, window leaderboard.Window, entries []leaderboard.Entry) {
	headerColor.Fprintf(w, "Leaderboard: %s, last %d days\n", metric, window.Days())
	if len(entries) == 0 {
		dimColor.Fprintln(w, "  No activity yet")
		return
	}
	for i, e := range entries {
		fmt.Fprintf(w, "%3d. %-30s %8d  ", i+1, e.Email, leaderboard.Round(e.Value(metric)))
		dimColor.Fprintf(w, "%d meals, avg %d kcal\n", e.TotalMeals, e.AverageCaloriesPerMeal())
	}
}

func renderAnalytics(w io.Writer, r analytics.Report) {
	headerColor.Fprintf(w, "Plan analytics (%d plans)\n", r.PlanCount)

	fmt.Fprintln(w, "\nMacro distribution")
	if len(r.Macros) == 0 {
		dimColor.Fprintln(w, "  No macro data")
	}
	for _, m := range r.Macros {
		fmt.Fprintf(w, "  %-8s %3d%%  %6.0fg\n", m.Name, m.Percent, m.Grams)
	}

	fmt.Fprintln(w, "\nAverage daily calories")
	for _, c := range r.Calories {
		fmt.Fprintf(w, "  %-30s %6d kcal\n", c.Name, c.AvgCalories)
	}

	fmt.Fprintln(w, "\nPlans created")
	for _, b := range r.WeeklyTrend {
		fmt.Fprintf(w, "  %-12s %3d\n", b.Label, b.Count)
	}

	if len(r.Budget) > 0 {
		fmt.Fprintln(w, "\nBudget")
		for _, b := range r.Budget {
			fmt.Fprintf(w, "  %-30s %10s %10s", b.Name, money(b.Estimated), money(b.Actual))
			if v, ok := b.Variance(); ok {
				c := color.New(color.FgGreen)
				if v > 0 {
					c = color.New(color.FgRed)
				}
				c.Fprintf(w, " %+.2f", v)
			}
			fmt.Fprintln(w)
		}
	}
}

func money(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("$%.2f", *v)
}

func renderPlan(w io.Writer, plan *planner.MealPlan) {
	headerColor.Fprintf(w, "%s\n", plan.Name)
	dimColor.Fprintf(w, "id %s\n", plan.ID)
	for _, day := range plan.Days {
		fmt.Fprintf(w, "\n%s\n", day.Day)
		for _, slot := range planner.Slots {
			if m := day.Meal(slot); m != nil {
				fmt.Fprintf(w, "  %-10s %s", slot, m.Name)
				if m.Calories != "" {
					dimColor.Fprintf(w, " (%s)", m.Calories)
				}
				fmt.Fprintln(w)
			}
		}
	}
}

func renderMeal(w io.Writer, meal *planner.Meal) {
	headerColor.Fprintf(w, "%s\n", meal.Name)
	if meal.Calories != "" {
		fmt.Fprintf(w, "  Calories: %s\n", meal.Calories)
	}
	fmt.Fprintf(w, "  Protein %.0fg, carbs %.0fg, fat %.0fg\n", float64(meal.Protein), float64(meal.Carbs), float64(meal.Fat))
	if meal.PrepTip != "" {
		fmt.Fprintf(w, "  Tip: %s\n", meal.PrepTip)
	}
}
