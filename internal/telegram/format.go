package telegram

import (
	"fmt"
	"strings"

	"meal-insights/internal/analytics"
	"meal-insights/internal/app"
	"meal-insights/internal/grocery"
	"meal-insights/internal/leaderboard"
	"meal-insights/internal/planner"
)

var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")

// escape protects user data from Telegram's legacy Markdown parser.
func escape(s string) string {
	return markdownEscaper.Replace(s)
}

const helpText = `🥗 *Meal Insights*

/grocery <plan-id> categorised shopping list
/leaderboard [meals|streak|goals|protein] [week|month]
/analytics plan statistics
/sync refresh data from the backend

Send any other text to generate a meal plan, or a recipe link to import it.`

func formatGroceryList(plan *planner.MealPlan, list grocery.List) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🛒 *Grocery List: %s*\n", escape(plan.Name))
	if list.Count() == 0 {
		sb.WriteString("\n_No ingredients detected in this plan._\n")
		return sb.String()
	}

	for _, cat := range grocery.Categories {
		items := list[cat]
		if len(items) == 0 {
			continue
		}
		style := grocery.StyleFor(cat)
		fmt.Fprintf(&sb, "\n%s *%s* (%d)\n", style.Emoji, style.Label, len(items))
		for _, item := range items {
			fmt.Fprintf(&sb, "• %s\n", escape(item))
		}
	}
	return sb.String()
}

func formatLeaderboard(metric leaderboard.Metric, window leaderboard.Window, entries []leaderboard.Entry) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🏆 *Leaderboard* (%s, last %d days)\n\n", metric, window.Days())
	if len(entries) == 0 {
		sb.WriteString("_No activity yet._\n")
		return sb.String()
	}

	medals := []string{"🥇", "🥈", "🥉"}
	for i, e := range entries {
		rank := fmt.Sprintf("%d.", i+1)
		if i < len(medals) {
			rank = medals[i]
		}
		fmt.Fprintf(&sb, "%s %s: %s\n", rank, escape(e.Email), entryValue(metric, e))
	}
	return sb.String()
}

func entryValue(metric leaderboard.Metric, e leaderboard.Entry) string {
	switch metric {
	case leaderboard.MetricStreak:
		return fmt.Sprintf("%d active days", e.Streak)
	case leaderboard.MetricGoals:
		return fmt.Sprintf("%d goal days", e.GoalsMetCount)
	case leaderboard.MetricProtein:
		return fmt.Sprintf("%dg protein", leaderboard.Round(e.TotalProtein))
	default:
		return fmt.Sprintf("%d meals (avg %d kcal)", e.TotalMeals, e.AverageCaloriesPerMeal())
	}
}

func formatAnalytics(r analytics.Report) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 *Plan Analytics* (%d plans)\n", r.PlanCount)

	sb.WriteString("\n🥩 *Macro Distribution*\n")
	if len(r.Macros) == 0 {
		sb.WriteString("_No macro data_\n")
	}
	for _, m := range r.Macros {
		fmt.Fprintf(&sb, "• %s: %d%% (%dg)\n", m.Name, m.Percent, leaderboard.Round(m.Grams))
	}

	sb.WriteString("\n🔥 *Average Daily Calories*\n")
	if len(r.Calories) == 0 {
		sb.WriteString("_No plans_\n")
	}
	for _, c := range r.Calories {
		fmt.Fprintf(&sb, "• %s: %d kcal\n", escape(c.Name), c.AvgCalories)
	}

	sb.WriteString("\n📈 *Plans Created*\n")
	for _, b := range r.WeeklyTrend {
		fmt.Fprintf(&sb, "• %s: %d\n", b.Label, b.Count)
	}

	if len(r.Budget) > 0 {
		sb.WriteString("\n💰 *Budget*\n")
		for _, b := range r.Budget {
			fmt.Fprintf(&sb, "• %s: %s\n", escape(b.Name), budgetLine(b))
		}
	}
	return sb.String()
}

func budgetLine(b analytics.BudgetRow) string {
	money := func(v *float64) string {
		if v == nil {
			return "n/a"
		}
		return fmt.Sprintf("$%.2f", *v)
	}
	line := fmt.Sprintf("est. %s, actual %s", money(b.Estimated), money(b.Actual))
	if v, ok := b.Variance(); ok {
		line += fmt.Sprintf(" (%+.2f)", v)
	}
	return line
}

func formatPlan(plan *planner.MealPlan) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📅 *%s*\n", escape(plan.Name))
	for _, day := range plan.Days {
		fmt.Fprintf(&sb, "\n*%s*\n", escape(day.Day))
		for _, slot := range planner.Slots {
			m := day.Meal(slot)
			if m == nil {
				continue
			}
			fmt.Fprintf(&sb, "• %s: %s", grocery.Capitalize(string(slot)), escape(m.Name))
			if m.Calories != "" {
				fmt.Fprintf(&sb, " (%s)", escape(m.Calories))
			}
			sb.WriteString("\n")
		}
	}
	fmt.Fprintf(&sb, "\nID: `%s`\nUse /grocery %s for the shopping list.", plan.ID, plan.ID)
	return sb.String()
}

func formatMeal(meal *planner.Meal) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "✅ *%s*\n", escape(meal.Name))
	if meal.Calories != "" {
		fmt.Fprintf(&sb, "🔥 %s\n", escape(meal.Calories))
	}
	if meal.Protein > 0 || meal.Carbs > 0 || meal.Fat > 0 {
		fmt.Fprintf(&sb, "P %.0fg · C %.0fg · F %.0fg\n", float64(meal.Protein), float64(meal.Carbs), float64(meal.Fat))
	}
	if meal.PrepTip != "" {
		fmt.Fprintf(&sb, "_%s_\n", escape(meal.PrepTip))
	}
	return sb.String()
}

func formatSync(res app.SyncResult) string {
	return fmt.Sprintf("🔄 *Synced*: %d plans, %d logs, %d goals", res.Plans, res.Logs, res.Goals)
}

func formatUsage(u app.Usage) string {
	var sb strings.Builder
	sb.WriteString("📊 *Usage & Health Report*\n\n")

	sb.WriteString("🗓 *Recent LLM Activity*\n")
	if len(u.Daily) == 0 {
		sb.WriteString("_No data yet_\n")
	}
	for _, d := range u.Daily {
		fmt.Fprintf(&sb, "• *%s*: %d tokens (%d execs)\n", d.Date, d.TotalPrompt+d.TotalCompletion, d.TotalExecution)
	}

	sb.WriteString("\n🧠 *System Health*\n")
	fmt.Fprintf(&sb, "• RAM: %dMB (Alloc) / %dMB (Sys)\n", u.Health.AllocMB, u.Health.SysMB)
	fmt.Fprintf(&sb, "• Goroutines: %d\n", u.Health.Goroutines)
	fmt.Fprintf(&sb, "• Disk Data: %s\n", u.Health.DataDiskSize)
	return sb.String()
}

func formatError(action string, err error) string {
	safeErr := strings.ReplaceAll(err.Error(), "`", "'")
	return fmt.Sprintf("❌ *Error %s:*\n```\n%v\n```", action, safeErr)
}
