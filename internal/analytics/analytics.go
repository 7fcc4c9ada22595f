// Package analytics derives chart data from a collection of meal plans.
// Every function tolerates missing fields and returns empty results rather
// than errors.
package analytics

import (
	"math"
	"time"

	"meal-insights/internal/planner"
)

const (
	trendWeeks     = 5
	budgetRowLimit = 5
	week           = 7 * 24 * time.Hour
)

// MacroShare is one slice of the macro distribution.
type MacroShare struct {
	Name    string  `json:"name"`
	Grams   float64 `json:"grams"`
	Percent int     `json:"percent"`
}

// MacroDistribution sums protein, carbs and fat over plans and converts the
// totals to percentages. A plan's macros object is used when present;
// otherwise its meals are summed. Returns an empty slice when there are no
// grams at all.
func MacroDistribution(plans []planner.MealPlan) []MacroShare {
	var protein, carbs, fat float64
	for _, p := range plans {
		if p.Macros != nil {
			protein += float64(p.Macros.Protein)
			carbs += float64(p.Macros.Carbs)
			fat += float64(p.Macros.Fat)
			continue
		}
		for _, day := range p.Days {
			for _, m := range day.Meals() {
				protein += float64(m.Protein)
				carbs += float64(m.Carbs)
				fat += float64(m.Fat)
			}
		}
	}

	total := protein + carbs + fat
	if total <= 0 {
		return []MacroShare{}
	}
	pct := func(v float64) int { return int(math.Round(v / total * 100)) }
	return []MacroShare{
		{Name: "Protein", Grams: protein, Percent: pct(protein)},
		{Name: "Carbs", Grams: carbs, Percent: pct(carbs)},
		{Name: "Fat", Grams: fat, Percent: pct(fat)},
	}
}

// PlanCalories is the average daily calories of one plan.
type PlanCalories struct {
	PlanID      string `json:"plan_id"`
	Name        string `json:"name"`
	AvgCalories int    `json:"avg_calories"`
}

// DayCalories sums the low bound of every meal's calorie range in day.
// Meals without a parseable range contribute nothing.
func DayCalories(day planner.Day) int {
	total := 0
	for _, m := range day.Meals() {
		if low, _, ok := planner.ParseCalorieRange(m.Calories); ok {
			total += low
		}
	}
	return total
}

// AverageDailyCalories reports, per plan, the mean of DayCalories over the
// days with a nonzero total. Plans without calorie data report 0.
func AverageDailyCalories(plans []planner.MealPlan) []PlanCalories {
	out := make([]PlanCalories, 0, len(plans))
	for _, p := range plans {
		sum, days := 0, 0
		for _, day := range p.Days {
			if c := DayCalories(day); c > 0 {
				sum += c
				days++
			}
		}
		avg := 0
		if days > 0 {
			avg = int(math.Round(float64(sum) / float64(days)))
		}
		out = append(out, PlanCalories{PlanID: p.ID, Name: p.Name, AvgCalories: avg})
	}
	return out
}

// TrendBucket counts plans created in one week.
type TrendBucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

var trendLabels = [trendWeeks]string{"4 Weeks Ago", "3 Weeks Ago", "2 Weeks Ago", "Last Week", "This Week"}

// WeeklyTrend buckets plans by floor((now - created) / 7 days), oldest
// bucket first. Plans older than four weeks, created in the future, or with
// no parseable creation date are left out.
func WeeklyTrend(plans []planner.MealPlan, now time.Time) []TrendBucket {
	buckets := make([]TrendBucket, trendWeeks)
	for i, label := range trendLabels {
		buckets[i].Label = label
	}

	for _, p := range plans {
		created, ok := p.CreatedAt()
		if !ok {
			continue
		}
		age := now.Sub(created)
		if age < 0 {
			continue
		}
		weeksAgo := int(age / week)
		if weeksAgo >= trendWeeks {
			continue
		}
		buckets[trendWeeks-1-weeksAgo].Count++
	}
	return buckets
}

// BudgetRow compares a plan's estimated and current cost.
type BudgetRow struct {
	PlanID    string   `json:"plan_id"`
	Name      string   `json:"name"`
	Estimated *float64 `json:"estimated,omitempty"`
	Actual    *float64 `json:"actual,omitempty"`
}

// Variance is Actual minus Estimated; ok is false unless both are known.
func (b BudgetRow) Variance() (float64, bool) {
	if b.Estimated == nil || b.Actual == nil {
		return 0, false
	}
	return *b.Actual - *b.Estimated, true
}

// BudgetComparison lists the first five plans, in input order, that carry
// an estimated and/or current total cost.
func BudgetComparison(plans []planner.MealPlan) []BudgetRow {
	out := make([]BudgetRow, 0, budgetRowLimit)
	for _, p := range plans {
		if p.EstimatedCost == nil && p.CurrentTotalCost == nil {
			continue
		}
		row := BudgetRow{PlanID: p.ID, Name: p.Name}
		if p.EstimatedCost != nil {
			v := float64(*p.EstimatedCost)
			row.Estimated = &v
		}
		if p.CurrentTotalCost != nil {
			v := float64(*p.CurrentTotalCost)
			row.Actual = &v
		}
		out = append(out, row)
		if len(out) == budgetRowLimit {
			break
		}
	}
	return out
}

// Report bundles every derivation for one snapshot.
type Report struct {
	PlanCount   int            `json:"plan_count"`
	Macros      []MacroShare   `json:"macros"`
	Calories    []PlanCalories `json:"calories"`
	WeeklyTrend []TrendBucket  `json:"weekly_trend"`
	Budget      []BudgetRow    `json:"budget"`
	GeneratedAt time.Time      `json:"generated_at"`
}

// Build runs every derivation over plans as of now.
func Build(plans []planner.MealPlan, now time.Time) Report {
	return Report{
		PlanCount:   len(plans),
		Macros:      MacroDistribution(plans),
		Calories:    AverageDailyCalories(plans),
		WeeklyTrend: WeeklyTrend(plans, now),
		Budget:      BudgetComparison(plans),
		GeneratedAt: now,
	}
}
