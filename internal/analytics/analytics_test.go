package analytics

import (
	"encoding/json"
	"testing"
	"time"

	"meal-insights/internal/planner"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func qty(v float64) *planner.Quantity {
	q := planner.Quantity(v)
	return &q
}

func TestMacroDistribution(t *testing.T) {
	t.Run("NoPlans", func(t *testing.T) {
		got := MacroDistribution(nil)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("NoMacroData", func(t *testing.T) {
		plans := []planner.MealPlan{{Days: []planner.Day{{Day: "Monday", Lunch: &planner.Meal{Name: "Soup"}}}}}
		assert.Empty(t, MacroDistribution(plans))
	})

	t.Run("PlanMacrosWinOverMeals", func(t *testing.T) {
		plans := []planner.MealPlan{
			{
				Macros: &planner.Macros{Protein: 100, Carbs: 200, Fat: 100},
				Days: []planner.Day{{
					Lunch: &planner.Meal{Protein: 1000},
				}},
			},
		}
		got := MacroDistribution(plans)
		require.Len(t, got, 3)
		assert.Equal(t, MacroShare{Name: "Protein", Grams: 100, Percent: 25}, got[0])
		assert.Equal(t, MacroShare{Name: "Carbs", Grams: 200, Percent: 50}, got[1])
		assert.Equal(t, MacroShare{Name: "Fat", Grams: 100, Percent: 25}, got[2])
	})

	t.Run("FallsBackToMeals", func(t *testing.T) {
		plans := []planner.MealPlan{
			{Days: []planner.Day{
				{Breakfast: &planner.Meal{Protein: 20, Carbs: 40}, Dinner: &planner.Meal{Protein: 20, Fat: 20}},
				{Snacks: &planner.Meal{Carbs: 10}},
			}},
			{Macros: &planner.Macros{Protein: 10}},
		}
		got := MacroDistribution(plans)
		require.Len(t, got, 3)
		assert.Equal(t, 50.0, got[0].Grams)
		assert.Equal(t, 50.0, got[1].Grams)
		assert.Equal(t, 20.0, got[2].Grams)
		assert.Equal(t, 42, got[0].Percent)
		assert.Equal(t, 17, got[2].Percent)
	})
}

func TestDayCalories(t *testing.T) {
	day := planner.Day{
		Breakfast: &planner.Meal{Calories: "400-450 kcal"},
		Lunch:     &planner.Meal{Calories: "invalid"},
		Dinner:    &planner.Meal{Calories: "600-700"},
		Snacks:    &planner.Meal{},
	}
	assert.Equal(t, 1000, DayCalories(day))
	assert.Equal(t, 0, DayCalories(planner.Day{Lunch: &planner.Meal{Calories: "invalid"}}))
}

func TestAverageDailyCalories(t *testing.T) {
	plans := []planner.MealPlan{
		{
			ID: "p1", Name: "One",
			Days: []planner.Day{
				{Breakfast: &planner.Meal{Calories: "400-450 kcal"}, Dinner: &planner.Meal{Calories: "601-700 kcal"}},
				{Lunch: &planner.Meal{Calories: "500-550 kcal"}},
				// Days without calorie data are not part of the average
				{Lunch: &planner.Meal{Calories: "invalid"}},
			},
		},
		{ID: "p2", Name: "Empty"},
	}

	got := AverageDailyCalories(plans)
	require.Len(t, got, 2)
	assert.Equal(t, PlanCalories{PlanID: "p1", Name: "One", AvgCalories: 751}, got[0])
	assert.Equal(t, PlanCalories{PlanID: "p2", Name: "Empty", AvgCalories: 0}, got[1])
}

func TestWeeklyTrend(t *testing.T) {
	daysAgo := func(d int) string {
		return now.Add(-time.Duration(d) * 24 * time.Hour).Format(time.RFC3339)
	}
	plans := []planner.MealPlan{
		{CreatedDate: daysAgo(0)},
		{CreatedDate: daysAgo(6)},
		{CreatedDate: daysAgo(7)},
		{CreatedDate: daysAgo(20)},
		{CreatedDate: daysAgo(28)},
		{CreatedDate: daysAgo(34)},
		{CreatedDate: daysAgo(35)},
		{CreatedDate: now.Add(time.Hour).Format(time.RFC3339)},
		{CreatedDate: "not a date"},
		{},
	}

	got := WeeklyTrend(plans, now)
	assert.Equal(t, []TrendBucket{
		{Label: "4 Weeks Ago", Count: 2},
		{Label: "3 Weeks Ago", Count: 0},
		{Label: "2 Weeks Ago", Count: 1},
		{Label: "Last Week", Count: 1},
		{Label: "This Week", Count: 2},
	}, got)
}

func TestWeeklyTrendDropsOldPlans(t *testing.T) {
	plans := []planner.MealPlan{{CreatedDate: now.AddDate(0, 0, -35).Format("2006-01-02T15:04:05.000000")}}

	total := 0
	for _, b := range WeeklyTrend(plans, now) {
		total += b.Count
	}
	assert.Equal(t, 0, total)
}

func TestBudgetComparison(t *testing.T) {
	var plans []planner.MealPlan
	plans = append(plans, planner.MealPlan{ID: "none"})
	plans = append(plans, planner.MealPlan{ID: "est", EstimatedCost: qty(50)})
	plans = append(plans, planner.MealPlan{ID: "both", EstimatedCost: qty(80), CurrentTotalCost: qty(95.5)})
	for _, id := range []string{"c1", "c2", "c3", "c4"} {
		plans = append(plans, planner.MealPlan{ID: id, CurrentTotalCost: qty(10)})
	}

	got := BudgetComparison(plans)
	require.Len(t, got, 5)
	assert.Equal(t, "est", got[0].PlanID)
	assert.Equal(t, "both", got[1].PlanID)
	assert.Equal(t, "c3", got[4].PlanID)

	_, ok := got[0].Variance()
	assert.False(t, ok)
	v, ok := got[1].Variance()
	require.True(t, ok)
	assert.InDelta(t, 15.5, v, 1e-9)

	assert.Empty(t, BudgetComparison(nil))
}

func TestBuildFromBackendJSON(t *testing.T) {
	raw := `[{
		"id": "p1",
		"name": "High protein",
		"diet_type": "balanced",
		"created_date": "2024-02-28T09:30:00.000000",
		"estimated_cost": "120.50",
		"days": [
			{"day": "Monday",
			 "breakfast": {"name": "Eggs on toast", "calories": "350-400 kcal", "protein": "25g", "carbs": 30, "fat": "12g"},
			 "dinner": {"name": "Chicken and rice", "calories": "bad", "protein": 40, "carbs": "n/a"}}
		]
	}]`
	var plans []planner.MealPlan
	require.NoError(t, json.Unmarshal([]byte(raw), &plans))

	report := Build(plans, now)
	assert.Equal(t, 1, report.PlanCount)
	require.Len(t, report.Macros, 3)
	assert.Equal(t, 65.0, report.Macros[0].Grams)
	assert.Equal(t, 30.0, report.Macros[1].Grams)
	assert.Equal(t, 12.0, report.Macros[2].Grams)
	assert.Equal(t, 350, report.Calories[0].AvgCalories)
	assert.Equal(t, 1, report.WeeklyTrend[4].Count)
	require.Len(t, report.Budget, 1)
	assert.Equal(t, 120.5, *report.Budget[0].Estimated)
	assert.Nil(t, report.Budget[0].Actual)
}
