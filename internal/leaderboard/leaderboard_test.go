package leaderboard

import (
	"math"
	"testing"
	"time"

	"meal-insights/internal/nutrition"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC)

func TestRankSingleLog(t *testing.T) {
	logs := []nutrition.Log{
		{CreatedBy: "a@x.com", LogDate: "2024-01-01", Calories: 500, Servings: 1},
	}

	got := Rank(logs, nil, Query{Metric: MetricMeals, Window: WindowWeek, Now: now})
	require.Len(t, got, 1)
	assert.Equal(t, Entry{Email: "a@x.com", TotalMeals: 1, TotalCalories: 500, Streak: 1}, got[0])
}

func TestRankRollup(t *testing.T) {
	logs := []nutrition.Log{
		{CreatedBy: "a@x.com", LogDate: "2024-01-01", Calories: 500, Protein: 30, Servings: 2},
		{CreatedBy: "a@x.com", LogDate: "2024-01-01", Calories: 200},
		{CreatedBy: "a@x.com", LogDate: "2024-01-02", Protein: 10},
	}

	got := Rank(logs, nil, Query{Metric: MetricMeals, Window: WindowWeek, Now: now})
	require.Len(t, got, 1)
	e := got[0]
	assert.Equal(t, 3, e.TotalMeals)
	assert.Equal(t, 1200.0, e.TotalCalories)
	assert.Equal(t, 70.0, e.TotalProtein)
	assert.Equal(t, 2, e.Streak, "streak counts distinct days")
	assert.Equal(t, 400, e.AverageCaloriesPerMeal())
}

func TestRankWindow(t *testing.T) {
	logs := []nutrition.Log{
		{CreatedBy: "old@x.com", LogDate: "2023-12-20", Calories: 500},
		{CreatedBy: "edge@x.com", LogDate: "2023-12-27", Calories: 500},
		{CreatedBy: "month@x.com", LogDate: "2023-12-10", Calories: 500},
	}

	week := Rank(logs, nil, Query{Metric: MetricMeals, Window: WindowWeek, Now: now})
	require.Len(t, week, 1)
	assert.Equal(t, "edge@x.com", week[0].Email)

	month := Rank(logs, nil, Query{Metric: MetricMeals, Window: WindowMonth, Now: now})
	assert.Len(t, month, 3)
}

func TestRankWindowUsesUTCDate(t *testing.T) {
	// 2024-01-10 05:00 at UTC+10 is still 2024-01-09 in UTC
	local := time.Date(2024, 1, 10, 5, 0, 0, 0, time.FixedZone("UTC+10", 10*60*60))
	logs := []nutrition.Log{
		{CreatedBy: "a@x.com", LogDate: "2024-01-02", Calories: 500},
		{CreatedBy: "b@x.com", LogDate: "2024-01-01", Calories: 500},
	}

	got := Rank(logs, nil, Query{Metric: MetricMeals, Window: WindowWeek, Now: local})
	require.Len(t, got, 1)
	assert.Equal(t, "a@x.com", got[0].Email)
	assert.Equal(t, got, Rank(logs, nil, Query{Metric: MetricMeals, Window: WindowWeek, Now: local.UTC()}))
}

func TestRankUndatedLogs(t *testing.T) {
	logs := []nutrition.Log{
		{CreatedBy: "a@x.com", LogDate: "", Calories: 900},
		{CreatedBy: "b@x.com", LogDate: "2024-01-02", Calories: 100},
	}

	got := Rank(logs, nil, Query{Metric: MetricMeals, Window: WindowWeek, Now: now})
	require.Len(t, got, 1)
	assert.Equal(t, "b@x.com", got[0].Email)
}

func TestRankMissingCaloriesStillCountsMeal(t *testing.T) {
	logs := []nutrition.Log{
		{CreatedBy: "a@x.com", LogDate: "2024-01-02"},
		{CreatedBy: "a@x.com", LogDate: "2024-01-02", Calories: 300},
		{CreatedBy: "a@x.com", LogDate: "not-a-date", Calories: 900},
	}

	got := Rank(logs, nil, Query{Metric: MetricMeals, Window: WindowWeek, Now: now})
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].TotalMeals)
	assert.Equal(t, 300.0, got[0].TotalCalories)
	assert.Equal(t, 150, got[0].AverageCaloriesPerMeal())
}

func TestRankStableTieBreak(t *testing.T) {
	logs := []nutrition.Log{
		{CreatedBy: "second@x.com", LogDate: "2024-01-02"},
		{CreatedBy: "first@x.com", LogDate: "2024-01-02"},
		{CreatedBy: "top@x.com", LogDate: "2024-01-02"},
		{CreatedBy: "top@x.com", LogDate: "2024-01-03"},
	}

	got := Rank(logs, nil, Query{Metric: MetricMeals, Window: WindowWeek, Now: now})
	require.Len(t, got, 3)
	assert.Equal(t, "top@x.com", got[0].Email)
	assert.Equal(t, "second@x.com", got[1].Email)
	assert.Equal(t, "first@x.com", got[2].Email)
}

func TestRankMetrics(t *testing.T) {
	logs := []nutrition.Log{
		{CreatedBy: "meals@x.com", LogDate: "2024-01-02", Protein: 5},
		{CreatedBy: "meals@x.com", LogDate: "2024-01-02", Protein: 5},
		{CreatedBy: "meals@x.com", LogDate: "2024-01-02", Protein: 5},
		{CreatedBy: "protein@x.com", LogDate: "2024-01-02", Protein: 90},
		{CreatedBy: "streak@x.com", LogDate: "2024-01-01"},
		{CreatedBy: "streak@x.com", LogDate: "2023-12-31"},
		{CreatedBy: "goals@x.com", LogDate: "2024-01-02", Calories: 2000},
	}
	goals := []nutrition.Goal{{CreatedBy: "goals@x.com", IsActive: true, TargetCalories: 2000}}

	tests := []struct {
		metric Metric
		want   string
	}{
		{MetricMeals, "meals@x.com"},
		{MetricProtein, "protein@x.com"},
		{MetricStreak, "streak@x.com"},
		{MetricGoals, "goals@x.com"},
	}
	for _, tt := range tests {
		t.Run(string(tt.metric), func(t *testing.T) {
			got := Rank(logs, goals, Query{Metric: tt.metric, Window: WindowWeek, Now: now})
			require.NotEmpty(t, got)
			assert.Equal(t, tt.want, got[0].Email)
		})
	}
}

func TestRankGoalsMet(t *testing.T) {
	logs := []nutrition.Log{
		// Day totals: 1800 (low bound), 2200 (high bound), 1799, 2201, 2000 over two logs
		{CreatedBy: "a@x.com", LogDate: "2023-12-28", Calories: 1800},
		{CreatedBy: "a@x.com", LogDate: "2023-12-29", Calories: 1100, Servings: 2},
		{CreatedBy: "a@x.com", LogDate: "2023-12-30", Calories: 1799},
		{CreatedBy: "a@x.com", LogDate: "2023-12-31", Calories: 2201},
		{CreatedBy: "a@x.com", LogDate: "2024-01-01", Calories: 1000},
		{CreatedBy: "a@x.com", LogDate: "2024-01-01", Calories: 1000},
	}
	goals := []nutrition.Goal{
		{CreatedBy: "a@x.com", IsActive: false, TargetCalories: 1000},
		{CreatedBy: "a@x.com", IsActive: true, TargetCalories: 2000},
	}

	got := Rank(logs, goals, Query{Metric: MetricGoals, Window: WindowWeek, Now: now})
	require.Len(t, got, 1)
	assert.Equal(t, 3, got[0].GoalsMetCount)

	noTarget := []nutrition.Goal{{CreatedBy: "a@x.com", IsActive: true}}
	got = Rank(logs, noTarget, Query{Metric: MetricGoals, Window: WindowWeek, Now: now})
	assert.Equal(t, 0, got[0].GoalsMetCount)
}

func TestRankLimit(t *testing.T) {
	var logs []nutrition.Log
	for i := 0; i < 15; i++ {
		logs = append(logs, nutrition.Log{CreatedBy: string(rune('a'+i)) + "@x.com", LogDate: "2024-01-02"})
	}

	assert.Len(t, Rank(logs, nil, Query{Metric: MetricMeals, Window: WindowWeek, Now: now}), DefaultLimit)
	assert.Len(t, Rank(logs, nil, Query{Metric: MetricMeals, Window: WindowWeek, Now: now, Limit: 3}), 3)
	assert.Empty(t, Rank(nil, nil, Query{Metric: MetricMeals, Window: WindowWeek, Now: now}))
}

func TestParse(t *testing.T) {
	m, err := ParseMetric("protein")
	require.NoError(t, err)
	assert.Equal(t, MetricProtein, m)
	_, err = ParseMetric("calories")
	assert.Error(t, err)

	w, err := ParseWindow("month")
	require.NoError(t, err)
	assert.Equal(t, 30, w.Days())
	_, err = ParseWindow("year")
	assert.Error(t, err)
}

func TestRound(t *testing.T) {
	assert.Equal(t, 0, Round(math.NaN()))
	assert.Equal(t, 0, Round(math.Inf(1)))
	assert.Equal(t, 3, Round(2.5))
	assert.Equal(t, 0, Entry{TotalCalories: 100}.AverageCaloriesPerMeal())
}
