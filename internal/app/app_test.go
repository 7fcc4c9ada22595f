package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"meal-insights/internal/clipper"
	"meal-insights/internal/config"
	"meal-insights/internal/database"
	"meal-insights/internal/grocery"
	"meal-insights/internal/leaderboard"
	"meal-insights/internal/llm"
	"meal-insights/internal/logger"
	"meal-insights/internal/metrics"
	"meal-insights/internal/nutrition"
	"meal-insights/internal/planner"
	"meal-insights/internal/preferences"
	"meal-insights/internal/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

type stubBackend struct {
	plans []planner.MealPlan
	logs  []nutrition.Log
	goals []nutrition.Goal
	err   error
}

func (s *stubBackend) ListMealPlans(ctx context.Context) ([]planner.MealPlan, error) {
	return s.plans, nil
}

func (s *stubBackend) ListNutritionLogs(ctx context.Context) ([]nutrition.Log, error) {
	return s.logs, s.err
}

func (s *stubBackend) ListNutritionGoals(ctx context.Context) ([]nutrition.Goal, error) {
	return s.goals, nil
}

type mockTextGenerator struct {
	response string
	err      error
}

func (m *mockTextGenerator) GenerateContent(ctx context.Context, prompt string) (llm.ContentResponse, error) {
	if m.err != nil {
		return llm.ContentResponse{}, m.err
	}
	return llm.ContentResponse{
		Content: m.response,
		Usage:   shared.TokenUsage{PromptTokens: 10, CompletionTokens: 5, Model: "mock"},
	}, nil
}

func sampleBackend() *stubBackend {
	kcal := func(s string) *planner.Meal { return &planner.Meal{Name: s, Calories: "500-500 kcal", Protein: 20} }
	return &stubBackend{
		plans: []planner.MealPlan{
			{
				ID:          "p1",
				Name:        "Week 1",
				CreatedDate: "2024-03-14",
				Days: []planner.Day{
					{Day: "Monday", Lunch: kcal("Chicken rice"), Dinner: kcal("Broccoli salmon")},
				},
			},
		},
		logs: []nutrition.Log{
			{CreatedBy: "a@x.com", LogDate: "2024-03-14", Calories: 600, Protein: 40},
			{CreatedBy: "b@x.com", LogDate: "2024-03-14", Calories: 400, Protein: 20},
			{CreatedBy: "b@x.com", LogDate: "2024-03-13", Calories: 400, Protein: 20},
		},
		goals: []nutrition.Goal{{CreatedBy: "a@x.com", IsActive: true, TargetCalories: 600}},
	}
}

func newTestApp(t *testing.T, be *stubBackend, gen llm.TextGenerator) *App {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{DatabasePath: filepath.Join(dir, "app.db"), LeaderboardSize: 10}
	db, err := database.NewDB(cfg.DatabasePath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	deps := Deps{
		Backend:     be,
		Plans:       planner.NewPlanRepository(db.SQL, logger.NewNop()),
		Nutrition:   nutrition.NewRepository(db.SQL),
		Groceries:   grocery.NewRepository(db.SQL),
		Preferences: preferences.NewRepository(db.SQL),
		Metrics:     metrics.NewStore(db.SQL),
		Classifier:  grocery.NewClassifier(grocery.DefaultKeywords()),
	}
	if gen != nil {
		deps.Generator = planner.NewGenerator(gen)
		deps.Clipper = clipper.NewClipper(gen)
	}
	a := NewApp(deps, cfg, logger.NewNop())
	a.now = func() time.Time { return testNow }
	return a
}

func TestSync(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		a := newTestApp(t, sampleBackend(), nil)
		res, err := a.Sync(ctx)
		require.NoError(t, err)
		assert.Equal(t, SyncResult{Plans: 1, Logs: 3, Goals: 1}, res)

		plans, err := a.Plans.List(ctx)
		require.NoError(t, err)
		require.Len(t, plans, 1)
		assert.Equal(t, "Week 1", plans[0].Name)
	})

	t.Run("FailureKeepsLocalData", func(t *testing.T) {
		be := sampleBackend()
		a := newTestApp(t, be, nil)
		_, err := a.Sync(ctx)
		require.NoError(t, err)

		be.err = errors.New("backend down")
		be.plans = nil
		_, err = a.Sync(ctx)
		require.Error(t, err)

		plans, err := a.Plans.List(ctx)
		require.NoError(t, err)
		assert.Len(t, plans, 1)
	})
}

func TestGroceryList(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t, sampleBackend(), nil)
	_, err := a.Sync(ctx)
	require.NoError(t, err)

	plan, list, err := a.GroceryList(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "p1", plan.ID)
	assert.Equal(t, []string{"Chicken", "Salmon"}, list[grocery.Proteins])
	assert.Equal(t, []string{"Broccoli"}, list[grocery.Vegetables])
	assert.Equal(t, []string{"Rice"}, list[grocery.Grains])
	assert.Empty(t, list[grocery.Other])

	cached, err := a.Groceries.GetByPlanID(ctx, "p1")
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, list.Count(), cached.Items.Count())

	_, _, err = a.GroceryList(ctx, "missing")
	assert.ErrorIs(t, err, planner.ErrPlanNotFound)
}

func TestLeaderboardFor(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t, sampleBackend(), nil)
	_, err := a.Sync(ctx)
	require.NoError(t, err)

	metric, window, entries, err := a.LeaderboardFor(ctx, "42", "", "")
	require.NoError(t, err)
	assert.Equal(t, leaderboard.MetricMeals, metric)
	assert.Equal(t, leaderboard.WindowWeek, window)
	require.Len(t, entries, 2)
	assert.Equal(t, "b@x.com", entries[0].Email)

	metric, _, entries, err = a.LeaderboardFor(ctx, "42", "goals", "")
	require.NoError(t, err)
	assert.Equal(t, leaderboard.MetricGoals, metric)
	assert.Equal(t, "a@x.com", entries[0].Email)
	assert.Equal(t, 1, entries[0].GoalsMetCount)

	// The explicit metric became the user's default
	metric, _, _, err = a.LeaderboardFor(ctx, "42", "", "")
	require.NoError(t, err)
	assert.Equal(t, leaderboard.MetricGoals, metric)

	_, _, _, err = a.LeaderboardFor(ctx, "42", "bogus", "")
	assert.Error(t, err)
}

func TestAnalytics(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t, sampleBackend(), nil)
	_, err := a.Sync(ctx)
	require.NoError(t, err)

	report, err := a.Analytics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.PlanCount)
	require.Len(t, report.Calories, 1)
	assert.Equal(t, 1000, report.Calories[0].AvgCalories)
	assert.Equal(t, testNow, report.GeneratedAt)
}

func TestGeneratePlan(t *testing.T) {
	ctx := context.Background()

	t.Run("Disabled", func(t *testing.T) {
		a := newTestApp(t, sampleBackend(), nil)
		_, err := a.GeneratePlan(ctx, planner.Request{Text: "fish"})
		assert.ErrorIs(t, err, ErrGenerationDisabled)
	})

	t.Run("SavesPlanAndUsage", func(t *testing.T) {
		gen := &mockTextGenerator{response: `{"name": "Fish week", "days": [{"day": "Monday", "dinner": {"name": "Cod", "calories": "400-500 kcal"}}]}`}
		a := newTestApp(t, sampleBackend(), gen)

		plan, err := a.GeneratePlan(ctx, planner.Request{Text: "fish"})
		require.NoError(t, err)

		stored, err := a.Plans.Get(ctx, plan.ID)
		require.NoError(t, err)
		assert.Equal(t, "Fish week", stored.Name)

		usage, err := a.Usage(ctx, 1)
		require.NoError(t, err)
		require.Len(t, usage.Daily, 1)
		assert.Equal(t, 10, usage.Daily[0].TotalPrompt)
	})

	t.Run("ModelErrorRecordsNothing", func(t *testing.T) {
		a := newTestApp(t, sampleBackend(), &mockTextGenerator{err: fmt.Errorf("quota")})
		_, err := a.GeneratePlan(ctx, planner.Request{Text: "fish"})
		require.Error(t, err)

		usage, err := a.Usage(ctx, 1)
		require.NoError(t, err)
		assert.Empty(t, usage.Daily)
	})
}

func TestImportMeal(t *testing.T) {
	ctx := context.Background()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body><h1>Lentil soup</h1></body></html>"))
	}))
	defer ts.Close()

	a := newTestApp(t, sampleBackend(), &mockTextGenerator{response: `{"name": "Lentil soup", "calories": "300-350 kcal"}`})
	meal, err := a.ImportMeal(ctx, ts.URL)
	require.NoError(t, err)
	assert.Equal(t, "Lentil soup", meal.Name)
}

func TestShouldShowTour(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t, sampleBackend(), nil)

	show, err := a.ShouldShowTour(ctx, "7")
	require.NoError(t, err)
	assert.True(t, show)

	show, err = a.ShouldShowTour(ctx, "7")
	require.NoError(t, err)
	assert.False(t, show)
}

func TestCleanupMetrics(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t, sampleBackend(), nil)
	require.NoError(t, a.Metrics.Record(ctx, metrics.ExecutionMetric{
		AgentName:    "MealPlanner",
		PromptTokens: 1,
		Timestamp:    testNow.AddDate(-1, 0, 0),
	}))

	n, err := a.CleanupMetrics(ctx, 30)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
