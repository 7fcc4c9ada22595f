// Package app wires the repositories, aggregators and LLM collaborators into
// the operations exposed by the CLI and the Telegram bot.
package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"meal-insights/internal/analytics"
	"meal-insights/internal/backend"
	"meal-insights/internal/clipper"
	"meal-insights/internal/config"
	"meal-insights/internal/grocery"
	"meal-insights/internal/leaderboard"
	"meal-insights/internal/logger"
	"meal-insights/internal/metrics"
	"meal-insights/internal/nutrition"
	"meal-insights/internal/planner"
	"meal-insights/internal/preferences"
	"meal-insights/internal/shared"
)

// ErrGenerationDisabled is returned by LLM-backed operations when no model
// is configured.
var ErrGenerationDisabled = errors.New("no LLM configured")

// Deps are the collaborators an App is built from. Generator and Clipper may
// be nil.
type Deps struct {
	Backend     backend.Client
	Plans       *planner.PlanRepository
	Nutrition   *nutrition.Repository
	Groceries   *grocery.Repository
	Preferences *preferences.Repository
	Metrics     *metrics.Store
	Classifier  *grocery.Classifier
	Generator   *planner.Generator
	Clipper     *clipper.Clipper
}

// App holds the application's dependencies.
type App struct {
	Deps
	cfg *config.Config
	log *logger.Logger
	now func() time.Time
}

// NewApp creates and initializes a new App instance.
func NewApp(deps Deps, cfg *config.Config, log *logger.Logger) *App {
	return &App{
		Deps: deps,
		cfg:  cfg,
		log:  log,
		now:  time.Now,
	}
}

// SyncResult counts what a sync stored.
type SyncResult struct {
	Plans int
	Logs  int
	Goals int
}

// Sync pulls every collection from the backend and replaces the local copies.
// Nothing is replaced unless all collections were fetched.
func (a *App) Sync(ctx context.Context) (SyncResult, error) {
	snap, err := backend.FetchSnapshot(ctx, a.Backend)
	if err != nil {
		return SyncResult{}, fmt.Errorf("failed to fetch backend snapshot: %w", err)
	}

	if err := a.Plans.ReplaceAll(ctx, snap.Plans); err != nil {
		return SyncResult{}, err
	}
	if err := a.Nutrition.ReplaceLogs(ctx, snap.Logs); err != nil {
		return SyncResult{}, err
	}
	if err := a.Nutrition.ReplaceGoals(ctx, snap.Goals); err != nil {
		return SyncResult{}, err
	}

	res := SyncResult{Plans: len(snap.Plans), Logs: len(snap.Logs), Goals: len(snap.Goals)}
	a.log.Info("Backend sync complete", "plans", res.Plans, "logs", res.Logs, "goals", res.Goals)
	return res, nil
}

// GroceryList builds the categorised list for a stored plan and caches it.
func (a *App) GroceryList(ctx context.Context, planID string) (*planner.MealPlan, grocery.List, error) {
	plan, err := a.Plans.Get(ctx, planID)
	if err != nil {
		return nil, nil, err
	}

	list := a.Classifier.Aggregate(*plan)
	if _, err := a.Groceries.Save(ctx, plan.ID, list); err != nil {
		// The list is still valid; only the cached copy is stale.
		a.log.Warn("Failed to cache grocery list", "plan_id", plan.ID, "error", err)
	}
	return plan, list, nil
}

// Leaderboard ranks stored logs as of now.
func (a *App) Leaderboard(ctx context.Context, metric leaderboard.Metric, window leaderboard.Window) ([]leaderboard.Entry, error) {
	logs, err := a.Nutrition.ListLogs(ctx)
	if err != nil {
		return nil, err
	}
	goals, err := a.Nutrition.ListGoals(ctx)
	if err != nil {
		return nil, err
	}
	return leaderboard.Rank(logs, goals, leaderboard.Query{
		Metric: metric,
		Window: window,
		Limit:  a.cfg.LeaderboardSize,
		Now:    a.now(),
	}), nil
}

// LeaderboardFor resolves metric and window for userID. Empty arguments fall
// back to the user's saved defaults; explicit ones become the new defaults.
func (a *App) LeaderboardFor(ctx context.Context, userID, metricArg, windowArg string) (leaderboard.Metric, leaderboard.Window, []leaderboard.Entry, error) {
	prefs, err := a.Preferences.Get(ctx, userID)
	if err != nil {
		return "", "", nil, err
	}

	changed := false
	if metricArg != "" && metricArg != prefs.LeaderboardMetric {
		prefs.LeaderboardMetric, changed = metricArg, true
	}
	if windowArg != "" && windowArg != prefs.LeaderboardWindow {
		prefs.LeaderboardWindow, changed = windowArg, true
	}

	metric, err := leaderboard.ParseMetric(prefs.LeaderboardMetric)
	if err != nil {
		return "", "", nil, err
	}
	window, err := leaderboard.ParseWindow(prefs.LeaderboardWindow)
	if err != nil {
		return "", "", nil, err
	}

	if changed {
		if err := a.Preferences.Save(ctx, prefs); err != nil {
			a.log.Warn("Failed to save leaderboard defaults", "user_id", userID, "error", err)
		}
	}

	entries, err := a.Leaderboard(ctx, metric, window)
	return metric, window, entries, err
}

// Analytics builds the report over every stored plan.
func (a *App) Analytics(ctx context.Context) (analytics.Report, error) {
	plans, err := a.Plans.List(ctx)
	if err != nil {
		return analytics.Report{}, err
	}
	return analytics.Build(plans, a.now()), nil
}

// GeneratePlan asks the LLM for a plan, stores it and records usage.
func (a *App) GeneratePlan(ctx context.Context, req planner.Request) (*planner.MealPlan, error) {
	if a.Generator == nil {
		return nil, ErrGenerationDisabled
	}

	plan, meta, err := a.Generator.Generate(ctx, req)
	a.recordUsage(ctx, meta)
	if err != nil {
		return nil, fmt.Errorf("failed to generate plan: %w", err)
	}

	if err := a.Plans.Save(ctx, *plan); err != nil {
		return nil, err
	}
	a.log.Info("Meal plan generated", "plan_id", plan.ID, "days", len(plan.Days), "usage", meta.Summary())
	return plan, nil
}

// ImportMeal extracts a meal from a recipe page and records usage.
func (a *App) ImportMeal(ctx context.Context, url string) (*planner.Meal, error) {
	if a.Clipper == nil {
		return nil, ErrGenerationDisabled
	}

	meal, meta, err := a.Clipper.ImportMeal(ctx, url)
	a.recordUsage(ctx, meta)
	if err != nil {
		return nil, fmt.Errorf("failed to import recipe: %w", err)
	}
	a.log.Info("Recipe imported", "url", url, "meal", meal.Name)
	return meal, nil
}

// ShouldShowTour reports whether userID still needs the onboarding tour and
// marks it as shown.
func (a *App) ShouldShowTour(ctx context.Context, userID string) (bool, error) {
	prefs, err := a.Preferences.Get(ctx, userID)
	if err != nil {
		return false, err
	}
	if prefs.TourDismissed {
		return false, nil
	}
	if err := a.Preferences.DismissTour(ctx, userID); err != nil {
		return false, err
	}
	return true, nil
}

// Usage is the admin view of LLM consumption and process health.
type Usage struct {
	Daily  []metrics.DailyUsage
	Health metrics.SysHealth
}

// Usage reports token usage for the last days.
func (a *App) Usage(ctx context.Context, days int) (Usage, error) {
	daily, err := a.Metrics.GetDailyUsage(ctx, days)
	if err != nil {
		return Usage{}, err
	}
	return Usage{
		Daily:  daily,
		Health: metrics.GetSysHealth(filepath.Dir(a.cfg.DatabasePath)),
	}, nil
}

// CleanupMetrics drops usage records older than days.
func (a *App) CleanupMetrics(ctx context.Context, days int) (int64, error) {
	n, err := a.Metrics.Cleanup(ctx, days)
	if err != nil {
		return 0, err
	}
	a.log.Info("Metrics cleaned up", "removed", n, "older_than_days", days)
	return n, nil
}

func (a *App) recordUsage(ctx context.Context, meta shared.AgentMeta) {
	if err := a.Metrics.RecordMeta(ctx, meta); err != nil {
		a.log.Warn("Failed to record metrics", "agent", meta.AgentName, "error", err)
	}
}
