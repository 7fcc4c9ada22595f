package app

import (
	"context"
	"fmt"

	"meal-insights/internal/backend"
	"meal-insights/internal/clipper"
	"meal-insights/internal/config"
	"meal-insights/internal/database"
	"meal-insights/internal/grocery"
	"meal-insights/internal/llm"
	"meal-insights/internal/logger"
	"meal-insights/internal/metrics"
	"meal-insights/internal/nutrition"
	"meal-insights/internal/planner"
	"meal-insights/internal/preferences"
)

// Build opens the database and constructs every collaborator from cfg. The
// returned cleanup closes what Build opened.
//
// Plan generation prefers Gemini and recipe import prefers Groq; each falls
// back to the other provider, and both are disabled when neither key is set.
func Build(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, func(), error) {
	keywords, err := grocery.LoadKeywords(cfg.GroceryKeywordsFile)
	if err != nil {
		return nil, nil, err
	}

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	closers := []func() error{db.Close}
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				log.Warn("Cleanup failed", "error", err)
			}
		}
	}

	var planModel, clipModel llm.TextGenerator
	if cfg.GeminiAPIKey != "" {
		gemini, err := llm.NewGeminiClient(ctx, cfg)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		closers = append(closers, gemini.Close)
		planModel, clipModel = gemini, gemini
	}
	if cfg.GroqAPIKey != "" {
		groq := llm.NewGroqClient(cfg, 0.3)
		clipModel = groq
		if planModel == nil {
			planModel = groq
		}
	}

	deps := Deps{
		Backend:     backend.NewClient(cfg),
		Plans:       planner.NewPlanRepository(db.SQL, log),
		Nutrition:   nutrition.NewRepository(db.SQL),
		Groceries:   grocery.NewRepository(db.SQL),
		Preferences: preferences.NewRepository(db.SQL),
		Metrics:     metrics.NewStore(db.SQL),
		Classifier:  grocery.NewClassifier(keywords),
	}
	if planModel != nil {
		deps.Generator = planner.NewGenerator(planModel)
		deps.Clipper = clipper.NewClipper(clipModel)
	} else {
		log.Warn("No LLM API key configured; plan generation and recipe import are disabled")
	}

	return NewApp(deps, cfg, log), cleanup, nil
}
