package planner

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
	"time"

	"meal-insights/internal/llm"
	"meal-insights/internal/shared"

	"github.com/google/uuid"
)

//go:embed mealplan_prompt.md
var mealPlanPrompt string

var mealPlanTemplate = template.Must(template.New("mealplan").Parse(mealPlanPrompt))

const defaultPlanDays = 7

// Request describes the plan a user asked for.
type Request struct {
	Text     string
	DietType string
	Days     int
}

// Generator asks an LLM for a meal plan.
type Generator struct {
	textGen llm.TextGenerator
	now     func() time.Time
}

// NewGenerator creates a new Generator.
func NewGenerator(textGen llm.TextGenerator) *Generator {
	return &Generator{textGen: textGen, now: time.Now}
}

// Generate creates a meal plan from req. The returned metadata is filled in
// even when the model's answer cannot be decoded.
func (g *Generator) Generate(ctx context.Context, req Request) (*MealPlan, shared.AgentMeta, error) {
	meta := shared.AgentMeta{AgentName: "MealPlanner"}
	if strings.TrimSpace(req.Text) == "" {
		return nil, meta, fmt.Errorf("empty meal plan request")
	}
	if req.Days <= 0 {
		req.Days = defaultPlanDays
	}

	var buf bytes.Buffer
	if err := mealPlanTemplate.Execute(&buf, req); err != nil {
		return nil, meta, fmt.Errorf("failed to build meal plan prompt: %w", err)
	}

	start := time.Now()
	resp, err := g.textGen.GenerateContent(ctx, buf.String())
	meta.Latency = time.Since(start)
	if err != nil {
		return nil, meta, fmt.Errorf("failed to generate meal plan from LLM: %w", err)
	}
	meta.Usage = resp.Usage

	var plan MealPlan
	if err := json.Unmarshal([]byte(stripCodeFence(resp.Content)), &plan); err != nil {
		return nil, meta, fmt.Errorf("failed to parse meal plan JSON: %w. Response: %s", err, resp.Content)
	}
	if len(plan.Days) == 0 {
		return nil, meta, fmt.Errorf("generated meal plan has no days")
	}

	plan.ID = uuid.NewString()
	plan.CreatedDate = g.now().UTC().Format(time.RFC3339)
	if plan.Name == "" {
		plan.Name = "Meal plan"
	}
	if plan.DietType == "" {
		plan.DietType = req.DietType
	}
	return &plan, meta, nil
}

// stripCodeFence removes a ```json ... ``` wrapper some models add despite
// being asked not to.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
