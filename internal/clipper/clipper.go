package clipper

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"text/template"
	"time"

	"meal-insights/internal/llm"
	"meal-insights/internal/planner"
	"meal-insights/internal/shared"

	"github.com/PuerkitoBio/goquery"
)

// ErrNoRecipe is returned when the page did not describe a dish.
var ErrNoRecipe = errors.New("no recipe found on page")

// maxPageChars caps the page text sent to the model.
const maxPageChars = 12000

//go:embed recipe_prompt.md
var recipePrompt string

var recipeTemplate = template.Must(template.New("recipe").Parse(recipePrompt))

// Clipper turns recipe web pages into meals.
type Clipper struct {
	httpClient *http.Client
	textGen    llm.TextGenerator
}

// NewClipper creates a new Clipper instance.
func NewClipper(textGen llm.TextGenerator) *Clipper {
	return &Clipper{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		textGen:    textGen,
	}
}

// ImportMeal fetches url, extracts the dish with the LLM and returns it as a
// Meal. The metadata is filled in whenever the model was called.
func (c *Clipper) ImportMeal(ctx context.Context, url string) (*planner.Meal, shared.AgentMeta, error) {
	meta := shared.AgentMeta{AgentName: "RecipeClipper"}

	content, err := c.fetchAndCleanHTML(ctx, url)
	if err != nil {
		return nil, meta, fmt.Errorf("failed to fetch content: %w", err)
	}
	if content == "" {
		return nil, meta, ErrNoRecipe
	}

	var buf bytes.Buffer
	if err := recipeTemplate.Execute(&buf, content); err != nil {
		return nil, meta, fmt.Errorf("failed to build recipe prompt: %w", err)
	}

	start := time.Now()
	resp, err := c.textGen.GenerateContent(ctx, buf.String())
	meta.Latency = time.Since(start)
	if err != nil {
		return nil, meta, fmt.Errorf("ai extraction failed: %w", err)
	}
	meta.Usage = resp.Usage

	var meal planner.Meal
	if err := json.Unmarshal([]byte(trimJSON(resp.Content)), &meal); err != nil {
		return nil, meta, fmt.Errorf("failed to parse AI response: %w. Response: %s", err, resp.Content)
	}
	meal.Name = strings.TrimSpace(meal.Name)
	if meal.Name == "" {
		return nil, meta, ErrNoRecipe
	}
	return &meal, meta, nil
}

func (c *Clipper) fetchAndCleanHTML(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch URL: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", err
	}

	// Remove noise to save LLM tokens
	doc.Find("script, style, nav, header, footer, iframe, form, .ads, #ads, .comments").Remove()

	text := strings.Join(strings.Fields(doc.Find("body").Text()), " ")
	if len(text) > maxPageChars {
		text = text[:maxPageChars]
	}
	return text, nil
}

// trimJSON cuts anything outside the outermost braces, such as a code fence.
func trimJSON(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return s
	}
	return s[start : end+1]
}
