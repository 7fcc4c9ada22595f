// Package backend reads entity collections from the hosted backend that owns
// meal plans, nutrition logs and goals.
package backend

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"meal-insights/internal/config"
	"meal-insights/internal/nutrition"
	"meal-insights/internal/planner"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/sync/errgroup"
)

// ErrUnauthorized is returned when the backend rejects our credentials.
var ErrUnauthorized = errors.New("backend rejected credentials")

const (
	entityMealPlan      = "MealPlan"
	entityNutritionLog  = "NutritionLog"
	entityNutritionGoal = "NutritionGoal"

	tokenTTL = 5 * time.Minute
)

// Client is the read side of the hosted backend.
type Client interface {
	ListMealPlans(ctx context.Context) ([]planner.MealPlan, error)
	ListNutritionLogs(ctx context.Context) ([]nutrition.Log, error)
	ListNutritionGoals(ctx context.Context) ([]nutrition.Goal, error)
}

// Snapshot is one consistent-enough read of every collection.
type Snapshot struct {
	Plans     []planner.MealPlan
	Logs      []nutrition.Log
	Goals     []nutrition.Goal
	FetchedAt time.Time
}

// FetchSnapshot reads all collections concurrently. The fetches are
// independent; the first failure cancels the others and is returned.
func FetchSnapshot(ctx context.Context, c Client) (*Snapshot, error) {
	var snap Snapshot
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		plans, err := c.ListMealPlans(ctx)
		snap.Plans = plans
		return err
	})
	g.Go(func() error {
		logs, err := c.ListNutritionLogs(ctx)
		snap.Logs = logs
		return err
	})
	g.Go(func() error {
		goals, err := c.ListNutritionGoals(ctx)
		snap.Goals = goals
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	snap.FetchedAt = time.Now().UTC()
	return &snap, nil
}

// httpClient is the HTTP implementation of Client.
type httpClient struct {
	httpClient *http.Client
	baseURL    string
	appID      string
	apiKey     string
}

// NewClient creates a new backend client.
func NewClient(cfg *config.Config) Client {
	return &httpClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimRight(cfg.BackendURL, "/"),
		appID:      cfg.BackendAppID,
		apiKey:     cfg.BackendAPIKey,
	}
}

func (c *httpClient) ListMealPlans(ctx context.Context) ([]planner.MealPlan, error) {
	var plans []planner.MealPlan
	if err := c.listEntities(ctx, entityMealPlan, &plans); err != nil {
		return nil, err
	}
	return plans, nil
}

func (c *httpClient) ListNutritionLogs(ctx context.Context) ([]nutrition.Log, error) {
	var logs []nutrition.Log
	if err := c.listEntities(ctx, entityNutritionLog, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

func (c *httpClient) ListNutritionGoals(ctx context.Context) ([]nutrition.Goal, error) {
	var goals []nutrition.Goal
	if err := c.listEntities(ctx, entityNutritionGoal, &goals); err != nil {
		return nil, err
	}
	return goals, nil
}

// listEntities GETs one entity collection and decodes the JSON array into out.
func (c *httpClient) listEntities(ctx context.Context, entity string, out interface{}) error {
	token, err := c.createToken()
	if err != nil {
		return fmt.Errorf("failed to create backend token: %w", err)
	}

	endpoint := fmt.Sprintf("%s/api/apps/%s/entities/%s", c.baseURL, url.PathEscape(c.appID), entity)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", entity, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("fetch %s: %w", entity, ErrUnauthorized)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("backend error fetching %s: status %d, body: %s", entity, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", entity, err)
	}
	return nil
}

// createToken signs a short-lived HS256 JWT from an "id:hexsecret" API key.
func (c *httpClient) createToken() (string, error) {
	keyParts := strings.Split(c.apiKey, ":")
	if len(keyParts) != 2 {
		return "", fmt.Errorf("invalid api key format: expected id:secret")
	}

	secret, err := hex.DecodeString(keyParts[1])
	if err != nil {
		return "", fmt.Errorf("failed to decode secret hex: %w", err)
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iat": now.Unix(),
		"exp": now.Add(tokenTTL).Unix(),
		"aud": "apps/" + c.appID,
	})
	token.Header["kid"] = keyParts[0]

	return token.SignedString(secret)
}
