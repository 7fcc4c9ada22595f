// Package preferences stores per-user UI state such as dismissed onboarding
// steps and leaderboard defaults.
package preferences

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"
)

// Preferences is the persisted preferences record for one user.
type Preferences struct {
	UserID             string    `json:"user_id"`
	TourDismissed      bool      `json:"tour_dismissed"`
	DismissedChecklist []string  `json:"dismissed_checklist,omitempty"`
	LeaderboardMetric  string    `json:"leaderboard_metric"`
	LeaderboardWindow  string    `json:"leaderboard_window"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// Defaults returns the record used for users who have never saved one.
func Defaults(userID string) Preferences {
	return Preferences{
		UserID:            userID,
		LeaderboardMetric: "meals",
		LeaderboardWindow: "week",
	}
}

// ChecklistDismissed reports whether item was dismissed.
func (p Preferences) ChecklistDismissed(item string) bool {
	return slices.Contains(p.DismissedChecklist, item)
}

// Repository persists Preferences in SQLite.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new preferences Repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{db: d}
}

// Get returns the stored record for userID, or Defaults when none exists.
func (r *Repository) Get(ctx context.Context, userID string) (Preferences, error) {
	var data string
	err := r.db.QueryRowContext(ctx, `SELECT data FROM preferences WHERE user_id = ?`, userID).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Defaults(userID), nil
		}
		return Preferences{}, fmt.Errorf("failed to get preferences for %s: %w", userID, err)
	}

	prefs := Defaults(userID)
	if err := json.Unmarshal([]byte(data), &prefs); err != nil {
		return Preferences{}, fmt.Errorf("failed to unmarshal preferences for %s: %w", userID, err)
	}
	prefs.UserID = userID
	return prefs, nil
}

// Save upserts prefs.
func (r *Repository) Save(ctx context.Context, prefs Preferences) error {
	if prefs.UserID == "" {
		return fmt.Errorf("preferences need a user id")
	}
	prefs.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO preferences (user_id, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		prefs.UserID, string(data), prefs.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save preferences for %s: %w", prefs.UserID, err)
	}
	return nil
}

// DismissTour marks the onboarding tour as seen.
func (r *Repository) DismissTour(ctx context.Context, userID string) error {
	prefs, err := r.Get(ctx, userID)
	if err != nil {
		return err
	}
	if prefs.TourDismissed {
		return nil
	}
	prefs.TourDismissed = true
	return r.Save(ctx, prefs)
}

// DismissChecklistItem records item as dismissed. Dismissing twice is a no-op.
func (r *Repository) DismissChecklistItem(ctx context.Context, userID, item string) error {
	prefs, err := r.Get(ctx, userID)
	if err != nil {
		return err
	}
	if prefs.ChecklistDismissed(item) {
		return nil
	}
	prefs.DismissedChecklist = append(prefs.DismissedChecklist, item)
	return r.Save(ctx, prefs)
}
