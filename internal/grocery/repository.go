package grocery

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SavedList is a grocery list computed for a meal plan.
type SavedList struct {
	ID         string    `json:"id"`
	MealPlanID string    `json:"meal_plan_id"`
	Items      List      `json:"items"`
	CreatedAt  time.Time `json:"created_at"`
}

// Repository caches computed grocery lists, one per meal plan.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new grocery list repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{db: d}
}

// Save stores items for mealPlanID, replacing any previous list for it.
func (r *Repository) Save(ctx context.Context, mealPlanID string, items List) (*SavedList, error) {
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal grocery list items: %w", err)
	}

	saved := &SavedList{
		ID:         uuid.NewString(),
		MealPlanID: mealPlanID,
		Items:      items,
		CreatedAt:  time.Now().UTC(),
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO grocery_lists (id, meal_plan_id, items, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(meal_plan_id) DO UPDATE SET
			id = excluded.id,
			items = excluded.items,
			created_at = excluded.created_at`,
		saved.ID, saved.MealPlanID, string(itemsJSON), saved.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert grocery list: %w", err)
	}
	return saved, nil
}

// GetByPlanID retrieves the list for a meal plan. It returns nil, nil
// when none has been saved.
func (r *Repository) GetByPlanID(ctx context.Context, mealPlanID string) (*SavedList, error) {
	var (
		saved     SavedList
		itemsJSON string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, meal_plan_id, items, created_at
		FROM grocery_lists WHERE meal_plan_id = ?`, mealPlanID).
		Scan(&saved.ID, &saved.MealPlanID, &itemsJSON, &saved.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get grocery list by meal plan ID: %w", err)
	}

	if err := json.Unmarshal([]byte(itemsJSON), &saved.Items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal grocery list items: %w", err)
	}
	return &saved, nil
}

// DeleteByMealPlanID deletes the list for a meal plan.
func (r *Repository) DeleteByMealPlanID(ctx context.Context, mealPlanID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM grocery_lists WHERE meal_plan_id = ?`, mealPlanID); err != nil {
		return fmt.Errorf("failed to delete grocery list: %w", err)
	}
	return nil
}
