package planner

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"meal-insights/internal/logger"
)

// ErrPlanNotFound is returned when no plan has the requested id.
var ErrPlanNotFound = errors.New("meal plan not found")

// PlanRepository is a database-backed repository for meal plans.
// Plans keep the order in which the backend returned them.
type PlanRepository struct {
	db  *sql.DB
	log *logger.Logger
}

// NewPlanRepository creates a new PlanRepository.
func NewPlanRepository(d *sql.DB, log *logger.Logger) *PlanRepository {
	return &PlanRepository{db: d, log: log}
}

// Save inserts or updates a single plan. New plans are appended to the end.
func (r *PlanRepository) Save(ctx context.Context, plan MealPlan) error {
	data, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("failed to marshal meal plan %s: %w", plan.ID, err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO meal_plans (id, position, name, plan_data, created_date, synced_at)
		VALUES (?, (SELECT COALESCE(MAX(position), -1) + 1 FROM meal_plans), ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			plan_data = excluded.plan_data,
			created_date = excluded.created_date,
			synced_at = excluded.synced_at`,
		plan.ID, plan.Name, string(data), plan.CreatedDate, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save meal plan %s: %w", plan.ID, err)
	}
	return nil
}

// ReplaceAll swaps the stored collection for a fresh backend snapshot.
func (r *PlanRepository) ReplaceAll(ctx context.Context, plans []MealPlan) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM meal_plans`); err != nil {
		return fmt.Errorf("failed to clear meal plans: %w", err)
	}

	now := time.Now().UTC()
	for i, plan := range plans {
		data, err := json.Marshal(plan)
		if err != nil {
			return fmt.Errorf("failed to marshal meal plan %s: %w", plan.ID, err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO meal_plans (id, position, name, plan_data, created_date, synced_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			plan.ID, i, plan.Name, string(data), plan.CreatedDate, now); err != nil {
			return fmt.Errorf("failed to insert meal plan %s: %w", plan.ID, err)
		}
	}

	return tx.Commit()
}

// Get retrieves a plan by its id.
func (r *PlanRepository) Get(ctx context.Context, id string) (*MealPlan, error) {
	var data string
	err := r.db.QueryRowContext(ctx, `SELECT plan_data FROM meal_plans WHERE id = ?`, id).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlanNotFound
		}
		return nil, fmt.Errorf("failed to get meal plan %s: %w", id, err)
	}

	var plan MealPlan
	if err := json.Unmarshal([]byte(data), &plan); err != nil {
		return nil, fmt.Errorf("failed to unmarshal meal plan %s: %w", id, err)
	}
	return &plan, nil
}

// List returns every stored plan in backend order. Rows that fail to decode
// are skipped with a warning.
func (r *PlanRepository) List(ctx context.Context) ([]MealPlan, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, plan_data FROM meal_plans ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to list meal plans: %w", err)
	}
	defer rows.Close()

	var plans []MealPlan
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("failed to scan meal plan: %w", err)
		}
		var plan MealPlan
		if err := json.Unmarshal([]byte(data), &plan); err != nil {
			r.log.Warn("skipping undecodable meal plan", "id", id, "error", err)
			continue
		}
		plans = append(plans, plan)
	}
	return plans, rows.Err()
}
