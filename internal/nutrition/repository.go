package nutrition

import (
	"context"
	"database/sql"
	"fmt"
)

// Repository stores the latest backend snapshot of logs and goals.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new nutrition Repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{db: d}
}

// ReplaceLogs swaps the stored logs for logs, keeping their order.
func (r *Repository) ReplaceLogs(ctx context.Context, logs []Log) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM nutrition_logs`); err != nil {
		return fmt.Errorf("failed to clear nutrition logs: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO nutrition_logs (created_by, log_date, calories, protein, servings)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare log insert: %w", err)
	}
	defer stmt.Close()

	for _, l := range logs {
		if _, err := stmt.ExecContext(ctx, l.CreatedBy, l.LogDate, l.Calories, l.Protein, l.Servings); err != nil {
			return fmt.Errorf("failed to insert nutrition log for %s: %w", l.CreatedBy, err)
		}
	}
	return tx.Commit()
}

// ReplaceGoals swaps the stored goals for goals, keeping their order.
func (r *Repository) ReplaceGoals(ctx context.Context, goals []Goal) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM nutrition_goals`); err != nil {
		return fmt.Errorf("failed to clear nutrition goals: %w", err)
	}
	for _, g := range goals {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO nutrition_goals (created_by, is_active, target_calories)
			VALUES (?, ?, ?)`, g.CreatedBy, g.IsActive, g.TargetCalories); err != nil {
			return fmt.Errorf("failed to insert nutrition goal for %s: %w", g.CreatedBy, err)
		}
	}
	return tx.Commit()
}

// ListLogs returns every stored log in insertion order.
func (r *Repository) ListLogs(ctx context.Context) ([]Log, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT created_by, log_date, calories, protein, servings
		FROM nutrition_logs ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list nutrition logs: %w", err)
	}
	defer rows.Close()

	var logs []Log
	for rows.Next() {
		var (
			l                           Log
			calories, protein, servings sql.NullFloat64
		)
		if err := rows.Scan(&l.CreatedBy, &l.LogDate, &calories, &protein, &servings); err != nil {
			return nil, fmt.Errorf("failed to scan nutrition log: %w", err)
		}
		l.Calories = calories.Float64
		l.Protein = protein.Float64
		l.Servings = servings.Float64
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// ListGoals returns every stored goal in insertion order.
func (r *Repository) ListGoals(ctx context.Context) ([]Goal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT created_by, is_active, target_calories
		FROM nutrition_goals ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list nutrition goals: %w", err)
	}
	defer rows.Close()

	var goals []Goal
	for rows.Next() {
		var (
			g      Goal
			target sql.NullFloat64
		)
		if err := rows.Scan(&g.CreatedBy, &g.IsActive, &target); err != nil {
			return nil, fmt.Errorf("failed to scan nutrition goal: %w", err)
		}
		g.TargetCalories = target.Float64
		goals = append(goals, g)
	}
	return goals, rows.Err()
}
