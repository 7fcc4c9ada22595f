// Package nutrition holds the per-user nutrition log and goal records owned
// by the hosted backend, plus their local snapshot repository.
package nutrition

import (
	"encoding/json"
	"time"

	"meal-insights/internal/planner"
)

// DateLayout is the format of Log.LogDate.
const DateLayout = "2006-01-02"

// Log is one logged meal. Zero Calories/Protein mean the value was absent;
// zero Servings counts as one serving.
type Log struct {
	CreatedBy string  `json:"created_by"`
	LogDate   string  `json:"log_date"`
	Calories  float64 `json:"calories,omitempty"`
	Protein   float64 `json:"protein,omitempty"`
	Servings  float64 `json:"servings,omitempty"`
}

// UnmarshalJSON reads the numeric fields leniently, so "500", "30g" or a
// garbage value decode as a number or zero instead of failing the collection.
func (l *Log) UnmarshalJSON(data []byte) error {
	var raw struct {
		CreatedBy string           `json:"created_by"`
		LogDate   string           `json:"log_date"`
		Calories  planner.Quantity `json:"calories"`
		Protein   planner.Quantity `json:"protein"`
		Servings  planner.Quantity `json:"servings"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*l = Log{
		CreatedBy: raw.CreatedBy,
		LogDate:   raw.LogDate,
		Calories:  float64(raw.Calories),
		Protein:   float64(raw.Protein),
		Servings:  float64(raw.Servings),
	}
	return nil
}

// Date parses LogDate. ok is false for empty or malformed dates.
func (l Log) Date() (time.Time, bool) {
	if l.LogDate == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(DateLayout, l.LogDate)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ServingsOrOne returns Servings, or 1 when it is unset.
func (l Log) ServingsOrOne() float64 {
	if l.Servings == 0 {
		return 1
	}
	return l.Servings
}

// Goal is a user's calorie target.
type Goal struct {
	CreatedBy      string  `json:"created_by"`
	IsActive       bool    `json:"is_active"`
	TargetCalories float64 `json:"target_calories,omitempty"`
}

func (g *Goal) UnmarshalJSON(data []byte) error {
	var raw struct {
		CreatedBy      string           `json:"created_by"`
		IsActive       bool             `json:"is_active"`
		TargetCalories planner.Quantity `json:"target_calories"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*g = Goal{CreatedBy: raw.CreatedBy, IsActive: raw.IsActive, TargetCalories: float64(raw.TargetCalories)}
	return nil
}

// ActiveGoal returns the first active goal created by email.
func ActiveGoal(goals []Goal, email string) (Goal, bool) {
	for _, g := range goals {
		if g.IsActive && g.CreatedBy == email {
			return g, true
		}
	}
	return Goal{}, false
}
