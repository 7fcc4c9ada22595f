// Package leaderboard ranks users by their nutrition logs over a trailing
// time window.
package leaderboard

import (
	"fmt"
	"math"
	"sort"
	"time"

	"meal-insights/internal/nutrition"
)

// DefaultLimit is the number of ranked rows returned when no limit is set.
const DefaultLimit = 10

// goalTolerancePct is how far, in percent of the target, a day's calories
// may be from the goal and still count as meeting it.
const goalTolerancePct = 10

// Metric selects the value users are ranked by.
type Metric string

const (
	MetricMeals   Metric = "meals"
	MetricStreak  Metric = "streak"
	MetricGoals   Metric = "goals"
	MetricProtein Metric = "protein"
)

// ParseMetric validates a metric name.
func ParseMetric(s string) (Metric, error) {
	switch m := Metric(s); m {
	case MetricMeals, MetricStreak, MetricGoals, MetricProtein:
		return m, nil
	}
	return "", fmt.Errorf("unknown leaderboard metric %q", s)
}

// Window is a trailing range of days.
type Window string

const (
	WindowWeek  Window = "week"
	WindowMonth Window = "month"
)

// ParseWindow validates a window name.
func ParseWindow(s string) (Window, error) {
	switch w := Window(s); w {
	case WindowWeek, WindowMonth:
		return w, nil
	}
	return "", fmt.Errorf("unknown leaderboard window %q", s)
}

// Days returns the window length.
func (w Window) Days() int {
	if w == WindowMonth {
		return 30
	}
	return 7
}

// Entry is one user's rolled-up row. Streak counts distinct active days in
// the window, not a consecutive run.
type Entry struct {
	Email         string  `json:"email"`
	TotalMeals    int     `json:"totalMeals"`
	TotalCalories float64 `json:"totalCalories"`
	TotalProtein  float64 `json:"totalProtein"`
	Streak        int     `json:"streak"`
	GoalsMetCount int     `json:"goalsMetCount"`
}

// Value returns the entry's score for m.
func (e Entry) Value(m Metric) float64 {
	switch m {
	case MetricStreak:
		return float64(e.Streak)
	case MetricGoals:
		return float64(e.GoalsMetCount)
	case MetricProtein:
		return e.TotalProtein
	default:
		return float64(e.TotalMeals)
	}
}

// AverageCaloriesPerMeal is safe for rows with no counted meals.
func (e Entry) AverageCaloriesPerMeal() int {
	if e.TotalMeals == 0 {
		return 0
	}
	return Round(e.TotalCalories / float64(e.TotalMeals))
}

// Round rounds to the nearest integer, mapping NaN and infinities to 0.
func Round(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int(math.Round(v))
}

// Query selects what to rank.
type Query struct {
	Metric Metric
	Window Window
	Limit  int
	Now    time.Time
}

type userRow struct {
	entry Entry
	days  map[string]float64 // log_date -> calories
}

// Rank rolls logs up per user inside the query window and returns the top
// rows by the selected metric, highest first. Users with equal values keep
// the order in which they first appear in logs.
//
// Logs without a parseable date add nothing, so a user appears only with at
// least one log inside the window. Missing calories or protein count as zero
// and missing servings as one.
func Rank(logs []nutrition.Log, goals []nutrition.Goal, q Query) []Entry {
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	now := q.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	cutoff := today.AddDate(0, 0, -q.Window.Days())

	var order []string
	rows := make(map[string]*userRow)
	row := func(email string) *userRow {
		r, ok := rows[email]
		if !ok {
			r = &userRow{entry: Entry{Email: email}, days: make(map[string]float64)}
			rows[email] = r
			order = append(order, email)
		}
		return r
	}

	for _, l := range logs {
		date, ok := l.Date()
		if !ok || date.Before(cutoff) {
			continue
		}
		r := row(l.CreatedBy)
		servings := l.ServingsOrOne()
		calories := l.Calories * servings
		r.entry.TotalMeals++
		r.entry.TotalCalories += calories
		r.entry.TotalProtein += l.Protein * servings
		r.days[l.LogDate] += calories
	}

	entries := make([]Entry, 0, len(order))
	for _, email := range order {
		r := rows[email]
		r.entry.Streak = len(r.days)
		if goal, ok := nutrition.ActiveGoal(goals, email); ok {
			r.entry.GoalsMetCount = goalsMet(r.days, goal.TargetCalories)
		}
		entries = append(entries, r.entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Value(q.Metric) > entries[j].Value(q.Metric)
	})

	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

// goalsMet counts days whose calorie total lies within goalTolerancePct of
// target, bounds inclusive. A non-positive target is never met.
func goalsMet(days map[string]float64, target float64) int {
	if target <= 0 {
		return 0
	}
	// Scaled to percent so whole-number targets compare exactly at the bounds
	low := target * (100 - goalTolerancePct)
	high := target * (100 + goalTolerancePct)
	met := 0
	for _, total := range days {
		if scaled := total * 100; scaled >= low && scaled <= high {
			met++
		}
	}
	return met
}
