package planner

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Slot names a meal position within a day.
type Slot string

const (
	SlotBreakfast Slot = "breakfast"
	SlotLunch     Slot = "lunch"
	SlotDinner    Slot = "dinner"
	SlotSnacks    Slot = "snacks"
)

// Slots lists the meal slots in display order.
var Slots = []Slot{SlotBreakfast, SlotLunch, SlotDinner, SlotSnacks}

// Quantity is a nutrient or money amount. It decodes from a JSON number or
// from a string with a leading number ("30g", "12.50"); anything else decodes
// as zero rather than failing the whole record.
type Quantity float64

var leadingNumber = regexp.MustCompile(`-?\d+(?:\.\d+)?`)

func (q *Quantity) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*q = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*q = 0
			return nil
		}
		*q = parseLeadingNumber(s)
		return nil
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		*q = 0
		return nil
	}
	*q = Quantity(f)
	return nil
}

func parseLeadingNumber(s string) Quantity {
	m := leadingNumber.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0
	}
	return Quantity(f)
}

// Meal is a single meal within a day.
type Meal struct {
	Name     string   `json:"name"`
	Calories string   `json:"calories"` // "NNN-NNN kcal"
	Protein  Quantity `json:"protein,omitempty"`
	Carbs    Quantity `json:"carbs,omitempty"`
	Fat      Quantity `json:"fat,omitempty"`
	PrepTip  string   `json:"prepTip,omitempty"`
	ImageURL string   `json:"imageUrl,omitempty"`
}

// Day represents the plan for a single day.
type Day struct {
	Day       string `json:"day"`
	Breakfast *Meal  `json:"breakfast,omitempty"`
	Lunch     *Meal  `json:"lunch,omitempty"`
	Dinner    *Meal  `json:"dinner,omitempty"`
	Snacks    *Meal  `json:"snacks,omitempty"`
}

// Meal returns the meal in the given slot, or nil.
func (d Day) Meal(s Slot) *Meal {
	switch s {
	case SlotBreakfast:
		return d.Breakfast
	case SlotLunch:
		return d.Lunch
	case SlotDinner:
		return d.Dinner
	case SlotSnacks:
		return d.Snacks
	}
	return nil
}

// Meals returns the present meals in slot order.
func (d Day) Meals() []Meal {
	var meals []Meal
	for _, s := range Slots {
		if m := d.Meal(s); m != nil {
			meals = append(meals, *m)
		}
	}
	return meals
}

// Macros is the plan-level macro summary in grams.
type Macros struct {
	Protein Quantity `json:"protein"`
	Carbs   Quantity `json:"carbs"`
	Fat     Quantity `json:"fat"`
}

// MealPlan is a named sequence of days as stored by the hosted backend.
type MealPlan struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	DietType         string    `json:"diet_type,omitempty"`
	Days             []Day     `json:"days"`
	Macros           *Macros   `json:"macros,omitempty"`
	EstimatedCost    *Quantity `json:"estimated_cost,omitempty"`
	CurrentTotalCost *Quantity `json:"current_total_cost,omitempty"`
	CreatedDate      string    `json:"created_date,omitempty"`
}

var createdDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// CreatedAt parses CreatedDate. Timestamps without a zone are read as UTC.
func (p MealPlan) CreatedAt() (time.Time, bool) {
	s := strings.TrimSpace(p.CreatedDate)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range createdDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

var calorieRange = regexp.MustCompile(`(\d+)-(\d+)`)

// ParseCalorieRange extracts the bounds of a "low-high" calorie string.
// ok is false when the string does not contain a numeric range.
func ParseCalorieRange(s string) (low, high int, ok bool) {
	m := calorieRange.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, false
	}
	low, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, 0, false
	}
	high, err = strconv.Atoi(m[2])
	if err != nil {
		return 0, 0, false
	}
	return low, high, true
}
