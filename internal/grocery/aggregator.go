package grocery

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"meal-insights/internal/planner"
)

// List maps every category to its sorted, de-duplicated items.
type List map[Category][]string

// Count returns the number of items across all categories.
func (l List) Count() int {
	n := 0
	for _, items := range l {
		n += len(items)
	}
	return n
}

var tokenSeparators = regexp.MustCompile(`[\s,]+`)

// Aggregate extracts ingredient words from every meal name in plan and
// groups them by category. Every category is present in the result, Other
// included, even when empty. The result does not depend on day order.
func (c *Classifier) Aggregate(plan planner.MealPlan) List {
	sets := make(map[Category]map[string]struct{}, len(Categories))
	for _, cat := range Categories {
		sets[cat] = make(map[string]struct{})
	}

	for _, day := range plan.Days {
		for _, meal := range day.Meals() {
			for _, token := range tokenSeparators.Split(meal.Name, -1) {
				cat, ok := c.Classify(token)
				if !ok {
					continue
				}
				sets[cat][Capitalize(token)] = struct{}{}
			}
		}
	}

	list := make(List, len(Categories))
	for _, cat := range Categories {
		items := make([]string, 0, len(sets[cat]))
		for item := range sets[cat] {
			items = append(items, item)
		}
		sort.Strings(items)
		list[cat] = items
	}
	return list
}

// Capitalize upper-cases the first letter and lower-cases the rest.
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s[:size] + strings.ToLower(s[size:])
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
