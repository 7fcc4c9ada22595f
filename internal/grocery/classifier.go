// Package grocery turns a meal plan into a categorised shopping list.
package grocery

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Category is a grocery aisle.
type Category string

const (
	Proteins   Category = "proteins"
	Vegetables Category = "vegetables"
	Grains     Category = "grains"
	Dairy      Category = "dairy"
	Fruits     Category = "fruits"
	Other      Category = "other"
)

// Categories is the display order. Classification priority is the same
// order minus Other.
var Categories = []Category{Proteins, Vegetables, Grains, Dairy, Fruits, Other}

// Keywords holds the lowercase substrings that place a word in a category.
type Keywords struct {
	Proteins   []string `yaml:"proteins"`
	Vegetables []string `yaml:"vegetables"`
	Grains     []string `yaml:"grains"`
	Dairy      []string `yaml:"dairy"`
	Fruits     []string `yaml:"fruits"`
}

// DefaultKeywords are used when no keyword file is configured.
func DefaultKeywords() Keywords {
	return Keywords{
		Proteins: []string{
			"chicken", "beef", "pork", "turkey", "lamb", "fish", "salmon", "tuna",
			"cod", "shrimp", "prawn", "egg", "tofu", "tempeh", "lentil", "bean",
			"chickpea", "steak", "bacon", "ham", "sausage",
		},
		Vegetables: []string{
			"broccoli", "spinach", "kale", "carrot", "tomato", "pepper", "onion",
			"garlic", "lettuce", "cucumber", "zucchini", "mushroom", "potato",
			"asparagus", "cauliflower", "cabbage", "celery", "corn",
			"squash", "salad", "greens",
		},
		Grains: []string{
			"rice", "quinoa", "oat", "bread", "pasta", "noodle", "tortilla",
			"barley", "couscous", "wheat", "granola", "cereal", "bagel", "toast",
			"wrap",
		},
		Dairy: []string{
			"milk", "cheese", "yogurt", "yoghurt", "butter", "cream", "feta",
			"mozzarella", "parmesan", "cheddar", "ricotta",
		},
		Fruits: []string{
			"apple", "banana", "berry", "berries", "orange", "lemon", "lime",
			"mango", "grape", "pear", "peach", "pineapple", "avocado", "kiwi",
			"cherry", "cherries", "melon",
		},
	}
}

// LoadKeywords reads keyword lists from a YAML file. An empty path returns
// DefaultKeywords; categories missing from the file keep their defaults.
func LoadKeywords(path string) (Keywords, error) {
	kw := DefaultKeywords()
	if path == "" {
		return kw, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Keywords{}, fmt.Errorf("failed to read keyword file %s: %w", path, err)
	}

	var override Keywords
	if err := yaml.Unmarshal(data, &override); err != nil {
		return Keywords{}, fmt.Errorf("failed to parse keyword file %s: %w", path, err)
	}

	if override.Proteins != nil {
		kw.Proteins = override.Proteins
	}
	if override.Vegetables != nil {
		kw.Vegetables = override.Vegetables
	}
	if override.Grains != nil {
		kw.Grains = override.Grains
	}
	if override.Dairy != nil {
		kw.Dairy = override.Dairy
	}
	if override.Fruits != nil {
		kw.Fruits = override.Fruits
	}
	return kw, nil
}

type keywordList struct {
	category Category
	words    []string
}

// Classifier maps single words to categories. It is immutable after
// construction and safe for concurrent use.
type Classifier struct {
	lists []keywordList
}

// NewClassifier builds a Classifier. Keywords are lowercased once here.
func NewClassifier(kw Keywords) *Classifier {
	lower := func(words []string) []string {
		out := make([]string, 0, len(words))
		for _, w := range words {
			w = strings.ToLower(strings.TrimSpace(w))
			if w != "" {
				out = append(out, w)
			}
		}
		return out
	}
	return &Classifier{lists: []keywordList{
		{Proteins, lower(kw.Proteins)},
		{Vegetables, lower(kw.Vegetables)},
		{Grains, lower(kw.Grains)},
		{Dairy, lower(kw.Dairy)},
		{Fruits, lower(kw.Fruits)},
	}}
}

// Classify returns the first category, in priority order, with a keyword
// contained in word (case-insensitive). ok is false for unclassified words.
func (c *Classifier) Classify(word string) (Category, bool) {
	w := strings.ToLower(word)
	if w == "" {
		return "", false
	}
	for _, list := range c.lists {
		for _, kw := range list.words {
			if strings.Contains(w, kw) {
				return list.category, true
			}
		}
	}
	return "", false
}
