package grocery

// Style is how a category is rendered.
type Style struct {
	Label string
	Emoji string
	Color string
}

// Styles is the fixed style table, one entry per category.
var Styles = map[Category]Style{
	Proteins:   {Label: "Proteins", Emoji: "🥩", Color: "red"},
	Vegetables: {Label: "Vegetables", Emoji: "🥦", Color: "green"},
	Grains:     {Label: "Grains", Emoji: "🌾", Color: "amber"},
	Dairy:      {Label: "Dairy", Emoji: "🧀", Color: "blue"},
	Fruits:     {Label: "Fruits", Emoji: "🍎", Color: "pink"},
	Other:      {Label: "Other", Emoji: "🛒", Color: "gray"},
}

// StyleFor returns the style for cat, falling back to Other's style.
func StyleFor(cat Category) Style {
	if s, ok := Styles[cat]; ok {
		return s
	}
	return Styles[Other]
}
