package ingredients

import (
	"regexp"
	"strings"
)

// Ingredient is the structured form of one free-text ingredient line.
type Ingredient struct {
	Amount      string `json:"amount"`
	Unit        string `json:"unit"`
	Ingredient  string `json:"ingredient"`
	Descriptors string `json:"descriptors,omitempty"`
}

var (
	// integer, decimal or simple fraction
	amountRe   = regexp.MustCompile(`^\d+([/.]\d+)?$`)
	fractionRe = regexp.MustCompile(`^\d+/\d+$`)
)

var units = toSet(
	"cup", "cups", "tbsp", "tsp", "teaspoon", "teaspoons", "tablespoon", "tablespoons",
	"g", "gram", "grams", "kg", "ml", "l", "oz", "ounce", "ounces", "lb", "lbs", "pound", "pounds",
	"clove", "cloves", "slice", "slices", "can", "cans", "package", "packages",
	"breast", "breasts", "pinch", "pinches", "handful", "handfuls", "dash", "dashes",
)

var descriptors = toSet(
	"chopped", "minced", "diced", "sliced", "grated", "shredded", "crushed", "peeled",
	"fresh", "freshly", "finely", "roughly", "thinly", "coarsely",
	"large", "small", "medium", "packed", "softened", "melted", "divided", "of",
)

func toSet(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

// IsUnit reports whether tok belongs to the unit vocabulary.
func IsUnit(tok string) bool {
	_, ok := units[strings.ToLower(tok)]
	return ok
}

// IsDescriptor reports whether tok belongs to the descriptor vocabulary.
func IsDescriptor(tok string) bool {
	_, ok := descriptors[strings.ToLower(tok)]
	return ok
}

// Parse splits a raw ingredient line into amount, unit and name.
//
// Tokens are consumed greedily in order: an amount (with an optional trailing
// fraction, "2 3/4"), then a unit. Whatever remains, minus descriptor words,
// is the ingredient name. Text after the first comma is kept as a note in
// Descriptors and never becomes part of the name. A unit word that is really
// part of a dish name is still taken as the unit.
func Parse(line string) Ingredient {
	amount, unit, rest, note := split(line)
	out := Ingredient{Amount: amount, Unit: unit}

	name, removed := splitDescriptors(rest)
	out.Ingredient = strings.Join(name, " ")

	desc := strings.Join(removed, " ")
	switch {
	case desc != "" && note != "":
		out.Descriptors = desc + ", " + note
	case note != "":
		out.Descriptors = note
	default:
		out.Descriptors = desc
	}
	return out
}

// Line is an ingredient line as a page shows it: the name keeps its
// descriptor words in place and the comma note stays separate.
type Line struct {
	Measurement string
	Name        string
	Note        string
}

// Describe splits line for display with the same amount and unit rules as
// Parse.
func Describe(line string) Line {
	amount, unit, rest, note := split(line)
	return Line{
		Measurement: strings.TrimSpace(amount + " " + unit),
		Name:        strings.Join(rest, " "),
		Note:        note,
	}
}

// DescribeAll describes every line in order.
func DescribeAll(lines []string) []Line {
	out := make([]Line, 0, len(lines))
	for _, l := range lines {
		out = append(out, Describe(l))
	}
	return out
}

// split consumes the amount and unit tokens and cuts the note at the first
// comma. rest holds the remaining tokens as written.
func split(line string) (amount, unit string, rest []string, note string) {
	before, note, _ := strings.Cut(line, ",")
	note = strings.TrimSpace(note)
	rest = strings.Fields(before)

	if len(rest) > 0 && amountRe.MatchString(rest[0]) {
		amount = rest[0]
		rest = rest[1:]
		if len(rest) > 0 && fractionRe.MatchString(rest[0]) {
			amount += " " + rest[0]
			rest = rest[1:]
		}
	}

	if len(rest) > 0 && IsUnit(rest[0]) {
		unit = rest[0]
		rest = rest[1:]
	}
	return amount, unit, rest, note
}

// ParseAll parses every line in order.
func ParseAll(lines []string) []Ingredient {
	out := make([]Ingredient, 0, len(lines))
	for _, l := range lines {
		out = append(out, Parse(l))
	}
	return out
}

// Names returns the ingredient names of parsed, in order.
func Names(parsed []Ingredient) []string {
	out := make([]string, 0, len(parsed))
	for _, p := range parsed {
		out = append(out, p.Ingredient)
	}
	return out
}

// Measurement is the "amount unit" string used on the shopping list.
func (i Ingredient) Measurement() string {
	return strings.TrimSpace(i.Amount + " " + i.Unit)
}

// StripDescriptors reduces an ingredient name to its comparable form: text
// after a comma or an opening parenthesis is dropped, descriptor words are
// removed and the result is lowercased.
func StripDescriptors(name string) string {
	name, _, _ = strings.Cut(name, ",")
	name, _, _ = strings.Cut(name, "(")
	kept, _ := splitDescriptors(strings.Fields(name))
	return strings.ToLower(strings.Join(kept, " "))
}

func splitDescriptors(tokens []string) (kept, removed []string) {
	for _, t := range tokens {
		if IsDescriptor(t) {
			removed = append(removed, t)
			continue
		}
		kept = append(kept, t)
	}
	return kept, removed
}
