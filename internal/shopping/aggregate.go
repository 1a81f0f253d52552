package shopping

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"recipe_site/internal/ingredients"
	mealplan "recipe_site/internal/meal_plan"
	"recipe_site/internal/recipes"
)

// Item is one aggregated shopping list line. Measurements are kept as
// written, in meal plan order; quantities are never summed.
type Item struct {
	Key          string   `json:"key"`
	DisplayName  string   `json:"displayName"`
	Measurements []string `json:"measurements"`
}

// Label is the display name with its first letter capitalized.
func (i Item) Label() string {
	if i.DisplayName == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(i.DisplayName)
	return string(unicode.ToUpper(r)) + i.DisplayName[size:]
}

// Text renders the item as "Label: m1, m2".
func (i Item) Text() string {
	if len(i.Measurements) == 0 {
		return i.Label()
	}
	return i.Label() + ": " + strings.Join(i.Measurements, ", ")
}

// forms returns name plus its naive singular or plural variants. Only a
// trailing "s"/"es" is considered, so irregular plurals stay apart.
func forms(name string) []string {
	out := []string{name}
	switch {
	case strings.HasSuffix(name, "es"):
		out = append(out, name[:len(name)-2], name[:len(name)-1])
	case strings.HasSuffix(name, "s"):
		out = append(out, name[:len(name)-1])
	default:
		out = append(out, name+"s", name+"es")
	}
	return out
}

type bucket struct {
	forms        map[string]struct{}
	names        []string
	measurements []string
}

func (b *bucket) intersects(fs []string) bool {
	for _, f := range fs {
		if _, ok := b.forms[f]; ok {
			return true
		}
	}
	return false
}

func (b *bucket) add(name string, fs []string, measurement string) {
	for _, f := range fs {
		b.forms[f] = struct{}{}
	}
	if !contains(b.names, name) {
		b.names = append(b.names, name)
	}
	if measurement != "" {
		b.measurements = append(b.measurements, measurement)
	}
}

func (b *bucket) absorb(o *bucket) {
	for f := range o.forms {
		b.forms[f] = struct{}{}
	}
	for _, n := range o.names {
		if !contains(b.names, n) {
			b.names = append(b.names, n)
		}
	}
	b.measurements = append(b.measurements, o.measurements...)
}

// key is the shortest observed name, which is the singular when both
// forms were seen.
func (b *bucket) key() string {
	k := b.names[0]
	for _, n := range b.names[1:] {
		if len(n) < len(k) || (len(n) == len(k) && n < k) {
			k = n
		}
	}
	return k
}

// displayName prefers an observed plural.
func (b *bucket) displayName() string {
	for _, n := range b.names {
		if strings.HasSuffix(n, "s") {
			return n
		}
	}
	return b.names[0]
}

// sameItem reports whether two names share a singular or plural form.
func sameItem(a, b string) bool {
	if a == b {
		return true
	}
	bs := forms(b)
	for _, f := range forms(a) {
		if contains(bs, f) {
			return true
		}
	}
	return false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

type aggregator struct {
	buckets []*bucket
}

func (a *aggregator) add(name, measurement string) {
	name = strings.TrimSpace(strings.ToLower(name))
	if name == "" {
		return
	}
	fs := forms(name)

	var target *bucket
	kept := a.buckets[:0]
	for _, b := range a.buckets {
		if !b.intersects(fs) {
			kept = append(kept, b)
			continue
		}
		if target == nil {
			target = b
			kept = append(kept, b)
			continue
		}
		target.absorb(b)
	}
	a.buckets = kept

	if target == nil {
		target = &bucket{forms: make(map[string]struct{})}
		a.buckets = append(a.buckets, target)
	}
	target.add(name, fs, measurement)
}

// Aggregate builds the shopping list for plan. Linked entries contribute the
// parsed ingredients of the catalog recipe they point to; entries whose
// recipe is unknown are skipped. Free-text entries are parsed as a single
// ingredient line. The result is sorted by display name.
func Aggregate(plan *mealplan.Plan, cat recipes.Catalog) []Item {
	a := &aggregator{}
	if plan != nil {
		plan.Walk(func(_, _ string, e mealplan.Entry) {
			if e.Link == "" {
				p := ingredients.Parse(e.Title)
				a.add(ingredients.StripDescriptors(p.Ingredient), p.Measurement())
				return
			}
			r, ok := cat.Find(e.Link)
			if !ok {
				return
			}
			for _, p := range r.Parsed() {
				a.add(ingredients.StripDescriptors(p.Ingredient), p.Measurement())
			}
		})
	}

	out := make([]Item, 0, len(a.buckets))
	for _, b := range a.buckets {
		ms := b.measurements
		if ms == nil {
			ms = []string{}
		}
		out = append(out, Item{Key: b.key(), DisplayName: b.displayName(), Measurements: ms})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DisplayName < out[j].DisplayName
	})
	return out
}
