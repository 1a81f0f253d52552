package gallery

import (
	"sort"
	"strings"

	"recipe_site/internal/ingredients"
	"recipe_site/internal/recipes"
)

// Filter is the gallery search configuration. Zero values disable a
// criterion: MaxTimeMinutes and MaxCost of 0 mean no limit.
type Filter struct {
	TitleQuery     string   `form:"q" json:"q,omitempty"`
	Ingredients    []string `form:"ingredient" json:"ingredients,omitempty"`
	MaxTimeMinutes int      `form:"maxTime" json:"maxTime,omitempty"`
	LeftoverOnly   bool     `form:"leftover" json:"leftover,omitempty"`
	Meals          []string `form:"meal" json:"meals,omitempty"`
	Types          []string `form:"type" json:"types,omitempty"`
	Cuisines       []string `form:"cuisine" json:"cuisines,omitempty"`
	MaxCost        float64  `form:"maxCost" json:"maxCost,omitempty"`
}

// Matches reports whether r satisfies every active criterion of f.
func (f Filter) Matches(r recipes.Recipe) bool {
	if q := strings.TrimSpace(f.TitleQuery); q != "" &&
		!strings.Contains(strings.ToLower(r.Title), strings.ToLower(q)) {
		return false
	}

	for _, want := range f.Ingredients {
		if !hasIngredient(r, want) {
			return false
		}
	}

	if f.MaxTimeMinutes > 0 {
		m, ok := r.TimeMinutes()
		if !ok || m > f.MaxTimeMinutes {
			return false
		}
	}

	if f.LeftoverOnly && !r.HasTag(recipes.LeftoverSafeTag) {
		return false
	}

	for _, group := range [][]string{f.Meals, f.Types, f.Cuisines} {
		if !anyTag(r, group) {
			return false
		}
	}

	if f.MaxCost > 0 {
		if p, ok := r.Price(); ok && p > f.MaxCost {
			return false
		}
	}
	return true
}

func hasIngredient(r recipes.Recipe, want string) bool {
	want = strings.ToLower(strings.TrimSpace(want))
	if want == "" {
		return true
	}
	for _, line := range r.Ingredients {
		if strings.Contains(strings.ToLower(line), want) {
			return true
		}
	}
	for _, name := range r.CleanedIngredients {
		if strings.Contains(strings.ToLower(name), want) {
			return true
		}
	}
	return false
}

// anyTag is true for an empty selection.
func anyTag(r recipes.Recipe, selected []string) bool {
	if len(selected) == 0 {
		return true
	}
	for _, s := range selected {
		if r.HasTag(s) {
			return true
		}
	}
	return false
}

// Apply returns the recipes matching f, preserving order.
func Apply(recs []recipes.Recipe, f Filter) []recipes.Recipe {
	out := make([]recipes.Recipe, 0, len(recs))
	for _, r := range recs {
		if f.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}

// IngredientOptions lists the distinct cleaned ingredient names across recs,
// sorted, for ingredient pickers.
func IngredientOptions(recs []recipes.Recipe) []string {
	seen := make(map[string]struct{})
	for _, r := range recs {
		for _, p := range r.Parsed() {
			name := ingredients.StripDescriptors(p.Ingredient)
			if name != "" {
				seen[name] = struct{}{}
			}
		}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Card is the gallery view of one recipe.
type Card struct {
	Title string   `json:"title"`
	Image string   `json:"image,omitempty"`
	Tags  []string `json:"tags"`
	Link  string   `json:"link"`
}

func Cards(recs []recipes.Recipe) []Card {
	out := make([]Card, 0, len(recs))
	for _, r := range recs {
		out = append(out, Card{Title: r.Title, Image: r.HeroImage(), Tags: r.Tags, Link: r.Link})
	}
	return out
}
