package recipes

import "strings"

// Catalog is the set of known recipes, in gallery index order.
type Catalog []Recipe

// Find returns the recipe addressed by link.
func (c Catalog) Find(link string) (Recipe, bool) {
	for _, r := range c {
		if r.MatchesLink(link) {
			return r, true
		}
	}
	return Recipe{}, false
}

// Search returns recipes whose title contains query, case-insensitively.
// An empty query matches nothing.
func (c Catalog) Search(query string) []Recipe {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	var out []Recipe
	for _, r := range c {
		if strings.Contains(strings.ToLower(r.Title), q) {
			out = append(out, r)
		}
	}
	return out
}
