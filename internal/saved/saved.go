package saved

import (
	"errors"

	"recipe_site/internal/recipes"
)

var (
	ErrNoLink   = errors.New("saved recipe needs a link")
	ErrNotFound = errors.New("saved recipe not found")
)

// List holds recipe snapshots, at most one per link.
type List []recipes.Recipe

func (l List) index(link string) int {
	for i, r := range l {
		if r.Link == link {
			return i
		}
	}
	return -1
}

// Save stores a snapshot of r. Saving a link again replaces the earlier
// snapshot in place and reports false.
func (l List) Save(r recipes.Recipe) (List, bool, error) {
	if r.Link == "" {
		return l, false, ErrNoLink
	}
	if i := l.index(r.Link); i >= 0 {
		out := append(List(nil), l...)
		out[i] = r
		return out, false, nil
	}
	return append(append(List(nil), l...), r), true, nil
}

func (l List) Remove(link string) (List, error) {
	i := l.index(link)
	if i < 0 {
		return l, ErrNotFound
	}
	out := make(List, 0, len(l)-1)
	out = append(out, l[:i]...)
	return append(out, l[i+1:]...), nil
}

func (l List) Contains(link string) bool {
	return l.index(link) >= 0
}

// Dedupe keeps the first snapshot of each link and drops link-less entries,
// repairing lists written by older clients.
func (l List) Dedupe() List {
	seen := make(map[string]struct{}, len(l))
	out := make(List, 0, len(l))
	for _, r := range l {
		if r.Link == "" {
			continue
		}
		if _, ok := seen[r.Link]; ok {
			continue
		}
		seen[r.Link] = struct{}{}
		out = append(out, r)
	}
	return out
}
