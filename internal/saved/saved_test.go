package saved

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipe_site/internal/recipes"
)

func TestSaveDedupes(t *testing.T) {
	var l List
	l, added, err := l.Save(recipes.Recipe{Title: "Soup", Link: "/r/soup.html"})
	require.NoError(t, err)
	assert.True(t, added)

	for i := 0; i < 3; i++ {
		l, added, err = l.Save(recipes.Recipe{Title: "Soup v2", Link: "/r/soup.html"})
		require.NoError(t, err)
		assert.False(t, added)
	}
	require.Len(t, l, 1)
	assert.Equal(t, "Soup v2", l[0].Title)

	_, _, err = l.Save(recipes.Recipe{Title: "No link"})
	assert.ErrorIs(t, err, ErrNoLink)
}

func TestSaveDoesNotAlias(t *testing.T) {
	base := List{{Title: "A", Link: "/a"}}
	next, _, err := base.Save(recipes.Recipe{Title: "A2", Link: "/a"})
	require.NoError(t, err)
	assert.Equal(t, "A", base[0].Title)
	assert.Equal(t, "A2", next[0].Title)
}

func TestRemoveAndContains(t *testing.T) {
	l := List{{Title: "A", Link: "/a"}, {Title: "B", Link: "/b"}}
	assert.True(t, l.Contains("/b"))

	l, err := l.Remove("/a")
	require.NoError(t, err)
	assert.Equal(t, List{{Title: "B", Link: "/b"}}, l)
	assert.False(t, l.Contains("/a"))

	_, err = l.Remove("/a")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDedupe(t *testing.T) {
	l := List{{Title: "A", Link: "/a"}, {Title: "x"}, {Title: "A again", Link: "/a"}, {Title: "B", Link: "/b"}}
	got := l.Dedupe()
	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].Title)
	assert.Equal(t, "B", got[1].Title)
}
