package mealplan

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipe_site/internal/recipes"
)

func ids(entries []Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.ID)
	}
	return out
}

func TestAddAndRemove(t *testing.T) {
	p := New()
	a := p.Add("Monday", "breakfast", Entry{Title: "Oats"})
	b := p.Add("Monday", "breakfast", Entry{Title: "Eggs"})
	require.NotEmpty(t, a.ID)
	require.NotEqual(t, a.ID, b.ID)

	assert.Equal(t, []string{a.ID, b.ID}, ids(p.Entries("Monday", "breakfast")))

	removed, err := p.Remove("Monday", "breakfast", a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Oats", removed.Title)
	assert.Equal(t, []string{b.ID}, ids(p.Entries("Monday", "breakfast")))

	_, err = p.Remove("Monday", "breakfast", a.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = p.Remove("Friday", "dinner", b.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMove(t *testing.T) {
	p := New()
	a := p.Add("Monday", "lunch", Entry{Title: "A"})
	b := p.Add("Monday", "lunch", Entry{Title: "B"})
	c := p.Add("Monday", "lunch", Entry{Title: "C"})

	t.Run("within slot", func(t *testing.T) {
		_, err := p.Move(Position{"Monday", "lunch", 0}, Position{"Monday", "lunch", 2})
		require.NoError(t, err)
		assert.Equal(t, []string{b.ID, c.ID, a.ID}, ids(p.Entries("Monday", "lunch")))
	})

	t.Run("across slots creates target", func(t *testing.T) {
		moved, err := p.Move(Position{"Monday", "lunch", 1}, Position{"Tuesday", "dinner", 5})
		require.NoError(t, err)
		assert.Equal(t, c.ID, moved.ID)
		assert.Equal(t, []string{b.ID, a.ID}, ids(p.Entries("Monday", "lunch")))
		assert.Equal(t, []string{c.ID}, ids(p.Entries("Tuesday", "dinner")))
	})

	t.Run("bad source", func(t *testing.T) {
		_, err := p.Move(Position{"Monday", "lunch", 9}, Position{"Monday", "lunch", 0})
		assert.ErrorIs(t, err, ErrIndexOutOfRange)
		_, err = p.Move(Position{"Sunday", "lunch", 0}, Position{"Monday", "lunch", 0})
		assert.ErrorIs(t, err, ErrIndexOutOfRange)
	})

	pos, _, ok := p.Find(c.ID)
	require.True(t, ok)
	assert.Equal(t, Position{"Tuesday", "dinner", 0}, pos)
}

func TestNewRecipeEntry(t *testing.T) {
	e := NewRecipeEntry(recipes.Recipe{Title: "Stew", Link: "/r/stew.html", Cover: "/stew.jpg", Tags: []string{"$12"}})
	require.NotNil(t, e.Cost)
	assert.Equal(t, 12.0, *e.Cost)
	assert.Equal(t, "/stew.jpg", e.Image)

	custom := NewCustomEntry("  rotisserie chicken ")
	assert.Equal(t, Entry{Title: "rotisserie chicken"}, custom)
}

func TestTotalCost(t *testing.T) {
	five, seven := 5.0, 7.5
	p := New()
	p.Add("Monday", "dinner", Entry{Title: "A", Cost: &five})
	p.Add("Tuesday", "dinner", Entry{Title: "B"})
	p.Add("Tuesday", "lunch", Entry{Title: "C", Cost: &seven})
	assert.Equal(t, 12.5, p.TotalCost())
	assert.Equal(t, 3, p.Len())
}

func TestNewWeek(t *testing.T) {
	p := NewWeek()
	require.Len(t, p.Days, 7)
	assert.Equal(t, "Monday", p.Days[0].Name)
	assert.Equal(t, "Sunday", p.Days[6].Name)
	assert.Len(t, p.Days[3].Slots, 3)
	assert.Equal(t, 0, p.Len())
}

func TestJSONKeepsKeyOrder(t *testing.T) {
	raw := `{"Wednesday":{"dinner":[{"id":"x1","title":"Tacos","link":"/r/tacos.html"}],"breakfast":[]},"Monday":{"lunch":[{"id":"x2","title":"leftovers","leftover":true}]}}`

	var p Plan
	require.NoError(t, json.Unmarshal([]byte(raw), &p))
	assert.Equal(t, "Wednesday", p.Days[0].Name)
	assert.Equal(t, "dinner", p.Days[0].Slots[0].Name)

	out, err := json.Marshal(&p)
	require.NoError(t, err)
	assert.JSONEq(t, raw, string(out))
	assert.Equal(t, raw, string(out))

	var again Plan
	require.NoError(t, json.Unmarshal(out, &again))
	if diff := cmp.Diff(p, again); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestUnmarshalRejectsNonObject(t *testing.T) {
	var p Plan
	assert.Error(t, json.Unmarshal([]byte(`[]`), &p))
	assert.Error(t, json.Unmarshal([]byte(`{"Monday":[]}`), &p))
}

func TestEnsureIDs(t *testing.T) {
	var p Plan
	require.NoError(t, json.Unmarshal([]byte(`{"Monday":{"dinner":[{"title":"Soup"}]}}`), &p))
	assert.True(t, p.EnsureIDs())
	assert.NotEmpty(t, p.Entries("Monday", "dinner")[0].ID)
	assert.False(t, p.EnsureIDs())
}
