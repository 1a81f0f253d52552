package store

import (
	"context"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "site.db")
	s, err := Open(path, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, path
}

func TestSetGet(t *testing.T) {
	ctx := context.Background()
	s, _ := openTemp(t)

	_, ok, err := s.Get(ctx, KeyMealPlan)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, KeyMealPlan, []byte(`{"Monday":{}}`)))
	require.NoError(t, s.Set(ctx, KeyMealPlan, []byte(`{"Tuesday":{}}`)))

	b, ok, err := s.Get(ctx, KeyMealPlan)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"Tuesday":{}}`, string(b))

	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{KeyMealPlan}, keys)

	require.NoError(t, s.Delete(ctx, KeyMealPlan))
	_, ok, _ = s.Get(ctx, KeyMealPlan)
	assert.False(t, ok)
}

func TestGetJSONFailsOpen(t *testing.T) {
	ctx := context.Background()
	s, _ := openTemp(t)

	list := []string{"default"}
	assert.False(t, s.GetJSON(ctx, KeySavedRecipes, &list))
	assert.Equal(t, []string{"default"}, list)

	require.NoError(t, s.Set(ctx, KeySavedRecipes, []byte(`[not json`)))
	assert.False(t, s.GetJSON(ctx, KeySavedRecipes, &list))
	assert.Equal(t, []string{"default"}, list)

	require.NoError(t, s.SetJSON(ctx, KeySavedRecipes, []string{"a", "b"}))
	assert.True(t, s.GetJSON(ctx, KeySavedRecipes, &list))
	assert.Equal(t, []string{"a", "b"}, list)
}

func TestPersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "site.db")

	s, err := Open(path, nil)
	require.NoError(t, err)
	require.NoError(t, s.SetJSON(ctx, KeyShoppingList, map[string]int{"n": 1}))
	require.NoError(t, s.Close())

	s, err = Open(path, nil)
	require.NoError(t, err)
	defer s.Close()

	var got map[string]int
	require.True(t, s.GetJSON(ctx, KeyShoppingList, &got))
	assert.Equal(t, 1, got["n"])
}

func TestSubscribe(t *testing.T) {
	ctx := context.Background()
	s, _ := openTemp(t)

	ch, cancel := s.Subscribe()
	require.NoError(t, s.Set(ctx, "k", []byte(`1`)))

	select {
	case c := <-ch:
		assert.Equal(t, Change{Key: "k", Value: []byte(`1`)}, c)
	case <-time.After(time.Second):
		t.Fatal("no change received")
	}

	cancel()
	_, open := <-ch
	assert.False(t, open)
	cancel()
}

func TestWatchSeesOtherProcess(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, path := openTemp(t)
	b, err := Open(path, nil)
	require.NoError(t, err)
	defer b.Close()

	ch, unsubscribe := a.Subscribe()
	defer unsubscribe()
	require.NoError(t, a.Watch(ctx, 10*time.Millisecond))

	require.NoError(t, b.Set(ctx, KeyMealPlan, []byte(`{"Friday":{}}`)))

	select {
	case c := <-ch:
		assert.True(t, c.External)
		assert.Equal(t, KeyMealPlan, c.Key)
		assert.Equal(t, `{"Friday":{}}`, string(c.Value))
	case <-time.After(3 * time.Second):
		t.Fatal("external change not observed")
	}
}

func TestRefreshIgnoresOwnWrites(t *testing.T) {
	ctx := context.Background()
	s, _ := openTemp(t)
	require.NoError(t, s.Set(ctx, "k", []byte(`1`)))

	ch, cancel := s.Subscribe()
	defer cancel()
	require.NoError(t, s.refresh(ctx))

	select {
	case c := <-ch:
		t.Fatalf("unexpected change %+v", c)
	default:
	}
}

func TestRefreshDuringOwnWrites(t *testing.T) {
	ctx := context.Background()
	s, _ := openTemp(t)

	ch, cancel := s.Subscribe()
	var external atomic.Int32
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for c := range ch {
			if c.External {
				external.Add(1)
			}
		}
	}()

	written := make(chan struct{})
	go func() {
		defer close(written)
		for i := range 200 {
			_ = s.Set(ctx, "k", []byte(strconv.Itoa(i)))
		}
	}()

	for done := false; !done; {
		select {
		case <-written:
			done = true
		default:
		}
		require.NoError(t, s.refresh(ctx))
	}

	cancel()
	<-drained
	assert.Zero(t, external.Load())
}
