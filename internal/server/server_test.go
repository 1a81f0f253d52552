package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipe_site/internal/app"
	"recipe_site/internal/gallery"
	mealplan "recipe_site/internal/meal_plan"
	"recipe_site/internal/recipes"
	"recipe_site/internal/shopping"
	"recipe_site/internal/store"
)

var catalog = recipes.Catalog{
	{
		Title:       "Chicken Wraps",
		Link:        "/food/recipes/recipe-wraps.html",
		Tags:        []string{"lunch", "30 min", "leftover-safe"},
		Ingredients: []string{"2 chicken breasts", "4 tortillas"},
	},
	{
		Title:       "Beef Stew",
		Link:        "/food/recipes/recipe-stew.html",
		Tags:        []string{"dinner", "90 min"},
		Ingredients: []string{"1 lb beef chuck", "3 carrots"},
	},
}

func newTestServer(t *testing.T) (http.Handler, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "site.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	siteDir := filepath.Join(dir, "site")
	require.NoError(t, os.MkdirAll(siteDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(siteDir, "recipe-wraps.html"), []byte("<h1>Chicken Wraps</h1>"), 0644))

	a := app.New(st, catalog, nil)
	return New(a, Options{SiteDir: siteDir, LinkPrefix: "/food/recipes/"}, nil).Handler(), siteDir
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealthAndStatic(t *testing.T) {
	h, _ := newTestServer(t)

	w := do(t, h, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","recipes":2}`, w.Body.String())

	w = do(t, h, http.MethodGet, "/food/recipes/recipe-wraps.html", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Chicken Wraps")
}

func TestRecipesFilter(t *testing.T) {
	h, _ := newTestServer(t)

	cards := decode[[]gallery.Card](t, do(t, h, http.MethodGet, "/v1/recipes?leftover=true", nil))
	require.Len(t, cards, 1)
	assert.Equal(t, "Chicken Wraps", cards[0].Title)

	cards = decode[[]gallery.Card](t, do(t, h, http.MethodGet, "/v1/recipes?maxTime=60", nil))
	require.Len(t, cards, 1)

	cards = decode[[]gallery.Card](t, do(t, h, http.MethodGet, "/v1/recipes?ingredient=beef&ingredient=carrot", nil))
	require.Len(t, cards, 1)
	assert.Equal(t, "Beef Stew", cards[0].Title)

	cards = decode[[]gallery.Card](t, do(t, h, http.MethodGet, "/v1/recipes/search?q=stew", nil))
	require.Len(t, cards, 1)

	w := do(t, h, http.MethodGet, "/v1/recipes?maxTime=soon", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	names := decode[[]string](t, do(t, h, http.MethodGet, "/v1/ingredients", nil))
	assert.Equal(t, []string{"beef chuck", "carrots", "chicken breasts", "tortillas"}, names)

	w = do(t, h, http.MethodGet, "/v1/recipe?link=/food/recipes/recipe-stew.html", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = do(t, h, http.MethodGet, "/v1/recipe?link=/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

type planResponse struct {
	TotalCost float64                                `json:"totalCost"`
	Plan      map[string]map[string][]mealplan.Entry `json:"plan"`
}

func TestPlanAndShoppingFlow(t *testing.T) {
	h, _ := newTestServer(t)

	w := do(t, h, http.MethodPost, "/v1/plan/Monday/breakfast", AddEntryRequest{Link: "/food/recipes/recipe-stew.html"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	stew := decode[mealplan.Entry](t, w)
	assert.NotEmpty(t, stew.ID)

	w = do(t, h, http.MethodPost, "/v1/plan/Monday/dinner", AddEntryRequest{Text: "2 lemons"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(t, h, http.MethodPost, "/v1/plan/Monday/dinner", AddEntryRequest{Link: "/missing.html"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = do(t, h, http.MethodPost, "/v1/plan/Monday/dinner", AddEntryRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	list := decode[shopping.List](t, do(t, h, http.MethodGet, "/v1/shopping", nil))
	keys := make([]string, 0, len(list.Items))
	for _, o := range list.Items {
		keys = append(keys, o.Key)
	}
	assert.Equal(t, []string{"beef chuck", "carrots", "lemons"}, keys)

	list = decode[shopping.List](t, do(t, h, http.MethodPost, "/v1/shopping/0/check", CheckItemRequest{Checked: true}))
	assert.Equal(t, "beef chuck", list.Items[2].Key)
	assert.True(t, list.Items[2].Checked)

	list = decode[shopping.List](t, do(t, h, http.MethodPut, "/v1/shopping/0", EditItemRequest{Text: "baby carrots"}))
	assert.Equal(t, "baby carrots", list.Items[0].Text)

	list = decode[shopping.List](t, do(t, h, http.MethodPost, "/v1/shopping/0/down", nil))
	assert.Equal(t, "lemons", list.Items[0].Key)

	w = do(t, h, http.MethodPost, "/v1/shopping/9/up", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = do(t, h, http.MethodPost, "/v1/shopping/x/up", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodPost, "/v1/plan/move", MoveEntryRequest{
		From: mealplan.Position{Day: "Monday", Slot: "breakfast", Index: 0},
		To:   mealplan.Position{Day: "Tuesday", Slot: "dinner", Index: 0},
	})
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, h, http.MethodDelete, "/v1/plan/Monday/breakfast/"+stew.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code, "entry moved away")
	w = do(t, h, http.MethodDelete, "/v1/plan/Tuesday/dinner/"+stew.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	list = decode[shopping.List](t, do(t, h, http.MethodGet, "/v1/shopping", nil))
	require.Len(t, list.Items, 1)
	assert.Equal(t, "lemons", list.Items[0].Key)

	plan := decode[planResponse](t, do(t, h, http.MethodGet, "/v1/plan", nil))
	assert.Len(t, plan.Plan["Monday"]["dinner"], 1)

	w = do(t, h, http.MethodDelete, "/v1/plan", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestSavedEndpoints(t *testing.T) {
	h, _ := newTestServer(t)

	w := do(t, h, http.MethodPost, "/v1/saved", SaveRecipeRequest{Link: "/food/recipes/recipe-wraps.html"})
	assert.Equal(t, http.StatusCreated, w.Code)
	w = do(t, h, http.MethodPost, "/v1/saved", SaveRecipeRequest{Link: "/food/recipes/recipe-wraps.html"})
	assert.Equal(t, http.StatusOK, w.Code)
	w = do(t, h, http.MethodPost, "/v1/saved", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	list := decode[[]recipes.Recipe](t, do(t, h, http.MethodGet, "/v1/saved", nil))
	require.Len(t, list, 1)

	w = do(t, h, http.MethodDelete, "/v1/saved?link=/food/recipes/recipe-wraps.html", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, h, http.MethodDelete, "/v1/saved?link=/food/recipes/recipe-wraps.html", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
