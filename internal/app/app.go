package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	mealplan "recipe_site/internal/meal_plan"
	"recipe_site/internal/recipes"
	"recipe_site/internal/saved"
	"recipe_site/internal/shopping"
	"recipe_site/internal/store"
)

var ErrUnknownRecipe = errors.New("recipe not in catalog")

// KV is the slice of the local store the app needs.
type KV interface {
	GetJSON(ctx context.Context, key string, v any) bool
	SetJSON(ctx context.Context, key string, v any) error
}

// App is the stateful shell over the pure planner, shopping and saved-recipe
// logic. Each operation loads state, applies one mutation, persists it and
// runs any cascade before returning.
type App struct {
	kv  KV
	log *zap.SugaredLogger

	mu      sync.Mutex
	catalog recipes.Catalog
}

func New(kv KV, catalog recipes.Catalog, sugar *zap.SugaredLogger) *App {
	return &App{kv: kv, catalog: catalog, log: sugar}
}

func (a *App) Catalog() recipes.Catalog {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.catalog
}

// SetCatalog replaces the catalog and refreshes the shopping list against it.
func (a *App) SetCatalog(ctx context.Context, catalog recipes.Catalog) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.catalog = catalog
	_, err := a.refreshShoppingLocked(ctx)
	return err
}

// Plan returns the stored meal plan, or an empty week when none is stored
// or the stored value is unreadable.
func (a *App) Plan(ctx context.Context) *mealplan.Plan {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.loadPlan(ctx)
}

func (a *App) loadPlan(ctx context.Context) *mealplan.Plan {
	p := mealplan.New()
	if !a.kv.GetJSON(ctx, store.KeyMealPlan, p) {
		return mealplan.NewWeek()
	}
	if p.EnsureIDs() {
		// entries stored without ids get them once; later loads must see the same ids
		if err := a.kv.SetJSON(ctx, store.KeyMealPlan, p); err != nil && a.log != nil {
			a.log.Warnw("failed to persist meal plan ids", "error", err)
		}
	}
	return p
}

// savePlan persists p and recomputes the shopping list.
func (a *App) savePlan(ctx context.Context, p *mealplan.Plan) error {
	if err := a.kv.SetJSON(ctx, store.KeyMealPlan, p); err != nil {
		return fmt.Errorf("save meal plan: %w", err)
	}
	if _, err := a.refreshShoppingLocked(ctx); err != nil {
		return err
	}
	return nil
}

func (a *App) mutatePlan(ctx context.Context, fn func(p *mealplan.Plan) error) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	p := a.loadPlan(ctx)
	if err := fn(p); err != nil {
		return err
	}
	return a.savePlan(ctx, p)
}

func (a *App) AddToPlan(ctx context.Context, day, slot string, e mealplan.Entry) (mealplan.Entry, error) {
	var added mealplan.Entry
	err := a.mutatePlan(ctx, func(p *mealplan.Plan) error {
		added = p.Add(day, slot, e)
		return nil
	})
	if err == nil && a.log != nil {
		a.log.Infow("added to meal plan", "day", day, "slot", slot, "title", added.Title, "id", added.ID)
	}
	return added, err
}

// AddRecipe plans the catalog recipe addressed by link.
func (a *App) AddRecipe(ctx context.Context, day, slot, link string, leftover bool) (mealplan.Entry, error) {
	r, ok := a.Catalog().Find(link)
	if !ok {
		return mealplan.Entry{}, fmt.Errorf("%s: %w", link, ErrUnknownRecipe)
	}
	e := mealplan.NewRecipeEntry(r)
	e.Leftover = leftover
	return a.AddToPlan(ctx, day, slot, e)
}

// AddCustom plans a free-text item.
func (a *App) AddCustom(ctx context.Context, day, slot, text string, leftover bool) (mealplan.Entry, error) {
	e := mealplan.NewCustomEntry(text)
	if e.Title == "" {
		return mealplan.Entry{}, errors.New("custom item needs text")
	}
	e.Leftover = leftover
	return a.AddToPlan(ctx, day, slot, e)
}

// CommitEditor adds the editor's pending entry and resets it.
func (a *App) CommitEditor(ctx context.Context, ed *mealplan.SlotEditor) (mealplan.Entry, error) {
	var added mealplan.Entry
	err := a.mutatePlan(ctx, func(p *mealplan.Plan) error {
		var err error
		added, err = ed.Commit(p)
		return err
	})
	return added, err
}

func (a *App) RemoveFromPlan(ctx context.Context, day, slot, id string) error {
	return a.mutatePlan(ctx, func(p *mealplan.Plan) error {
		_, err := p.Remove(day, slot, id)
		return err
	})
}

func (a *App) MoveInPlan(ctx context.Context, from, to mealplan.Position) error {
	return a.mutatePlan(ctx, func(p *mealplan.Plan) error {
		_, err := p.Move(from, to)
		return err
	})
}

// ClearPlan resets the plan to an empty week.
func (a *App) ClearPlan(ctx context.Context) error {
	return a.mutatePlan(ctx, func(p *mealplan.Plan) error {
		*p = *mealplan.NewWeek()
		return nil
	})
}

// ShoppingItems aggregates the current plan without touching manual state.
func (a *App) ShoppingItems(ctx context.Context) []shopping.Item {
	a.mu.Lock()
	defer a.mu.Unlock()
	return shopping.Aggregate(a.loadPlan(ctx), a.catalog)
}

// ShoppingList recomputes the list, merges the manual state and persists it.
func (a *App) ShoppingList(ctx context.Context) (shopping.List, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.refreshShoppingLocked(ctx)
}

func (a *App) refreshShoppingLocked(ctx context.Context) (shopping.List, error) {
	var prev shopping.List
	a.kv.GetJSON(ctx, store.KeyShoppingList, &prev)

	list := shopping.Reconcile(shopping.Aggregate(a.loadPlan(ctx), a.catalog), prev)
	if err := a.kv.SetJSON(ctx, store.KeyShoppingList, list); err != nil {
		return list, fmt.Errorf("save shopping list: %w", err)
	}
	return list, nil
}

func (a *App) mutateShopping(ctx context.Context, fn func(l *shopping.List) error) (shopping.List, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	l, err := a.refreshShoppingLocked(ctx)
	if err != nil {
		return l, err
	}
	if err := fn(&l); err != nil {
		return l, err
	}
	if err := a.kv.SetJSON(ctx, store.KeyShoppingList, l); err != nil {
		return l, fmt.Errorf("save shopping list: %w", err)
	}
	return l, nil
}

func (a *App) CheckItem(ctx context.Context, i int, on bool) (shopping.List, error) {
	return a.mutateShopping(ctx, func(l *shopping.List) error { return l.Check(i, on) })
}

func (a *App) MoveItemUp(ctx context.Context, i int) (shopping.List, error) {
	return a.mutateShopping(ctx, func(l *shopping.List) error { return l.MoveUp(i) })
}

func (a *App) MoveItemDown(ctx context.Context, i int) (shopping.List, error) {
	return a.mutateShopping(ctx, func(l *shopping.List) error { return l.MoveDown(i) })
}

func (a *App) EditItem(ctx context.Context, i int, text string) (shopping.List, error) {
	return a.mutateShopping(ctx, func(l *shopping.List) error { return l.Edit(i, text) })
}

// Saved returns the saved recipes, empty when none are stored or the
// stored value is unreadable.
func (a *App) Saved(ctx context.Context) saved.List {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.loadSaved(ctx)
}

func (a *App) loadSaved(ctx context.Context) saved.List {
	var l saved.List
	if !a.kv.GetJSON(ctx, store.KeySavedRecipes, &l) {
		return saved.List{}
	}
	return l.Dedupe()
}

// SaveRecipe stores a snapshot of r and reports whether it was new.
func (a *App) SaveRecipe(ctx context.Context, r recipes.Recipe) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	l, added, err := a.loadSaved(ctx).Save(r)
	if err != nil {
		return false, err
	}
	if err := a.kv.SetJSON(ctx, store.KeySavedRecipes, l); err != nil {
		return false, fmt.Errorf("save recipes: %w", err)
	}
	return added, nil
}

// SaveLink saves the catalog recipe addressed by link.
func (a *App) SaveLink(ctx context.Context, link string) (bool, error) {
	r, ok := a.Catalog().Find(link)
	if !ok {
		return false, fmt.Errorf("%s: %w", link, ErrUnknownRecipe)
	}
	return a.SaveRecipe(ctx, r)
}

func (a *App) Unsave(ctx context.Context, link string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	l, err := a.loadSaved(ctx).Remove(link)
	if err != nil {
		return err
	}
	if err := a.kv.SetJSON(ctx, store.KeySavedRecipes, l); err != nil {
		return fmt.Errorf("save recipes: %w", err)
	}
	return nil
}
