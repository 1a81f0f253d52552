package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"recipe_site/internal/app"
	"recipe_site/internal/gallery"
	mealplan "recipe_site/internal/meal_plan"
	"recipe_site/internal/saved"
	"recipe_site/internal/shopping"
)

type AddEntryRequest struct {
	Link     string `json:"link"`
	Text     string `json:"text"`
	Leftover bool   `json:"leftover"`
}

type MoveEntryRequest struct {
	From mealplan.Position `json:"from"`
	To   mealplan.Position `json:"to"`
}

type CheckItemRequest struct {
	Checked bool `json:"checked"`
}

type EditItemRequest struct {
	Text string `json:"text"`
}

type SaveRecipeRequest struct {
	Link string `json:"link" binding:"required"`
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, mealplan.ErrNotFound),
		errors.Is(err, saved.ErrNotFound),
		errors.Is(err, app.ErrUnknownRecipe):
		return http.StatusNotFound
	case errors.Is(err, mealplan.ErrIndexOutOfRange),
		errors.Is(err, mealplan.ErrInvalidTransition),
		errors.Is(err, shopping.ErrIndexOutOfRange),
		errors.Is(err, saved.ErrNoLink):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func fail(c *gin.Context, err error, msg string, sugar *zap.SugaredLogger) {
	status := statusFor(err)
	if status == http.StatusInternalServerError && sugar != nil {
		sugar.Errorw(msg, "error", err)
	}
	c.JSON(status, gin.H{"error": msg + ": " + err.Error()})
}

func ListRecipesHandler(c *gin.Context, a *app.App) {
	var f gallery.Filter
	if err := c.ShouldBindQuery(&f); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid filter"})
		return
	}
	c.JSON(http.StatusOK, gallery.Cards(gallery.Apply(a.Catalog(), f)))
}

func GetRecipeHandler(c *gin.Context, a *app.App) {
	link := c.Query("link")
	r, ok := a.Catalog().Find(link)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "recipe not found"})
		return
	}
	c.JSON(http.StatusOK, r)
}

func SearchRecipesHandler(c *gin.Context, a *app.App) {
	c.JSON(http.StatusOK, gallery.Cards(a.Catalog().Search(c.Query("q"))))
}

func ListIngredientsHandler(c *gin.Context, a *app.App) {
	c.JSON(http.StatusOK, gallery.IngredientOptions(a.Catalog()))
}

func GetPlanHandler(c *gin.Context, a *app.App) {
	p := a.Plan(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"plan": p, "totalCost": p.TotalCost()})
}

func AddEntryHandler(c *gin.Context, a *app.App, sugar *zap.SugaredLogger) {
	var req AddEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil || (req.Link == "" && req.Text == "") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	ctx := c.Request.Context()
	day, slot := c.Param("day"), c.Param("slot")

	var (
		e   mealplan.Entry
		err error
	)
	if req.Link != "" {
		e, err = a.AddRecipe(ctx, day, slot, req.Link, req.Leftover)
	} else {
		e, err = a.AddCustom(ctx, day, slot, req.Text, req.Leftover)
	}
	if err != nil {
		fail(c, err, "failed to add entry", sugar)
		return
	}
	c.JSON(http.StatusCreated, e)
}

func DeleteEntryHandler(c *gin.Context, a *app.App, sugar *zap.SugaredLogger) {
	err := a.RemoveFromPlan(c.Request.Context(), c.Param("day"), c.Param("slot"), c.Param("id"))
	if err != nil {
		fail(c, err, "failed to remove entry", sugar)
		return
	}
	c.Status(http.StatusNoContent)
}

func MoveEntryHandler(c *gin.Context, a *app.App, sugar *zap.SugaredLogger) {
	var req MoveEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	if err := a.MoveInPlan(c.Request.Context(), req.From, req.To); err != nil {
		fail(c, err, "failed to move entry", sugar)
		return
	}
	c.Status(http.StatusNoContent)
}

func ClearPlanHandler(c *gin.Context, a *app.App, sugar *zap.SugaredLogger) {
	if err := a.ClearPlan(c.Request.Context()); err != nil {
		fail(c, err, "failed to clear plan", sugar)
		return
	}
	c.Status(http.StatusNoContent)
}

func GetShoppingListHandler(c *gin.Context, a *app.App, sugar *zap.SugaredLogger) {
	l, err := a.ShoppingList(c.Request.Context())
	if err != nil {
		fail(c, err, "failed to build shopping list", sugar)
		return
	}
	c.JSON(http.StatusOK, l)
}

func indexParam(c *gin.Context) (int, bool) {
	i, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid index"})
		return 0, false
	}
	return i, true
}

func CheckItemHandler(c *gin.Context, a *app.App, sugar *zap.SugaredLogger) {
	i, ok := indexParam(c)
	if !ok {
		return
	}
	var req CheckItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	l, err := a.CheckItem(c.Request.Context(), i, req.Checked)
	if err != nil {
		fail(c, err, "failed to check item", sugar)
		return
	}
	c.JSON(http.StatusOK, l)
}

func MoveItemHandler(c *gin.Context, a *app.App, up bool, sugar *zap.SugaredLogger) {
	i, ok := indexParam(c)
	if !ok {
		return
	}
	var (
		l   shopping.List
		err error
	)
	if up {
		l, err = a.MoveItemUp(c.Request.Context(), i)
	} else {
		l, err = a.MoveItemDown(c.Request.Context(), i)
	}
	if err != nil {
		fail(c, err, "failed to move item", sugar)
		return
	}
	c.JSON(http.StatusOK, l)
}

func EditItemHandler(c *gin.Context, a *app.App, sugar *zap.SugaredLogger) {
	i, ok := indexParam(c)
	if !ok {
		return
	}
	var req EditItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	l, err := a.EditItem(c.Request.Context(), i, req.Text)
	if err != nil {
		fail(c, err, "failed to edit item", sugar)
		return
	}
	c.JSON(http.StatusOK, l)
}

func ListSavedHandler(c *gin.Context, a *app.App) {
	c.JSON(http.StatusOK, a.Saved(c.Request.Context()))
}

func SaveRecipeHandler(c *gin.Context, a *app.App, sugar *zap.SugaredLogger) {
	var req SaveRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	added, err := a.SaveLink(c.Request.Context(), req.Link)
	if err != nil {
		fail(c, err, "failed to save recipe", sugar)
		return
	}
	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"link": req.Link, "added": added})
}

func UnsaveRecipeHandler(c *gin.Context, a *app.App, sugar *zap.SugaredLogger) {
	if err := a.Unsave(c.Request.Context(), c.Query("link")); err != nil {
		fail(c, err, "failed to remove saved recipe", sugar)
		return
	}
	c.Status(http.StatusNoContent)
}
