package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"foodgram/internal/app"
	"foodgram/internal/model"
	"foodgram/internal/pkg/pagination"
	"foodgram/internal/transport/http/response"
)

type RecipeHandler struct {
	recipes  *app.RecipeService
	pageSize int
}

func NewRecipeHandler(recipes *app.RecipeService, pageSize int) *RecipeHandler {
	return &RecipeHandler{recipes: recipes, pageSize: pageSize}
}

func (h *RecipeHandler) List(c *gin.Context) {
	params := pagination.Parse(c.Request.URL.Query(), h.pageSize)
	query := app.RecipeQuery{
		TagSlugs:      c.QueryArray("tags"),
		OnlyFavorited: queryFlag(c, "is_favorited"),
		OnlyInCart:    queryFlag(c, "is_in_shopping_cart"),
		Offset:        params.Offset(),
		Limit:         params.Limit,
	}
	if raw := c.Query("author"); raw != "" {
		author, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			response.Validation(c, map[string][]string{"author": {"Select a valid choice."}})
			return
		}
		query.AuthorID = uint(author)
	}

	details, total, err := h.recipes.List(c.Request.Context(), viewerID(c), query)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, pagination.New(requestURL(c), params, total, toRecipeDTOs(details)))
}

func (h *RecipeHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	detail, err := h.recipes.Get(c.Request.Context(), viewerID(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRecipeDTO(*detail))
}

func (h *RecipeHandler) Create(c *gin.Context) {
	var in app.RecipeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BindingError(c, err)
		return
	}
	detail, err := h.recipes.Create(c.Request.Context(), viewerID(c), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toRecipeDTO(*detail))
}

// Update serves both PUT and PATCH; only PATCH may omit scalar fields.
func (h *RecipeHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var in app.RecipeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BindingError(c, err)
		return
	}
	partial := c.Request.Method == http.MethodPatch
	detail, err := h.recipes.Update(c.Request.Context(), viewerID(c), id, in, partial)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRecipeDTO(*detail))
}

func (h *RecipeHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.recipes.Delete(c.Request.Context(), viewerID(c), id); err != nil {
		writeError(c, err)
		return
	}
	response.NoContent(c)
}

func (h *RecipeHandler) AddFavorite(c *gin.Context) {
	h.addMembership(c, h.recipes.AddFavorite)
}

func (h *RecipeHandler) RemoveFavorite(c *gin.Context) {
	h.removeMembership(c, h.recipes.RemoveFavorite)
}

func (h *RecipeHandler) AddToCart(c *gin.Context) {
	h.addMembership(c, h.recipes.AddToCart)
}

func (h *RecipeHandler) RemoveFromCart(c *gin.Context) {
	h.removeMembership(c, h.recipes.RemoveFromCart)
}

func (h *RecipeHandler) addMembership(c *gin.Context, add func(ctx context.Context, userID, recipeID uint) (*model.Recipe, error)) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	recipe, err := add(c.Request.Context(), viewerID(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toShortRecipeDTO(*recipe))
}

func (h *RecipeHandler) removeMembership(c *gin.Context, remove func(ctx context.Context, userID, recipeID uint) error) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := remove(c.Request.Context(), viewerID(c), id); err != nil {
		writeError(c, err)
		return
	}
	response.NoContent(c)
}

// DownloadShoppingCart sends the aggregated ingredient list as a text attachment.
func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	text, err := h.recipes.ShoppingList(c.Request.Context(), viewerID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", app.ShoppingListFilename))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(text))
}

func (h *RecipeHandler) GetLink(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	link, err := h.recipes.ShortLink(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"short-link": link})
}

func (h *RecipeHandler) ResolveShortLink(c *gin.Context) {
	id, err := h.recipes.ResolveShortLink(c.Request.Context(), c.Param("code"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.Redirect(http.StatusFound, fmt.Sprintf("/recipes/%d", id))
}

func queryFlag(c *gin.Context, name string) bool {
	switch c.Query(name) {
	case "1", "true", "True":
		return true
	}
	return false
}
