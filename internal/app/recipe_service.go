package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"foodgram/internal/logging"
	"foodgram/internal/metrics"
	"foodgram/internal/model"
	"foodgram/internal/repository"
	"foodgram/internal/storage"
)

type ImageStore interface {
	SaveImage(ctx context.Context, prefix, dataURI string) (string, error)
	DeleteImage(ctx context.Context, url string) error
}

// RecipeDetail is a recipe plus the viewer-dependent flags shown with it.
type RecipeDetail struct {
	model.Recipe
	IsFavorited      bool
	IsInShoppingCart bool
	AuthorSubscribed bool
}

type RecipeQuery struct {
	TagSlugs      []string
	AuthorID      uint
	OnlyFavorited bool
	OnlyInCart    bool
	Offset        int
	Limit         int
}

type membershipStore interface {
	Exists(ctx context.Context, userID, recipeID uint) (bool, error)
	Create(ctx context.Context, userID, recipeID uint) error
	Delete(ctx context.Context, userID, recipeID uint) (int64, error)
}

type membership struct {
	name        string
	store       membershipStore
	errExists   error
	errMissing  error
	addedKind   string
	removedKind string
}

type RecipeService struct {
	recipes   *repository.RecipeRepository
	favorites *repository.FavoriteRepository
	carts     *repository.ShoppingCartRepository
	subs      *repository.SubscriptionRepository
	validator *RecipeValidator
	images    ImageStore
	activity  *ActivityLog
	publicURL string

	favorite membership
	cart     membership
}

func NewRecipeService(
	recipes *repository.RecipeRepository,
	favorites *repository.FavoriteRepository,
	carts *repository.ShoppingCartRepository,
	subs *repository.SubscriptionRepository,
	validator *RecipeValidator,
	images ImageStore,
	activity *ActivityLog,
	publicURL string,
) *RecipeService {
	return &RecipeService{
		recipes:   recipes,
		favorites: favorites,
		carts:     carts,
		subs:      subs,
		validator: validator,
		images:    images,
		activity:  activity,
		publicURL: strings.TrimRight(publicURL, "/"),
		favorite: membership{
			name:        "favorite",
			store:       favorites,
			errExists:   ErrAlreadyFavorited,
			errMissing:  ErrNotFavorited,
			addedKind:   model.ActivityFavoriteAdded,
			removedKind: model.ActivityFavoriteRemoved,
		},
		cart: membership{
			name:        "shopping_cart",
			store:       carts,
			errExists:   ErrAlreadyInCart,
			errMissing:  ErrNotInCart,
			addedKind:   model.ActivityCartAdded,
			removedKind: model.ActivityCartRemoved,
		},
	}
}

// List returns one page of recipes, newest first. viewerID is 0 for
// anonymous callers, who get an empty result for the favorite and cart
// filters.
func (s *RecipeService) List(ctx context.Context, viewerID uint, q RecipeQuery) ([]RecipeDetail, int64, error) {
	if viewerID == 0 && (q.OnlyFavorited || q.OnlyInCart) {
		return []RecipeDetail{}, 0, nil
	}

	filter := repository.RecipeFilter{
		TagSlugs: q.TagSlugs,
		AuthorID: q.AuthorID,
		Offset:   q.Offset,
		Limit:    q.Limit,
	}
	if q.OnlyFavorited {
		filter.FavoritedBy = viewerID
	}
	if q.OnlyInCart {
		filter.InCartOf = viewerID
	}

	recipes, total, err := s.recipes.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	details, err := s.decorate(ctx, viewerID, recipes)
	if err != nil {
		return nil, 0, err
	}
	return details, total, nil
}

func (s *RecipeService) Get(ctx context.Context, viewerID, id uint) (*RecipeDetail, error) {
	recipe, err := s.recipes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if recipe == nil {
		return nil, ErrNotFound
	}
	details, err := s.decorate(ctx, viewerID, []model.Recipe{*recipe})
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

func (s *RecipeService) decorate(ctx context.Context, viewerID uint, recipes []model.Recipe) ([]RecipeDetail, error) {
	details := make([]RecipeDetail, len(recipes))
	if len(recipes) == 0 {
		return details, nil
	}

	recipeIDs := make([]uint, len(recipes))
	authorIDs := make([]uint, len(recipes))
	for i, r := range recipes {
		recipeIDs[i] = r.ID
		authorIDs[i] = r.AuthorID
	}

	favorited, err := s.favorites.RecipeIDsAmong(ctx, viewerID, recipeIDs)
	if err != nil {
		return nil, err
	}
	inCart, err := s.carts.RecipeIDsAmong(ctx, viewerID, recipeIDs)
	if err != nil {
		return nil, err
	}
	subscribed, err := s.subs.SubscribedAmong(ctx, viewerID, authorIDs)
	if err != nil {
		return nil, err
	}

	for i, r := range recipes {
		details[i] = RecipeDetail{
			Recipe:           r,
			IsFavorited:      favorited[r.ID],
			IsInShoppingCart: inCart[r.ID],
			AuthorSubscribed: subscribed[r.AuthorID],
		}
	}
	return details, nil
}

func (s *RecipeService) Create(ctx context.Context, authorID uint, in RecipeInput) (*RecipeDetail, error) {
	draft, err := s.validator.Validate(ctx, in, false)
	if err != nil {
		return nil, err
	}

	imageURL, err := s.saveImage(ctx, draft.Image)
	if err != nil {
		return nil, err
	}

	recipe := &model.Recipe{
		AuthorID:    authorID,
		Name:        draft.Name,
		Text:        draft.Text,
		Image:       imageURL,
		CookingTime: draft.CookingTime,
	}
	if err := s.recipes.Create(ctx, recipe, draft.Ingredients, draft.TagIDs); err != nil {
		s.discardImage(ctx, imageURL)
		return nil, err
	}

	metrics.RecipeWrites.WithLabelValues("create").Inc()
	s.activity.Record(ctx, authorID, model.ActivityRecipeCreated, recipe.ID)
	logging.Ctx(ctx).Info().Uint("recipe_id", recipe.ID).Uint("author_id", authorID).Msg("recipe created")
	return s.Get(ctx, authorID, recipe.ID)
}

// Update applies a full (PUT) or partial (PATCH) write. Ingredient and tag
// links are always replaced, never merged.
func (s *RecipeService) Update(ctx context.Context, userID, id uint, in RecipeInput, partial bool) (*RecipeDetail, error) {
	recipe, err := s.ownedRecipe(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	draft, err := s.validator.Validate(ctx, in, partial)
	if err != nil {
		return nil, err
	}

	oldImage := ""
	if draft.HasImage {
		imageURL, err := s.saveImage(ctx, draft.Image)
		if err != nil {
			return nil, err
		}
		oldImage = recipe.Image
		recipe.Image = imageURL
	}
	if draft.HasName {
		recipe.Name = draft.Name
	}
	if draft.HasText {
		recipe.Text = draft.Text
	}
	if draft.HasCookingTime {
		recipe.CookingTime = draft.CookingTime
	}

	if err := s.recipes.Update(ctx, recipe, draft.Ingredients, draft.TagIDs); err != nil {
		if oldImage != "" {
			s.discardImage(ctx, recipe.Image)
		}
		return nil, err
	}
	if oldImage != "" {
		s.discardImage(ctx, oldImage)
	}

	metrics.RecipeWrites.WithLabelValues("update").Inc()
	s.activity.Record(ctx, userID, model.ActivityRecipeUpdated, recipe.ID)
	return s.Get(ctx, userID, recipe.ID)
}

func (s *RecipeService) Delete(ctx context.Context, userID, id uint) error {
	recipe, err := s.ownedRecipe(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.recipes.Delete(ctx, recipe.ID); err != nil {
		return err
	}
	s.discardImage(ctx, recipe.Image)

	metrics.RecipeWrites.WithLabelValues("delete").Inc()
	s.activity.Record(ctx, userID, model.ActivityRecipeDeleted, recipe.ID)
	return nil
}

func (s *RecipeService) ownedRecipe(ctx context.Context, userID, id uint) (*model.Recipe, error) {
	recipe, err := s.recipes.GetBasicByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if recipe == nil {
		return nil, ErrNotFound
	}
	if recipe.AuthorID != userID {
		return nil, ErrForbidden
	}
	return recipe, nil
}

func (s *RecipeService) saveImage(ctx context.Context, dataURI string) (string, error) {
	url, err := s.images.SaveImage(ctx, "recipes", dataURI)
	if errors.Is(err, storage.ErrInvalidImage) {
		return "", FieldError("image", "Upload a valid image.")
	}
	return url, err
}

func (s *RecipeService) discardImage(ctx context.Context, url string) {
	if url == "" {
		return
	}
	if err := s.images.DeleteImage(ctx, url); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("image", url).Msg("delete image failed")
	}
}

func (s *RecipeService) AddFavorite(ctx context.Context, userID, recipeID uint) (*model.Recipe, error) {
	return s.add(ctx, s.favorite, userID, recipeID)
}

func (s *RecipeService) RemoveFavorite(ctx context.Context, userID, recipeID uint) error {
	return s.remove(ctx, s.favorite, userID, recipeID)
}

func (s *RecipeService) AddToCart(ctx context.Context, userID, recipeID uint) (*model.Recipe, error) {
	return s.add(ctx, s.cart, userID, recipeID)
}

func (s *RecipeService) RemoveFromCart(ctx context.Context, userID, recipeID uint) error {
	return s.remove(ctx, s.cart, userID, recipeID)
}

func (s *RecipeService) add(ctx context.Context, m membership, userID, recipeID uint) (*model.Recipe, error) {
	recipe, err := s.recipes.GetBasicByID(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	if recipe == nil {
		return nil, ErrNotFound
	}

	err = s.insertMembership(ctx, m, userID, recipeID)
	metrics.RecordMembership(m.name, "add", err)
	if err != nil {
		return nil, err
	}
	s.activity.Record(ctx, userID, m.addedKind, recipeID)
	return recipe, nil
}

func (s *RecipeService) insertMembership(ctx context.Context, m membership, userID, recipeID uint) error {
	exists, err := m.store.Exists(ctx, userID, recipeID)
	if err != nil {
		return err
	}
	if exists {
		return m.errExists
	}
	if err := m.store.Create(ctx, userID, recipeID); err != nil {
		switch {
		case errors.Is(err, gorm.ErrDuplicatedKey):
			return m.errExists
		case errors.Is(err, gorm.ErrForeignKeyViolated):
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *RecipeService) remove(ctx context.Context, m membership, userID, recipeID uint) error {
	recipe, err := s.recipes.GetBasicByID(ctx, recipeID)
	if err != nil {
		return err
	}
	if recipe == nil {
		return ErrNotFound
	}

	removed, err := m.store.Delete(ctx, userID, recipeID)
	if err != nil {
		return err
	}
	if removed == 0 {
		metrics.RecordMembership(m.name, "remove", m.errMissing)
		return m.errMissing
	}
	metrics.RecordMembership(m.name, "remove", nil)
	s.activity.Record(ctx, userID, m.removedKind, recipeID)
	return nil
}

// ShoppingList renders the aggregated ingredients of the user's cart.
func (s *RecipeService) ShoppingList(ctx context.Context, userID uint) (string, error) {
	items, err := s.carts.ShoppingList(ctx, userID)
	if err != nil {
		return "", err
	}
	metrics.ShoppingListDownloads.Inc()
	s.activity.Record(ctx, userID, model.ActivityShoppingListSent, 0)
	return RenderShoppingList(items), nil
}

// ShortLink returns the public short URL of a recipe. The code is the recipe
// id in base 36.
func (s *RecipeService) ShortLink(ctx context.Context, id uint) (string, error) {
	recipe, err := s.recipes.GetBasicByID(ctx, id)
	if err != nil {
		return "", err
	}
	if recipe == nil {
		return "", ErrNotFound
	}
	return fmt.Sprintf("%s/s/%s", s.publicURL, strconv.FormatUint(uint64(recipe.ID), 36)), nil
}

// ResolveShortLink maps a short code back to the recipe id.
func (s *RecipeService) ResolveShortLink(ctx context.Context, code string) (uint, error) {
	id, err := strconv.ParseUint(strings.ToLower(code), 36, 32)
	if err != nil || id == 0 {
		return 0, ErrNotFound
	}
	recipe, err := s.recipes.GetBasicByID(ctx, uint(id))
	if err != nil {
		return 0, err
	}
	if recipe == nil {
		return 0, ErrNotFound
	}
	return recipe.ID, nil
}
