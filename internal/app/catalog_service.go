package app

import (
	"context"

	"foodgram/internal/model"
	"foodgram/internal/repository"
)

// DefaultTags are created by the seed command.
var DefaultTags = []model.Tag{
	{Name: "Breakfast", Slug: "breakfast"},
	{Name: "Lunch", Slug: "lunch"},
	{Name: "Dinner", Slug: "dinner"},
}

type CatalogService struct {
	tags        *repository.TagRepository
	ingredients *repository.IngredientRepository
}

func NewCatalogService(tags *repository.TagRepository, ingredients *repository.IngredientRepository) *CatalogService {
	return &CatalogService{tags: tags, ingredients: ingredients}
}

func (s *CatalogService) ListTags(ctx context.Context) ([]model.Tag, error) {
	return s.tags.List(ctx)
}

func (s *CatalogService) GetTag(ctx context.Context, id uint) (*model.Tag, error) {
	tag, err := s.tags.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tag == nil {
		return nil, ErrNotFound
	}
	return tag, nil
}

func (s *CatalogService) SearchIngredients(ctx context.Context, prefix string) ([]model.Ingredient, error) {
	return s.ingredients.Search(ctx, prefix)
}

func (s *CatalogService) GetIngredient(ctx context.Context, id uint) (*model.Ingredient, error) {
	ingredient, err := s.ingredients.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ingredient == nil {
		return nil, ErrNotFound
	}
	return ingredient, nil
}

type SeedResult struct {
	TagsAdded        int64
	IngredientsAdded int64
}

// Seed inserts the default tags and the given ingredients, skipping rows that
// already exist.
func (s *CatalogService) Seed(ctx context.Context, ingredients []model.Ingredient) (SeedResult, error) {
	var result SeedResult

	tags := make([]model.Tag, len(DefaultTags))
	copy(tags, DefaultTags)
	added, err := s.tags.Ensure(ctx, tags)
	if err != nil {
		return result, err
	}
	result.TagsAdded = added

	added, err = s.ingredients.Ensure(ctx, ingredients)
	if err != nil {
		return result, err
	}
	result.IngredientsAdded = added
	return result, nil
}
