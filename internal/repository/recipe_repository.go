package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"foodgram/internal/model"
)

// RecipeFilter narrows List. Zero values disable a filter.
type RecipeFilter struct {
	TagSlugs    []string
	AuthorID    uint
	FavoritedBy uint
	InCartOf    uint
	Offset      int
	Limit       int
}

type RecipeRepository struct {
	db *gorm.DB
}

func NewRecipeRepository(db *gorm.DB) *RecipeRepository {
	return &RecipeRepository{db: db}
}

// Create stores the recipe row and its ingredient and tag links in one transaction.
func (r *RecipeRepository) Create(ctx context.Context, recipe *model.Recipe, ingredients []model.RecipeIngredient, tagIDs []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(recipe).Error; err != nil {
			return fmt.Errorf("create recipe failed: %w", err)
		}
		return replaceLinks(tx, recipe.ID, ingredients, tagIDs)
	})
}

// Update overwrites the scalar fields and replaces every ingredient and tag
// link. The previous links are removed, never merged.
func (r *RecipeRepository) Update(ctx context.Context, recipe *model.Recipe, ingredients []model.RecipeIngredient, tagIDs []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Recipe{ID: recipe.ID}).Updates(map[string]any{
			"name":         recipe.Name,
			"text":         recipe.Text,
			"image":        recipe.Image,
			"cooking_time": recipe.CookingTime,
		}).Error; err != nil {
			return fmt.Errorf("update recipe failed: %w", err)
		}
		return replaceLinks(tx, recipe.ID, ingredients, tagIDs)
	})
}

func replaceLinks(tx *gorm.DB, recipeID uint, ingredients []model.RecipeIngredient, tagIDs []uint) error {
	if err := tx.Where("recipe_id = ?", recipeID).Delete(&model.RecipeIngredient{}).Error; err != nil {
		return fmt.Errorf("clear recipe ingredients failed: %w", err)
	}
	if err := tx.Where("recipe_id = ?", recipeID).Delete(&model.RecipeTag{}).Error; err != nil {
		return fmt.Errorf("clear recipe tags failed: %w", err)
	}

	if len(ingredients) > 0 {
		rows := make([]model.RecipeIngredient, len(ingredients))
		for i, item := range ingredients {
			rows[i] = model.RecipeIngredient{
				RecipeID:     recipeID,
				IngredientID: item.IngredientID,
				Amount:       item.Amount,
			}
		}
		if err := tx.Omit(clause.Associations).Create(&rows).Error; err != nil {
			return fmt.Errorf("insert recipe ingredients failed: %w", err)
		}
	}

	if len(tagIDs) > 0 {
		rows := make([]model.RecipeTag, len(tagIDs))
		for i, id := range tagIDs {
			rows[i] = model.RecipeTag{RecipeID: recipeID, TagID: id}
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("insert recipe tags failed: %w", err)
		}
	}
	return nil
}

// deleteRecipeLinks removes every row pointing at the recipes selected by
// scope. scope builds a fresh "SELECT id FROM recipes ..." subquery per call.
func deleteRecipeLinks(tx *gorm.DB, scope func() *gorm.DB) error {
	if err := tx.Where("recipe_id IN (?)", scope()).Delete(&model.RecipeTag{}).Error; err != nil {
		return fmt.Errorf("delete recipe tags failed: %w", err)
	}
	if err := tx.Where("recipe_id IN (?)", scope()).Delete(&model.RecipeIngredient{}).Error; err != nil {
		return fmt.Errorf("delete recipe ingredients failed: %w", err)
	}
	if err := tx.Where("recipe_id IN (?)", scope()).Delete(&model.Favorite{}).Error; err != nil {
		return fmt.Errorf("delete recipe favorites failed: %w", err)
	}
	if err := tx.Where("recipe_id IN (?)", scope()).Delete(&model.ShoppingCart{}).Error; err != nil {
		return fmt.Errorf("delete recipe cart entries failed: %w", err)
	}
	return nil
}

func (r *RecipeRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		scope := func() *gorm.DB {
			return tx.Model(&model.Recipe{}).Select("id").Where("id = ?", id)
		}
		if err := deleteRecipeLinks(tx, scope); err != nil {
			return err
		}
		if err := tx.Delete(&model.Recipe{}, id).Error; err != nil {
			return fmt.Errorf("delete recipe failed: %w", err)
		}
		return nil
	})
}

func (r *RecipeRepository) withDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Author").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("name ASC") }).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Ingredients.Ingredient")
}

// GetByID loads the recipe with its author, tags and ingredients.
func (r *RecipeRepository) GetByID(ctx context.Context, id uint) (*model.Recipe, error) {
	var recipe model.Recipe
	if err := r.withDetails(r.db.WithContext(ctx)).First(&recipe, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get recipe failed: %w", err)
	}
	return &recipe, nil
}

// GetBasicByID loads the recipe row only.
func (r *RecipeRepository) GetBasicByID(ctx context.Context, id uint) (*model.Recipe, error) {
	var recipe model.Recipe
	if err := r.db.WithContext(ctx).First(&recipe, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get recipe failed: %w", err)
	}
	return &recipe, nil
}

func (r *RecipeRepository) List(ctx context.Context, filter RecipeFilter) ([]model.Recipe, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Recipe{})
	if filter.AuthorID != 0 {
		q = q.Where("recipes.author_id = ?", filter.AuthorID)
	}
	if len(filter.TagSlugs) > 0 {
		q = q.Where("recipes.id IN (?)", r.db.
			Table("recipe_tags").
			Select("recipe_tags.recipe_id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ?", filter.TagSlugs))
	}
	if filter.FavoritedBy != 0 {
		q = q.Where("recipes.id IN (?)", r.db.Model(&model.Favorite{}).Select("recipe_id").Where("user_id = ?", filter.FavoritedBy))
	}
	if filter.InCartOf != 0 {
		q = q.Where("recipes.id IN (?)", r.db.Model(&model.ShoppingCart{}).Select("recipe_id").Where("user_id = ?", filter.InCartOf))
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count recipes failed: %w", err)
	}

	var recipes []model.Recipe
	if err := r.withDetails(q).Order("recipes.id DESC").Offset(filter.Offset).Limit(filter.Limit).Find(&recipes).Error; err != nil {
		return nil, 0, fmt.Errorf("list recipes failed: %w", err)
	}
	return recipes, total, nil
}

// ListByAuthor returns the newest recipes of an author; limit <= 0 means all.
func (r *RecipeRepository) ListByAuthor(ctx context.Context, authorID uint, limit int) ([]model.Recipe, error) {
	q := r.db.WithContext(ctx).Where("author_id = ?", authorID).Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var recipes []model.Recipe
	if err := q.Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("list author recipes failed: %w", err)
	}
	return recipes, nil
}

// CountByAuthors maps each author id to the number of recipes they own.
func (r *RecipeRepository) CountByAuthors(ctx context.Context, authorIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(authorIDs))
	if len(authorIDs) == 0 {
		return counts, nil
	}
	var rows []struct {
		AuthorID uint
		Total    int64
	}
	if err := r.db.WithContext(ctx).Model(&model.Recipe{}).
		Select("author_id, COUNT(*) AS total").
		Where("author_id IN ?", authorIDs).
		Group("author_id").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("count author recipes failed: %w", err)
	}
	for _, row := range rows {
		counts[row.AuthorID] = row.Total
	}
	return counts, nil
}
