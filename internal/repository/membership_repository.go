package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"foodgram/internal/model"
)

type FavoriteRepository struct {
	db *gorm.DB
}

func NewFavoriteRepository(db *gorm.DB) *FavoriteRepository {
	return &FavoriteRepository{db: db}
}

func (r *FavoriteRepository) Exists(ctx context.Context, userID, recipeID uint) (bool, error) {
	return membershipExists(ctx, r.db, &model.Favorite{}, userID, recipeID)
}

func (r *FavoriteRepository) Create(ctx context.Context, userID, recipeID uint) error {
	fav := &model.Favorite{UserID: userID, RecipeID: recipeID}
	if err := r.db.WithContext(ctx).Omit("User", "Recipe").Create(fav).Error; err != nil {
		return fmt.Errorf("create favorite failed: %w", err)
	}
	return nil
}

func (r *FavoriteRepository) Delete(ctx context.Context, userID, recipeID uint) (int64, error) {
	return membershipDelete(ctx, r.db, &model.Favorite{}, userID, recipeID)
}

func (r *FavoriteRepository) RecipeIDsAmong(ctx context.Context, userID uint, recipeIDs []uint) (map[uint]bool, error) {
	return membershipAmong(ctx, r.db, &model.Favorite{}, userID, recipeIDs)
}

type ShoppingCartRepository struct {
	db *gorm.DB
}

func NewShoppingCartRepository(db *gorm.DB) *ShoppingCartRepository {
	return &ShoppingCartRepository{db: db}
}

func (r *ShoppingCartRepository) Exists(ctx context.Context, userID, recipeID uint) (bool, error) {
	return membershipExists(ctx, r.db, &model.ShoppingCart{}, userID, recipeID)
}

func (r *ShoppingCartRepository) Create(ctx context.Context, userID, recipeID uint) error {
	entry := &model.ShoppingCart{UserID: userID, RecipeID: recipeID}
	if err := r.db.WithContext(ctx).Omit("User", "Recipe").Create(entry).Error; err != nil {
		return fmt.Errorf("create cart entry failed: %w", err)
	}
	return nil
}

func (r *ShoppingCartRepository) Delete(ctx context.Context, userID, recipeID uint) (int64, error) {
	return membershipDelete(ctx, r.db, &model.ShoppingCart{}, userID, recipeID)
}

func (r *ShoppingCartRepository) RecipeIDsAmong(ctx context.Context, userID uint, recipeIDs []uint) (map[uint]bool, error) {
	return membershipAmong(ctx, r.db, &model.ShoppingCart{}, userID, recipeIDs)
}

// ShoppingList sums ingredient amounts over every recipe in the user's cart,
// grouped by ingredient name and unit and ordered by name.
func (r *ShoppingCartRepository) ShoppingList(ctx context.Context, userID uint) ([]model.ShoppingListItem, error) {
	items := make([]model.ShoppingListItem, 0)
	if err := r.db.WithContext(ctx).
		Table("shopping_carts").
		Select("ingredients.name AS name, ingredients.measurement_unit AS measurement_unit, SUM(recipe_ingredients.amount) AS total_amount").
		Joins("JOIN recipe_ingredients ON recipe_ingredients.recipe_id = shopping_carts.recipe_id").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Where("shopping_carts.user_id = ?", userID).
		Group("ingredients.name, ingredients.measurement_unit").
		Order("ingredients.name ASC, ingredients.measurement_unit ASC").
		Scan(&items).Error; err != nil {
		return nil, fmt.Errorf("aggregate shopping list failed: %w", err)
	}
	return items, nil
}

func membershipExists(ctx context.Context, db *gorm.DB, table any, userID, recipeID uint) (bool, error) {
	var count int64
	if err := db.WithContext(ctx).Model(table).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("check membership failed: %w", err)
	}
	return count > 0, nil
}

func membershipDelete(ctx context.Context, db *gorm.DB, table any, userID, recipeID uint) (int64, error) {
	res := db.WithContext(ctx).Where("user_id = ? AND recipe_id = ?", userID, recipeID).Delete(table)
	if res.Error != nil {
		return 0, fmt.Errorf("delete membership failed: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func membershipAmong(ctx context.Context, db *gorm.DB, table any, userID uint, recipeIDs []uint) (map[uint]bool, error) {
	result := make(map[uint]bool, len(recipeIDs))
	if userID == 0 || len(recipeIDs) == 0 {
		return result, nil
	}
	var ids []uint
	if err := db.WithContext(ctx).Model(table).
		Where("user_id = ? AND recipe_id IN ?", userID, recipeIDs).
		Pluck("recipe_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("list membership recipe ids failed: %w", err)
	}
	for _, id := range ids {
		result[id] = true
	}
	return result, nil
}
