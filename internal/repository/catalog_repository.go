package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"foodgram/internal/model"
)

type TagRepository struct {
	db *gorm.DB
}

func NewTagRepository(db *gorm.DB) *TagRepository {
	return &TagRepository{db: db}
}

func (r *TagRepository) List(ctx context.Context) ([]model.Tag, error) {
	var tags []model.Tag
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("list tags failed: %w", err)
	}
	return tags, nil
}

func (r *TagRepository) GetByID(ctx context.Context, id uint) (*model.Tag, error) {
	var tag model.Tag
	if err := r.db.WithContext(ctx).First(&tag, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get tag failed: %w", err)
	}
	return &tag, nil
}

// ExistingIDs returns the subset of ids that reference stored tags.
func (r *TagRepository) ExistingIDs(ctx context.Context, ids []uint) ([]uint, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var found []uint
	if err := r.db.WithContext(ctx).Model(&model.Tag{}).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return nil, fmt.Errorf("lookup tag ids failed: %w", err)
	}
	return found, nil
}

// Ensure inserts tags whose slug is not stored yet and reports how many were added.
func (r *TagRepository) Ensure(ctx context.Context, tags []model.Tag) (int64, error) {
	if len(tags) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&tags)
	if res.Error != nil {
		return 0, fmt.Errorf("ensure tags failed: %w", res.Error)
	}
	return res.RowsAffected, nil
}

type IngredientRepository struct {
	db *gorm.DB
}

func NewIngredientRepository(db *gorm.DB) *IngredientRepository {
	return &IngredientRepository{db: db}
}

// Search lists ingredients whose name starts with prefix, case-insensitively.
// An empty prefix lists everything.
func (r *IngredientRepository) Search(ctx context.Context, prefix string) ([]model.Ingredient, error) {
	q := r.db.WithContext(ctx).Model(&model.Ingredient{})
	if prefix = strings.TrimSpace(prefix); prefix != "" {
		q = q.Where("LOWER(name) LIKE ? ESCAPE '!'", escapeLike(strings.ToLower(prefix))+"%")
	}
	var list []model.Ingredient
	if err := q.Order("name ASC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("search ingredients failed: %w", err)
	}
	return list, nil
}

func (r *IngredientRepository) GetByID(ctx context.Context, id uint) (*model.Ingredient, error) {
	var ingredient model.Ingredient
	if err := r.db.WithContext(ctx).First(&ingredient, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get ingredient failed: %w", err)
	}
	return &ingredient, nil
}

// ExistingIDs returns the subset of ids that reference stored ingredients.
func (r *IngredientRepository) ExistingIDs(ctx context.Context, ids []uint) ([]uint, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var found []uint
	if err := r.db.WithContext(ctx).Model(&model.Ingredient{}).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return nil, fmt.Errorf("lookup ingredient ids failed: %w", err)
	}
	return found, nil
}

// Ensure inserts ingredients missing from the catalog in batches and reports
// how many were added.
func (r *IngredientRepository) Ensure(ctx context.Context, ingredients []model.Ingredient) (int64, error) {
	if len(ingredients) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(&ingredients, 200)
	if res.Error != nil {
		return 0, fmt.Errorf("ensure ingredients failed: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(s)
}
