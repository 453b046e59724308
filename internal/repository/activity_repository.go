package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"foodgram/internal/model"
)

type ActivityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

func (r *ActivityRepository) Create(ctx context.Context, event *model.ActivityEvent) error {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("create activity event failed: %w", err)
	}
	return nil
}

func (r *ActivityRepository) ListByUserID(ctx context.Context, userID uint, limit int) ([]model.ActivityEvent, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var events []model.ActivityEvent
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").Limit(limit).Find(&events).Error; err != nil {
		return nil, fmt.Errorf("list activity events failed: %w", err)
	}
	return events, nil
}
