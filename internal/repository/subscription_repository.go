package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"foodgram/internal/model"
)

type SubscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

func (r *SubscriptionRepository) Exists(ctx context.Context, userID, authorID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Subscription{}).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("check subscription failed: %w", err)
	}
	return count > 0, nil
}

func (r *SubscriptionRepository) Create(ctx context.Context, sub *model.Subscription) error {
	if err := r.db.WithContext(ctx).Omit("User", "Author").Create(sub).Error; err != nil {
		return fmt.Errorf("create subscription failed: %w", err)
	}
	return nil
}

// Delete returns the number of removed rows.
func (r *SubscriptionRepository) Delete(ctx context.Context, userID, authorID uint) (int64, error) {
	res := r.db.WithContext(ctx).Where("user_id = ? AND author_id = ?", userID, authorID).Delete(&model.Subscription{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete subscription failed: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// ListAuthors returns the authors userID follows, newest subscription first.
func (r *SubscriptionRepository) ListAuthors(ctx context.Context, userID uint, offset, limit int) ([]model.User, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Subscription{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count subscriptions failed: %w", err)
	}

	var authors []model.User
	if err := r.db.WithContext(ctx).
		Joins("JOIN subscriptions ON subscriptions.author_id = users.id").
		Where("subscriptions.user_id = ?", userID).
		Order("subscriptions.id DESC").
		Offset(offset).Limit(limit).
		Find(&authors).Error; err != nil {
		return nil, 0, fmt.Errorf("list subscribed authors failed: %w", err)
	}
	return authors, total, nil
}

// SubscribedAmong reports which of authorIDs userID follows.
func (r *SubscriptionRepository) SubscribedAmong(ctx context.Context, userID uint, authorIDs []uint) (map[uint]bool, error) {
	result := make(map[uint]bool, len(authorIDs))
	if userID == 0 || len(authorIDs) == 0 {
		return result, nil
	}
	var ids []uint
	if err := r.db.WithContext(ctx).Model(&model.Subscription{}).
		Where("user_id = ? AND author_id IN ?", userID, authorIDs).
		Pluck("author_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("list subscribed author ids failed: %w", err)
	}
	for _, id := range ids {
		result[id] = true
	}
	return result, nil
}
