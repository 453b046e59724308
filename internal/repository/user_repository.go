package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"foodgram/internal/model"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("create user failed: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query user by username failed: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query user by email failed: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query user by id failed: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) List(ctx context.Context, offset, limit int) ([]model.User, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.User{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count users failed: %w", err)
	}

	var users []model.User
	if err := r.db.WithContext(ctx).Order("id ASC").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("list users failed: %w", err)
	}
	return users, total, nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id uint, passwordHash string) error {
	if err := r.db.WithContext(ctx).Model(&model.User{ID: id}).Update("password_hash", passwordHash).Error; err != nil {
		return fmt.Errorf("update password failed: %w", err)
	}
	return nil
}

func (r *UserRepository) UpdateAvatar(ctx context.Context, id uint, avatar string) error {
	if err := r.db.WithContext(ctx).Model(&model.User{ID: id}).Update("avatar", avatar).Error; err != nil {
		return fmt.Errorf("update avatar failed: %w", err)
	}
	return nil
}

// Delete removes the user together with everything that references them:
// their recipes (and those recipes' links, favorites and cart entries), their
// own favorites and cart entries, subscriptions in both directions and their
// activity log.
func (r *UserRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		authored := func() *gorm.DB {
			return tx.Model(&model.Recipe{}).Select("id").Where("author_id = ?", id)
		}
		if err := deleteRecipeLinks(tx, authored); err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&model.Favorite{}).Error; err != nil {
			return fmt.Errorf("delete user favorites failed: %w", err)
		}
		if err := tx.Where("user_id = ?", id).Delete(&model.ShoppingCart{}).Error; err != nil {
			return fmt.Errorf("delete user cart failed: %w", err)
		}
		if err := tx.Where("user_id = ? OR author_id = ?", id, id).Delete(&model.Subscription{}).Error; err != nil {
			return fmt.Errorf("delete user subscriptions failed: %w", err)
		}
		if err := tx.Where("author_id = ?", id).Delete(&model.Recipe{}).Error; err != nil {
			return fmt.Errorf("delete user recipes failed: %w", err)
		}
		if err := tx.Where("user_id = ?", id).Delete(&model.ActivityEvent{}).Error; err != nil {
			return fmt.Errorf("delete user activity failed: %w", err)
		}
		if err := tx.Delete(&model.User{}, id).Error; err != nil {
			return fmt.Errorf("delete user failed: %w", err)
		}
		return nil
	})
	return err
}
