package model

import "time"

const (
	ActivityRecipeCreated    = "recipe.created"
	ActivityRecipeUpdated    = "recipe.updated"
	ActivityRecipeDeleted    = "recipe.deleted"
	ActivityFavoriteAdded    = "favorite.added"
	ActivityFavoriteRemoved  = "favorite.removed"
	ActivityCartAdded        = "cart.added"
	ActivityCartRemoved      = "cart.removed"
	ActivitySubscribed       = "subscription.added"
	ActivityUnsubscribed     = "subscription.removed"
	ActivityShoppingListSent = "shopping_list.downloaded"
)

type ActivityEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Kind      string    `gorm:"size:64;not null" json:"kind"`
	TargetID  uint      `json:"target_id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}
