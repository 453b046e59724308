package model

import (
	"fmt"

	"gorm.io/gorm"
)

// Migrate registers the custom join table and creates or updates every table.
func Migrate(db *gorm.DB) error {
	if err := db.SetupJoinTable(&Recipe{}, "Tags", &RecipeTag{}); err != nil {
		return fmt.Errorf("setup recipe tags join table failed: %w", err)
	}
	if err := db.AutoMigrate(
		&User{},
		&Subscription{},
		&Tag{},
		&Ingredient{},
		&Recipe{},
		&RecipeIngredient{},
		&RecipeTag{},
		&Favorite{},
		&ShoppingCart{},
		&ActivityEvent{},
	); err != nil {
		return fmt.Errorf("auto migrate tables failed: %w", err)
	}
	return nil
}
