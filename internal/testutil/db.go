// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"foodgram/internal/model"
)

// NewDB opens a private in-memory SQLite database with the schema migrated.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, model.Migrate(db))
	return db
}

// CreateUser inserts a user whose password hash is a placeholder.
func CreateUser(t *testing.T, db *gorm.DB, username string) *model.User {
	t.Helper()
	user := &model.User{
		Email:        username + "@example.com",
		Username:     username,
		FirstName:    strings.ToUpper(username[:1]) + username[1:],
		LastName:     "Tester",
		PasswordHash: "x",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func CreateTag(t *testing.T, db *gorm.DB, name, slug string) *model.Tag {
	t.Helper()
	tag := &model.Tag{Name: name, Slug: slug}
	require.NoError(t, db.Create(tag).Error)
	return tag
}

func CreateIngredient(t *testing.T, db *gorm.DB, name, unit string) *model.Ingredient {
	t.Helper()
	ing := &model.Ingredient{Name: name, MeasurementUnit: unit}
	require.NoError(t, db.Create(ing).Error)
	return ing
}

// Amounts maps ingredient id to amount.
type Amounts map[uint]int

// CreateRecipe inserts a recipe with the given ingredient amounts and tags.
func CreateRecipe(t *testing.T, db *gorm.DB, author *model.User, name string, amounts Amounts, tags ...*model.Tag) *model.Recipe {
	t.Helper()
	recipe := &model.Recipe{
		AuthorID:    author.ID,
		Name:        name,
		Text:        name + " text",
		Image:       "recipes/" + name + ".png",
		CookingTime: 10,
	}
	require.NoError(t, db.Omit("Author", "Tags", "Ingredients").Create(recipe).Error)
	for id, amount := range amounts {
		require.NoError(t, db.Omit("Ingredient").Create(&model.RecipeIngredient{
			RecipeID: recipe.ID, IngredientID: id, Amount: amount,
		}).Error)
	}
	for _, tag := range tags {
		require.NoError(t, db.Create(&model.RecipeTag{RecipeID: recipe.ID, TagID: tag.ID}).Error)
	}
	return recipe
}
