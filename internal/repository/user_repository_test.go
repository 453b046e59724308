package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"foodgram/internal/model"
	"foodgram/internal/testutil"
)

func TestUserLookups(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	repo := NewUserRepository(db)

	user := &model.User{Email: "a@example.com", Username: "alice", FirstName: "A", LastName: "L", PasswordHash: "h"}
	require.NoError(t, repo.Create(ctx, user))

	dup := &model.User{Email: "a@example.com", Username: "other", FirstName: "A", LastName: "L", PasswordHash: "h"}
	err := repo.Create(ctx, dup)
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey))

	byEmail, err := repo.GetByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	byName, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byName.ID)

	none, err := repo.GetByID(ctx, 999)
	require.NoError(t, err)
	assert.Nil(t, none)

	require.NoError(t, repo.UpdatePassword(ctx, user.ID, "h2"))
	require.NoError(t, repo.UpdateAvatar(ctx, user.ID, "users/a.png"))
	reloaded, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "h2", reloaded.PasswordHash)
	assert.Equal(t, "users/a.png", reloaded.Avatar)
}

func TestUserListPaginates(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	repo := NewUserRepository(db)

	for _, name := range []string{"u1", "u2", "u3"} {
		testutil.CreateUser(t, db, name)
	}

	users, total, err := repo.List(ctx, 1, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, users, 1)
	assert.Equal(t, "u2", users[0].Username)
}

func TestUserDeleteCascades(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	repo := NewUserRepository(db)

	chef := testutil.CreateUser(t, db, "chef")
	fan := testutil.CreateUser(t, db, "fan")
	lunch := testutil.CreateTag(t, db, "Lunch", "lunch")
	salt := testutil.CreateIngredient(t, db, "salt", "g")

	chefRecipe := testutil.CreateRecipe(t, db, chef, "soup", testutil.Amounts{salt.ID: 1}, lunch)
	fanRecipe := testutil.CreateRecipe(t, db, fan, "salad", testutil.Amounts{salt.ID: 2})

	require.NoError(t, NewFavoriteRepository(db).Create(ctx, fan.ID, chefRecipe.ID))
	require.NoError(t, NewFavoriteRepository(db).Create(ctx, chef.ID, fanRecipe.ID))
	require.NoError(t, NewShoppingCartRepository(db).Create(ctx, fan.ID, chefRecipe.ID))
	require.NoError(t, NewSubscriptionRepository(db).Create(ctx, &model.Subscription{UserID: fan.ID, AuthorID: chef.ID}))
	require.NoError(t, NewSubscriptionRepository(db).Create(ctx, &model.Subscription{UserID: chef.ID, AuthorID: fan.ID}))
	require.NoError(t, NewActivityRepository(db).Create(ctx, &model.ActivityEvent{UserID: chef.ID, Kind: model.ActivityRecipeCreated, TargetID: chefRecipe.ID}))

	require.NoError(t, repo.Delete(ctx, chef.ID))

	gone, err := repo.GetByID(ctx, chef.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	var recipes []model.Recipe
	require.NoError(t, db.Find(&recipes).Error)
	require.Len(t, recipes, 1)
	assert.Equal(t, fanRecipe.ID, recipes[0].ID)

	for _, table := range []any{&model.Favorite{}, &model.ShoppingCart{}, &model.Subscription{}, &model.ActivityEvent{}, &model.RecipeTag{}} {
		var count int64
		require.NoError(t, db.Model(table).Count(&count).Error)
		assert.Zero(t, count)
	}

	var links int64
	require.NoError(t, db.Model(&model.RecipeIngredient{}).Count(&links).Error)
	assert.EqualValues(t, 1, links)
}
