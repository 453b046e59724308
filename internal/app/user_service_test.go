package app

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foodgram/internal/logging"
	"foodgram/internal/testutil"
)

func TestSubscriptionToggle(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	reader := testutil.CreateUser(t, s.db, "reader")
	author := testutil.CreateUser(t, s.db, "author")
	salt := testutil.CreateIngredient(t, s.db, "salt", "g")
	testutil.CreateRecipe(t, s.db, author, "one", testutil.Amounts{salt.ID: 1})
	testutil.CreateRecipe(t, s.db, author, "two", testutil.Amounts{salt.ID: 1})
	testutil.CreateRecipe(t, s.db, author, "three", testutil.Amounts{salt.ID: 1})

	_, err := s.users.Subscribe(ctx, reader.ID, reader.ID, 0)
	assert.ErrorIs(t, err, ErrSelfSubscription)

	card, err := s.users.Subscribe(ctx, reader.ID, author.ID, 2)
	require.NoError(t, err)
	assert.True(t, card.IsSubscribed)
	assert.EqualValues(t, 3, card.RecipesCount)
	require.Len(t, card.Recipes, 2)
	assert.Equal(t, "three", card.Recipes[0].Name)

	_, err = s.users.Subscribe(ctx, reader.ID, author.ID, 0)
	assert.ErrorIs(t, err, ErrAlreadySubscribed)

	_, err = s.users.Subscribe(ctx, reader.ID, 999, 0)
	assert.ErrorIs(t, err, ErrNotFound)

	cards, total, err := s.users.Subscriptions(ctx, reader.ID, 0, 10, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, cards, 1)
	assert.Len(t, cards[0].Recipes, 1)

	profile, err := s.users.Get(ctx, reader.ID, author.ID)
	require.NoError(t, err)
	assert.True(t, profile.IsSubscribed)

	require.NoError(t, s.users.Unsubscribe(ctx, reader.ID, author.ID))
	assert.ErrorIs(t, s.users.Unsubscribe(ctx, reader.ID, author.ID), ErrNotSubscribed)
}

func TestAvatarLifecycle(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, s.db, "alice")

	assert.ErrorIs(t, s.users.DeleteAvatar(ctx, user.ID), ErrNoAvatar)

	first, err := s.users.SetAvatar(ctx, user.ID, testImage)
	require.NoError(t, err)
	second, err := s.users.SetAvatar(ctx, user.ID, testImage)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
	assert.Contains(t, s.images.removed, first)

	_, err = s.users.SetAvatar(ctx, user.ID, "garbage")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "avatar")

	require.NoError(t, s.users.DeleteAvatar(ctx, user.ID))
	profile, err := s.users.Get(ctx, 0, user.ID)
	require.NoError(t, err)
	assert.Empty(t, profile.Avatar)
}

type brokenDeletes struct {
	*memoryImages
}

func (brokenDeletes) DeleteImage(context.Context, string) error {
	return errors.New("storage unavailable")
}

func TestAvatarRemovalLogsStorageFailure(t *testing.T) {
	s := newServices(t)
	user := testutil.CreateUser(t, s.db, "alice")

	var buf bytes.Buffer
	logging.Init(logging.Config{Level: "info", Format: "json", Output: &buf})
	t.Cleanup(func() { logging.Init(logging.Config{Level: "info"}) })

	ctx := context.Background()
	url, err := s.users.SetAvatar(ctx, user.ID, testImage)
	require.NoError(t, err)

	s.users.images = brokenDeletes{s.images}
	require.NoError(t, s.users.DeleteAvatar(ctx, user.ID))
	assert.Contains(t, buf.String(), "delete avatar failed")
	assert.Contains(t, buf.String(), url)
	assert.Contains(t, buf.String(), "storage unavailable")
}

func TestListUsersMarksSubscriptions(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	viewer := testutil.CreateUser(t, s.db, "viewer")
	author := testutil.CreateUser(t, s.db, "author")
	_, err := s.users.Subscribe(ctx, viewer.ID, author.ID, 0)
	require.NoError(t, err)

	profiles, total, err := s.users.List(ctx, viewer.ID, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, profiles, 2)
	assert.False(t, profiles[0].IsSubscribed)
	assert.True(t, profiles[1].IsSubscribed)
}
