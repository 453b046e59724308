package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"foodgram/internal/model"
	"foodgram/internal/testutil"
)

func TestSubscriptionLifecycle(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	repo := NewSubscriptionRepository(db)

	reader := testutil.CreateUser(t, db, "reader")
	first := testutil.CreateUser(t, db, "first")
	second := testutil.CreateUser(t, db, "second")

	require.NoError(t, repo.Create(ctx, &model.Subscription{UserID: reader.ID, AuthorID: first.ID}))
	require.NoError(t, repo.Create(ctx, &model.Subscription{UserID: reader.ID, AuthorID: second.ID}))

	err := repo.Create(ctx, &model.Subscription{UserID: reader.ID, AuthorID: first.ID})
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey))

	exists, err := repo.Exists(ctx, reader.ID, first.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	authors, total, err := repo.ListAuthors(ctx, reader.ID, 0, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, authors, 1)
	assert.Equal(t, "second", authors[0].Username)

	among, err := repo.SubscribedAmong(ctx, reader.ID, []uint{first.ID, reader.ID})
	require.NoError(t, err)
	assert.Equal(t, map[uint]bool{first.ID: true}, among)

	removed, err := repo.Delete(ctx, reader.ID, first.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)

	removed, err = repo.Delete(ctx, reader.ID, first.ID)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestActivityListNewestFirst(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	repo := NewActivityRepository(db)
	user := testutil.CreateUser(t, db, "ann")

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i, kind := range []string{model.ActivityFavoriteAdded, model.ActivityCartAdded, model.ActivitySubscribed} {
		require.NoError(t, repo.Create(ctx, &model.ActivityEvent{
			UserID: user.ID, Kind: kind, TargetID: 1, CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, repo.Create(ctx, &model.ActivityEvent{UserID: user.ID + 100, Kind: model.ActivityCartAdded}))

	events, err := repo.ListByUserID(ctx, user.ID, 2)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, model.ActivitySubscribed, events[0].Kind)
	assert.Equal(t, model.ActivityCartAdded, events[1].Kind)
}
