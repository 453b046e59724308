package worker

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foodgram/internal/model"
	"foodgram/internal/repository"
	"foodgram/internal/testutil"
)

func TestPersistStoresDecodedEvent(t *testing.T) {
	db := testutil.NewDB(t)
	user := testutil.CreateUser(t, db, "alice")
	repo := repository.NewActivityRepository(db)
	w := NewActivityPersistWorker(nil, repo, "q")

	body, err := json.Marshal(model.ActivityEvent{
		ID:        99,
		UserID:    user.ID,
		Kind:      model.ActivityFavoriteAdded,
		TargetID:  5,
		CreatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	})
	require.NoError(t, err)
	require.NoError(t, w.persist(context.Background(), body))

	events, err := repo.ListByUserID(context.Background(), user.ID, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, model.ActivityFavoriteAdded, events[0].Kind)
	assert.EqualValues(t, 5, events[0].TargetID)
	assert.NotEqualValues(t, 99, events[0].ID)
}

func TestPersistRejectsMalformed(t *testing.T) {
	w := NewActivityPersistWorker(nil, nil, "q")
	assert.Error(t, w.persist(context.Background(), []byte("{")))
	assert.Error(t, w.persist(context.Background(), []byte(`{"kind":"x"}`)))
}
