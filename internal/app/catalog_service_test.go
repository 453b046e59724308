package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foodgram/internal/model"
)

func TestSeedIsIdempotent(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	ingredients := []model.Ingredient{
		{Name: "salt", MeasurementUnit: "g"},
		{Name: "milk", MeasurementUnit: "ml"},
	}

	first, err := s.catalog.Seed(ctx, ingredients)
	require.NoError(t, err)
	assert.EqualValues(t, 3, first.TagsAdded)
	assert.EqualValues(t, 2, first.IngredientsAdded)

	second, err := s.catalog.Seed(ctx, ingredients)
	require.NoError(t, err)
	assert.Zero(t, second.TagsAdded)
	assert.Zero(t, second.IngredientsAdded)

	tags, err := s.catalog.ListTags(ctx)
	require.NoError(t, err)
	assert.Len(t, tags, 3)

	found, err := s.catalog.SearchIngredients(ctx, "MI")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "milk", found[0].Name)

	_, err = s.catalog.GetTag(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.catalog.GetIngredient(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}
