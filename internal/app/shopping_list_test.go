package app

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"foodgram/internal/model"
)

func TestRenderShoppingList(t *testing.T) {
	got := RenderShoppingList([]model.ShoppingListItem{
		{Name: "egg", MeasurementUnit: "pcs", TotalAmount: 2},
		{Name: "salt", MeasurementUnit: "g", TotalAmount: 8},
	})
	assert.Equal(t, "Shopping List:\n\n1. egg (pcs) - 2\n2. salt (g) - 8\n", got)
}

func TestRenderEmptyShoppingList(t *testing.T) {
	assert.Equal(t, "Shopping List:\n\n", RenderShoppingList(nil))
}
