package app

import (
	"fmt"
	"strings"

	"foodgram/internal/model"
)

const (
	ShoppingListFilename   = "shopping_list.txt"
	shoppingListHeader     = "Shopping List:\n\n"
	shoppingListLineFormat = "%d. %s (%s) - %d\n"
)

// RenderShoppingList formats aggregated items as the downloadable text file.
func RenderShoppingList(items []model.ShoppingListItem) string {
	var b strings.Builder
	b.WriteString(shoppingListHeader)
	for i, item := range items {
		fmt.Fprintf(&b, shoppingListLineFormat, i+1, item.Name, item.MeasurementUnit, item.TotalAmount)
	}
	return b.String()
}
