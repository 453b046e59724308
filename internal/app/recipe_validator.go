package app

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"foodgram/internal/model"
)

const (
	maxRecipeNameLen = 256
	requiredMessage  = "This field is required."
)

type IngredientAmountInput struct {
	ID     any `json:"id"`
	Amount any `json:"amount"`
}

// RecipeInput is an unvalidated recipe write. Nil pointers and nil slices mean
// the field was not supplied. Numeric fields are left as decoded JSON values
// so strings like "3" can be coerced.
type RecipeInput struct {
	Name        *string                 `json:"name"`
	Text        *string                 `json:"text"`
	CookingTime any                     `json:"cooking_time"`
	Image       *string                 `json:"image"`
	Ingredients []IngredientAmountInput `json:"ingredients"`
	Tags        []any                   `json:"tags"`
}

// RecipeDraft is a validated write ready to persist. Fields absent from a
// partial update keep their zero value and are flagged in the Has* fields.
type RecipeDraft struct {
	Name           string
	Text           string
	CookingTime    int
	Image          string
	HasName        bool
	HasText        bool
	HasCookingTime bool
	HasImage       bool
	Ingredients    []model.RecipeIngredient
	TagIDs         []uint
}

type idLookup interface {
	ExistingIDs(ctx context.Context, ids []uint) ([]uint, error)
}

type RecipeValidator struct {
	ingredients idLookup
	tags        idLookup
}

func NewRecipeValidator(ingredients, tags idLookup) *RecipeValidator {
	return &RecipeValidator{ingredients: ingredients, tags: tags}
}

// Validate checks every field and reports all problems at once. With partial
// set, scalar fields become optional; ingredients and tags stay required.
func (v *RecipeValidator) Validate(ctx context.Context, in RecipeInput, partial bool) (*RecipeDraft, error) {
	verr := NewValidationError()
	draft := &RecipeDraft{}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		switch {
		case name == "":
			verr.Add("name", "This field may not be blank.")
		case utf8.RuneCountInString(name) > maxRecipeNameLen:
			verr.Add("name", fmt.Sprintf("Ensure this field has no more than %d characters.", maxRecipeNameLen))
		default:
			draft.Name, draft.HasName = name, true
		}
	} else if !partial {
		verr.Add("name", requiredMessage)
	}

	if in.Text != nil {
		if strings.TrimSpace(*in.Text) == "" {
			verr.Add("text", "This field may not be blank.")
		} else {
			draft.Text, draft.HasText = *in.Text, true
		}
	} else if !partial {
		verr.Add("text", requiredMessage)
	}

	if in.CookingTime != nil {
		n, ok := coerceInt(in.CookingTime)
		switch {
		case !ok:
			verr.Add("cooking_time", "A valid integer is required.")
		case n < 1:
			verr.Add("cooking_time", "Ensure this value is greater than or equal to 1.")
		default:
			draft.CookingTime, draft.HasCookingTime = n, true
		}
	} else if !partial {
		verr.Add("cooking_time", requiredMessage)
	}

	if in.Image != nil {
		if strings.TrimSpace(*in.Image) == "" {
			verr.Add("image", "This field may not be blank.")
		} else {
			draft.Image, draft.HasImage = *in.Image, true
		}
	} else if !partial {
		verr.Add("image", requiredMessage)
	}

	ingredients, err := v.validateIngredients(ctx, in.Ingredients, verr)
	if err != nil {
		return nil, err
	}
	draft.Ingredients = ingredients

	tagIDs, err := v.validateTags(ctx, in.Tags, verr)
	if err != nil {
		return nil, err
	}
	draft.TagIDs = tagIDs

	if !verr.Empty() {
		return nil, verr
	}
	return draft, nil
}

func (v *RecipeValidator) validateIngredients(ctx context.Context, items []IngredientAmountInput, verr *ValidationError) ([]model.RecipeIngredient, error) {
	const field = "ingredients"
	if items == nil {
		verr.Add(field, requiredMessage)
		return nil, nil
	}
	if len(items) == 0 {
		verr.Add(field, "At least one ingredient is required.")
		return nil, nil
	}

	out := make([]model.RecipeIngredient, 0, len(items))
	ids := make([]uint, 0, len(items))
	seen := make(map[uint]bool, len(items))
	var duplicates []uint
	for _, item := range items {
		if item.ID == nil {
			verr.Add(field, "Ingredient id is required.")
			continue
		}
		id, ok := coerceID(item.ID)
		if !ok {
			verr.Add(field, fmt.Sprintf("Invalid ingredient id: %v.", item.ID))
			continue
		}
		if seen[id] {
			if !slices.Contains(duplicates, id) {
				duplicates = append(duplicates, id)
			}
			continue
		}
		seen[id] = true
		ids = append(ids, id)

		amount, ok := coerceInt(item.Amount)
		if !ok || amount < 1 {
			verr.Add(field, fmt.Sprintf("Amount for ingredient %d must be a positive integer.", id))
			continue
		}
		out = append(out, model.RecipeIngredient{IngredientID: id, Amount: amount})
	}
	if len(duplicates) > 0 {
		verr.Add(field, "Duplicate ingredients are not allowed: "+joinIDs(duplicates)+".")
	}

	missing, err := missingIDs(ctx, v.ingredients, ids)
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		verr.Add(field, "Invalid ingredient IDs: "+joinIDs(missing)+".")
	}
	return out, nil
}

func (v *RecipeValidator) validateTags(ctx context.Context, items []any, verr *ValidationError) ([]uint, error) {
	const field = "tags"
	if items == nil {
		verr.Add(field, requiredMessage)
		return nil, nil
	}
	if len(items) == 0 {
		verr.Add(field, "At least one tag is required.")
		return nil, nil
	}

	ids := make([]uint, 0, len(items))
	seen := make(map[uint]bool, len(items))
	var duplicates []uint
	for _, item := range items {
		if item == nil {
			verr.Add(field, "Tag id is required.")
			continue
		}
		id, ok := coerceID(item)
		if !ok {
			verr.Add(field, fmt.Sprintf("Invalid tag id: %v.", item))
			continue
		}
		if seen[id] {
			if !slices.Contains(duplicates, id) {
				duplicates = append(duplicates, id)
			}
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	if len(duplicates) > 0 {
		verr.Add(field, "Duplicate tags are not allowed: "+joinIDs(duplicates)+".")
	}

	missing, err := missingIDs(ctx, v.tags, ids)
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		verr.Add(field, "Invalid tag IDs: "+joinIDs(missing)+".")
	}
	return ids, nil
}

// missingIDs returns ids not known to lookup, in input order.
func missingIDs(ctx context.Context, lookup idLookup, ids []uint) ([]uint, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	found, err := lookup.ExistingIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	known := make(map[uint]bool, len(found))
	for _, id := range found {
		known[id] = true
	}
	var missing []uint
	for _, id := range ids {
		if !known[id] {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

var trailingZeroDecimal = regexp.MustCompile(`\.0*\s*$`)

// coerceInt accepts JSON integers, integral floats, json.Number and decimal
// strings such as "3" or "3.0".
func coerceInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) || n > math.MaxInt32 || n < math.MinInt32 {
			return 0, false
		}
		return int(n), true
	case json.Number:
		return coerceInt(string(n))
	case string:
		s := trailingZeroDecimal.ReplaceAllString(strings.TrimSpace(n), "")
		i, err := strconv.Atoi(s)
		if err != nil || i > math.MaxInt32 || i < math.MinInt32 {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}

func coerceID(v any) (uint, bool) {
	n, ok := coerceInt(v)
	if !ok || n < 1 {
		return 0, false
	}
	return uint(n), true
}

func joinIDs(ids []uint) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatUint(uint64(id), 10)
	}
	return strings.Join(parts, ", ")
}
