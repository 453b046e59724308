package handler

import (
	"foodgram/internal/app"
	"foodgram/internal/model"
)

type userDTO struct {
	Email        string  `json:"email"`
	ID           uint    `json:"id"`
	Username     string  `json:"username"`
	FirstName    string  `json:"first_name"`
	LastName     string  `json:"last_name"`
	IsSubscribed bool    `json:"is_subscribed"`
	Avatar       *string `json:"avatar"`
}

type createdUserDTO struct {
	Email     string `json:"email"`
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type tagDTO struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type ingredientDTO struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

type recipeIngredientDTO struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

type recipeDTO struct {
	ID               uint                  `json:"id"`
	Tags             []tagDTO              `json:"tags"`
	Author           userDTO               `json:"author"`
	Ingredients      []recipeIngredientDTO `json:"ingredients"`
	IsFavorited      bool                  `json:"is_favorited"`
	IsInShoppingCart bool                  `json:"is_in_shopping_cart"`
	Name             string                `json:"name"`
	Image            string                `json:"image"`
	Text             string                `json:"text"`
	CookingTime      int                   `json:"cooking_time"`
}

type shortRecipeDTO struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

type subscriptionDTO struct {
	userDTO
	Recipes      []shortRecipeDTO `json:"recipes"`
	RecipesCount int64            `json:"recipes_count"`
}

func toUserDTO(u model.User, subscribed bool) userDTO {
	dto := userDTO{
		Email:        u.Email,
		ID:           u.ID,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: subscribed,
	}
	if u.Avatar != "" {
		avatar := u.Avatar
		dto.Avatar = &avatar
	}
	return dto
}

func toProfileDTO(p app.UserProfile) userDTO {
	return toUserDTO(p.User, p.IsSubscribed)
}

func toProfileDTOs(profiles []app.UserProfile) []userDTO {
	out := make([]userDTO, len(profiles))
	for i, p := range profiles {
		out[i] = toProfileDTO(p)
	}
	return out
}

func toTagDTO(t model.Tag) tagDTO {
	return tagDTO{ID: t.ID, Name: t.Name, Slug: t.Slug}
}

func toTagDTOs(tags []model.Tag) []tagDTO {
	out := make([]tagDTO, len(tags))
	for i, t := range tags {
		out[i] = toTagDTO(t)
	}
	return out
}

func toIngredientDTO(i model.Ingredient) ingredientDTO {
	return ingredientDTO{ID: i.ID, Name: i.Name, MeasurementUnit: i.MeasurementUnit}
}

func toIngredientDTOs(list []model.Ingredient) []ingredientDTO {
	out := make([]ingredientDTO, len(list))
	for i, ing := range list {
		out[i] = toIngredientDTO(ing)
	}
	return out
}

func toRecipeDTO(d app.RecipeDetail) recipeDTO {
	ingredients := make([]recipeIngredientDTO, len(d.Ingredients))
	for i, ri := range d.Ingredients {
		ingredients[i] = recipeIngredientDTO{
			ID:              ri.IngredientID,
			Name:            ri.Ingredient.Name,
			MeasurementUnit: ri.Ingredient.MeasurementUnit,
			Amount:          ri.Amount,
		}
	}
	return recipeDTO{
		ID:               d.ID,
		Tags:             toTagDTOs(d.Tags),
		Author:           toUserDTO(d.Author, d.AuthorSubscribed),
		Ingredients:      ingredients,
		IsFavorited:      d.IsFavorited,
		IsInShoppingCart: d.IsInShoppingCart,
		Name:             d.Name,
		Image:            d.Image,
		Text:             d.Text,
		CookingTime:      d.CookingTime,
	}
}

func toRecipeDTOs(details []app.RecipeDetail) []recipeDTO {
	out := make([]recipeDTO, len(details))
	for i, d := range details {
		out[i] = toRecipeDTO(d)
	}
	return out
}

func toShortRecipeDTO(r model.Recipe) shortRecipeDTO {
	return shortRecipeDTO{ID: r.ID, Name: r.Name, Image: r.Image, CookingTime: r.CookingTime}
}

func toSubscriptionDTO(card app.AuthorCard) subscriptionDTO {
	recipes := make([]shortRecipeDTO, len(card.Recipes))
	for i, r := range card.Recipes {
		recipes[i] = toShortRecipeDTO(r)
	}
	return subscriptionDTO{
		userDTO:      toProfileDTO(card.UserProfile),
		Recipes:      recipes,
		RecipesCount: card.RecipesCount,
	}
}

func toSubscriptionDTOs(cards []app.AuthorCard) []subscriptionDTO {
	out := make([]subscriptionDTO, len(cards))
	for i, c := range cards {
		out[i] = toSubscriptionDTO(c)
	}
	return out
}
