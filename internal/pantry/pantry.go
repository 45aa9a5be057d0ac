// Package pantry is the engine's view of the host app's recipes and
// shopping list. It holds just enough of each to apply adjustments:
// ingredient quantity fields on recipes, name and quantity on market items.
package pantry

import (
	"errors"
	"strings"
	"time"
)

// ErrNotFound is returned when a recipe or market item does not exist.
var ErrNotFound = errors.New("pantry item not found")

// Ingredient is one recipe ingredient with its per-person quantity fields.
// Fields are free-form quantity strings ("280g", "2,5 kg"); empty fields
// are untracked and left alone by adjustments.
type Ingredient struct {
	Name    string `json:"name"`
	Total   string `json:"total,omitempty"`
	Luis    string `json:"luis,omitempty"`
	Mariana string `json:"mariana,omitempty"`
}

// Recipe is a recipe as the adjustment engine sees it.
type Recipe struct {
	ID          string
	Name        string
	Ingredients []Ingredient
	UpdatedAt   time.Time
}

// MarketItem is one shopping-list entry.
type MarketItem struct {
	ID        string
	Name      string
	Quantity  string
	UpdatedAt time.Time
}

// MatchesIngredient reports whether a market item name refers to the given
// ingredient. Matching is case-insensitive containment in either direction,
// so "tomates" matches "tomates cherry" and vice versa.
func MatchesIngredient(itemName, ingredientName string) bool {
	item := strings.ToLower(strings.TrimSpace(itemName))
	ing := strings.ToLower(strings.TrimSpace(ingredientName))
	if item == "" || ing == "" {
		return false
	}
	return strings.Contains(item, ing) || strings.Contains(ing, item)
}
