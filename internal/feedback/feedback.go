// Package feedback manages meal feedback events: the immutable records of
// how a cooked meal went (portion size, leftovers, missing ingredients).
// Events are created by the host's capture flow and are read-only for the
// analysis pipeline.
package feedback

import (
	"time"
)

// MealType identifies which meal of the day an event refers to.
type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
)

// IsValid returns true if m is a recognized meal type.
func (m MealType) IsValid() bool {
	switch m {
	case MealBreakfast, MealLunch, MealDinner:
		return true
	}
	return false
}

// PortionRating is the user's verdict on the portion size. The values are
// the host app's wire strings. Empty means not rated.
type PortionRating string

const (
	PortionTooLittle PortionRating = "poca"
	PortionGood      PortionRating = "bien"
	PortionTooMuch   PortionRating = "mucha"
	PortionUnrated   PortionRating = ""
)

// IsValid returns true if p is a recognized portion rating.
func (p PortionRating) IsValid() bool {
	switch p {
	case PortionTooLittle, PortionGood, PortionTooMuch, PortionUnrated:
		return true
	}
	return false
}

// LeftoverRating is the user's verdict on leftovers. Empty means not rated.
type LeftoverRating string

const (
	LeftoverNone    LeftoverRating = "nada"
	LeftoverSome    LeftoverRating = "poco"
	LeftoverLots    LeftoverRating = "mucho"
	LeftoverUnrated LeftoverRating = ""
)

// IsValid returns true if l is a recognized leftover rating.
func (l LeftoverRating) IsValid() bool {
	switch l {
	case LeftoverNone, LeftoverSome, LeftoverLots, LeftoverUnrated:
		return true
	}
	return false
}

// Event is a single feedback record. Immutable once created. RecipeName is
// a denormalized snapshot so the event survives recipe renames and deletes;
// RecipeID may be empty for free-form meals.
type Event struct {
	ID                 string
	Date               string // meal date, YYYY-MM-DD
	MealType           MealType
	RecipeID           string
	RecipeName         string
	PortionRating      PortionRating
	LeftoverRating     LeftoverRating
	MissingIngredients []string
	UsedUpIngredients  []string
	Notes              string
	CreatedAt          time.Time
}
