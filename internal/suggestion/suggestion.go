// Package suggestion owns adjustment suggestions: their model, their
// persistence, and the lifecycle that turns analysis results into pending
// proposals. A suggestion moves pending → applied or pending → dismissed
// and never reopens.
package suggestion

import (
	"errors"
	"time"
)

// Type classifies what a suggestion proposes to change.
type Type string

const (
	// TypePortion rescales the recipe's own ingredient quantities.
	TypePortion Type = "portion"

	// TypeMarket rescales matching shopping-list entries, driven by
	// leftover feedback.
	TypeMarket Type = "market"

	// TypeIngredient is informational: an ingredient keeps going missing.
	TypeIngredient Type = "ingredient"
)

// IsValid returns true if t is a recognized suggestion type.
func (t Type) IsValid() bool {
	switch t {
	case TypePortion, TypeMarket, TypeIngredient:
		return true
	}
	return false
}

// Status is the lifecycle state of a suggestion.
type Status string

const (
	StatusPending   Status = "pending"
	StatusApplied   Status = "applied"
	StatusDismissed Status = "dismissed"
)

// IsValid returns true if s is a recognized status.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApplied, StatusDismissed:
		return true
	}
	return false
}

// Terminal returns true for states that never reopen.
func (s Status) Terminal() bool {
	return s == StatusApplied || s == StatusDismissed
}

var (
	// ErrNotFound is returned when a suggestion id does not exist.
	ErrNotFound = errors.New("suggestion not found")

	// ErrInvalidState is returned when a lifecycle transition is
	// attempted on a suggestion that is not pending.
	ErrInvalidState = errors.New("suggestion is not pending")
)

// Suggestion is a human-reviewable change proposal. While pending, new
// evidence refreshes ChangePercent, Reason, and FeedbackCount in place;
// there is never more than one pending suggestion per (recipe, type).
type Suggestion struct {
	ID             string
	Type           Type
	RecipeID       string
	RecipeName     string
	ChangePercent  int
	IngredientName string
	Reason         string
	FeedbackCount  int
	Status         Status
	CreatedAt      time.Time
	AppliedAt      *time.Time
}

// Multiplier returns the scaling factor a percentage change applies to
// quantity fields.
func (s Suggestion) Multiplier() float64 {
	return 1 + float64(s.ChangePercent)/100
}
