// Package apply executes accepted suggestions against the pantry: it
// rescales recipe ingredient quantities or shopping-list entries and
// advances the suggestion's lifecycle state.
package apply

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/casafeliz/mealtuner/internal/pantry"
	"github.com/casafeliz/mealtuner/internal/quantity"
	"github.com/casafeliz/mealtuner/internal/suggestion"
)

// Result reports what an apply run touched. Errors holds per-record
// failures that were tolerated because other records still mutated.
type Result struct {
	MutatedCount int
	Errors       []error
}

// Applier applies pending suggestions.
type Applier struct {
	suggestions *suggestion.Store
	pantry      *pantry.Store
	logger      *slog.Logger
	now         func() time.Time
}

// NewApplier creates an applier.
func NewApplier(suggestions *suggestion.Store, p *pantry.Store, logger *slog.Logger) *Applier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Applier{
		suggestions: suggestions,
		pantry:      p,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Apply executes a pending suggestion and marks it applied. Per-record
// failures are tolerated as long as at least one record mutated; if nothing
// changed the suggestion stays pending and the first failure is returned.
// Non-pending suggestions return ErrInvalidState without side effects.
func (a *Applier) Apply(ctx context.Context, suggestionID string) (Result, error) {
	sug, err := a.suggestions.Get(ctx, suggestionID)
	if err != nil {
		return Result{}, err
	}
	if sug.Status != suggestion.StatusPending {
		return Result{}, fmt.Errorf("%w: suggestion %s is %s", suggestion.ErrInvalidState, sug.ID, sug.Status)
	}

	var res Result
	switch sug.Type {
	case suggestion.TypePortion:
		res, err = a.applyPortion(ctx, sug)
	case suggestion.TypeMarket:
		res, err = a.applyMarket(ctx, sug)
	case suggestion.TypeIngredient:
		// Informational only. Acknowledging it is the mutation.
	default:
		return Result{}, fmt.Errorf("unknown suggestion type: %q", sug.Type)
	}
	if err != nil {
		return res, err
	}

	if err := a.suggestions.MarkApplied(ctx, sug.ID, a.now()); err != nil {
		return res, err
	}
	a.logger.Info("suggestion applied",
		"id", sug.ID, "recipe_id", sug.RecipeID, "type", sug.Type,
		"mutated", res.MutatedCount, "errors", len(res.Errors))
	return res, nil
}

// applyPortion rescales every non-empty quantity field of every ingredient.
// Empty fields are untracked and left alone.
func (a *Applier) applyPortion(ctx context.Context, sug suggestion.Suggestion) (Result, error) {
	recipe, err := a.pantry.GetRecipe(ctx, sug.RecipeID)
	if err != nil {
		return Result{}, fmt.Errorf("cannot apply portion change: %w", err)
	}

	var res Result
	multiplier := sug.Multiplier()
	for i := range recipe.Ingredients {
		ing := &recipe.Ingredients[i]
		for _, field := range []*string{&ing.Total, &ing.Luis, &ing.Mariana} {
			if *field == "" {
				continue
			}
			*field = a.scale(*field, multiplier, "ingredient", ing.Name)
			res.MutatedCount++
		}
	}

	if res.MutatedCount == 0 {
		return res, fmt.Errorf("recipe %s has no quantity fields to scale", sug.RecipeID)
	}
	if err := a.pantry.UpdateRecipeIngredients(ctx, recipe.ID, recipe.Ingredients); err != nil {
		return Result{}, err
	}
	return res, nil
}

// applyMarket rescales shopping-list entries that match any of the recipe's
// ingredient names. Item updates fail independently; one success is enough
// to count the suggestion as applied.
func (a *Applier) applyMarket(ctx context.Context, sug suggestion.Suggestion) (Result, error) {
	recipe, err := a.pantry.GetRecipe(ctx, sug.RecipeID)
	if err != nil {
		return Result{}, fmt.Errorf("cannot apply market change: %w", err)
	}
	items, err := a.pantry.ListItems(ctx)
	if err != nil {
		return Result{}, err
	}

	var res Result
	multiplier := sug.Multiplier()
	for _, item := range items {
		if !matchesAnyIngredient(item.Name, recipe.Ingredients) {
			continue
		}
		scaled := a.scale(item.Quantity, multiplier, "market_item", item.Name)
		if err := a.pantry.UpdateItemQuantity(ctx, item.ID, scaled); err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("market item %s: %w", item.ID, err))
			a.logger.Warn("skipping market item", "item_id", item.ID, "error", err)
			continue
		}
		res.MutatedCount++
	}

	if res.MutatedCount == 0 {
		if len(res.Errors) > 0 {
			return res, fmt.Errorf("no market items updated: %w", res.Errors[0])
		}
		return res, fmt.Errorf("no market items match recipe %s", sug.RecipeID)
	}
	return res, nil
}

// scale rescales one quantity string. An unparseable quantity is treated
// as a single unit and rescaled anyway, but that degradation is warned
// about so bad legacy rows do not drift silently.
func (a *Applier) scale(raw string, multiplier float64, kind, name string) string {
	q := quantity.Parse(raw)
	if q.Degraded {
		a.logger.Warn("quantity not parsable; scaling as one unit",
			"kind", kind, "name", name, "quantity", raw)
	}
	q.Value *= multiplier
	return q.String()
}

func matchesAnyIngredient(itemName string, ingredients []pantry.Ingredient) bool {
	for _, ing := range ingredients {
		if pantry.MatchesIngredient(itemName, ing.Name) {
			return true
		}
	}
	return false
}
