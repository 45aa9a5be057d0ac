// Package engine is the facade the host app talks to. It owns the stores
// and services and serializes per-recipe work so concurrent feedback saves
// cannot interleave their analyze-then-upsert sequences.
package engine

import (
	"context"
	"log/slog"
	"sync"

	"github.com/casafeliz/mealtuner/internal/analysis"
	"github.com/casafeliz/mealtuner/internal/apply"
	"github.com/casafeliz/mealtuner/internal/config"
	"github.com/casafeliz/mealtuner/internal/db"
	"github.com/casafeliz/mealtuner/internal/feedback"
	"github.com/casafeliz/mealtuner/internal/pantry"
	"github.com/casafeliz/mealtuner/internal/retention"
	"github.com/casafeliz/mealtuner/internal/suggestion"
)

// Engine wires the feedback, analysis, suggestion, and apply layers
// together behind the operations the host app calls.
type Engine struct {
	feedback    *feedback.Store
	suggestions *suggestion.Store
	pantry      *pantry.Store
	manager     *suggestion.Manager
	applier     *apply.Applier
	cleaner     *retention.Cleaner
	logger      *slog.Logger

	// recipeLocks serializes OnFeedbackSaved per recipe in-process. The
	// suggestion store's unique index covers the cross-process case.
	recipeLocks sync.Map // recipe id -> *sync.Mutex
}

// New builds an engine over an open database.
func New(d *db.DB, cfg *config.Config, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}

	feedbackStore := feedback.NewStore(d.SQL(), logger)
	suggestionStore := suggestion.NewStore(d.SQL(), logger)
	pantryStore := pantry.NewStore(d.SQL(), logger)

	manager := suggestion.NewManager(suggestionStore, feedbackStore, suggestion.ManagerConfig{
		Analysis: cfg.AnalysisConfig(),
		Decay:    cfg.DecayOptions(),
		Logger:   logger,
	})
	cleaner := retention.NewCleaner(feedbackStore, suggestionStore, retention.Options{
		FeedbackMaxAgeDays:   cfg.Engine.MaxAgeDays,
		ClosedSuggestionDays: cfg.Retention.ClosedSuggestionDays,
	}, logger)

	return &Engine{
		feedback:    feedbackStore,
		suggestions: suggestionStore,
		pantry:      pantryStore,
		manager:     manager,
		applier:     apply.NewApplier(suggestionStore, pantryStore, logger),
		cleaner:     cleaner,
		logger:      logger,
	}
}

// Feedback exposes the feedback store for the capture flow.
func (e *Engine) Feedback() *feedback.Store { return e.feedback }

// Suggestions exposes the suggestion store for listing and review.
func (e *Engine) Suggestions() *suggestion.Store { return e.suggestions }

// Pantry exposes the pantry store for recipe and market item management.
func (e *Engine) Pantry() *pantry.Store { return e.pantry }

// AnalyzeRecipe returns the recipe's current feedback pattern without
// creating suggestions.
func (e *Engine) AnalyzeRecipe(ctx context.Context, recipeID string) (*analysis.Pattern, error) {
	return e.manager.AnalyzeRecipe(ctx, recipeID)
}

// OnFeedbackSaved records a feedback event and runs the incremental
// analysis for its recipe. Events without a recipe id are stored but not
// analyzed. Calls for the same recipe serialize.
func (e *Engine) OnFeedbackSaved(ctx context.Context, ev feedback.Event) (feedback.Event, []suggestion.Suggestion, error) {
	saved, err := e.feedback.Insert(ctx, ev)
	if err != nil {
		return feedback.Event{}, nil, err
	}
	if saved.RecipeID == "" {
		return saved, nil, nil
	}

	unlock := e.lockRecipe(saved.RecipeID)
	defer unlock()

	sugs, err := e.manager.ProcessRecipe(ctx, saved.RecipeID)
	if err != nil {
		// The event is saved; analysis failures are reported but do not
		// undo the write.
		e.logger.Error("incremental analysis failed", "recipe_id", saved.RecipeID, "error", err)
		return saved, nil, err
	}
	return saved, sugs, nil
}

// RescanAll re-analyzes every recipe that has feedback.
func (e *Engine) RescanAll(ctx context.Context) ([]suggestion.Suggestion, error) {
	ids, err := e.feedback.RecipeIDs(ctx)
	if err != nil {
		return nil, err
	}
	return e.manager.RescanAll(ctx, ids)
}

// ApplySuggestion executes a pending suggestion against the pantry.
func (e *Engine) ApplySuggestion(ctx context.Context, id string) (apply.Result, error) {
	return e.applier.Apply(ctx, id)
}

// DismissSuggestion rejects a pending suggestion. The engine will not
// recreate it from the same pattern.
func (e *Engine) DismissSuggestion(ctx context.Context, id string) error {
	return e.suggestions.Dismiss(ctx, id)
}

// Cleanup runs one retention pass.
func (e *Engine) Cleanup(ctx context.Context) (retention.Result, error) {
	return e.cleaner.Run(ctx)
}

func (e *Engine) lockRecipe(recipeID string) func() {
	v, _ := e.recipeLocks.LoadOrStore(recipeID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
