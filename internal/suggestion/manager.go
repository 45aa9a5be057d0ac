package suggestion

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/casafeliz/mealtuner/internal/analysis"
	"github.com/casafeliz/mealtuner/internal/decay"
)

// Manager runs the suggestion lifecycle: it re-analyzes a recipe's feedback
// and creates or refreshes the pending suggestions the evidence supports.
// It never reopens terminal suggestions and never resurrects a dismissed
// one; that is a user override a re-analysis must respect.
type Manager struct {
	store    *Store
	events   analysis.EventSource
	analyzer *analysis.Analyzer
	decay    decay.Options
	logger   *slog.Logger
	now      func() time.Time
}

// ManagerConfig configures the lifecycle manager.
type ManagerConfig struct {
	Analysis analysis.Config
	Decay    decay.Options
	Logger   *slog.Logger

	// Now overrides the clock, for tests.
	Now func() time.Time
}

// NewManager creates a lifecycle manager.
func NewManager(store *Store, events analysis.EventSource, cfg ManagerConfig) *Manager {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := cfg.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Manager{
		store:    store,
		events:   events,
		analyzer: analysis.NewAnalyzer(cfg.Analysis),
		decay:    cfg.Decay,
		logger:   logger,
		now:      now,
	}
}

// AnalyzeRecipe computes the recipe's current pattern. Read-only; safe for
// dashboards.
func (m *Manager) AnalyzeRecipe(ctx context.Context, recipeID string) (*analysis.Pattern, error) {
	weighted, err := analysis.LoadWeighted(ctx, m.events, recipeID, m.now(), m.decay)
	if err != nil {
		return nil, err
	}
	return m.analyzer.Analyze(analysis.Aggregate(recipeID, weighted)), nil
}

// ProcessRecipe re-analyzes one recipe and upserts any suggestions the
// pattern supports. Returns the pending suggestions it created or
// refreshed. Running it repeatedly is idempotent: evidence fields are
// refreshed in place, never duplicated.
func (m *Manager) ProcessRecipe(ctx context.Context, recipeID string) ([]Suggestion, error) {
	p, err := m.AnalyzeRecipe(ctx, recipeID)
	if err != nil {
		return nil, err
	}

	// Below the evidence floor nothing fires, however skewed the ratings.
	if p.TotalWeighted < m.analyzer.Config().MinWeightedTotal {
		return nil, nil
	}

	var out []Suggestion
	for _, cand := range m.candidates(p) {
		dismissed, err := m.store.HasDismissed(ctx, cand.RecipeID, cand.Type)
		if err != nil {
			return out, err
		}
		if dismissed {
			m.logger.Debug("skipping dismissed suggestion type",
				"recipe_id", cand.RecipeID, "type", cand.Type)
			continue
		}

		stored, created, err := m.store.Upsert(ctx, cand)
		if err != nil {
			return out, err
		}
		m.logger.Info("suggestion ready",
			"id", stored.ID, "recipe_id", stored.RecipeID, "type", stored.Type,
			"change_percent", stored.ChangePercent, "created", created)
		out = append(out, stored)
	}
	return out, nil
}

// RescanAll runs ProcessRecipe over every recipe that ever received
// feedback. Cancellable between recipes; each recipe's analysis is
// independent and side-effect-free until its own upsert step. Pending
// suggestions that already exist are refreshed in place, so repeat
// rescans neither duplicate nor discard a newer analysis.
func (m *Manager) RescanAll(ctx context.Context, recipeIDs []string) ([]Suggestion, error) {
	var out []Suggestion
	for _, id := range recipeIDs {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		sugs, err := m.ProcessRecipe(ctx, id)
		if err != nil {
			return out, fmt.Errorf("rescan failed for recipe %s: %w", id, err)
		}
		out = append(out, sugs...)
	}
	m.logger.Info("rescan complete", "recipes", len(recipeIDs), "suggestions", len(out))
	return out, nil
}

// candidates converts an analyzed pattern into suggestion candidates.
func (m *Manager) candidates(p *analysis.Pattern) []Suggestion {
	feedbackCount := int(math.Round(p.TotalWeighted))
	var cands []Suggestion

	switch p.PortionResult.Recommendation {
	case analysis.RecommendDecrease:
		cands = append(cands, Suggestion{
			Type:          TypePortion,
			RecipeID:      p.RecipeID,
			RecipeName:    p.RecipeName,
			ChangePercent: p.PortionResult.ChangePercent,
			Reason: fmt.Sprintf("%d%% of weighted feedback indicates portions too large",
				percent(p.PortionResult.Confidence)),
			FeedbackCount: feedbackCount,
		})
	case analysis.RecommendIncrease:
		cands = append(cands, Suggestion{
			Type:          TypePortion,
			RecipeID:      p.RecipeID,
			RecipeName:    p.RecipeName,
			ChangePercent: p.PortionResult.ChangePercent,
			Reason: fmt.Sprintf("%d%% of weighted feedback indicates portions too small",
				percent(p.PortionResult.Confidence)),
			FeedbackCount: feedbackCount,
		})
	}

	if p.LeftoverResult.Recommendation == analysis.RecommendReducePortions {
		cands = append(cands, Suggestion{
			Type:          TypeMarket,
			RecipeID:      p.RecipeID,
			RecipeName:    p.RecipeName,
			ChangePercent: p.LeftoverResult.ChangePercent,
			Reason: fmt.Sprintf("%d%% of weighted feedback reports heavy leftovers; buy less of its ingredients",
				percent(p.LeftoverResult.Confidence)),
			FeedbackCount: feedbackCount,
		})
	}

	if len(p.MissingTop) > 0 {
		cands = append(cands, Suggestion{
			Type:           TypeIngredient,
			RecipeID:       p.RecipeID,
			RecipeName:     p.RecipeName,
			IngredientName: p.MissingTop[0].Name,
			Reason:         missingReason(p.MissingTop),
			FeedbackCount:  feedbackCount,
		})
	}

	return cands
}

func missingReason(top []analysis.MissingIngredient) string {
	parts := make([]string, len(top))
	for i, mi := range top {
		parts[i] = fmt.Sprintf("%s (%.1f)", mi.Name, mi.Weight)
	}
	return "frequently missing ingredients: " + strings.Join(parts, ", ")
}

func percent(confidence float64) int {
	return int(math.Round(confidence * 100))
}
