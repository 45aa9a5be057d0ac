// Package analysis turns raw feedback events into per-recipe patterns:
// temporally weighted tallies per rating dimension, and the gated
// recommendations derived from them. Everything here is pure computation
// over an in-memory working set; nothing is persisted.
package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/casafeliz/mealtuner/internal/decay"
	"github.com/casafeliz/mealtuner/internal/feedback"
)

// EventSource is the read side of the feedback store.
type EventSource interface {
	ListRecent(ctx context.Context, recipeID string, limit int) ([]feedback.Event, error)
}

// WeightedEvent pairs an event with its temporal decay weight.
type WeightedEvent struct {
	Event   feedback.Event
	Weight  float64
	AgeDays float64
}

// PortionTally holds weighted mass per portion rating bucket.
type PortionTally struct {
	TooMuch   float64
	Good      float64
	TooLittle float64
}

// Total returns the rated portion mass.
func (t PortionTally) Total() float64 {
	return t.TooMuch + t.Good + t.TooLittle
}

// LeftoverTally holds weighted mass per leftover rating bucket.
type LeftoverTally struct {
	None float64
	Some float64
	Lots float64
}

// Total returns the rated leftover mass.
func (t LeftoverTally) Total() float64 {
	return t.None + t.Some + t.Lots
}

// SuccessStat tracks weighted totals and successes for one grouping,
// either a meal type or a weekday. A meal counts as a success when the
// portion was rated good and leftovers were not rated "mucho".
type SuccessStat struct {
	Total   float64
	Success float64
}

// SuccessRate returns the weighted success ratio, or 0 with no data.
func (s SuccessStat) SuccessRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return s.Success / s.Total
}

// Pattern is the aggregated view of one recipe's recent feedback, plus the
// recommendations the analyzer derives from it. It is recomputed on demand
// and lives for a single analysis call.
type Pattern struct {
	RecipeID   string
	RecipeName string

	Portion       PortionTally
	Leftover      LeftoverTally
	Missing       map[string]float64
	Weekdays      map[time.Weekday]SuccessStat
	MealTypes     map[feedback.MealType]SuccessStat
	TotalWeighted float64
	EventCount    int

	PortionResult  DimensionResult
	LeftoverResult DimensionResult
	MissingTop     []MissingIngredient
}

// LoadWeighted reads the recipe's recent events (bounded by the store's
// read cap) and attaches decay weights, dropping expired events entirely.
func LoadWeighted(ctx context.Context, src EventSource, recipeID string, now time.Time, opts decay.Options) ([]WeightedEvent, error) {
	events, err := src.ListRecent(ctx, recipeID, feedback.MaxRecentEvents)
	if err != nil {
		return nil, fmt.Errorf("failed to load feedback for analysis: %w", err)
	}

	weighted := make([]WeightedEvent, 0, len(events))
	for _, ev := range events {
		w := decay.Weight(ev.CreatedAt, now, opts)
		if w == 0 {
			continue
		}
		weighted = append(weighted, WeightedEvent{
			Event:   ev,
			Weight:  w,
			AgeDays: now.Sub(ev.CreatedAt).Hours() / 24,
		})
	}
	return weighted, nil
}

// Aggregate buckets weighted events into a Pattern in a single pass.
// Unrated dimensions skip their bucket but the event still contributes to
// the total weighted mass.
func Aggregate(recipeID string, weighted []WeightedEvent) *Pattern {
	p := &Pattern{
		RecipeID:  recipeID,
		Missing:   make(map[string]float64),
		Weekdays:  make(map[time.Weekday]SuccessStat),
		MealTypes: make(map[feedback.MealType]SuccessStat),
	}

	for _, we := range weighted {
		ev := we.Event
		w := we.Weight

		p.TotalWeighted += w
		p.EventCount++
		if p.RecipeName == "" && ev.RecipeName != "" {
			// Events arrive newest first; the first name seen is the
			// freshest snapshot.
			p.RecipeName = ev.RecipeName
		}

		switch ev.PortionRating {
		case feedback.PortionTooMuch:
			p.Portion.TooMuch += w
		case feedback.PortionGood:
			p.Portion.Good += w
		case feedback.PortionTooLittle:
			p.Portion.TooLittle += w
		}

		switch ev.LeftoverRating {
		case feedback.LeftoverNone:
			p.Leftover.None += w
		case feedback.LeftoverSome:
			p.Leftover.Some += w
		case feedback.LeftoverLots:
			p.Leftover.Lots += w
		}

		for _, name := range ev.MissingIngredients {
			p.Missing[name] += w
		}

		success := ev.PortionRating == feedback.PortionGood && ev.LeftoverRating != feedback.LeftoverLots

		if day, err := time.Parse("2006-01-02", ev.Date); err == nil {
			stat := p.Weekdays[day.Weekday()]
			stat.Total += w
			if success {
				stat.Success += w
			}
			p.Weekdays[day.Weekday()] = stat
		}

		if ev.MealType.IsValid() {
			stat := p.MealTypes[ev.MealType]
			stat.Total += w
			if success {
				stat.Success += w
			}
			p.MealTypes[ev.MealType] = stat
		}
	}

	return p
}
