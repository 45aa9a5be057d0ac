// Package retention removes data that can no longer influence the engine:
// feedback events past the decay cutoff and suggestions that reached a
// terminal state long ago. Pending suggestions are never touched.
package retention

import (
	"context"
	"log/slog"
	"time"
)

// FeedbackCleaner is the delete side of the feedback store.
type FeedbackCleaner interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// SuggestionCleaner is the delete side of the suggestion store.
type SuggestionCleaner interface {
	DeleteClosedOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// Options holds the cleanup horizons in days.
type Options struct {
	// FeedbackMaxAgeDays matches the decay cutoff: events past it carry
	// zero weight and only occupy space.
	FeedbackMaxAgeDays float64

	// ClosedSuggestionDays keeps applied and dismissed suggestions around
	// for this long before deleting them.
	ClosedSuggestionDays int
}

// Result reports what a cleanup run removed.
type Result struct {
	FeedbackDeleted    int64
	SuggestionsDeleted int64
}

// Cleaner runs retention cleanup.
type Cleaner struct {
	feedback    FeedbackCleaner
	suggestions SuggestionCleaner
	opts        Options
	logger      *slog.Logger
	now         func() time.Time
}

// NewCleaner creates a retention cleaner.
func NewCleaner(feedback FeedbackCleaner, suggestions SuggestionCleaner, opts Options, logger *slog.Logger) *Cleaner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cleaner{
		feedback:    feedback,
		suggestions: suggestions,
		opts:        opts,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Run performs one cleanup pass.
func (c *Cleaner) Run(ctx context.Context) (Result, error) {
	var res Result
	now := c.now()

	feedbackCutoff := now.Add(-time.Duration(c.opts.FeedbackMaxAgeDays * 24 * float64(time.Hour)))
	n, err := c.feedback.DeleteOlderThan(ctx, feedbackCutoff)
	if err != nil {
		return res, err
	}
	res.FeedbackDeleted = n

	suggestionCutoff := now.AddDate(0, 0, -c.opts.ClosedSuggestionDays)
	n, err = c.suggestions.DeleteClosedOlderThan(ctx, suggestionCutoff)
	if err != nil {
		return res, err
	}
	res.SuggestionsDeleted = n

	c.logger.Info("retention cleanup complete",
		"feedback_deleted", res.FeedbackDeleted,
		"suggestions_deleted", res.SuggestionsDeleted)
	return res, nil
}
