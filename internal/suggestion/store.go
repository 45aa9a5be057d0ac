package suggestion

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Store persists adjustment suggestions. The one-pending-per-(recipe, type)
// invariant is enforced by the store itself through a partial unique index,
// so concurrent writers cannot duplicate a pending suggestion.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewStore creates a suggestion store.
func NewStore(db *sql.DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, logger: logger}
}

const suggestionColumns = `
	id, suggestion_type, recipe_id, recipe_name, change_percent,
	ingredient_name, reason, feedback_count, status, created_at_ms, applied_at_ms
`

// Upsert inserts a pending suggestion, or refreshes the evidence fields of
// the existing pending suggestion for the same (recipe, type). The write is
// a single atomic statement keyed on the partial unique index, so the
// check-then-act race between concurrent feedback writers cannot produce
// duplicates. Returns the stored suggestion and whether a new row was
// created.
func (s *Store) Upsert(ctx context.Context, sug Suggestion) (Suggestion, bool, error) {
	if !sug.Type.IsValid() {
		return Suggestion{}, false, fmt.Errorf("invalid suggestion type: %q", sug.Type)
	}
	if sug.RecipeID == "" {
		return Suggestion{}, false, fmt.Errorf("recipe_id is required")
	}
	if sug.ID == "" {
		sug.ID = uuid.New().String()
	}
	if sug.CreatedAt.IsZero() {
		sug.CreatedAt = time.Now().UTC()
	}
	sug.Status = StatusPending

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO adjustment_suggestion
			(id, suggestion_type, recipe_id, recipe_name, change_percent,
			 ingredient_name, reason, feedback_count, status, created_at_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 'pending', ?)
		ON CONFLICT(recipe_id, suggestion_type) WHERE status = 'pending' DO UPDATE SET
			recipe_name     = excluded.recipe_name,
			change_percent  = excluded.change_percent,
			ingredient_name = excluded.ingredient_name,
			reason          = excluded.reason,
			feedback_count  = excluded.feedback_count
	`, sug.ID, string(sug.Type), sug.RecipeID, sug.RecipeName, sug.ChangePercent,
		sug.IngredientName, sug.Reason, sug.FeedbackCount, sug.CreatedAt.UnixMilli())
	if err != nil {
		return Suggestion{}, false, fmt.Errorf("failed to upsert suggestion: %w", err)
	}

	stored, err := s.pending(ctx, sug.RecipeID, sug.Type)
	if err != nil {
		return Suggestion{}, false, err
	}

	created := stored.ID == sug.ID
	if created {
		s.logger.Debug("created suggestion",
			"id", stored.ID, "recipe_id", stored.RecipeID, "type", stored.Type)
	} else {
		s.logger.Debug("updated pending suggestion",
			"id", stored.ID, "recipe_id", stored.RecipeID, "type", stored.Type,
			"feedback_count", stored.FeedbackCount)
	}
	return stored, created, nil
}

// pending returns the pending suggestion for (recipeID, typ).
func (s *Store) pending(ctx context.Context, recipeID string, typ Type) (Suggestion, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+suggestionColumns+`
		FROM adjustment_suggestion
		WHERE recipe_id = ? AND suggestion_type = ? AND status = 'pending'
	`, recipeID, string(typ))
	return scanSuggestion(row)
}

// Get returns a suggestion by id, or ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (Suggestion, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+suggestionColumns+`
		FROM adjustment_suggestion WHERE id = ?
	`, id)
	return scanSuggestion(row)
}

// ListPending returns pending suggestions, optionally filtered by recipe
// and type, newest first.
func (s *Store) ListPending(ctx context.Context, recipeID string, typ Type) ([]Suggestion, error) {
	query := `
		SELECT ` + suggestionColumns + `
		FROM adjustment_suggestion
		WHERE status = 'pending'
	`
	args := []any{}
	if recipeID != "" {
		query += ` AND recipe_id = ?`
		args = append(args, recipeID)
	}
	if typ != "" {
		query += ` AND suggestion_type = ?`
		args = append(args, string(typ))
	}
	query += ` ORDER BY created_at_ms DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending suggestions: %w", err)
	}
	defer rows.Close()

	var out []Suggestion
	for rows.Next() {
		sug, err := scanSuggestion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sug)
	}
	return out, rows.Err()
}

// HasDismissed reports whether a dismissed suggestion exists for the
// (recipe, type) pair. Dismissals are user overrides: the lifecycle manager
// consults this to avoid resurrecting a proposal the user said no to.
func (s *Store) HasDismissed(ctx context.Context, recipeID string, typ Type) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM adjustment_suggestion
		WHERE recipe_id = ? AND suggestion_type = ? AND status = 'dismissed'
	`, recipeID, string(typ)).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check dismissed suggestions: %w", err)
	}
	return n > 0, nil
}

// MarkApplied transitions a pending suggestion to applied. Applying a
// missing id returns ErrNotFound; applying a terminal one ErrInvalidState.
func (s *Store) MarkApplied(ctx context.Context, id string, appliedAt time.Time) error {
	return s.transition(ctx, id, StatusApplied, &appliedAt)
}

// Dismiss transitions a pending suggestion to dismissed.
func (s *Store) Dismiss(ctx context.Context, id string) error {
	return s.transition(ctx, id, StatusDismissed, nil)
}

func (s *Store) transition(ctx context.Context, id string, to Status, appliedAt *time.Time) error {
	var appliedMs sql.NullInt64
	if appliedAt != nil {
		appliedMs = sql.NullInt64{Int64: appliedAt.UnixMilli(), Valid: true}
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE adjustment_suggestion
		SET status = ?, applied_at_ms = ?
		WHERE id = ? AND status = 'pending'
	`, string(to), appliedMs, id)
	if err != nil {
		return fmt.Errorf("failed to mark suggestion %s: %w", to, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		s.logger.Debug("suggestion transitioned", "id", id, "status", to)
		return nil
	}

	// Distinguish a missing row from a terminal one.
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return fmt.Errorf("%w: cannot mark %s", ErrInvalidState, to)
}

// DeleteClosedOlderThan removes applied and dismissed suggestions created
// before the cutoff. Pending suggestions are never touched.
func (s *Store) DeleteClosedOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM adjustment_suggestion
		WHERE status IN ('applied', 'dismissed') AND created_at_ms < ?
	`, cutoff.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to delete closed suggestions: %w", err)
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSuggestion(row rowScanner) (Suggestion, error) {
	var sug Suggestion
	var typ, status string
	var createdMs int64
	var appliedMs sql.NullInt64

	err := row.Scan(&sug.ID, &typ, &sug.RecipeID, &sug.RecipeName, &sug.ChangePercent,
		&sug.IngredientName, &sug.Reason, &sug.FeedbackCount, &status, &createdMs, &appliedMs)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Suggestion{}, ErrNotFound
		}
		return Suggestion{}, fmt.Errorf("failed to scan suggestion: %w", err)
	}

	sug.Type = Type(typ)
	sug.Status = Status(status)
	sug.CreatedAt = time.UnixMilli(createdMs).UTC()
	if appliedMs.Valid {
		at := time.UnixMilli(appliedMs.Int64).UTC()
		sug.AppliedAt = &at
	}
	return sug, nil
}
