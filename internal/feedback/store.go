package feedback

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// MaxRecentEvents caps how many events a single analysis reads. The working
// set is deliberately bounded; anything older has decayed to irrelevance
// long before the cap matters.
const MaxRecentEvents = 200

// Store persists feedback events. Inserts come from the host's capture
// path; everything else is read-only.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewStore creates a feedback store.
func NewStore(db *sql.DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, logger: logger}
}

// Insert stores a new feedback event. A missing ID is generated and a
// missing CreatedAt defaults to now. The stored event is returned.
func (s *Store) Insert(ctx context.Context, ev Event) (Event, error) {
	if !ev.MealType.IsValid() {
		return Event{}, fmt.Errorf("invalid meal type: %q", ev.MealType)
	}
	if !ev.PortionRating.IsValid() {
		return Event{}, fmt.Errorf("invalid portion rating: %q", ev.PortionRating)
	}
	if !ev.LeftoverRating.IsValid() {
		return Event{}, fmt.Errorf("invalid leftover rating: %q", ev.LeftoverRating)
	}
	if ev.ID == "" {
		ev.ID = uuid.New().String()
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}

	missing, err := json.Marshal(emptyIfNil(ev.MissingIngredients))
	if err != nil {
		return Event{}, fmt.Errorf("failed to marshal missing ingredients: %w", err)
	}
	usedUp, err := json.Marshal(emptyIfNil(ev.UsedUpIngredients))
	if err != nil {
		return Event{}, fmt.Errorf("failed to marshal used-up ingredients: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO feedback_event
			(id, meal_date, meal_type, recipe_id, recipe_name, portion_rating,
			 leftover_rating, missing_ingredients, used_up_ingredients, notes, created_at_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, ev.ID, ev.Date, string(ev.MealType), nullStr(ev.RecipeID), ev.RecipeName,
		nullStr(string(ev.PortionRating)), nullStr(string(ev.LeftoverRating)),
		string(missing), string(usedUp), ev.Notes, ev.CreatedAt.UnixMilli())
	if err != nil {
		return Event{}, fmt.Errorf("failed to insert feedback event: %w", err)
	}

	s.logger.Debug("recorded feedback event",
		"id", ev.ID, "recipe_id", ev.RecipeID, "meal_type", ev.MealType)
	return ev, nil
}

// ListRecent returns up to limit events ordered by created_at descending.
// An empty recipeID lists across all recipes; limit <= 0 or above the cap
// uses MaxRecentEvents.
func (s *Store) ListRecent(ctx context.Context, recipeID string, limit int) ([]Event, error) {
	if limit <= 0 || limit > MaxRecentEvents {
		limit = MaxRecentEvents
	}

	query := `
		SELECT id, meal_date, meal_type, recipe_id, recipe_name, portion_rating,
		       leftover_rating, missing_ingredients, used_up_ingredients, notes, created_at_ms
		FROM feedback_event
	`
	args := []any{}
	if recipeID != "" {
		query += ` WHERE recipe_id = ?`
		args = append(args, recipeID)
	}
	query += ` ORDER BY created_at_ms DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query feedback events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// RecipeIDs returns the distinct recipe ids that have ever received
// feedback, excluding free-form meals with no recipe.
func (s *Store) RecipeIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT recipe_id FROM feedback_event
		WHERE recipe_id IS NOT NULL
		ORDER BY recipe_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query feedback recipe ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// DeleteOlderThan removes events created before the cutoff. Used by
// retention cleanup for events past the decay window.
func (s *Store) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM feedback_event WHERE created_at_ms < ?
	`, cutoff.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired feedback events: %w", err)
	}
	return res.RowsAffected()
}

func scanEvent(rows *sql.Rows) (Event, error) {
	var ev Event
	var recipeID, portion, leftover sql.NullString
	var missing, usedUp string
	var createdMs int64
	var mealType string

	if err := rows.Scan(&ev.ID, &ev.Date, &mealType, &recipeID, &ev.RecipeName,
		&portion, &leftover, &missing, &usedUp, &ev.Notes, &createdMs); err != nil {
		return Event{}, fmt.Errorf("failed to scan feedback event: %w", err)
	}

	ev.MealType = MealType(mealType)
	if recipeID.Valid {
		ev.RecipeID = recipeID.String
	}
	if portion.Valid {
		ev.PortionRating = PortionRating(portion.String)
	}
	if leftover.Valid {
		ev.LeftoverRating = LeftoverRating(leftover.String)
	}
	ev.CreatedAt = time.UnixMilli(createdMs).UTC()

	if err := json.Unmarshal([]byte(missing), &ev.MissingIngredients); err != nil {
		return Event{}, fmt.Errorf("failed to unmarshal missing ingredients: %w", err)
	}
	if err := json.Unmarshal([]byte(usedUp), &ev.UsedUpIngredients); err != nil {
		return Event{}, fmt.Errorf("failed to unmarshal used-up ingredients: %w", err)
	}
	return ev, nil
}

func emptyIfNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}

func nullStr(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
