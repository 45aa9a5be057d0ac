package pantry

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Store persists recipes and market items.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewStore creates a pantry store.
func NewStore(db *sql.DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, logger: logger}
}

// PutRecipe inserts or replaces a recipe.
func (s *Store) PutRecipe(ctx context.Context, r Recipe) (Recipe, error) {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.Name == "" {
		return Recipe{}, fmt.Errorf("recipe name is required")
	}
	r.UpdatedAt = time.Now().UTC()

	ingredients, err := json.Marshal(r.Ingredients)
	if err != nil {
		return Recipe{}, fmt.Errorf("failed to encode ingredients: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO recipe (id, name, ingredients, updated_at_ms)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name          = excluded.name,
			ingredients   = excluded.ingredients,
			updated_at_ms = excluded.updated_at_ms
	`, r.ID, r.Name, string(ingredients), r.UpdatedAt.UnixMilli())
	if err != nil {
		return Recipe{}, fmt.Errorf("failed to save recipe: %w", err)
	}
	return r, nil
}

// GetRecipe returns a recipe by id, or ErrNotFound.
func (s *Store) GetRecipe(ctx context.Context, id string) (Recipe, error) {
	var r Recipe
	var ingredients string
	var updatedMs int64

	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, ingredients, updated_at_ms FROM recipe WHERE id = ?
	`, id).Scan(&r.ID, &r.Name, &ingredients, &updatedMs)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Recipe{}, ErrNotFound
		}
		return Recipe{}, fmt.Errorf("failed to load recipe: %w", err)
	}

	if err := json.Unmarshal([]byte(ingredients), &r.Ingredients); err != nil {
		return Recipe{}, fmt.Errorf("failed to decode ingredients for recipe %s: %w", id, err)
	}
	r.UpdatedAt = time.UnixMilli(updatedMs).UTC()
	return r, nil
}

// UpdateRecipeIngredients replaces a recipe's ingredient list.
func (s *Store) UpdateRecipeIngredients(ctx context.Context, id string, ingredients []Ingredient) error {
	encoded, err := json.Marshal(ingredients)
	if err != nil {
		return fmt.Errorf("failed to encode ingredients: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE recipe SET ingredients = ?, updated_at_ms = ? WHERE id = ?
	`, string(encoded), time.Now().UTC().UnixMilli(), id)
	if err != nil {
		return fmt.Errorf("failed to update recipe ingredients: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	s.logger.Debug("updated recipe ingredients", "recipe_id", id, "ingredients", len(ingredients))
	return nil
}

// PutItem inserts or replaces a market item.
func (s *Store) PutItem(ctx context.Context, item MarketItem) (MarketItem, error) {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if item.Name == "" {
		return MarketItem{}, fmt.Errorf("market item name is required")
	}
	item.UpdatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO market_item (id, name, quantity, updated_at_ms)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name          = excluded.name,
			quantity      = excluded.quantity,
			updated_at_ms = excluded.updated_at_ms
	`, item.ID, item.Name, item.Quantity, item.UpdatedAt.UnixMilli())
	if err != nil {
		return MarketItem{}, fmt.Errorf("failed to save market item: %w", err)
	}
	return item, nil
}

// ListItems returns all market items ordered by name.
func (s *Store) ListItems(ctx context.Context) ([]MarketItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, quantity, updated_at_ms FROM market_item ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list market items: %w", err)
	}
	defer rows.Close()

	var out []MarketItem
	for rows.Next() {
		var item MarketItem
		var updatedMs int64
		if err := rows.Scan(&item.ID, &item.Name, &item.Quantity, &updatedMs); err != nil {
			return nil, fmt.Errorf("failed to scan market item: %w", err)
		}
		item.UpdatedAt = time.UnixMilli(updatedMs).UTC()
		out = append(out, item)
	}
	return out, rows.Err()
}

// UpdateItemQuantity replaces one item's quantity string.
func (s *Store) UpdateItemQuantity(ctx context.Context, id, quantity string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE market_item SET quantity = ?, updated_at_ms = ? WHERE id = ?
	`, quantity, time.Now().UTC().UnixMilli(), id)
	if err != nil {
		return fmt.Errorf("failed to update market item quantity: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
