package feedback

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casafeliz/mealtuner/internal/db"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	d, err := db.Open(context.Background(), db.Options{Path: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })

	return NewStore(d.SQL(), nil)
}

func TestStore_InsertAndListRecent(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	ev, err := store.Insert(ctx, Event{
		Date:               "2025-05-30",
		MealType:           MealDinner,
		RecipeID:           "r1",
		RecipeName:         "Lentejas",
		PortionRating:      PortionTooMuch,
		LeftoverRating:     LeftoverLots,
		MissingIngredients: []string{"laurel"},
		Notes:              "sobró bastante",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, ev.ID)
	assert.False(t, ev.CreatedAt.IsZero())

	events, err := store.ListRecent(ctx, "r1", 0)
	require.NoError(t, err)
	require.Len(t, events, 1)

	got := events[0]
	assert.Equal(t, ev.ID, got.ID)
	assert.Equal(t, MealDinner, got.MealType)
	assert.Equal(t, PortionTooMuch, got.PortionRating)
	assert.Equal(t, LeftoverLots, got.LeftoverRating)
	assert.Equal(t, []string{"laurel"}, got.MissingIngredients)
	assert.Empty(t, got.UsedUpIngredients)
	assert.Equal(t, "sobró bastante", got.Notes)
}

func TestStore_InsertRejectsInvalidRatings(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Insert(ctx, Event{MealType: "brunch", RecipeName: "x"})
	assert.Error(t, err)

	_, err = store.Insert(ctx, Event{MealType: MealLunch, RecipeName: "x", PortionRating: "huge"})
	assert.Error(t, err)

	_, err = store.Insert(ctx, Event{MealType: MealLunch, RecipeName: "x", LeftoverRating: "tons"})
	assert.Error(t, err)
}

func TestStore_UnratedDimensionsRoundTrip(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Insert(ctx, Event{MealType: MealBreakfast, RecipeName: "Tostadas"})
	require.NoError(t, err)

	events, err := store.ListRecent(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, PortionUnrated, events[0].PortionRating)
	assert.Equal(t, LeftoverUnrated, events[0].LeftoverRating)
	assert.Empty(t, events[0].RecipeID)
}

func TestStore_ListRecentOrderAndCap(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < MaxRecentEvents+20; i++ {
		_, err := store.Insert(ctx, Event{
			ID:         fmt.Sprintf("ev-%03d", i),
			MealType:   MealLunch,
			RecipeID:   "r1",
			RecipeName: "Arroz",
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	events, err := store.ListRecent(ctx, "r1", 0)
	require.NoError(t, err)
	assert.Len(t, events, MaxRecentEvents)

	// Newest first; the oldest 20 fell outside the cap.
	assert.Equal(t, "ev-219", events[0].ID)
	assert.Equal(t, "ev-020", events[len(events)-1].ID)
}

func TestStore_RecipeIDs(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"r2", "r1", "r2", ""} {
		_, err := store.Insert(ctx, Event{MealType: MealDinner, RecipeID: id, RecipeName: "x"})
		require.NoError(t, err)
	}

	ids, err := store.RecipeIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"r1", "r2"}, ids)
}

func TestStore_DeleteOlderThan(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC()
	_, err := store.Insert(ctx, Event{MealType: MealLunch, RecipeName: "old", CreatedAt: now.AddDate(0, 0, -120)})
	require.NoError(t, err)
	_, err = store.Insert(ctx, Event{MealType: MealLunch, RecipeName: "fresh", CreatedAt: now})
	require.NoError(t, err)

	deleted, err := store.DeleteOlderThan(ctx, now.AddDate(0, 0, -90))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	events, err := store.ListRecent(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "fresh", events[0].RecipeName)
}
