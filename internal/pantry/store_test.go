package pantry

import (
	"context"
	"path/filepath"
	"testing"

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

func TestStore_RecipeRoundTrip(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	saved, err := store.PutRecipe(ctx, Recipe{
		Name: "Lentejas",
		Ingredients: []Ingredient{
			{Name: "lentejas", Total: "280g", Luis: "160g", Mariana: "120g"},
			{Name: "chorizo", Total: "100g"},
			{Name: "laurel"},
		},
	})
	require.NoError(t, err)
	require.NotEmpty(t, saved.ID)

	got, err := store.GetRecipe(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lentejas", got.Name)
	require.Len(t, got.Ingredients, 3)
	assert.Equal(t, "280g", got.Ingredients[0].Total)
	assert.Equal(t, "120g", got.Ingredients[0].Mariana)
	assert.Empty(t, got.Ingredients[2].Total)
}

func TestStore_GetRecipeNotFound(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	_, err := store.GetRecipe(context.Background(), "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStore_UpdateRecipeIngredients(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	saved, err := store.PutRecipe(ctx, Recipe{
		Name:        "Arroz",
		Ingredients: []Ingredient{{Name: "arroz", Total: "300g"}},
	})
	require.NoError(t, err)

	err = store.UpdateRecipeIngredients(ctx, saved.ID, []Ingredient{{Name: "arroz", Total: "228 g"}})
	require.NoError(t, err)

	got, err := store.GetRecipe(ctx, saved.ID)
	require.NoError(t, err)
	require.Len(t, got.Ingredients, 1)
	assert.Equal(t, "228 g", got.Ingredients[0].Total)

	err = store.UpdateRecipeIngredients(ctx, "missing", nil)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStore_MarketItems(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.PutItem(ctx, MarketItem{Name: "tomates", Quantity: "1 kg"})
	require.NoError(t, err)
	item, err := store.PutItem(ctx, MarketItem{Name: "arroz", Quantity: "500g"})
	require.NoError(t, err)

	items, err := store.ListItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "arroz", items[0].Name)
	assert.Equal(t, "tomates", items[1].Name)

	require.NoError(t, store.UpdateItemQuantity(ctx, item.ID, "400 g"))
	items, err = store.ListItems(ctx)
	require.NoError(t, err)
	assert.Equal(t, "400 g", items[0].Quantity)

	err = store.UpdateItemQuantity(ctx, "missing", "1")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMatchesIngredient(t *testing.T) {
	t.Parallel()

	tests := []struct {
		item, ingredient string
		want             bool
	}{
		{"tomates cherry", "tomates", true},
		{"tomates", "tomates cherry", true},
		{"Arroz", "arroz", true},
		{"arroz", "lentejas", false},
		{"", "arroz", false},
		{"arroz", "", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MatchesIngredient(tt.item, tt.ingredient),
			"item %q ingredient %q", tt.item, tt.ingredient)
	}
}
