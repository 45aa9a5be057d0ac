package cmd

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casafeliz/mealtuner/internal/db"
	"github.com/casafeliz/mealtuner/internal/suggestion"
)

// runCLI executes the root command with args. Not parallel: commands share
// package-level flag state.
func runCLI(t *testing.T, args ...string) error {
	t.Helper()
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func TestCLI_FeedbackToDismissRoundTrip(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cli.db")

	for i := 0; i < 3; i++ {
		err := runCLI(t, "feedback", "add",
			"--db", dbPath,
			"--recipe", "r1",
			"--name", "Lentejas",
			"--meal", "dinner",
			"--portion", "mucha",
		)
		require.NoError(t, err)
	}

	require.NoError(t, runCLI(t, "suggestions", "--db", dbPath))
	require.NoError(t, runCLI(t, "analyze", "r1", "--db", dbPath))
	require.NoError(t, runCLI(t, "rescan", "--db", dbPath))

	ctx := context.Background()
	d, err := db.Open(ctx, db.Options{Path: dbPath})
	require.NoError(t, err)
	store := suggestion.NewStore(d.SQL(), nil)

	pending, err := store.ListPending(ctx, "r1", suggestion.TypePortion)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	id := pending[0].ID
	require.NoError(t, d.Close())

	require.NoError(t, runCLI(t, "dismiss", id, "--db", dbPath))

	d, err = db.Open(ctx, db.Options{Path: dbPath})
	require.NoError(t, err)
	defer d.Close()
	store = suggestion.NewStore(d.SQL(), nil)

	got, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, suggestion.StatusDismissed, got.Status)
}

func TestCLI_RejectsInvalidRating(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cli.db")

	err := runCLI(t, "feedback", "add",
		"--db", dbPath,
		"--recipe", "r1",
		"--name", "Lentejas",
		"--portion", "enormous",
	)
	require.Error(t, err)
}
