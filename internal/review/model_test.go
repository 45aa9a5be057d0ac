package review

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casafeliz/mealtuner/internal/suggestion"
)

type fakeActions struct {
	items     []suggestion.Suggestion
	listErr   error
	applied   []string
	dismissed []string
}

func (f *fakeActions) ListPending(context.Context) ([]suggestion.Suggestion, error) {
	return f.items, f.listErr
}

func (f *fakeActions) Apply(_ context.Context, id string) error {
	f.applied = append(f.applied, id)
	return nil
}

func (f *fakeActions) Dismiss(_ context.Context, id string) error {
	f.dismissed = append(f.dismissed, id)
	return nil
}

func twoSuggestions() []suggestion.Suggestion {
	return []suggestion.Suggestion{
		{ID: "s1", Type: suggestion.TypePortion, RecipeName: "Lentejas", ChangePercent: -20, FeedbackCount: 4},
		{ID: "s2", Type: suggestion.TypeIngredient, RecipeName: "Arroz", IngredientName: "laurel", FeedbackCount: 3},
	}
}

func loaded(t *testing.T, m Model, items []suggestion.Suggestion) Model {
	t.Helper()
	next, _ := m.Update(loadedMsg{items: items})
	return next.(Model)
}

func TestModel_LoadTransitions(t *testing.T) {
	t.Parallel()

	m := NewModel(&fakeActions{})
	assert.Equal(t, stateLoading, m.state)

	m = loaded(t, m, twoSuggestions())
	assert.Equal(t, stateLoaded, m.state)
	assert.Equal(t, 0, m.selection)

	m = loaded(t, m, nil)
	assert.Equal(t, stateEmpty, m.state)
}

func TestModel_LoadError(t *testing.T) {
	t.Parallel()

	m := NewModel(&fakeActions{})
	next, _ := m.Update(loadedMsg{err: errors.New("db gone")})
	m = next.(Model)
	assert.Equal(t, stateError, m.state)
	assert.Contains(t, m.View(), "db gone")
}

func TestModel_Navigation(t *testing.T) {
	t.Parallel()

	m := loaded(t, NewModel(&fakeActions{}), twoSuggestions())

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(Model)
	assert.Equal(t, 1, m.selection)

	// Bottom of the list clamps.
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(Model)
	assert.Equal(t, 1, m.selection)

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m = next.(Model)
	assert.Equal(t, 0, m.selection)
}

func TestModel_ApplySelected(t *testing.T) {
	t.Parallel()

	actions := &fakeActions{items: twoSuggestions()}
	m := loaded(t, NewModel(actions), actions.items)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a")})
	m = next.(Model)
	require.NotNil(t, cmd)
	assert.Equal(t, "s1", m.busy)

	msg := cmd()
	done, ok := msg.(actionDoneMsg)
	require.True(t, ok)
	assert.NoError(t, done.err)
	assert.Equal(t, []string{"s1"}, actions.applied)

	// The completion clears busy and triggers a reload.
	next, cmd = m.Update(done)
	m = next.(Model)
	assert.Empty(t, m.busy)
	assert.Equal(t, stateLoading, m.state)
	require.NotNil(t, cmd)
}

func TestModel_DismissSelected(t *testing.T) {
	t.Parallel()

	actions := &fakeActions{items: twoSuggestions()}
	m := loaded(t, NewModel(actions), actions.items)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(Model)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("d")})
	m = next.(Model)
	require.NotNil(t, cmd)

	cmd()
	assert.Equal(t, []string{"s2"}, actions.dismissed)
}

func TestModel_IgnoresInputWhileBusy(t *testing.T) {
	t.Parallel()

	actions := &fakeActions{items: twoSuggestions()}
	m := loaded(t, NewModel(actions), actions.items)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a")})
	m = next.(Model)
	require.Equal(t, "s1", m.busy)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("d")})
	m = next.(Model)
	assert.Nil(t, cmd)
	assert.Empty(t, actions.dismissed)
}

func TestModel_Quit(t *testing.T) {
	t.Parallel()

	m := loaded(t, NewModel(&fakeActions{}), twoSuggestions())
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	m = next.(Model)
	assert.Equal(t, stateQuitting, m.state)
	require.NotNil(t, cmd)
}

func TestDescribeSuggestion(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Lentejas: adjust portions -20% (4 meals)",
		describeSuggestion(suggestion.Suggestion{
			Type: suggestion.TypePortion, RecipeName: "Lentejas", ChangePercent: -20, FeedbackCount: 4,
		}))
	assert.Equal(t, "Arroz: often missing laurel (3 meals)",
		describeSuggestion(suggestion.Suggestion{
			Type: suggestion.TypeIngredient, RecipeName: "Arroz", IngredientName: "laurel", FeedbackCount: 3,
		}))
	// Falls back to the recipe id when the name snapshot is empty.
	assert.Contains(t,
		describeSuggestion(suggestion.Suggestion{Type: suggestion.TypeMarket, RecipeID: "r9", ChangePercent: -10}),
		"r9")
}
