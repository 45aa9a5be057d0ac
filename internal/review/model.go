// Package review is the interactive TUI for working through pending
// suggestions: each one can be applied or dismissed in place.
package review

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/casafeliz/mealtuner/internal/suggestion"
)

// Actions is the engine surface the review screen needs.
type Actions interface {
	ListPending(ctx context.Context) ([]suggestion.Suggestion, error)
	Apply(ctx context.Context, id string) error
	Dismiss(ctx context.Context, id string) error
}

// reviewState represents the current state of the review screen.
type reviewState int

const (
	stateLoading reviewState = iota
	stateLoaded
	stateEmpty
	stateError
	stateQuitting
)

// loadedMsg is sent when the pending list has been fetched.
type loadedMsg struct {
	items []suggestion.Suggestion
	err   error
}

// actionDoneMsg is sent when an apply or dismiss completes.
type actionDoneMsg struct {
	id  string
	err error
}

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Apply   key.Binding
	Dismiss key.Binding
	Quit    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Apply:   key.NewBinding(key.WithKeys("a", "enter"), key.WithHelp("a", "apply")),
		Dismiss: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "dismiss")),
		Quit:    key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// Model is the Bubble Tea model for the review screen.
type Model struct {
	state     reviewState
	actions   Actions
	keys      keyMap
	items     []suggestion.Suggestion
	selection int
	err       error
	width     int

	// busy is the id of the suggestion with an action in flight; input is
	// ignored until its actionDoneMsg arrives.
	busy string
}

// NewModel creates a review model over the given engine surface.
func NewModel(actions Actions) Model {
	return Model{
		state:   stateLoading,
		actions: actions,
		keys:    defaultKeyMap(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.load()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case loadedMsg:
		if msg.err != nil {
			m.state = stateError
			m.err = msg.err
			return m, nil
		}
		m.items = msg.items
		if len(m.items) == 0 {
			m.state = stateEmpty
		} else {
			m.state = stateLoaded
			m.clampSelection()
		}
		return m, nil

	case actionDoneMsg:
		m.busy = ""
		if msg.err != nil {
			m.state = stateError
			m.err = msg.err
			return m, nil
		}
		// Reload so the list reflects the store, not a local guess.
		m.state = stateLoading
		return m, m.load()
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.state = stateQuitting
		return m, tea.Quit
	}
	if m.busy != "" || m.state != stateLoaded {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		if m.selection > 0 {
			m.selection--
		}

	case key.Matches(msg, m.keys.Down):
		if m.selection < len(m.items)-1 {
			m.selection++
		}

	case key.Matches(msg, m.keys.Apply):
		if sug, ok := m.selected(); ok {
			m.busy = sug.ID
			return m, m.runAction(sug.ID, m.actions.Apply)
		}

	case key.Matches(msg, m.keys.Dismiss):
		if sug, ok := m.selected(); ok {
			m.busy = sug.ID
			return m, m.runAction(sug.ID, m.actions.Dismiss)
		}
	}

	return m, nil
}

func (m Model) selected() (suggestion.Suggestion, bool) {
	if m.selection < 0 || m.selection >= len(m.items) {
		return suggestion.Suggestion{}, false
	}
	return m.items[m.selection], true
}

func (m Model) load() tea.Cmd {
	actions := m.actions
	return func() tea.Msg {
		items, err := actions.ListPending(context.Background())
		return loadedMsg{items: items, err: err}
	}
}

func (m Model) runAction(id string, fn func(context.Context, string) error) tea.Cmd {
	return func() tea.Msg {
		return actionDoneMsg{id: id, err: fn(context.Background(), id)}
	}
}

func (m *Model) clampSelection() {
	if m.selection < 0 {
		m.selection = 0
	}
	if m.selection >= len(m.items) {
		m.selection = len(m.items) - 1
	}
}

// --- View rendering ---

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	normalStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	detailStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Pending suggestions"))
	b.WriteRune('\n')

	switch m.state {
	case stateLoading:
		b.WriteString(dimStyle.Render("Loading..."))

	case stateEmpty:
		b.WriteString(dimStyle.Render("Nothing to review"))

	case stateError:
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %s", m.err)))

	case stateQuitting:
		b.WriteString(dimStyle.Render("Bye"))

	case stateLoaded:
		b.WriteString(m.viewList())
	}

	b.WriteRune('\n')
	b.WriteString(dimStyle.Render("↑/↓ move · a apply · d dismiss · q quit"))
	return b.String()
}

func (m Model) viewList() string {
	var b strings.Builder
	for i, sug := range m.items {
		line := describeSuggestion(sug)
		if i == m.selection {
			b.WriteString(selectedStyle.Render("> " + line))
			if m.busy == sug.ID {
				b.WriteString(dimStyle.Render(" …"))
			}
			b.WriteRune('\n')
			b.WriteString(detailStyle.Render("    " + sug.Reason))
		} else {
			b.WriteString(normalStyle.Render("  " + line))
		}
		if i < len(m.items)-1 {
			b.WriteRune('\n')
		}
	}
	return b.String()
}

// describeSuggestion renders the one-line summary of a suggestion.
func describeSuggestion(sug suggestion.Suggestion) string {
	name := sug.RecipeName
	if name == "" {
		name = sug.RecipeID
	}
	switch sug.Type {
	case suggestion.TypePortion:
		return fmt.Sprintf("%s: adjust portions %+d%% (%d meals)", name, sug.ChangePercent, sug.FeedbackCount)
	case suggestion.TypeMarket:
		return fmt.Sprintf("%s: buy %+d%% of matching items (%d meals)", name, sug.ChangePercent, sug.FeedbackCount)
	case suggestion.TypeIngredient:
		return fmt.Sprintf("%s: often missing %s (%d meals)", name, sug.IngredientName, sug.FeedbackCount)
	default:
		return fmt.Sprintf("%s: %s", name, sug.Reason)
	}
}
