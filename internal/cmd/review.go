package cmd

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/casafeliz/mealtuner/internal/engine"
	"github.com/casafeliz/mealtuner/internal/review"
	"github.com/casafeliz/mealtuner/internal/suggestion"
)

// engineActions adapts the engine facade to the review screen.
type engineActions struct {
	engine *engine.Engine
}

func (a engineActions) ListPending(ctx context.Context) ([]suggestion.Suggestion, error) {
	return a.engine.Suggestions().ListPending(ctx, "", "")
}

func (a engineActions) Apply(ctx context.Context, id string) error {
	_, err := a.engine.ApplySuggestion(ctx, id)
	return err
}

func (a engineActions) Dismiss(ctx context.Context, id string) error {
	return a.engine.DismissSuggestion(ctx, id)
}

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Review pending suggestions interactively",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, d, err := openEngine(cmd.Context())
		if err != nil {
			return err
		}
		defer d.Close()

		model := review.NewModel(engineActions{engine: e})
		if _, err := tea.NewProgram(model).Run(); err != nil {
			return fmt.Errorf("review screen failed: %w", err)
		}
		return nil
	},
}

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete expired feedback and old closed suggestions",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, d, err := openEngine(cmd.Context())
		if err != nil {
			return err
		}
		defer d.Close()

		res, err := e.Cleanup(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("deleted %d feedback events, %d closed suggestions\n",
			res.FeedbackDeleted, res.SuggestionsDeleted)
		return nil
	},
}
