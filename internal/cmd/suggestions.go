package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/casafeliz/mealtuner/internal/suggestion"
)

var (
	flagSuggestionsRecipe string
	flagSuggestionsType   string
)

var suggestionsCmd = &cobra.Command{
	Use:   "suggestions",
	Short: "List pending suggestions",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, d, err := openEngine(cmd.Context())
		if err != nil {
			return err
		}
		defer d.Close()

		pending, err := e.Suggestions().ListPending(cmd.Context(),
			flagSuggestionsRecipe, suggestion.Type(flagSuggestionsType))
		if err != nil {
			return err
		}
		if len(pending) == 0 {
			fmt.Println("no pending suggestions")
			return nil
		}

		for _, sug := range pending {
			name := sug.RecipeName
			if name == "" {
				name = sug.RecipeID
			}
			fmt.Printf("%s  [%s]  %s\n", sug.ID, sug.Type, name)
			fmt.Printf("    %s (based on %d meals)\n", sug.Reason, sug.FeedbackCount)
		}
		return nil
	},
}

var rescanCmd = &cobra.Command{
	Use:   "rescan",
	Short: "Re-analyze every recipe with feedback",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, d, err := openEngine(cmd.Context())
		if err != nil {
			return err
		}
		defer d.Close()

		sugs, err := e.RescanAll(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("rescan complete: %d pending suggestions\n", len(sugs))
		return nil
	},
}

var applyCmd = &cobra.Command{
	Use:   "apply <suggestion-id>",
	Short: "Apply a pending suggestion to recipes or the shopping list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, d, err := openEngine(cmd.Context())
		if err != nil {
			return err
		}
		defer d.Close()

		res, err := e.ApplySuggestion(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("applied: %d records updated\n", res.MutatedCount)
		for _, applyErr := range res.Errors {
			fmt.Printf("  skipped: %s\n", applyErr)
		}
		return nil
	},
}

var dismissCmd = &cobra.Command{
	Use:   "dismiss <suggestion-id>",
	Short: "Dismiss a pending suggestion",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, d, err := openEngine(cmd.Context())
		if err != nil {
			return err
		}
		defer d.Close()

		if err := e.DismissSuggestion(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Println("dismissed")
		return nil
	},
}

func init() {
	f := suggestionsCmd.Flags()
	f.StringVar(&flagSuggestionsRecipe, "recipe", "", "filter by recipe id")
	f.StringVar(&flagSuggestionsType, "type", "", "filter by type: portion, market, ingredient")
}
