package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/casafeliz/mealtuner/internal/feedback"
)

var (
	flagFeedbackRecipe   string
	flagFeedbackName     string
	flagFeedbackDate     string
	flagFeedbackMeal     string
	flagFeedbackPortion  string
	flagFeedbackLeftover string
	flagFeedbackMissing  []string
	flagFeedbackUsedUp   []string
	flagFeedbackNotes    string
)

var feedbackCmd = &cobra.Command{
	Use:   "feedback",
	Short: "Record meal feedback",
}

var feedbackAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record how a meal went and update its suggestions",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, d, err := openEngine(cmd.Context())
		if err != nil {
			return err
		}
		defer d.Close()

		ev := feedback.Event{
			Date:               flagFeedbackDate,
			MealType:           feedback.MealType(flagFeedbackMeal),
			RecipeID:           flagFeedbackRecipe,
			RecipeName:         flagFeedbackName,
			PortionRating:      feedback.PortionRating(flagFeedbackPortion),
			LeftoverRating:     feedback.LeftoverRating(flagFeedbackLeftover),
			MissingIngredients: flagFeedbackMissing,
			UsedUpIngredients:  flagFeedbackUsedUp,
			Notes:              flagFeedbackNotes,
		}
		if ev.Date == "" {
			ev.Date = time.Now().Format("2006-01-02")
		}

		saved, sugs, err := e.OnFeedbackSaved(cmd.Context(), ev)
		if err != nil {
			return err
		}

		fmt.Printf("recorded feedback %s\n", saved.ID)
		for _, sug := range sugs {
			fmt.Printf("suggestion [%s] %s: %s\n", sug.Type, sug.ID, sug.Reason)
		}
		return nil
	},
}

func init() {
	feedbackCmd.AddCommand(feedbackAddCmd)

	f := feedbackAddCmd.Flags()
	f.StringVar(&flagFeedbackRecipe, "recipe", "", "recipe id (empty for free-form meals)")
	f.StringVar(&flagFeedbackName, "name", "", "recipe or meal name")
	f.StringVar(&flagFeedbackDate, "date", "", "meal date, YYYY-MM-DD (default today)")
	f.StringVar(&flagFeedbackMeal, "meal", "dinner", "meal type: breakfast, lunch, dinner")
	f.StringVar(&flagFeedbackPortion, "portion", "", "portion rating: poca, bien, mucha")
	f.StringVar(&flagFeedbackLeftover, "leftover", "", "leftover rating: nada, poco, mucho")
	f.StringSliceVar(&flagFeedbackMissing, "missing", nil, "ingredients that were missing")
	f.StringSliceVar(&flagFeedbackUsedUp, "used-up", nil, "ingredients that ran out")
	f.StringVar(&flagFeedbackNotes, "notes", "", "free-form notes")
	_ = feedbackAddCmd.MarkFlagRequired("name")
}
