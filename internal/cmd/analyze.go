package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/casafeliz/mealtuner/internal/analysis"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <recipe-id>",
	Short: "Show a recipe's feedback pattern without creating suggestions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, d, err := openEngine(cmd.Context())
		if err != nil {
			return err
		}
		defer d.Close()

		p, err := e.AnalyzeRecipe(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		name := p.RecipeName
		if name == "" {
			name = p.RecipeID
		}
		fmt.Printf("%s: %d events, %.1f weighted\n", name, p.EventCount, p.TotalWeighted)
		fmt.Printf("  portions:  too much %.1f / good %.1f / too little %.1f\n",
			p.Portion.TooMuch, p.Portion.Good, p.Portion.TooLittle)
		fmt.Printf("  leftovers: none %.1f / some %.1f / lots %.1f\n",
			p.Leftover.None, p.Leftover.Some, p.Leftover.Lots)
		printDimension("portion", p.PortionResult)
		printDimension("leftover", p.LeftoverResult)
		for _, mi := range p.MissingTop {
			fmt.Printf("  missing:   %s (weight %.1f)\n", mi.Name, mi.Weight)
		}
		return nil
	},
}

func printDimension(label string, res analysis.DimensionResult) {
	if res.Recommendation == analysis.RecommendNone {
		fmt.Printf("  %s: no change (confidence %.2f)\n", label, res.Confidence)
		return
	}
	fmt.Printf("  %s: %s %+d%% (confidence %.2f)\n",
		label, res.Recommendation, res.ChangePercent, res.Confidence)
}
