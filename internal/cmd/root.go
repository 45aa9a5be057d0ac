// Package cmd implements the mealtuner CLI.
package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/casafeliz/mealtuner/internal/config"
	"github.com/casafeliz/mealtuner/internal/db"
	"github.com/casafeliz/mealtuner/internal/engine"
	"github.com/casafeliz/mealtuner/internal/logging"
)

var (
	flagConfig string
	flagDBPath string
	flagDebug  bool
)

var rootCmd = &cobra.Command{
	Use:   "mealtuner",
	Short: "feedback-driven meal plan adjustments",
	Long: `mealtuner - feedback-driven meal plan adjustments
  - record how each meal went (portions, leftovers, missing ingredients)
  - get portion and shopping-list suggestions backed by recent feedback`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "database path override")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(feedbackCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(rescanCmd)
	rootCmd.AddCommand(suggestionsCmd)
	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(dismissCmd)
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(cleanupCmd)
	rootCmd.AddCommand(versionCmd)
}

// openEngine loads config, builds the logger, opens the database, and
// returns the wired engine. The caller closes the returned db.
func openEngine(ctx context.Context) (*engine.Engine, *db.DB, error) {
	path := flagConfig
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.LoadFromFile(path)
	if err != nil {
		return nil, nil, err
	}
	if flagDBPath != "" {
		cfg.Database.Path = flagDBPath
	}

	logger := logging.New(&logging.Config{
		Level: logging.ParseLevel(cfg.Logging.Level),
		Debug: flagDebug || cfg.Logging.Debug,
	})

	d, err := db.Open(ctx, db.Options{Path: cfg.Database.Path, Logger: logger})
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("database open", "path", d.Path(), "schema_version", db.SchemaVersion)

	return engine.New(d, cfg, logger), d, nil
}
