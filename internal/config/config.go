// Package config loads the engine's YAML configuration. Invalid values
// never prevent startup: they are clamped or replaced with defaults, with
// a warning per fixed field.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/casafeliz/mealtuner/internal/analysis"
	"github.com/casafeliz/mealtuner/internal/decay"
)

// EnvConfigPath overrides the config file location.
const EnvConfigPath = "MEALTUNER_CONFIG"

// Config is the full mealtuner configuration.
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Logging   LoggingConfig   `yaml:"logging"`
	Engine    EngineConfig    `yaml:"engine"`
	Retention RetentionConfig `yaml:"retention"`
}

// DatabaseConfig holds storage settings.
type DatabaseConfig struct {
	Path string `yaml:"path"` // SQLite database path (empty = default)
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	Debug bool   `yaml:"debug"` // Force debug level
}

// EngineConfig holds the adjustment policy. Every threshold the engine
// uses is a named field here; zero values mean "use the default".
type EngineConfig struct {
	// Temporal decay
	HalfLifeDays float64 `yaml:"half_life_days"` // Feedback weight halves every N days
	MinWeight    float64 `yaml:"min_weight"`     // Weight floor for non-expired events
	MaxAgeDays   float64 `yaml:"max_age_days"`   // Events older than this carry no weight

	// Recommendation gates
	PortionConfidenceMin  float64 `yaml:"portion_confidence_min"`
	LeftoverConfidenceMin float64 `yaml:"leftover_confidence_min"`
	MinWeightedTotal      float64 `yaml:"min_weighted_total"`

	// Change sizing
	PortionChangeCap    int     `yaml:"portion_change_cap"`
	LeftoverChangeCap   int     `yaml:"leftover_change_cap"`
	PortionChangeScale  float64 `yaml:"portion_change_scale"`
	LeftoverChangeScale float64 `yaml:"leftover_change_scale"`

	// Missing-ingredient ranking
	MissingWeightMin float64 `yaml:"missing_weight_min"`
	MissingTopN      int     `yaml:"missing_top_n"`
}

// RetentionConfig holds cleanup horizons.
type RetentionConfig struct {
	// ClosedSuggestionDays is how long applied and dismissed suggestions
	// are kept. Pending suggestions are never cleaned up.
	ClosedSuggestionDays int `yaml:"closed_suggestion_days"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{Level: "info"},
		Engine: EngineConfig{
			HalfLifeDays:          decay.DefaultHalfLifeDays,
			MinWeight:             decay.DefaultMinWeight,
			MaxAgeDays:            decay.DefaultMaxAgeDays,
			PortionConfidenceMin:  analysis.DefaultPortionConfidenceMin,
			LeftoverConfidenceMin: analysis.DefaultLeftoverConfidenceMin,
			MinWeightedTotal:      analysis.DefaultMinWeightedTotal,
			PortionChangeCap:      analysis.DefaultPortionChangeCap,
			LeftoverChangeCap:     analysis.DefaultLeftoverChangeCap,
			PortionChangeScale:    analysis.DefaultPortionChangeScale,
			LeftoverChangeScale:   analysis.DefaultLeftoverChangeScale,
			MissingWeightMin:      analysis.DefaultMissingWeightMin,
			MissingTopN:           analysis.DefaultMissingTopN,
		},
		Retention: RetentionConfig{ClosedSuggestionDays: 180},
	}
}

// DefaultPath returns the default config file location, honoring the
// MEALTUNER_CONFIG override.
func DefaultPath() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "mealtuner.yaml"
	}
	return filepath.Join(home, ".mealtuner", "config.yaml")
}

// Load loads configuration from the default path.
func Load() (*Config, error) {
	return LoadFromFile(DefaultPath())
}

// LoadFromFile loads configuration from path. A missing file returns the
// defaults; a malformed one is an error. Out-of-range values are fixed.
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ValidateAndFix()
	return cfg, nil
}

// ValidationWarning describes one fixed config value.
type ValidationWarning struct {
	Field   string
	Message string
}

// ValidateAndFix replaces out-of-range values with defaults or clamps
// them. Returns the warnings for diagnostics; never fails.
func (c *Config) ValidateAndFix() []ValidationWarning {
	def := DefaultConfig()
	var warnings []ValidationWarning

	warn := func(field, msg string) {
		warnings = append(warnings, ValidationWarning{Field: field, Message: msg})
	}

	positives := []struct {
		name string
		val  *float64
		def  float64
	}{
		{"engine.half_life_days", &c.Engine.HalfLifeDays, def.Engine.HalfLifeDays},
		{"engine.max_age_days", &c.Engine.MaxAgeDays, def.Engine.MaxAgeDays},
		{"engine.min_weighted_total", &c.Engine.MinWeightedTotal, def.Engine.MinWeightedTotal},
		{"engine.portion_change_scale", &c.Engine.PortionChangeScale, def.Engine.PortionChangeScale},
		{"engine.leftover_change_scale", &c.Engine.LeftoverChangeScale, def.Engine.LeftoverChangeScale},
		{"engine.missing_weight_min", &c.Engine.MissingWeightMin, def.Engine.MissingWeightMin},
	}
	for _, p := range positives {
		if *p.val <= 0 {
			warn(p.name, fmt.Sprintf("must be > 0, got %g; using default %g", *p.val, p.def))
			*p.val = p.def
		}
	}

	ratios := []struct {
		name string
		val  *float64
		def  float64
	}{
		{"engine.min_weight", &c.Engine.MinWeight, def.Engine.MinWeight},
		{"engine.portion_confidence_min", &c.Engine.PortionConfidenceMin, def.Engine.PortionConfidenceMin},
		{"engine.leftover_confidence_min", &c.Engine.LeftoverConfidenceMin, def.Engine.LeftoverConfidenceMin},
	}
	for _, r := range ratios {
		if *r.val <= 0 || *r.val > 1 {
			warn(r.name, fmt.Sprintf("must be in (0, 1], got %g; using default %g", *r.val, r.def))
			*r.val = r.def
		}
	}

	counts := []struct {
		name string
		val  *int
		def  int
	}{
		{"engine.portion_change_cap", &c.Engine.PortionChangeCap, def.Engine.PortionChangeCap},
		{"engine.leftover_change_cap", &c.Engine.LeftoverChangeCap, def.Engine.LeftoverChangeCap},
		{"engine.missing_top_n", &c.Engine.MissingTopN, def.Engine.MissingTopN},
		{"retention.closed_suggestion_days", &c.Retention.ClosedSuggestionDays, def.Retention.ClosedSuggestionDays},
	}
	for _, n := range counts {
		if *n.val <= 0 {
			warn(n.name, fmt.Sprintf("must be > 0, got %d; using default %d", *n.val, n.def))
			*n.val = n.def
		}
	}

	return warnings
}

// DecayOptions converts the engine config to decay options.
func (c *Config) DecayOptions() decay.Options {
	return decay.Options{
		HalfLifeDays: c.Engine.HalfLifeDays,
		MinWeight:    c.Engine.MinWeight,
		MaxAgeDays:   c.Engine.MaxAgeDays,
	}
}

// AnalysisConfig converts the engine config to the analyzer policy.
func (c *Config) AnalysisConfig() analysis.Config {
	return analysis.Config{
		PortionConfidenceMin:  c.Engine.PortionConfidenceMin,
		LeftoverConfidenceMin: c.Engine.LeftoverConfidenceMin,
		MinWeightedTotal:      c.Engine.MinWeightedTotal,
		PortionChangeCap:      c.Engine.PortionChangeCap,
		LeftoverChangeCap:     c.Engine.LeftoverChangeCap,
		PortionChangeScale:    c.Engine.PortionChangeScale,
		LeftoverChangeScale:   c.Engine.LeftoverChangeScale,
		MissingWeightMin:      c.Engine.MissingWeightMin,
		MissingTopN:           c.Engine.MissingTopN,
	}
}
