package analysis

import (
	"math"
	"sort"
)

// Recommendation is the discrete outcome for one analysis dimension.
type Recommendation string

const (
	RecommendNone           Recommendation = "none"
	RecommendDecrease       Recommendation = "decrease"
	RecommendIncrease       Recommendation = "increase"
	RecommendReducePortions Recommendation = "reduce_portions"
)

// Policy thresholds. These are deliberate product decisions, exposed as
// named configuration so alternate policies can be tested exactly.
const (
	// DefaultPortionConfidenceMin gates portion recommendations: the
	// dominant bucket must hold at least this share of the rated mass.
	DefaultPortionConfidenceMin = 0.65

	// DefaultLeftoverConfidenceMin gates leftover-driven recommendations.
	DefaultLeftoverConfidenceMin = 0.4

	// DefaultMinWeightedTotal is the minimum weighted mass before any
	// recommendation fires, however skewed the ratings.
	DefaultMinWeightedTotal = 1.5

	// DefaultPortionChangeCap bounds portion adjustments to ±25%.
	DefaultPortionChangeCap = 25

	// DefaultLeftoverChangeCap bounds leftover-driven market adjustments
	// to ±20%.
	DefaultLeftoverChangeCap = 20

	// DefaultPortionChangeScale converts bucket dominance into a
	// percentage. Steeper than the cap so near-unanimous feedback
	// approaches but does not trivially reach it.
	DefaultPortionChangeScale = 30

	// DefaultLeftoverChangeScale converts leftover confidence into a
	// percentage.
	DefaultLeftoverChangeScale = 25

	// DefaultMissingWeightMin drops missing-ingredient entries with less
	// weighted mass than this.
	DefaultMissingWeightMin = 0.5

	// DefaultMissingTopN keeps the N most-reported missing ingredients.
	DefaultMissingTopN = 3
)

// Config holds the analyzer's policy constants.
type Config struct {
	PortionConfidenceMin  float64
	LeftoverConfidenceMin float64
	MinWeightedTotal      float64
	PortionChangeCap      int
	LeftoverChangeCap     int
	PortionChangeScale    float64
	LeftoverChangeScale   float64
	MissingWeightMin      float64
	MissingTopN           int
}

// DefaultConfig returns the default analysis policy.
func DefaultConfig() Config {
	return Config{
		PortionConfidenceMin:  DefaultPortionConfidenceMin,
		LeftoverConfidenceMin: DefaultLeftoverConfidenceMin,
		MinWeightedTotal:      DefaultMinWeightedTotal,
		PortionChangeCap:      DefaultPortionChangeCap,
		LeftoverChangeCap:     DefaultLeftoverChangeCap,
		PortionChangeScale:    DefaultPortionChangeScale,
		LeftoverChangeScale:   DefaultLeftoverChangeScale,
		MissingWeightMin:      DefaultMissingWeightMin,
		MissingTopN:           DefaultMissingTopN,
	}
}

// normalized replaces out-of-range values with defaults.
func (c Config) normalized() Config {
	def := DefaultConfig()
	if c.PortionConfidenceMin <= 0 || c.PortionConfidenceMin > 1 {
		c.PortionConfidenceMin = def.PortionConfidenceMin
	}
	if c.LeftoverConfidenceMin <= 0 || c.LeftoverConfidenceMin > 1 {
		c.LeftoverConfidenceMin = def.LeftoverConfidenceMin
	}
	if c.MinWeightedTotal <= 0 {
		c.MinWeightedTotal = def.MinWeightedTotal
	}
	if c.PortionChangeCap <= 0 {
		c.PortionChangeCap = def.PortionChangeCap
	}
	if c.LeftoverChangeCap <= 0 {
		c.LeftoverChangeCap = def.LeftoverChangeCap
	}
	if c.PortionChangeScale <= 0 {
		c.PortionChangeScale = def.PortionChangeScale
	}
	if c.LeftoverChangeScale <= 0 {
		c.LeftoverChangeScale = def.LeftoverChangeScale
	}
	if c.MissingWeightMin <= 0 {
		c.MissingWeightMin = def.MissingWeightMin
	}
	if c.MissingTopN <= 0 {
		c.MissingTopN = def.MissingTopN
	}
	return c
}

// DimensionResult is the derived outcome for one dimension.
type DimensionResult struct {
	Recommendation Recommendation
	Confidence     float64
	ChangePercent  int
}

// MissingIngredient is a ranked missing-ingredient candidate.
type MissingIngredient struct {
	Name   string
	Weight float64
}

// Analyzer derives recommendations from aggregated patterns.
type Analyzer struct {
	cfg Config
}

// NewAnalyzer creates an analyzer with the given policy.
func NewAnalyzer(cfg Config) *Analyzer {
	return &Analyzer{cfg: cfg.normalized()}
}

// Config returns the effective (normalized) policy.
func (a *Analyzer) Config() Config {
	return a.cfg
}

// Analyze fills the pattern's derived fields in place and returns it.
func (a *Analyzer) Analyze(p *Pattern) *Pattern {
	p.PortionResult = a.analyzePortion(p.Portion)
	p.LeftoverResult = a.analyzeLeftover(p.Leftover)
	p.MissingTop = a.rankMissing(p.Missing)
	return p
}

// analyzePortion recommends a portion change when one bucket strictly
// dominates with enough confidence and enough weighted mass behind it.
func (a *Analyzer) analyzePortion(t PortionTally) DimensionResult {
	total := t.Total()
	if total == 0 {
		return DimensionResult{Recommendation: RecommendNone}
	}

	maxBucket := math.Max(t.TooMuch, math.Max(t.Good, t.TooLittle))
	res := DimensionResult{
		Recommendation: RecommendNone,
		Confidence:     maxBucket / total,
	}
	if res.Confidence < a.cfg.PortionConfidenceMin || total < a.cfg.MinWeightedTotal {
		return res
	}

	switch {
	case t.TooMuch > t.Good && t.TooMuch > t.TooLittle:
		res.Recommendation = RecommendDecrease
		res.ChangePercent = -boundedChange(t.TooMuch/total, a.cfg.PortionChangeScale, a.cfg.PortionChangeCap)
	case t.TooLittle > t.Good && t.TooLittle > t.TooMuch:
		res.Recommendation = RecommendIncrease
		res.ChangePercent = boundedChange(t.TooLittle/total, a.cfg.PortionChangeScale, a.cfg.PortionChangeCap)
	}
	return res
}

// analyzeLeftover recommends reducing portions when heavy leftovers
// outweigh the rest of the evidence.
func (a *Analyzer) analyzeLeftover(t LeftoverTally) DimensionResult {
	total := t.Total()
	if total == 0 {
		return DimensionResult{Recommendation: RecommendNone}
	}

	res := DimensionResult{
		Recommendation: RecommendNone,
		Confidence:     t.Lots / total,
	}
	if res.Confidence >= a.cfg.LeftoverConfidenceMin &&
		total >= a.cfg.MinWeightedTotal &&
		t.Lots > t.Some+t.None {
		res.Recommendation = RecommendReducePortions
		res.ChangePercent = -boundedChange(res.Confidence, a.cfg.LeftoverChangeScale, a.cfg.LeftoverChangeCap)
	}
	return res
}

// rankMissing keeps ingredients above the weight floor, ranked by weight
// descending (name ascending on ties for determinism), capped at top N.
func (a *Analyzer) rankMissing(missing map[string]float64) []MissingIngredient {
	var ranked []MissingIngredient
	for name, w := range missing {
		if w >= a.cfg.MissingWeightMin {
			ranked = append(ranked, MissingIngredient{Name: name, Weight: w})
		}
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Weight != ranked[j].Weight {
			return ranked[i].Weight > ranked[j].Weight
		}
		return ranked[i].Name < ranked[j].Name
	})
	if len(ranked) > a.cfg.MissingTopN {
		ranked = ranked[:a.cfg.MissingTopN]
	}
	return ranked
}

func boundedChange(share, scale float64, limit int) int {
	change := int(math.Round(share * scale))
	if change > limit {
		return limit
	}
	return change
}
