// Package decay implements the temporal weighting applied to feedback
// events. Recency enters the engine here and nowhere else: downstream
// aggregation is a plain weighted sum over these weights.
package decay

import (
	"math"
	"time"
)

// Default decay parameters.
const (
	// DefaultHalfLifeDays halves an event's weight every two weeks.
	DefaultHalfLifeDays = 14

	// DefaultMinWeight is the floor for old-but-not-expired events, so
	// they still count a little.
	DefaultMinWeight = 0.1

	// DefaultMaxAgeDays is the hard cutoff. Events older than this are
	// excluded entirely, not just down-weighted.
	DefaultMaxAgeDays = 90
)

// Options configures the weight function.
type Options struct {
	HalfLifeDays float64
	MinWeight    float64
	MaxAgeDays   float64
}

// DefaultOptions returns the default decay parameters.
func DefaultOptions() Options {
	return Options{
		HalfLifeDays: DefaultHalfLifeDays,
		MinWeight:    DefaultMinWeight,
		MaxAgeDays:   DefaultMaxAgeDays,
	}
}

// normalized returns opts with out-of-range values replaced by defaults.
func (o Options) normalized() Options {
	if o.HalfLifeDays <= 0 {
		o.HalfLifeDays = DefaultHalfLifeDays
	}
	if o.MinWeight < 0 || o.MinWeight >= 1 {
		o.MinWeight = DefaultMinWeight
	}
	if o.MaxAgeDays <= 0 {
		o.MaxAgeDays = DefaultMaxAgeDays
	}
	return o
}

// Weight maps an event's age to its decay weight:
// exponential half-life decay with a floor, and zero beyond the maximum age.
// The result is monotonically non-increasing in age.
func Weight(createdAt, now time.Time, opts Options) float64 {
	opts = opts.normalized()

	ageDays := now.Sub(createdAt).Hours() / 24
	if ageDays < 0 {
		ageDays = 0
	}
	if ageDays > opts.MaxAgeDays {
		return 0
	}

	w := math.Pow(0.5, ageDays/opts.HalfLifeDays)
	if w < opts.MinWeight {
		return opts.MinWeight
	}
	return w
}
