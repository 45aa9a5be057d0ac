package decay

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWeight(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	opts := DefaultOptions()

	t.Run("fresh event has full weight", func(t *testing.T) {
		assert.Equal(t, 1.0, Weight(now, now, opts))
	})

	t.Run("one half-life halves the weight", func(t *testing.T) {
		createdAt := now.AddDate(0, 0, -DefaultHalfLifeDays)
		assert.InDelta(t, 0.5, Weight(createdAt, now, opts), 1e-9)
	})

	t.Run("two half-lives quarter the weight", func(t *testing.T) {
		createdAt := now.AddDate(0, 0, -2*DefaultHalfLifeDays)
		assert.InDelta(t, 0.25, Weight(createdAt, now, opts), 1e-9)
	})

	t.Run("old events hit the floor", func(t *testing.T) {
		// 70 days is five half-lives: raw decay 0.03125, floored at 0.1.
		createdAt := now.AddDate(0, 0, -70)
		assert.Equal(t, DefaultMinWeight, Weight(createdAt, now, opts))
	})

	t.Run("events past max age are excluded", func(t *testing.T) {
		createdAt := now.AddDate(0, 0, -(DefaultMaxAgeDays + 1))
		assert.Equal(t, 0.0, Weight(createdAt, now, opts))
	})

	t.Run("future timestamps clamp to full weight", func(t *testing.T) {
		createdAt := now.Add(3 * time.Hour)
		assert.Equal(t, 1.0, Weight(createdAt, now, opts))
	})
}

func TestWeight_MonotonicallyNonIncreasing(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	opts := DefaultOptions()

	prev := Weight(now, now, opts)
	for days := 1; days <= 120; days++ {
		w := Weight(now.AddDate(0, 0, -days), now, opts)
		assert.LessOrEqual(t, w, prev, "weight increased at age %d days", days)
		prev = w
	}
}

func TestOptions_Normalized(t *testing.T) {
	t.Parallel()

	// Out-of-range options fall back to defaults instead of producing
	// nonsense weights.
	now := time.Now()
	w := Weight(now.AddDate(0, 0, -14), now, Options{HalfLifeDays: -1, MinWeight: 2, MaxAgeDays: 0})
	assert.InDelta(t, 0.5, w, 1e-9)
}
