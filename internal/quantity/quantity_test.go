package quantity

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		value float64
		unit  string
	}{
		{"280g", 280, "g"},
		{"2.5 kg", 2.5, "kg"},
		{"2,5 kg", 2.5, "kg"},
		{"3 unid", 3, "unid"},
		{"12", 12, ""},
		{"0.5l", 0.5, "l"},
		{"  150 ml  ", 150, "ml"},
		{"1 lata grande", 1, "lata grande"},
		{"2 x 400g", 2, "x 400g"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			q := Parse(tt.input)
			assert.Equal(t, tt.value, q.Value)
			assert.Equal(t, tt.unit, q.Unit)
		})
	}
}

func TestParse_NoNumericToken(t *testing.T) {
	t.Parallel()

	// Unparsable input means "one unit of whatever this is".
	for _, input := range []string{"", "un poco", "al gusto"} {
		q := Parse(input)
		assert.Equal(t, 1.0, q.Value, "input %q", input)
		assert.True(t, q.Degraded, "input %q", input)
	}
	assert.Equal(t, "al gusto", Parse("al gusto").Unit)

	// Parsable input never reports degradation.
	assert.False(t, Parse("280g").Degraded)
	assert.False(t, Parse("2,5 kg").Degraded)
}

func TestParse_TrailingSeparator(t *testing.T) {
	t.Parallel()

	q := Parse("2. kg")
	assert.Equal(t, 2.0, q.Value)
	assert.Equal(t, "kg", q.Unit)
}

func TestString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		q    Quantity
		want string
	}{
		{Quantity{Value: 212.8, Unit: "g"}, "212.8 g"},
		{Quantity{Value: 228, Unit: "g"}, "228 g"},
		{Quantity{Value: 2.25, Unit: "kg"}, "2.3 kg"},
		{Quantity{Value: 3, Unit: ""}, "3"},
		{Quantity{Value: 0, Unit: "g"}, "0 g"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.q.String())
	}
}

func TestScale(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "212.8 g", Scale("280g", 0.76))
	assert.Equal(t, "228 g", Scale("300g", 0.76))
	assert.Equal(t, "136.8 g", Scale("180g", 0.76))
	assert.Equal(t, "3.8 unid", Scale("3 unid", 1.25))
}

func TestScale_NoOpReproducesValue(t *testing.T) {
	t.Parallel()

	// Scaling by 1.0 keeps the numeric value within one-decimal rounding.
	for _, input := range []string{"280g", "2.5 kg", "3 unid", "12"} {
		scaled := Scale(input, 1.0)
		assert.InDelta(t, Parse(input).Value, Parse(scaled).Value, 0.05, "input %q", input)
	}
}

func TestScale_ZeroMultiplier(t *testing.T) {
	t.Parallel()

	q := Parse("280g")
	assert.Equal(t, Format(0, q.Unit), Scale("280g", 0))
}

func TestScale_MalformedInputDegrades(t *testing.T) {
	t.Parallel()

	// Malformed legacy data is treated as quantity 1 and still scales.
	assert.Equal(t, fmt.Sprintf("%s al gusto", "0.8"), Scale("al gusto", 0.8))
}
