// Package quantity parses, formats, and scales free-form quantity strings
// such as "280g", "2.5 kg", or "3 unid". A quantity string is a numeric
// prefix followed by a free-text unit suffix; the suffix is preserved
// verbatim across scaling so that legacy data survives round trips.
package quantity

import (
	"math"
	"strconv"
	"strings"
)

// Quantity is the typed form of a quantity string. Internal logic passes
// Quantity values around; raw strings exist only at the store edges.
type Quantity struct {
	Value float64
	Unit  string

	// Degraded is true when the input had no usable numeric token and the
	// value fell back to 1. Callers that mutate quantities should surface
	// this as a warning rather than rescaling silently.
	Degraded bool
}

// Parse extracts the first numeric token from s, accepting both '.' and ','
// as decimal separators. Everything after the token becomes the unit,
// trimmed. Input with no numeric token means "one unit of whatever this is":
// the result is {1, trimmed(s)} with Degraded set. Parse never fails.
func Parse(s string) Quantity {
	trimmed := strings.TrimSpace(s)

	start := -1
	end := len(trimmed)
	seenSep := false
	for i, r := range trimmed {
		if r >= '0' && r <= '9' {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			if (r == '.' || r == ',') && !seenSep {
				seenSep = true
				continue
			}
			end = i
			break
		}
	}

	if start < 0 {
		return Quantity{Value: 1, Unit: trimmed, Degraded: true}
	}

	token := trimmed[start:end]
	// A trailing separator ("2." / "2,") is not part of the number.
	if sep := token[len(token)-1]; sep == '.' || sep == ',' {
		token = token[:len(token)-1]
		end--
	}

	value, err := strconv.ParseFloat(strings.ReplaceAll(token, ",", "."), 64)
	if err != nil {
		return Quantity{Value: 1, Unit: trimmed, Degraded: true}
	}

	return Quantity{Value: value, Unit: strings.TrimSpace(trimmed[end:])}
}

// String renders the quantity with the value rounded to one decimal place.
// Exact integers drop the trailing ".0". The unit, when present, is joined
// with a single space.
func (q Quantity) String() string {
	rounded := math.Round(q.Value*10) / 10

	var num string
	if rounded == math.Trunc(rounded) {
		num = strconv.FormatFloat(rounded, 'f', 0, 64)
	} else {
		num = strconv.FormatFloat(rounded, 'f', 1, 64)
	}

	if q.Unit == "" {
		return num
	}
	return num + " " + q.Unit
}

// Format renders a value/unit pair as a quantity string.
func Format(value float64, unit string) string {
	return Quantity{Value: value, Unit: unit}.String()
}

// Scale multiplies the numeric prefix of s by multiplier, preserving the
// unit suffix. It is total: malformed input degrades to a quantity of 1
// rather than failing, so a single bad legacy row never aborts a whole
// suggestion application. Callers that need to report the degradation use
// Parse directly and check Degraded.
func Scale(s string, multiplier float64) string {
	q := Parse(s)
	q.Value *= multiplier
	return q.String()
}
