package table

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spektr-org/ladder/schema"
)

// Value is a numeric cell that may be absent. The zero Value is missing.
type Value struct {
	Float float64
	Valid bool
}

// Missing is the explicit absent value.
var Missing = Value{}

// Float wraps f; NaN becomes Missing.
func Float(f float64) Value {
	if math.IsNaN(f) {
		return Missing
	}
	return Value{Float: f, Valid: true}
}

// OrNaN returns the float, or NaN when missing.
func (v Value) OrNaN() float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float
}

func (v Value) String() string {
	if !v.Valid {
		return ""
	}
	return strconv.FormatFloat(v.Float, 'f', -1, 64)
}

// ParseValue parses a raw cell. Empty and NaN-like cells are Missing.
func ParseValue(s string) (Value, error) {
	s = strings.TrimSpace(s)
	if schema.IsMissing(s) {
		return Missing, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Missing, fmt.Errorf("not a number: %q", s)
	}
	return Float(f), nil
}
