package conversion

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// leadingWhitespace is the set of characters skipped before a numeric prefix
const leadingWhitespace = " \t\n\r\v\f"

// numericPrefix matches the longest decimal number at the start of a string
var numericPrefix = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?`)

// integralPrefix matches a numeric prefix without fraction or exponent
var integralPrefix = regexp.MustCompile(`^[+-]?\d+$`)

// looseNumber returns the numeric prefix of value, or "" when there is none.
func looseNumber(value string) string {
	return numericPrefix.FindString(strings.TrimLeft(value, leadingWhitespace))
}

// coerceInt converts value to int using loose coercion.
// No numeric prefix yields 0; out of range values clamp to the int range.
func coerceInt(value string) int {
	prefix := looseNumber(value)
	if prefix == "" {
		return 0
	}

	if integralPrefix.MatchString(prefix) {
		// on ErrRange ParseInt returns the clamped bound
		n, _ := strconv.ParseInt(prefix, 10, strconv.IntSize)
		return int(n)
	}

	return truncateToInt(coerceFloat(prefix))
}

// coerceFloat converts value to float64 using loose coercion.
// No numeric prefix yields 0; overflow saturates to ±Inf.
func coerceFloat(value string) float64 {
	prefix := looseNumber(value)
	if prefix == "" {
		return 0
	}

	// on ErrRange ParseFloat returns ±Inf or ±0
	f, _ := strconv.ParseFloat(prefix, 64)
	return f
}

// truncateToInt truncates f toward zero, clamping to the int range.
func truncateToInt(f float64) int {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt:
		return math.MaxInt
	case f <= math.MinInt:
		return math.MinInt
	default:
		return int(f)
	}
}
