package domain

import (
	"math"
	"strconv"
	"strings"
)

// MaxProportion is the upper bound of a proportion, in percent.
const MaxProportion = 100.0

// ProportionTolerance absorbs two-decimal rounding when totals are compared.
const ProportionTolerance = 0.01

// Round2 rounds to two decimals with ties away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ClampPercent limits v to [0, 100].
func ClampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > MaxProportion {
		return MaxProportion
	}
	return v
}

// IsUsableNumber reports whether v is a finite number.
func IsUsableNumber(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// ParseProportion parses a proportion string. Malformed input yields 0 so a
// bad value from storage or a form never aborts the grid. A trailing "%" and
// a decimal comma are accepted.
func ParseProportion(s string) float64 {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if s == "" {
		return 0
	}
	s = strings.Replace(s, ",", ".", 1)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || !IsUsableNumber(v) {
		return 0
	}
	return v
}
