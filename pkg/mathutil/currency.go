// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"

	"github.com/iwvelando/calcmaster/pkg/constants"
)

// Round rounds a value to two decimals, i.e. to represent real currency.
// Used for making logical comparisons.
func Round(val float64) float64 {
	return math.Round(val*constants.DecimalPrecision) / constants.DecimalPrecision
}

// IsZero checks if a value is effectively zero (within tolerance)
func IsZero(val float64) bool {
	return math.Abs(val) <= constants.CurrencyTolerance
}

// WithinTolerance checks if two values are within a specified tolerance
func WithinTolerance(val1, val2, tolerance float64) bool {
	return math.Abs(val1-val2) <= tolerance
}

// Finite returns val, or 0 when val is NaN or infinite.
func Finite(val float64) float64 {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return 0
	}
	return val
}

// NonNegative clamps negative and non-finite values to 0.
func NonNegative(val float64) float64 {
	val = Finite(val)
	if val < 0 {
		return 0
	}
	return val
}

// PercentToDecimal converts a percentage such as 5.5 into 0.055.
func PercentToDecimal(percent float64) float64 {
	return percent / constants.PercentageMultiplier
}

// ApplyPercentage applies a percentage to a value
func ApplyPercentage(value, percentage float64) float64 {
	return value * PercentToDecimal(percentage)
}

// GrowthFactor returns (1 + percent/100)^periods.
func GrowthFactor(percent float64, periods int) float64 {
	return math.Pow(1+PercentToDecimal(percent), float64(periods))
}

// YearsToMonths converts a whole number of years to months, saturating at the
// int range instead of wrapping.
func YearsToMonths(years int) int {
	switch {
	case years > math.MaxInt/constants.MonthsPerYear:
		return math.MaxInt
	case years < math.MinInt/constants.MonthsPerYear:
		return math.MinInt
	}
	return years * constants.MonthsPerYear
}
