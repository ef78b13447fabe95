// Package format renders amounts for display.
package format

import (
	"strings"

	"github.com/iwvelando/calcmaster/pkg/constants"
	"github.com/shopspring/decimal"
)

// Amount returns an amount rounded to cents with thousands separators and no
// currency symbol (e.g., "-1,234.56").
func Amount(amount float64) string {
	fixed := Fixed(amount, constants.DisplayPlaces)
	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign = "-"
		fixed = fixed[1:]
	}
	return sign + group(fixed)
}

// Percent returns a percentage with two decimals (e.g., "5.50%").
func Percent(percent float64) string {
	return Fixed(percent, constants.DisplayPlaces) + "%"
}

// Fixed rounds value half away from zero to the given number of places.
// Rounding is done on the shortest decimal representation of value, so 2.675
// rounds to 2.68. Negative zero results lose their sign.
func Fixed(value float64, places int32) string {
	rounded := decimal.NewFromFloat(value).Round(places)
	if rounded.IsZero() {
		rounded = decimal.Zero
	}
	return rounded.StringFixed(places)
}

// Round rounds value to cents the way Fixed does and returns it as a float.
func Round(value float64) float64 {
	rounded, _ := decimal.NewFromFloat(value).Round(constants.DisplayPlaces).Float64()
	return rounded
}

func group(fixed string) string {
	parts := strings.SplitN(fixed, ".", 2)
	intPart := parts[0]

	if len(intPart) > 3 {
		var builder strings.Builder
		for i, digit := range intPart {
			if i > 0 && (len(intPart)-i)%3 == 0 {
				builder.WriteByte(',')
			}
			builder.WriteRune(digit)
		}
		intPart = builder.String()
	}

	if len(parts) == 2 {
		return intPart + "." + parts[1]
	}
	return intPart
}
