// Package datetime provides date utility functions for dated payment schedules.
package datetime

import (
	"fmt"
	"time"

	"github.com/iwvelando/calcmaster/pkg/constants"
)

const (
	// DateTimeLayout is the format expected in calculation files and is also
	// the output date format.
	DateTimeLayout = constants.DateTimeLayout
)

// OffsetDate returns the string-formatted date offset by the given number of
// months relative to the given date.
func OffsetDate(date, layout string, months int) (string, error) {
	t, err := time.Parse(layout, date)
	if err != nil {
		return date, err
	}
	return t.AddDate(0, months, 0).Format(layout), nil
}

// ValidateDate reports whether date is a valid YYYY-MM value. An empty date
// is valid and means "undated".
func ValidateDate(date string) error {
	if date == "" {
		return nil
	}
	if _, err := time.Parse(DateTimeLayout, date); err != nil {
		return fmt.Errorf("expected date in %s format, got %q", DateTimeLayout, date)
	}
	return nil
}
