// Package testutil provides common utility functions for testing.
package testutil

import (
	"github.com/iwvelando/calcmaster/internal/forecast"
)

// FindForecast finds a forecast by name in the results slice.
// Returns a pointer to the forecast if found, nil otherwise.
func FindForecast(results []forecast.Forecast, name string) *forecast.Forecast {
	for i := range results {
		if results[i].Name == name {
			return &results[i]
		}
	}
	return nil
}

// FindForecasts returns every forecast of the given kind, in order.
func FindForecasts(results []forecast.Forecast, kind forecast.Kind) []forecast.Forecast {
	var matched []forecast.Forecast
	for _, result := range results {
		if result.Kind == kind {
			matched = append(matched, result)
		}
	}
	return matched
}
