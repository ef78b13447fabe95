// Package output provides utilities for formatting and displaying forecast results.
package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/iwvelando/calcmaster/internal/forecast"
	"github.com/iwvelando/calcmaster/pkg/constants"
	"github.com/iwvelando/calcmaster/pkg/format"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Formatter renders forecast results.
type Formatter interface {
	Format(results []forecast.Forecast) ([]byte, error)
	// Name returns the output format identifier.
	Name() string
}

var formatters = []Formatter{
	PrettyFormatter{},
	CSVFormatter{},
	JSONFormatter{},
}

// GetFormatter returns the formatter registered under name, or nil.
func GetFormatter(name string) Formatter {
	for _, f := range formatters {
		if f.Name() == name {
			return f
		}
	}
	return nil
}

// Write renders results with the named formatter and writes them to w.
func Write(w io.Writer, name string, results []forecast.Forecast) error {
	f := GetFormatter(name)
	if f == nil {
		return fmt.Errorf("unknown output format %s", name)
	}
	data, err := f.Format(results)
	if err != nil {
		return fmt.Errorf("failed to format results as %s: %w", name, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write %s output: %w", name, err)
	}
	return nil
}

func formatValue(value float64, unit forecast.Unit) string {
	switch unit {
	case forecast.UnitPercent:
		return format.Percent(value)
	case forecast.UnitInteger:
		return format.Fixed(value, 0)
	default:
		return format.Amount(value)
	}
}

// PrettyFormatter outputs a human-readable rather than machine-readable table.
type PrettyFormatter struct{}

func (PrettyFormatter) Name() string { return constants.OutputFormatPretty }

func (PrettyFormatter) Format(results []forecast.Forecast) ([]byte, error) {
	var buf bytes.Buffer
	p := message.NewPrinter(language.English)

	for i, result := range results {
		if i > 0 {
			buf.WriteString("\n")
		}
		_, _ = p.Fprintf(&buf, "--- Results for %s %s ---\n", result.Kind, result.Name)

		tw := tabwriter.NewWriter(&buf, 0, 0, 1, ' ', 0)
		for _, m := range result.Summary {
			_, _ = fmt.Fprintf(tw, "%s:\t%s\n", m.Label, formatValue(m.Value, m.Unit))
		}
		if err := tw.Flush(); err != nil {
			return nil, err
		}

		if len(result.Rows) > 0 {
			buf.WriteString("\n")
			header := []string{result.LabelTitle}
			rule := []string{strings.Repeat("_", len(result.LabelTitle))}
			for _, c := range result.Columns {
				header = append(header, c.Name)
				rule = append(rule, strings.Repeat("_", len(c.Name)))
			}

			tw = tabwriter.NewWriter(&buf, 0, 0, 1, ' ', 0)
			_, _ = fmt.Fprintln(tw, strings.Join(header, "\t| "))
			_, _ = fmt.Fprintln(tw, strings.Join(rule, "\t| "))
			for _, row := range result.Rows {
				cells := []string{row.Label}
				for j, v := range row.Values {
					cells = append(cells, formatValue(v, result.Columns[j].Unit))
				}
				_, _ = fmt.Fprintln(tw, strings.Join(cells, "\t| "))
			}
			if err := tw.Flush(); err != nil {
				return nil, err
			}
		}

		if len(result.Notes) > 0 {
			_, _ = p.Fprintf(&buf, "\nNotes (%d):\n", len(result.Notes))
			for _, note := range result.Notes {
				_, _ = p.Fprintf(&buf, "  - %s\n", note)
			}
		}
	}

	return buf.Bytes(), nil
}

// CSVFormatter outputs one record per summary metric and per row value, so
// forecasts with different columns share a single header.
type CSVFormatter struct{}

func (CSVFormatter) Name() string { return constants.OutputFormatCSV }

func (CSVFormatter) Format(results []forecast.Forecast) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"forecast", "kind", "section", "label", "name", "value"}); err != nil {
		return nil, err
	}
	for _, result := range results {
		for _, m := range result.Summary {
			record := []string{result.Name, string(result.Kind), "summary", "", m.Label, csvValue(m.Value, m.Unit)}
			if err := w.Write(record); err != nil {
				return nil, err
			}
		}
		for _, row := range result.Rows {
			for j, v := range row.Values {
				record := []string{result.Name, string(result.Kind), "row", row.Label, result.Columns[j].Name, csvValue(v, result.Columns[j].Unit)}
				if err := w.Write(record); err != nil {
					return nil, err
				}
			}
		}
		for _, note := range result.Notes {
			if err := w.Write([]string{result.Name, string(result.Kind), "note", "", note, ""}); err != nil {
				return nil, err
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func csvValue(value float64, unit forecast.Unit) string {
	if unit == forecast.UnitInteger {
		return format.Fixed(value, 0)
	}
	return format.Fixed(value, constants.DisplayPlaces)
}

// JSONFormatter serializes the forecasts as indented JSON.
type JSONFormatter struct{}

func (JSONFormatter) Name() string { return constants.OutputFormatJSON }

func (JSONFormatter) Format(results []forecast.Forecast) ([]byte, error) {
	if results == nil {
		results = []forecast.Forecast{}
	}
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
