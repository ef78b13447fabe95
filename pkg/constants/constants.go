// Package constants provides shared constants for the calcmaster application.
package constants

// DateTimeLayout is the format used for dated payment schedules and is also
// the output date format.
const DateTimeLayout = "2006-01"

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// DisplayPlaces is the number of decimal places rendered for amounts
	DisplayPlaces = 2

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// MaxYears is the longest horizon, in years, any calculator projects
	MaxYears = 150

	// MaxPeriods is the most periods a single projection runs (150 years of months)
	MaxPeriods = MaxYears * MonthsPerYear
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the JSON output format
	OutputFormatJSON = "json"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default calculation file name
	DefaultConfigFile = "calculations.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// EnvPrefix is the environment variable prefix for configuration overrides
	EnvPrefix = "CALCMASTER"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum upload size for YAML configs (256 KB)
	DefaultMaxUploadSizeBytes int64 = 256 * 1024

	// MetricsNamespace prefixes every exported metric
	MetricsNamespace = "calcmaster"
)

// Validation constants
const (
	// DefaultMortgageInsuranceCutoff is the default LTV cutoff for mortgage insurance
	DefaultMortgageInsuranceCutoff = 78.0

	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01

	// BalanceTolerance is the tolerance below which a loan balance is treated as paid off
	BalanceTolerance = 1e-6
)
