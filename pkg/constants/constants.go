// Package constants provides shared constants for the adbudget application.
package constants

// Currency constants
const (
	// CurrencyPlaces is the number of decimal places money is rounded to (cents).
	CurrencyPlaces = 2

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100

	// MaxPercentage is the ceiling applied to fee percentages
	MaxPercentage = 100
)

// Solver defaults
const (
	// DefaultMaxIterations caps the goal seek loop. Bisection halves the bracket
	// every iteration, so 50 covers cent precision for budgets up to ~1e13.
	DefaultMaxIterations = 50
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
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "adbudget.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// EnvPrefix prefixes environment variable overrides (ADBUDGET_REQUEST_MAXBUDGET).
	EnvPrefix = "ADBUDGET"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum request body size (64 KB)
	DefaultMaxUploadSizeBytes int64 = 64 * 1024
)
