// Package constants provides shared constants for the lbo-forecast application.
package constants

// Financial constants
const (
	// DaysPerYear is the day-count basis for working-capital balances
	DaysPerYear = 365.0

	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "deal.yaml"

	// ExampleConfigFile is the example configuration file name
	ExampleConfigFile = "deal.yaml.example"
)

// Waterfall defaults
const (
	// DefaultHurdleRate is the preferred return used when no tiers are configured
	DefaultHurdleRate = 0.08

	// DefaultCarryPct is the carried-interest split used when no tiers are configured
	DefaultCarryPct = 0.20
)

// Monte Carlo defaults
const (
	// DefaultDrawCount is the number of Monte Carlo paths when unconfigured
	DefaultDrawCount = 400

	// DefaultSeed keeps unconfigured Monte Carlo runs reproducible
	DefaultSeed = 42
)
