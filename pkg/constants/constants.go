// Package constants provides shared constants for capstack.
package constants

// PeriodLayout is the format expected in config files and is also the output
// period label format.
const PeriodLayout = "2006-01"

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0
)

// Settlement constants
const (
	// BisectionIterations is the fixed iteration budget for bisection
	// root-finding in the waterfall tier search and the IRR solver.
	BisectionIterations = 30

	// IRRTolerance is the target precision for bisected IRR rates.
	IRRTolerance = 1e-6

	// ShareSumTolerance is the allowed deviation of partner shares from 1.0.
	ShareSumTolerance = 1e-6

	// ShortfallErrorRatio is the commitment shortfall fraction above which a
	// deal fails hard.
	ShortfallErrorRatio = 0.10

	// ShortfallWarnRatio is the commitment shortfall fraction above which a
	// warning is recorded.
	ShortfallWarnRatio = 0.05

	// ExcessCommitmentRatio is the commitment-to-requirement ratio above
	// which a possible misconfiguration warning is recorded.
	ExcessCommitmentRatio = 1.50
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
	// DefaultConfigFile is the default deal configuration file name
	DefaultConfigFile = "deal.yaml"
)
