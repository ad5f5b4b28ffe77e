package matching

import "github.com/shopspring/decimal"

// Config holds the tunable thresholds of the matching rule cascade.
type Config struct {
	// DateWindowDays is the maximum date skew accepted by the exact rule.
	DateWindowDays int
	// FuzzyRefThreshold is the minimum reference similarity (0-100) for the
	// fuzzy reference rule.
	FuzzyRefThreshold int
	// FuzzyPayeeThreshold is the minimum payee similarity (0-100) for the
	// fuzzy payee rule.
	FuzzyPayeeThreshold int
	// AmountTolerancePercent is the maximum relative amount delta, in percent,
	// accepted by the tolerance rules.
	AmountTolerancePercent decimal.Decimal
	// FetchSize is the number of records fetched per storage round-trip.
	FetchSize int
	// MinMatchScore is the minimum score accepted as a match.
	MinMatchScore int
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() *Config {
	return &Config{
		DateWindowDays:         1,
		FuzzyRefThreshold:      90,
		FuzzyPayeeThreshold:    85,
		AmountTolerancePercent: decimal.NewFromFloat(0.5),
		FetchSize:              500,
		MinMatchScore:          80,
	}
}
