package models

// RecordStatus is the lifecycle state shared by payments and bank transactions.
type RecordStatus string

const (
	StatusPending   RecordStatus = "pending"
	StatusMatched   RecordStatus = "matched"
	StatusUnmatched RecordStatus = "unmatched"
	StatusConfirmed RecordStatus = "confirmed"
)

// MatchType classifies which rule produced a match.
type MatchType string

const (
	MatchExact          MatchType = "exact"
	MatchFuzzyReference MatchType = "fuzzy_reference"
	MatchFuzzyPayee     MatchType = "fuzzy_payee"
	MatchNone           MatchType = "no_match"
)
