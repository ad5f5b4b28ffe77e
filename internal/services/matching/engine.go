package matching

import (
	"time"

	"github.com/shopspring/decimal"

	"payment-reconciler/internal/models"
)

// centFloor is the divisor floor used in the relative amount delta, so a
// near-zero payment amount cannot blow up the percentage.
var centFloor = decimal.NewFromFloat(0.01)

var oneHundred = decimal.NewFromInt(100)

// ScorePair applies the matching rule cascade to a payment/bank pair and
// returns a score in [0, 100] plus the rule that produced it. Rules are
// evaluated in strict priority order; the first satisfied rule wins:
//
//  1. exact: equal amount, dates within DateWindowDays, equal non-empty
//     normalized references -> (100, exact)
//  2. fuzzy reference: equal amount, both references non-empty,
//     similarity >= FuzzyRefThreshold -> (90, fuzzy_reference)
//  3. fuzzy payee: amount delta within AmountTolerancePercent, both payees
//     non-empty, similarity >= FuzzyPayeeThreshold -> (80, fuzzy_payee)
//  4. otherwise -> (0, no_match)
//
// Pure and total: no error paths, no I/O.
func ScorePair(payment *models.Payment, bank *models.BankTransaction, cfg *Config) (int, models.MatchType) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	paymentRef := Normalize(payment.Reference)
	bankRef := Normalize(bank.Reference)

	amountEqual := payment.Amount.Equal(bank.Amount)
	dateDiff := daysBetween(payment.Date, bank.Date)

	// Rule 1: exact match.
	if amountEqual && dateDiff <= cfg.DateWindowDays && paymentRef == bankRef && paymentRef != "" {
		return 100, models.MatchExact
	}

	// Rule 2: fuzzy reference match on equal amounts.
	if amountEqual && paymentRef != "" && bankRef != "" &&
		Similarity(paymentRef, bankRef) >= cfg.FuzzyRefThreshold {
		return 90, models.MatchFuzzyReference
	}

	// Rule 3: fuzzy payee match with amount tolerance.
	if withinTolerance(payment.Amount, bank.Amount, cfg.AmountTolerancePercent) {
		paymentPayee := Normalize(payment.Payee)
		bankPayee := Normalize(bank.Payee)
		if paymentPayee != "" && bankPayee != "" &&
			Similarity(paymentPayee, bankPayee) >= cfg.FuzzyPayeeThreshold {
			return 80, models.MatchFuzzyPayee
		}
	}

	return 0, models.MatchNone
}

// withinTolerance reports whether |a-b| / max(|a|, 0.01) * 100 <= tolerancePct.
// A delta exactly at the tolerance qualifies.
func withinTolerance(a, b, tolerancePct decimal.Decimal) bool {
	base := a.Abs()
	if base.LessThan(centFloor) {
		base = centFloor
	}
	deltaPct := a.Sub(b).Abs().Div(base).Mul(oneHundred)
	return deltaPct.LessThanOrEqual(tolerancePct)
}

// AmountWindow returns the candidate blocking window [amount*(1-tol), amount*(1+tol)]
// with the bounds ordered, so negative amounts still produce a valid range.
func AmountWindow(amount, tolerancePct decimal.Decimal) (low, high decimal.Decimal) {
	tolerance := amount.Mul(tolerancePct).Div(oneHundred)
	low = amount.Sub(tolerance)
	high = amount.Add(tolerance)
	if low.GreaterThan(high) {
		low, high = high, low
	}
	return low, high
}

func daysBetween(a, b time.Time) int {
	ua := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	ub := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	days := int(ua.Sub(ub) / (24 * time.Hour))
	if days < 0 {
		days = -days
	}
	return days
}
