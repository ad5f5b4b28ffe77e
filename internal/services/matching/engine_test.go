package matching

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"payment-reconciler/internal/models"
)

func TestSimilarity(t *testing.T) {
	cases := []struct {
		name string
		a, b string
		want int
	}{
		{"identical", "invoice inv1023", "invoice inv1023", 100},
		{"one substitution", "invoice inv1023", "invoice inv1024", 93},
		{"truncated payee", "acme corporation", "acme corp", 56},
		{"both empty", "", "", 100},
		{"empty vs non-empty", "", "abc", 0},
		{"disjoint", "abc", "xyz", 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Similarity(tc.a, tc.b))
			assert.Equal(t, tc.want, Similarity(tc.b, tc.a))
		})
	}
}

func pay(amount string, date time.Time, reference, payee string) *models.Payment {
	return &models.Payment{Amount: decimal.RequireFromString(amount), Date: date, Reference: reference, Payee: payee}
}

func bank(amount string, date time.Time, reference, payee string) *models.BankTransaction {
	return &models.BankTransaction{Amount: decimal.RequireFromString(amount), Date: date, Reference: reference, Payee: payee}
}

func TestScorePairCascade(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name    string
		payment *models.Payment
		bank    *models.BankTransaction
		score   int
		rule    models.MatchType
	}{
		{
			name:    "exact despite formatting differences",
			payment: pay("1000.00", day, "Invoice #INV-1023", "Acme Corp"),
			bank:    bank("1000.00", day.AddDate(0, 0, 1), "invoice inv1023", "ACME CORP"),
			score:   100,
			rule:    models.MatchExact,
		},
		{
			name:    "date outside window demotes exact to fuzzy reference",
			payment: pay("1000.00", day, "invoice inv1023", "Acme Corp"),
			bank:    bank("1000.00", day.AddDate(0, 0, 2), "invoice inv1023", "Acme Corp"),
			score:   90,
			rule:    models.MatchFuzzyReference,
		},
		{
			name:    "near-identical references",
			payment: pay("1000.00", day, "invoice inv1023", "Acme Corp"),
			bank:    bank("1000.00", day, "invoice inv1024", "Globex"),
			score:   90,
			rule:    models.MatchFuzzyReference,
		},
		{
			name:    "one cent off disqualifies exact and fuzzy reference",
			payment: pay("1000.00", day, "invoice inv1023", ""),
			bank:    bank("1000.01", day, "invoice inv1023", ""),
			score:   0,
			rule:    models.MatchNone,
		},
		{
			name:    "empty references never match exactly",
			payment: pay("1000.00", day, "", "Acme Corporation"),
			bank:    bank("1000.00", day, "", "Globex Ltd"),
			score:   0,
			rule:    models.MatchNone,
		},
		{
			name:    "payee match at exact tolerance boundary",
			payment: pay("1000.00", day, "inv-1", "Acme Corp."),
			bank:    bank("995.00", day, "stmt-9", "Acme Corp"),
			score:   80,
			rule:    models.MatchFuzzyPayee,
		},
		{
			name:    "amount delta just past tolerance",
			payment: pay("1000.00", day, "inv-1", "Acme Corp."),
			bank:    bank("994.99", day, "stmt-9", "Acme Corp"),
			score:   0,
			rule:    models.MatchNone,
		},
		{
			name:    "payee similarity below threshold",
			payment: pay("1000.00", day, "inv-1", "Acme Corporation"),
			bank:    bank("1000.00", day, "stmt-9", "Acme Corp"),
			score:   0,
			rule:    models.MatchNone,
		},
		{
			name:    "equal amounts with nothing comparable",
			payment: pay("250.00", day, "abc", ""),
			bank:    bank("250.00", day, "xyz", ""),
			score:   0,
			rule:    models.MatchNone,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			score, rule := ScorePair(tc.payment, tc.bank, DefaultConfig())
			assert.Equal(t, tc.score, score)
			assert.Equal(t, tc.rule, rule)
		})
	}
}

func TestScorePairIgnoresTimeOfDay(t *testing.T) {
	p := pay("500.00", time.Date(2025, 3, 1, 23, 30, 0, 0, time.UTC), "inv-7", "")
	b := bank("500.00", time.Date(2025, 3, 2, 0, 15, 0, 0, time.UTC), "inv-7", "")

	score, rule := ScorePair(p, b, DefaultConfig())
	assert.Equal(t, 100, score)
	assert.Equal(t, models.MatchExact, rule)
}

func TestScorePairZeroAmounts(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	// Equal zero amounts still satisfy the exact rule.
	score, rule := ScorePair(pay("0.00", day, "inv-1", ""), bank("0.00", day, "inv-1", ""), DefaultConfig())
	assert.Equal(t, 100, score)
	assert.Equal(t, models.MatchExact, rule)

	// A zero payment against a non-zero bank amount uses the cent floor, so
	// the relative delta is huge and the tolerance rule cannot fire.
	score, rule = ScorePair(pay("0.00", day, "a", "Acme"), bank("5.00", day, "b", "Acme"), DefaultConfig())
	assert.Equal(t, 0, score)
	assert.Equal(t, models.MatchNone, rule)
}

func TestAmountWindow(t *testing.T) {
	tol := decimal.RequireFromString("0.5")

	low, high := AmountWindow(decimal.RequireFromString("1000.00"), tol)
	assert.True(t, low.Equal(decimal.RequireFromString("995")), "low = %s", low)
	assert.True(t, high.Equal(decimal.RequireFromString("1005")), "high = %s", high)

	// Negative amounts produce an ordered window too.
	low, high = AmountWindow(decimal.RequireFromString("-1000.00"), tol)
	assert.True(t, low.Equal(decimal.RequireFromString("-1005")), "low = %s", low)
	assert.True(t, high.Equal(decimal.RequireFromString("-995")), "high = %s", high)

	low, high = AmountWindow(decimal.Zero, tol)
	assert.True(t, low.IsZero())
	assert.True(t, high.IsZero())
}
