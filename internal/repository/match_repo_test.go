package repository

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"payment-reconciler/internal/models"
)

func seedMatch(t *testing.T, db *gorm.DB, confirmed bool) (*models.Match, *models.Payment, *models.BankTransaction) {
	t.Helper()

	payments := NewPaymentRepository(db)
	bankTxns := NewBankTransactionRepository(db)
	matches := NewMatchRepository(db)

	p := seedPayment(t, payments, "100.00", models.StatusMatched)
	b := seedBankTxn(t, bankTxns, "100.00", p.Date, models.StatusMatched)

	m := &models.Match{
		ID:        uuid.New(),
		PaymentID: p.ID,
		BankTxnID: b.ID,
		Score:     100,
		MatchType: models.MatchExact,
		Confirmed: confirmed,
		MatchedAt: time.Now(),
	}
	require.NoError(t, matches.Insert(m))
	return m, p, b
}

func TestMatchInsertDuplicatePairIsNoOp(t *testing.T) {
	db := openTestDB(t)
	matches := NewMatchRepository(db)

	m, _, _ := seedMatch(t, db, false)

	dup := &models.Match{
		ID:        uuid.New(),
		PaymentID: m.PaymentID,
		BankTxnID: m.BankTxnID,
		Score:     90,
		MatchType: models.MatchFuzzyReference,
		MatchedAt: time.Now(),
	}
	require.NoError(t, matches.Insert(dup))

	total, _, err := matches.CountMatches()
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	// The original row survives untouched.
	kept, err := matches.GetByID(m.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, kept.Score)
}

func TestMatchConfirm(t *testing.T) {
	db := openTestDB(t)
	matches := NewMatchRepository(db)

	m, _, b := seedMatch(t, db, false)

	taken, err := matches.HasConfirmedForBank(b.ID)
	require.NoError(t, err)
	assert.False(t, taken)

	require.NoError(t, matches.Confirm(m.ID, "alice"))

	got, err := matches.GetByID(m.ID)
	require.NoError(t, err)
	assert.True(t, got.Confirmed)
	assert.Equal(t, "alice", got.Reviewer)

	taken, err = matches.HasConfirmedForBank(b.ID)
	require.NoError(t, err)
	assert.True(t, taken)
}

func TestMatchConfirmMissingRow(t *testing.T) {
	db := openTestDB(t)
	matches := NewMatchRepository(db)

	err := matches.Confirm(uuid.New(), "alice")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestMatchList(t *testing.T) {
	db := openTestDB(t)
	matches := NewMatchRepository(db)

	confirmed, p, _ := seedMatch(t, db, true)
	pending, _, _ := seedMatch(t, db, false)

	all, err := matches.List("", 100)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	confirmedRows, err := matches.List("confirmed", 100)
	require.NoError(t, err)
	require.Len(t, confirmedRows, 1)
	assert.Equal(t, confirmed.ID, confirmedRows[0].ID)
	assert.Equal(t, p.ID, confirmedRows[0].PaymentID)
	assert.True(t, confirmedRows[0].PaymentAmount.Equal(p.Amount))

	pendingRows, err := matches.List("pending", 100)
	require.NoError(t, err)
	require.Len(t, pendingRows, 1)
	assert.Equal(t, pending.ID, pendingRows[0].ID)
}

func TestSetStatusMissingRow(t *testing.T) {
	db := openTestDB(t)
	payments := NewPaymentRepository(db)

	err := payments.SetStatus(uuid.New(), models.StatusMatched)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCountByStatus(t *testing.T) {
	db := openTestDB(t)
	payments := NewPaymentRepository(db)

	seedPayment(t, payments, "10.00", models.StatusPending)
	seedPayment(t, payments, "20.00", models.StatusPending)
	seedPayment(t, payments, "30.00", models.StatusUnmatched)

	counts, err := payments.CountByStatus()
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[models.StatusPending])
	assert.Equal(t, int64(1), counts[models.StatusUnmatched])
	assert.Equal(t, int64(0), counts[models.StatusMatched])
}
