package reconciliation

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"payment-reconciler/internal/models"
	"payment-reconciler/internal/repository"
)

// All record/match state changes go through the transition functions below so
// the invariant "a match exists iff both linked records are matched/confirmed
// consistently with its confirmation flag" is enforced in one place.

// markMatched inserts the match row and moves both records to matched.
func markMatched(
	payments *repository.PaymentRepository,
	bankTxns *repository.BankTransactionRepository,
	matches *repository.MatchRepository,
	payment *models.Payment,
	bank *models.BankTransaction,
	score int,
	matchType models.MatchType,
) error {
	details, err := json.Marshal(map[string]interface{}{
		"rule":              matchType,
		"score":             score,
		"payment_reference": payment.Reference,
		"bank_reference":    bank.Reference,
		"payment_payee":     payment.Payee,
		"bank_payee":        bank.Payee,
		"amount_delta":      payment.Amount.Sub(bank.Amount).String(),
	})
	if err != nil {
		return fmt.Errorf("encode match details: %w", err)
	}

	m := &models.Match{
		ID:        uuid.New(),
		PaymentID: payment.ID,
		BankTxnID: bank.ID,
		Score:     score,
		MatchType: matchType,
		Details:   datatypes.JSON(details),
		MatchedAt: time.Now(),
	}
	if err := matches.Insert(m); err != nil {
		return fmt.Errorf("insert match %s/%s: %w", payment.ID, bank.ID, err)
	}
	if err := payments.SetStatus(payment.ID, models.StatusMatched); err != nil {
		return fmt.Errorf("mark payment %s matched: %w", payment.ID, err)
	}
	if err := bankTxns.SetStatus(bank.ID, models.StatusMatched); err != nil {
		return fmt.Errorf("mark bank txn %s matched: %w", bank.ID, err)
	}
	return nil
}

// markUnmatched moves a payment to unmatched for manual review.
func markUnmatched(payments *repository.PaymentRepository, payment *models.Payment) error {
	if err := payments.SetStatus(payment.ID, models.StatusUnmatched); err != nil {
		return fmt.Errorf("mark payment %s unmatched: %w", payment.ID, err)
	}
	return nil
}

// markConfirmed confirms the match and moves both linked records to confirmed.
func markConfirmed(
	payments *repository.PaymentRepository,
	bankTxns *repository.BankTransactionRepository,
	matches *repository.MatchRepository,
	m *models.Match,
	reviewer string,
) error {
	if err := matches.Confirm(m.ID, reviewer); err != nil {
		return fmt.Errorf("confirm match %s: %w", m.ID, err)
	}
	if err := payments.SetStatus(m.PaymentID, models.StatusConfirmed); err != nil {
		return fmt.Errorf("mark payment %s confirmed: %w", m.PaymentID, err)
	}
	if err := bankTxns.SetStatus(m.BankTxnID, models.StatusConfirmed); err != nil {
		return fmt.Errorf("mark bank txn %s confirmed: %w", m.BankTxnID, err)
	}
	return recordAudit(matches, m, "confirm", reviewer)
}

// markUnmatchedPair deletes the match and returns both records to pending.
func markUnmatchedPair(
	payments *repository.PaymentRepository,
	bankTxns *repository.BankTransactionRepository,
	matches *repository.MatchRepository,
	m *models.Match,
	reviewer string,
) error {
	if err := matches.Delete(m.ID); err != nil {
		return fmt.Errorf("delete match %s: %w", m.ID, err)
	}
	if err := payments.SetStatus(m.PaymentID, models.StatusPending); err != nil {
		return fmt.Errorf("reset payment %s: %w", m.PaymentID, err)
	}
	if err := bankTxns.SetStatus(m.BankTxnID, models.StatusPending); err != nil {
		return fmt.Errorf("reset bank txn %s: %w", m.BankTxnID, err)
	}
	return recordAudit(matches, m, "unmatch", reviewer)
}

func recordAudit(matches *repository.MatchRepository, m *models.Match, action, reviewer string) error {
	entry := &models.MatchAuditLog{
		ID:          uuid.New(),
		MatchID:     m.ID,
		PaymentID:   m.PaymentID,
		BankTxnID:   m.BankTxnID,
		Action:      action,
		PerformedBy: reviewer,
		CreatedAt:   time.Now(),
	}
	if err := matches.RecordAudit(entry); err != nil {
		return fmt.Errorf("record audit for match %s: %w", m.ID, err)
	}
	return nil
}
