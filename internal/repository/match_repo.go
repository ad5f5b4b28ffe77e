package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"payment-reconciler/internal/models"
)

type MatchRepository struct {
	db *gorm.DB
}

func NewMatchRepository(db *gorm.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *MatchRepository) WithTx(tx *gorm.DB) *MatchRepository {
	return &MatchRepository{db: tx}
}

// Insert stores a match decision. Re-inserting an existing
// (payment_id, bank_txn_id) pair is a no-op.
func (r *MatchRepository) Insert(m *models.Match) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "payment_id"}, {Name: "bank_txn_id"}},
		DoNothing: true,
	}).Create(m).Error
}

func (r *MatchRepository) GetByID(id uuid.UUID) (*models.Match, error) {
	var m models.Match
	if err := r.db.First(&m, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// HasConfirmedForBank reports whether the bank transaction is already tied to
// a confirmed match. A confirmed bank transaction can never be reassigned.
func (r *MatchRepository) HasConfirmedForBank(bankTxnID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.Model(&models.Match{}).
		Where("bank_txn_id = ? AND confirmed = ?", bankTxnID, true).
		Count(&count).Error
	return count > 0, err
}

func (r *MatchRepository) Confirm(id uuid.UUID, reviewer string) error {
	res := r.db.Model(&models.Match{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"confirmed": true,
			"reviewer":  reviewer,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *MatchRepository) Delete(id uuid.UUID) error {
	return r.db.Delete(&models.Match{}, "id = ?", id).Error
}

func (r *MatchRepository) RecordAudit(entry *models.MatchAuditLog) error {
	return r.db.Create(entry).Error
}

// MatchRow is a match joined with both linked records, as served to reviewers.
type MatchRow struct {
	ID               uuid.UUID        `json:"id"`
	PaymentID        uuid.UUID        `json:"payment_id"`
	BankTxnID        uuid.UUID        `json:"bank_txn_id"`
	Score            int              `json:"match_score"`
	MatchType        models.MatchType `json:"match_type"`
	Confirmed        bool             `json:"confirmed"`
	Reviewer         string           `json:"reviewer"`
	MatchedAt        time.Time        `json:"matched_at"`
	PaymentAmount    decimal.Decimal  `json:"payment_amount"`
	PaymentDate      time.Time        `json:"payment_date"`
	PaymentReference string           `json:"payment_reference"`
	PaymentPayee     string           `json:"payment_payee"`
	BankAmount       decimal.Decimal  `json:"bank_amount"`
	BankDate         time.Time        `json:"bank_date"`
	BankReference    string           `json:"bank_reference"`
	BankPayee        string           `json:"bank_payee"`
}

// List returns recent matches joined with their payment and bank records.
// status may be "confirmed", "pending" (not yet confirmed) or empty for all.
func (r *MatchRepository) List(status string, limit int) ([]MatchRow, error) {
	q := r.db.Table("matches m").
		Select(`m.id, m.payment_id, m.bank_txn_id, m.score, m.match_type,
			m.confirmed, m.reviewer, m.matched_at,
			p.amount AS payment_amount, p.date AS payment_date,
			p.reference AS payment_reference, p.payee AS payment_payee,
			b.amount AS bank_amount, b.date AS bank_date,
			b.reference AS bank_reference, b.payee AS bank_payee`).
		Joins("JOIN payments p ON m.payment_id = p.id").
		Joins("JOIN bank_transactions b ON m.bank_txn_id = b.id")

	switch status {
	case "confirmed":
		q = q.Where("m.confirmed = ?", true)
	case "pending":
		q = q.Where("m.confirmed = ?", false)
	}

	var rows []MatchRow
	err := q.Order("m.matched_at DESC").Limit(limit).Scan(&rows).Error
	return rows, err
}

// CountMatches returns the number of match rows, confirmed and total.
func (r *MatchRepository) CountMatches() (total int64, confirmed int64, err error) {
	if err = r.db.Model(&models.Match{}).Count(&total).Error; err != nil {
		return 0, 0, err
	}
	err = r.db.Model(&models.Match{}).Where("confirmed = ?", true).Count(&confirmed).Error
	return total, confirmed, err
}
