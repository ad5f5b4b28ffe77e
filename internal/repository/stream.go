package repository

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"payment-reconciler/internal/models"
)

// PaymentStream yields pending payments in ascending id order, fetching at
// most fetchSize rows from the store per round-trip. It is forward-only and
// non-restartable. Pagination is keyset-based on id, so status updates applied
// to already-yielded rows cannot shift the remaining pages.
type PaymentStream struct {
	db        *gorm.DB
	fetchSize int

	batch   []models.Payment
	pos     int
	lastID  uuid.UUID
	started bool
	done    bool
	closed  bool
	err     error
	current *models.Payment
}

func newPaymentStream(db *gorm.DB, fetchSize int) *PaymentStream {
	return &PaymentStream{db: db, fetchSize: fetchSize}
}

// Next advances to the next payment. It returns false once the stream is
// exhausted, closed, or a fetch has failed; check Err afterwards.
func (s *PaymentStream) Next() bool {
	if s.closed || s.err != nil {
		return false
	}
	if s.pos >= len(s.batch) {
		if s.done || !s.fetch() {
			return false
		}
	}
	s.current = &s.batch[s.pos]
	s.pos++
	return true
}

func (s *PaymentStream) fetch() bool {
	q := s.db.
		Where("status = ?", models.StatusPending).
		Order("id ASC").
		Limit(s.fetchSize)
	if s.started {
		q = q.Where("id > ?", s.lastID)
	}

	var batch []models.Payment
	if err := q.Find(&batch).Error; err != nil {
		s.err = err
		return false
	}
	s.started = true

	if len(batch) == 0 {
		s.done = true
		return false
	}
	if len(batch) < s.fetchSize {
		s.done = true
	}
	s.batch = batch
	s.pos = 0
	s.lastID = batch[len(batch)-1].ID
	return true
}

// Payment returns the record produced by the last successful Next. The value
// is only valid until the next Next call.
func (s *PaymentStream) Payment() *models.Payment { return s.current }

// Err returns the first error encountered while fetching, if any.
func (s *PaymentStream) Err() error { return s.err }

// Close ends the stream. It is idempotent and safe on every exit path; each
// batch query releases its own statement, so no server-side handle outlives
// the stream.
func (s *PaymentStream) Close() error {
	s.closed = true
	s.batch = nil
	s.current = nil
	return nil
}

// BankTransactionStream yields pending bank transactions inside an amount
// window, closest amount first with date then id as tie-breaks. The total
// ordering makes offset pagination deterministic; the stream must only be used
// inside the run transaction, where nothing mutates the window while it is
// open.
type BankTransactionStream struct {
	db        *gorm.DB
	fetchSize int
	center    decimal.Decimal
	low       decimal.Decimal
	high      decimal.Decimal

	batch   []models.BankTransaction
	pos     int
	offset  int
	done    bool
	closed  bool
	err     error
	current *models.BankTransaction
}

func newBankTransactionStream(db *gorm.DB, center, low, high decimal.Decimal, fetchSize int) *BankTransactionStream {
	return &BankTransactionStream{db: db, fetchSize: fetchSize, center: center, low: low, high: high}
}

// Next advances to the next candidate. It returns false once the stream is
// exhausted, closed, or a fetch has failed; check Err afterwards.
func (s *BankTransactionStream) Next() bool {
	if s.closed || s.err != nil {
		return false
	}
	if s.pos >= len(s.batch) {
		if s.done || !s.fetch() {
			return false
		}
	}
	s.current = &s.batch[s.pos]
	s.pos++
	return true
}

func (s *BankTransactionStream) fetch() bool {
	var batch []models.BankTransaction
	err := s.db.
		Where("status = ? AND amount BETWEEN ? AND ?", models.StatusPending, s.low, s.high).
		Clauses(clause.OrderBy{
			Expression: gorm.Expr("ABS(amount - ?) ASC, date ASC, id ASC", s.center),
		}).
		Limit(s.fetchSize).
		Offset(s.offset).
		Find(&batch).Error
	if err != nil {
		s.err = err
		return false
	}

	if len(batch) == 0 {
		s.done = true
		return false
	}
	if len(batch) < s.fetchSize {
		s.done = true
	}
	s.batch = batch
	s.pos = 0
	s.offset += len(batch)
	return true
}

// BankTransaction returns the record produced by the last successful Next. The
// value is only valid until the next Next call.
func (s *BankTransactionStream) BankTransaction() *models.BankTransaction { return s.current }

// Err returns the first error encountered while fetching, if any.
func (s *BankTransactionStream) Err() error { return s.err }

// Close ends the stream. Idempotent.
func (s *BankTransactionStream) Close() error {
	s.closed = true
	s.batch = nil
	s.current = nil
	return nil
}
