package repository

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"payment-reconciler/internal/models"
)

type BankTransactionRepository struct {
	db *gorm.DB
}

func NewBankTransactionRepository(db *gorm.DB) *BankTransactionRepository {
	return &BankTransactionRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *BankTransactionRepository) WithTx(tx *gorm.DB) *BankTransactionRepository {
	return &BankTransactionRepository{db: tx}
}

func (r *BankTransactionRepository) Create(b *models.BankTransaction) error {
	return r.db.Create(b).Error
}

func (r *BankTransactionRepository) GetByID(id uuid.UUID) (*models.BankTransaction, error) {
	var b models.BankTransaction
	if err := r.db.First(&b, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

// SetStatus updates a bank transaction's lifecycle status. Updating a missing
// row is reported as gorm.ErrRecordNotFound.
func (r *BankTransactionRepository) SetStatus(id uuid.UUID, status models.RecordStatus) error {
	res := r.db.Model(&models.BankTransaction{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// StreamCandidates opens a stream over pending bank transactions with amount
// in [low, high], ordered by closeness to center, then date, then id. Each
// call opens an independent stream, so one stream per payment under evaluation
// never interferes with another. The caller must Close the stream on every
// exit path.
func (r *BankTransactionRepository) StreamCandidates(center, low, high decimal.Decimal, fetchSize int) *BankTransactionStream {
	return newBankTransactionStream(r.db, center, low, high, fetchSize)
}

// CountByStatus returns the number of bank transactions grouped by status.
func (r *BankTransactionRepository) CountByStatus() (map[models.RecordStatus]int64, error) {
	return countByStatus(r.db, &models.BankTransaction{})
}

type statusCount struct {
	Status models.RecordStatus
	Count  int64
}

func countByStatus(db *gorm.DB, model any) (map[models.RecordStatus]int64, error) {
	var rows []statusCount
	err := db.Model(model).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[models.RecordStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
