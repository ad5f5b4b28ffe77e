package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"payment-reconciler/internal/models"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *PaymentRepository) WithTx(tx *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: tx}
}

func (r *PaymentRepository) Create(p *models.Payment) error {
	return r.db.Create(p).Error
}

func (r *PaymentRepository) GetByID(id uuid.UUID) (*models.Payment, error) {
	var p models.Payment
	if err := r.db.First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// SetStatus updates a payment's lifecycle status. Updating a missing row is
// reported as gorm.ErrRecordNotFound rather than silently succeeding.
func (r *PaymentRepository) SetStatus(id uuid.UUID, status models.RecordStatus) error {
	res := r.db.Model(&models.Payment{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// StreamPending opens a stream over all pending payments ordered by id
// ascending. The caller must Close the stream on every exit path.
func (r *PaymentRepository) StreamPending(fetchSize int) *PaymentStream {
	return newPaymentStream(r.db, fetchSize)
}

// CountByStatus returns the number of payments grouped by status.
func (r *PaymentRepository) CountByStatus() (map[models.RecordStatus]int64, error) {
	return countByStatus(r.db, &models.Payment{})
}
