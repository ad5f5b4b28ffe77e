package models

import (
	"time"

	"github.com/google/uuid"
)

type MatchAuditLog struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	MatchID     uuid.UUID `gorm:"type:uuid;index"`
	PaymentID   uuid.UUID `gorm:"type:uuid"`
	BankTxnID   uuid.UUID `gorm:"type:uuid"`
	Action      string
	PerformedBy string
	CreatedAt   time.Time
}
