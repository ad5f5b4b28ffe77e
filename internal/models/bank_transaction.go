package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BankTransaction struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Amount    decimal.Decimal `gorm:"type:numeric(18,2);index"`
	Date      time.Time       `gorm:"column:date"`
	Reference string
	Payee     string
	Status    RecordStatus `gorm:"index"`
	CreatedAt time.Time
}
