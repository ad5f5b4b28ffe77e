package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Match is a persisted pairing decision between one payment and one bank
// transaction. The (payment_id, bank_txn_id) pair is unique; a re-run that
// rediscovers the same pair is a no-op.
type Match struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	PaymentID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_matches_pair"`
	BankTxnID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_matches_pair;index"`
	Score     int
	MatchType MatchType
	Confirmed bool `gorm:"index"`
	Reviewer  string
	Details   datatypes.JSON
	MatchedAt time.Time
}
