package models

import (
	"time"

	"github.com/google/uuid"
)

// ReconciliationRun records the outcome of one reconcile() invocation. The row
// is written inside the run transaction, so a rolled-back run leaves no trace.
type ReconciliationRun struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	MatchedCount   int
	UnmatchedCount int
	Status         string
	StartedAt      time.Time
	CompletedAt    *time.Time
	CreatedAt      time.Time
}
