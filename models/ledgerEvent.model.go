package models

import (
	"time"

	"gorm.io/datatypes"
)

// LedgerEvent is one emitted event. Seq orders events across all contracts.
type LedgerEvent struct {
	ID        string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	Seq       uint64         `gorm:"not null;uniqueIndex" json:"seq"`
	Contract  string         `gorm:"type:varchar(42);not null;index" json:"contract"`
	Name      string         `gorm:"type:varchar(50);not null;index" json:"name"`
	Payload   datatypes.JSON `json:"payload"`
	CreatedAt time.Time      `gorm:"index" json:"createdAt"`
}

func (LedgerEvent) TableName() string {
	return "ledger_events"
}
