package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// NativeAccount holds an address's native currency balance in wei.
type NativeAccount struct {
	Address   string          `gorm:"type:varchar(42);primaryKey" json:"address"`
	Balance   decimal.Decimal `gorm:"type:varchar(80);not null" json:"balance"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

func (NativeAccount) TableName() string {
	return "native_accounts"
}
