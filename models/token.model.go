package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TokenState is the singleton row holding the fungible token's supply accounting.
type TokenState struct {
	ID            uint            `gorm:"primaryKey" json:"-"`
	Contract      string          `gorm:"type:varchar(42);uniqueIndex;not null" json:"contract"`
	Name          string          `gorm:"type:varchar(100);not null" json:"name"`
	Symbol        string          `gorm:"type:varchar(20);not null" json:"symbol"`
	TotalSupply   uint64          `gorm:"not null;default:0" json:"totalSupply"`
	MaxSupply     uint64          `gorm:"not null" json:"maxSupply"`
	TokensPerUnit uint64          `gorm:"not null" json:"tokensPerUnit"`
	Reserve       decimal.Decimal `gorm:"type:varchar(80);not null" json:"reserve"`
	Distributed   bool            `gorm:"default:false" json:"distributed"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

func (TokenState) TableName() string {
	return "token_states"
}

// TokenBalance is one holder's token balance.
type TokenBalance struct {
	Holder    string    `gorm:"type:varchar(42);primaryKey" json:"holder"`
	Balance   uint64    `gorm:"not null;default:0" json:"balance"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (TokenBalance) TableName() string {
	return "token_balances"
}

// TokenAllowance is the amount Spender may move out of Owner's balance.
type TokenAllowance struct {
	Owner     string    `gorm:"type:varchar(42);primaryKey" json:"owner"`
	Spender   string    `gorm:"type:varchar(42);primaryKey" json:"spender"`
	Amount    uint64    `gorm:"not null;default:0" json:"amount"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (TokenAllowance) TableName() string {
	return "token_allowances"
}
