package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TransactionType defines the type of ledger movement
type TransactionType string

const (
	TransactionTypeDeposit        TransactionType = "DEPOSIT"
	TransactionTypeWithdrawal     TransactionType = "WITHDRAWAL"
	TransactionTypeTokenPurchase  TransactionType = "TOKEN_PURCHASE"
	TransactionTypeTokenSale      TransactionType = "TOKEN_SALE"
	TransactionTypeTransferIn     TransactionType = "TRANSFER_IN"
	TransactionTypeTransferOut    TransactionType = "TRANSFER_OUT"
	TransactionTypeDistribution   TransactionType = "DISTRIBUTION"
	TransactionTypeCoursePurchase TransactionType = "COURSE_PURCHASE"
)

// Asset tells which ledger a transaction moved.
type Asset string

const (
	AssetToken  Asset = "TOKEN"
	AssetNative Asset = "NATIVE"
)

// LedgerTransaction tracks every balance movement for an address
type LedgerTransaction struct {
	gorm.Model
	Account         string          `gorm:"type:varchar(42);not null;index" json:"account"`
	Asset           Asset           `gorm:"type:varchar(10);not null" json:"asset"`
	TransactionType TransactionType `gorm:"type:varchar(50);not null" json:"transactionType"`
	Amount          decimal.Decimal `gorm:"type:varchar(80);not null" json:"amount"`
	BalanceBefore   decimal.Decimal `gorm:"type:varchar(80);not null" json:"balanceBefore"`
	BalanceAfter    decimal.Decimal `gorm:"type:varchar(80);not null" json:"balanceAfter"`
	Counterparty    string          `gorm:"type:varchar(42)" json:"counterparty"`
	Description     string          `gorm:"type:text" json:"description"`

	// Reference details (for course purchases)
	ReferenceType string `gorm:"type:varchar(50)" json:"referenceType"`
	ReferenceID   string `gorm:"type:varchar(100)" json:"referenceId"`

	TransactionDate time.Time `gorm:"not null;index" json:"transactionDate"`
}

func (LedgerTransaction) TableName() string {
	return "ledger_transactions"
}
