package models

import (
	"time"

	"gorm.io/gorm"
)

// Account is a login bound to one ledger address.
type Account struct {
	gorm.Model
	Address             string     `gorm:"type:varchar(42);uniqueIndex;not null" json:"address"`
	Name                string     `gorm:"default:''" json:"name"`
	Password            string     `gorm:"not null" json:"-"`
	LastLogin           *time.Time `json:"lastLogin"`
	FailedLoginAttempts int        `gorm:"default:0" json:"-"`
	LastFailedLogin     *time.Time `json:"-"`
	IsBlocked           bool       `gorm:"default:false" json:"isBlocked"`
	BlockedUntil        *time.Time `json:"blockedUntil,omitempty"`
	IsDeleted           bool       `gorm:"default:false" json:"-"`
}

func (Account) TableName() string {
	return "accounts"
}
