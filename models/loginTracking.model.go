package models

import (
	"time"

	"gorm.io/gorm"
)

// LoginTracking records each successful login of an account
type LoginTracking struct {
	gorm.Model
	AccountID uint      `gorm:"index;not null" json:"accountId"`
	Address   string    `gorm:"type:varchar(42)" json:"address"`
	IPAddress string    `json:"ipAddress"`
	Device    string    `json:"device"`
	Timestamp time.Time `json:"timestamp"`
}

func (LoginTracking) TableName() string {
	return "login_trackings"
}
