package models

import (
	"gorm.io/gorm"
)

// RoleGrant records that Account holds Role within Scope.
type RoleGrant struct {
	gorm.Model
	Scope     string `gorm:"type:varchar(20);not null;uniqueIndex:idx_role_grant" json:"scope"`
	Role      string `gorm:"type:varchar(20);not null;uniqueIndex:idx_role_grant" json:"role"`
	Account   string `gorm:"type:varchar(42);not null;uniqueIndex:idx_role_grant" json:"account"`
	GrantedBy string `gorm:"type:varchar(42)" json:"grantedBy"`
	IsDeleted bool   `gorm:"default:false" json:"isDeleted"`
}

func (RoleGrant) TableName() string {
	return "role_grants"
}
