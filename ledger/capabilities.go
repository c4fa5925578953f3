package ledger

import (
	"context"
	"errors"
	"fmt"

	"yideng/models"

	"gorm.io/gorm"
)

// Scope names the component a role applies to.
type Scope string

const (
	ScopeToken       Scope = "token"
	ScopeCertificate Scope = "certificate"
	ScopeMarket      Scope = "market"
	ScopeVault       Scope = "vault"
)

type Role string

const (
	RoleOwner  Role = "OWNER"
	RoleAdmin  Role = "ADMIN"
	RoleMinter Role = "MINTER"
	RoleOracle Role = "ORACLE"
)

// adminRole is the role allowed to grant and revoke within a scope.
func adminRole(scope Scope) Role {
	if scope == ScopeToken {
		return RoleOwner
	}
	return RoleAdmin
}

func validScope(scope Scope) bool {
	switch scope {
	case ScopeToken, ScopeCertificate, ScopeMarket, ScopeVault:
		return true
	}
	return false
}

func validRole(role Role) bool {
	switch role {
	case RoleOwner, RoleAdmin, RoleMinter, RoleOracle:
		return true
	}
	return false
}

// Capabilities is the set of (scope, role, account) grants every component checks
// before a restricted operation.
type Capabilities struct {
	runner  *Runner
	address func(Scope) Address
}

// Has reports whether account currently holds role in scope.
func (c *Capabilities) Has(ctx context.Context, scope Scope, role Role, account Address) (bool, error) {
	return hasRole(c.runner.db.WithContext(ctx), scope, role, account)
}

// Grant gives account the role. The caller must hold the scope's admin role. Granting a
// role that is already held changes nothing.
func (c *Capabilities) Grant(ctx context.Context, caller Address, scope Scope, role Role, account Address) error {
	return c.runner.Run(ctx, func(tx *Tx) error {
		if err := c.requireAdmin(tx, scope, caller); err != nil {
			return err
		}
		return c.grant(tx, scope, role, account, caller)
	})
}

// Revoke removes the role. Revoking a role that is not held changes nothing.
func (c *Capabilities) Revoke(ctx context.Context, caller Address, scope Scope, role Role, account Address) error {
	return c.runner.Run(ctx, func(tx *Tx) error {
		if err := c.requireAdmin(tx, scope, caller); err != nil {
			return err
		}
		return c.revoke(tx, scope, role, account, caller)
	})
}

// Members lists the accounts holding role in scope.
func (c *Capabilities) Members(ctx context.Context, scope Scope, role Role) ([]Address, error) {
	var grants []models.RoleGrant
	err := c.runner.db.WithContext(ctx).
		Where("scope = ? AND role = ? AND is_deleted = ?", string(scope), string(role), false).
		Order("id ASC").
		Find(&grants).Error
	if err != nil {
		return nil, err
	}

	out := make([]Address, len(grants))
	for i, g := range grants {
		out[i] = Address(g.Account)
	}
	return out, nil
}

func (c *Capabilities) requireAdmin(tx *Tx, scope Scope, caller Address) error {
	if !validScope(scope) {
		return ErrUnauthorized
	}
	return c.require(tx, scope, adminRole(scope), caller)
}

func (c *Capabilities) require(tx *Tx, scope Scope, role Role, caller Address) error {
	return c.requireAny(tx, scope, caller, role)
}

func (c *Capabilities) requireAny(tx *Tx, scope Scope, caller Address, roles ...Role) error {
	if caller.IsZero() {
		return ErrUnauthorized
	}
	for _, role := range roles {
		ok, err := hasRole(tx.db, scope, role, caller)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}
	return ErrUnauthorized
}

func (c *Capabilities) grant(tx *Tx, scope Scope, role Role, account, sender Address) error {
	if !validScope(scope) || !validRole(role) {
		return ErrUnauthorized
	}
	if account.IsZero() {
		return ErrInvalidAddress
	}

	var existing models.RoleGrant
	err := tx.db.Where("scope = ? AND role = ? AND account = ?", string(scope), string(role), string(account)).
		First(&existing).Error
	switch {
	case err == nil && !existing.IsDeleted:
		return nil
	case err == nil:
		existing.IsDeleted = false
		existing.GrantedBy = string(sender)
		if err := tx.db.Save(&existing).Error; err != nil {
			return fmt.Errorf("restore role grant: %w", err)
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		grant := models.RoleGrant{
			Scope:     string(scope),
			Role:      string(role),
			Account:   string(account),
			GrantedBy: string(sender),
		}
		if err := tx.db.Create(&grant).Error; err != nil {
			return fmt.Errorf("create role grant: %w", err)
		}
	default:
		return err
	}

	return tx.Emit(c.address(scope), EventRoleGranted, RoleChanged{
		Scope: scope, Role: role, Account: account, Sender: sender,
	})
}

func (c *Capabilities) revoke(tx *Tx, scope Scope, role Role, account, sender Address) error {
	res := tx.db.Model(&models.RoleGrant{}).
		Where("scope = ? AND role = ? AND account = ? AND is_deleted = ?", string(scope), string(role), string(account), false).
		Update("is_deleted", true)
	if res.Error != nil {
		return fmt.Errorf("revoke role: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil
	}

	return tx.Emit(c.address(scope), EventRoleRevoked, RoleChanged{
		Scope: scope, Role: role, Account: account, Sender: sender,
	})
}

func hasRole(db *gorm.DB, scope Scope, role Role, account Address) (bool, error) {
	var count int64
	err := db.Model(&models.RoleGrant{}).
		Where("scope = ? AND role = ? AND account = ? AND is_deleted = ?", string(scope), string(role), string(account), false).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
