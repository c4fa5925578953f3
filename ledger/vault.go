package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"yideng/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Payout sends native currency out of a contract balance. It is called after the
// caller's state changes are written and within the same transaction; returning an
// error reverts the whole operation.
type Payout interface {
	Pay(tx *Tx, from, to Address, wei decimal.Decimal) error
}

// NativeVault keeps per-address native currency balances in wei. It stands in for the
// execution environment's value transfers.
type NativeVault struct {
	runner *Runner
	caps   *Capabilities
	self   Address
}

// BalanceOf returns the wei balance of addr.
func (v *NativeVault) BalanceOf(ctx context.Context, addr Address) (decimal.Decimal, error) {
	return nativeBalance(v.runner.db.WithContext(ctx), addr)
}

// Deposit credits wei to an account. Restricted to vault admins, like an operator
// confirming an incoming payment.
func (v *NativeVault) Deposit(ctx context.Context, caller, to Address, wei decimal.Decimal, memo string) error {
	return v.runner.Run(ctx, func(tx *Tx) error {
		if err := v.caps.require(tx, ScopeVault, RoleAdmin, caller); err != nil {
			return err
		}
		if to.IsZero() {
			return ErrInvalidHolder
		}
		if !wei.IsPositive() || !wei.Equal(wei.Truncate(0)) {
			return ErrInvalidAmount
		}

		before, after, err := v.credit(tx, to, wei)
		if err != nil {
			return err
		}
		if err := recordMovement(tx, models.LedgerTransaction{
			Account:         string(to),
			Asset:           models.AssetNative,
			TransactionType: models.TransactionTypeDeposit,
			Amount:          wei,
			BalanceBefore:   before,
			BalanceAfter:    after,
			Counterparty:    string(caller),
			Description:     "Native deposit: " + memo,
		}); err != nil {
			return err
		}
		return tx.Emit(v.self, EventNativeDeposited, NativeMovement{Account: to, Amount: wei})
	})
}

// Withdraw takes wei out of the holder's own account.
func (v *NativeVault) Withdraw(ctx context.Context, holder Address, wei decimal.Decimal) error {
	return v.runner.Run(ctx, func(tx *Tx) error {
		if holder.IsZero() {
			return ErrInvalidHolder
		}
		if !wei.IsPositive() || !wei.Equal(wei.Truncate(0)) {
			return ErrInvalidAmount
		}

		before, after, err := v.debit(tx, holder, wei)
		if err != nil {
			return err
		}
		if err := recordMovement(tx, models.LedgerTransaction{
			Account:         string(holder),
			Asset:           models.AssetNative,
			TransactionType: models.TransactionTypeWithdrawal,
			Amount:          wei,
			BalanceBefore:   before,
			BalanceAfter:    after,
			Description:     "Native withdrawal",
		}); err != nil {
			return err
		}
		return tx.Emit(v.self, EventNativeWithdrawn, NativeMovement{Account: holder, Amount: wei})
	})
}

// Pay implements Payout by moving wei between vault accounts.
func (v *NativeVault) Pay(tx *Tx, from, to Address, wei decimal.Decimal) error {
	return v.move(tx, from, to, wei, models.TransactionTypeTokenSale, "Token redemption payout")
}

func (v *NativeVault) move(tx *Tx, from, to Address, wei decimal.Decimal, typ models.TransactionType, memo string) error {
	if wei.IsZero() {
		return nil
	}

	fromBefore, fromAfter, err := v.debit(tx, from, wei)
	if err != nil {
		return err
	}
	toBefore, toAfter, err := v.credit(tx, to, wei)
	if err != nil {
		return err
	}

	entries := []models.LedgerTransaction{
		{
			Account: string(from), Asset: models.AssetNative, TransactionType: typ,
			Amount: wei.Neg(), BalanceBefore: fromBefore, BalanceAfter: fromAfter,
			Counterparty: string(to), Description: memo,
		},
		{
			Account: string(to), Asset: models.AssetNative, TransactionType: typ,
			Amount: wei, BalanceBefore: toBefore, BalanceAfter: toAfter,
			Counterparty: string(from), Description: memo,
		},
	}
	for _, entry := range entries {
		if err := recordMovement(tx, entry); err != nil {
			return err
		}
	}
	return nil
}

func (v *NativeVault) credit(tx *Tx, addr Address, wei decimal.Decimal) (decimal.Decimal, decimal.Decimal, error) {
	before, err := nativeBalance(tx.db, addr)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	after := before.Add(wei)
	return before, after, saveNative(tx.db, addr, after)
}

func (v *NativeVault) debit(tx *Tx, addr Address, wei decimal.Decimal) (decimal.Decimal, decimal.Decimal, error) {
	before, err := nativeBalance(tx.db, addr)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	if before.LessThan(wei) {
		return decimal.Zero, decimal.Zero, ErrInsufficientNative
	}
	after := before.Sub(wei)
	return before, after, saveNative(tx.db, addr, after)
}

func nativeBalance(db *gorm.DB, addr Address) (decimal.Decimal, error) {
	var account models.NativeAccount
	err := db.Where("address = ?", string(addr)).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("read native balance: %w", err)
	}
	return account.Balance, nil
}

func saveNative(db *gorm.DB, addr Address, balance decimal.Decimal) error {
	account := models.NativeAccount{Address: string(addr), Balance: balance}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "address"}},
		DoUpdates: clause.AssignmentColumns([]string{"balance", "updated_at"}),
	}).Create(&account).Error
	if err != nil {
		return fmt.Errorf("write native balance: %w", err)
	}
	return nil
}

// recordMovement appends a row to the per-account history.
func recordMovement(tx *Tx, entry models.LedgerTransaction) error {
	if entry.TransactionDate.IsZero() {
		entry.TransactionDate = time.Now()
	}
	if err := tx.db.Create(&entry).Error; err != nil {
		return fmt.Errorf("record %s movement: %w", entry.TransactionType, err)
	}
	return nil
}
