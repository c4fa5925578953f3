package ledger

import (
	"context"
	"fmt"
	"time"

	"yideng/models"
	"yideng/models/course"

	"github.com/shopspring/decimal"
)

// ReconcileReport is a consistency check of the ledger taken under the runner lock.
type ReconcileReport struct {
	CheckedAt    time.Time       `json:"checkedAt"`
	TotalSupply  uint64          `json:"totalSupply"`
	MaxSupply    uint64          `json:"maxSupply"`
	HolderSum    uint64          `json:"holderSum"`
	Reserve      decimal.Decimal `json:"reserve"`
	VaultBalance decimal.Decimal `json:"vaultBalance"`
	Certificates int64           `json:"certificates"`
	LastTokenID  uint64          `json:"lastTokenId"`
	Issues       []string        `json:"issues"`
}

func (r *ReconcileReport) OK() bool {
	return len(r.Issues) == 0
}

func (r *ReconcileReport) issue(format string, args ...any) {
	r.Issues = append(r.Issues, fmt.Sprintf(format, args...))
}

// Reconcile verifies that balances add up to the supply, that the reserve is backed by
// the token's native balance, and that certificate ids have no gaps.
func (l *Ledger) Reconcile(ctx context.Context) (*ReconcileReport, error) {
	report := &ReconcileReport{CheckedAt: time.Now(), Issues: []string{}}

	err := l.runner.Run(ctx, func(tx *Tx) error {
		st, err := l.Token.state(tx)
		if err != nil {
			return err
		}
		report.TotalSupply = st.TotalSupply
		report.MaxSupply = st.MaxSupply
		report.Reserve = st.Reserve

		var balances []uint64
		if err := tx.db.Model(&models.TokenBalance{}).Pluck("balance", &balances).Error; err != nil {
			return fmt.Errorf("read balances: %w", err)
		}
		for _, b := range balances {
			sum, err := addU64(report.HolderSum, b)
			if err != nil {
				report.issue("holder balances overflow")
				break
			}
			report.HolderSum = sum
		}

		if report.HolderSum != st.TotalSupply {
			report.issue("holder balances %d differ from total supply %d", report.HolderSum, st.TotalSupply)
		}
		if st.TotalSupply > st.MaxSupply {
			report.issue("total supply %d exceeds max supply %d", st.TotalSupply, st.MaxSupply)
		}
		if st.Reserve.IsNegative() {
			report.issue("reserve is negative: %s", st.Reserve)
		}

		report.VaultBalance, err = nativeBalance(tx.db, l.Token.address)
		if err != nil {
			return err
		}
		if !report.VaultBalance.Equal(st.Reserve) {
			report.issue("reserve %s differs from token native balance %s", st.Reserve, report.VaultBalance)
		}

		if err := tx.db.Model(&course.Certificate{}).Count(&report.Certificates).Error; err != nil {
			return fmt.Errorf("count certificates: %w", err)
		}
		if err := tx.db.Model(&course.Certificate{}).Select("COALESCE(MAX(token_id), 0)").Scan(&report.LastTokenID).Error; err != nil {
			return fmt.Errorf("read certificate sequence: %w", err)
		}
		if uint64(report.Certificates) != report.LastTokenID {
			report.issue("%d certificates but last id is %d", report.Certificates, report.LastTokenID)
		}

		var missing int64
		err = tx.db.Model(&course.Purchase{}).
			Where("status = ?", course.PurchaseStatusCompleted).
			Where("NOT EXISTS (SELECT 1 FROM certificates c WHERE c.holder = course_purchases.holder AND c.external_course_id = course_purchases.external_course_id)").
			Count(&missing).Error
		if err != nil {
			return fmt.Errorf("check completions: %w", err)
		}
		if missing > 0 {
			report.issue("%d completed purchases have no certificate", missing)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}
