package ledger

import (
	"context"
	"testing"

	"yideng/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcileCleanLedger(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	require.NoError(t, l.Token.DistributeInitial(ctx, deployer, alice, bob, carol))
	fund(t, l, alice, 3)
	_, err := l.Token.Redeem(ctx, alice, 1500)
	require.NoError(t, err)
	addCourse(t, l, "COURSE-001", 100)
	require.NoError(t, l.Token.Approve(ctx, alice, mktAddr, 100))
	_, err = l.Market.PurchaseCourse(ctx, alice, "COURSE-001")
	require.NoError(t, err)
	_, err = l.Market.VerifyCompletion(ctx, deployer, alice, "COURSE-001")
	require.NoError(t, err)

	report, err := l.Reconcile(ctx)
	require.NoError(t, err)
	assert.True(t, report.OK(), report.Issues)
	assert.Equal(t, uint64(501500), report.TotalSupply)
	assert.Equal(t, report.TotalSupply, report.HolderSum)
	assert.True(t, report.Reserve.Equal(decimal.New(15, 17)))
	assert.Equal(t, int64(1), report.Certificates)
}

func TestReconcileFindsDrift(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()
	fund(t, l, alice, 1)

	// corrupt a balance behind the ledger's back
	require.NoError(t, l.runner.db.Model(&models.TokenBalance{}).
		Where("holder = ?", string(alice)).
		Update("balance", 999).Error)

	report, err := l.Reconcile(ctx)
	require.NoError(t, err)
	assert.False(t, report.OK())
	assert.Len(t, report.Issues, 1)
	assert.Contains(t, report.Issues[0], "differ from total supply")
}
