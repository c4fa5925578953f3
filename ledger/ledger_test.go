package ledger

import (
	"context"
	"sync"
	"testing"

	"yideng/database"
	"yideng/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	deployer  = MustAddress("0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266")
	tokenAddr = MustAddress("0x5fbdb2315678afecb367f032d93f642f64180aa3")
	certAddr  = MustAddress("0xe7f1725e7734ce288f8367e1bb143e90bb3f0512")
	mktAddr   = MustAddress("0x9fe46736679d2d9a65f0992f2272de9f3c7fa6e0")

	alice   = MustAddress("0x70997970c51812dc3a010c7d01b50e0d17dc79c8")
	bob     = MustAddress("0x3c44cdddb6a900fa2b585dd299e03d12fa4293bc")
	carol   = MustAddress("0x90f79bf6eb2c4f870365e785982e1f101e93b906")
	mallory = MustAddress("0x15d34aaf54267db7d7c367839aaf71a00a2c6a65")
)

func testOptions() Options {
	return Options{
		Params:             DefaultEconomyParams(),
		Deployer:           deployer,
		TokenAddress:       tokenAddr,
		CertificateAddress: certAddr,
		MarketAddress:      mktAddr,
		Market: MarketOptions{
			MetadataBaseURL: "https://api.yideng.com/certificate",
		},
	}
}

func newTestLedger(t *testing.T, mutate ...func(*Options)) *Ledger {
	t.Helper()

	db, err := database.OpenMemory()
	require.NoError(t, err)

	opts := testOptions()
	for _, fn := range mutate {
		fn(&opts)
	}

	l, err := New(db, opts)
	require.NoError(t, err)
	require.NoError(t, l.Bootstrap(context.Background()))
	return l
}

// ether returns n whole units in wei.
func ether(n int64) decimal.Decimal {
	return decimal.New(n, 18)
}

// fund deposits native currency and buys tokens with it.
func fund(t *testing.T, l *Ledger, holder Address, units int64) uint64 {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, l.Vault.Deposit(ctx, deployer, holder, ether(units), "test"))
	tokens, err := l.Token.BuyWithNative(ctx, holder, ether(units))
	require.NoError(t, err)
	return tokens
}

type eventRecorder struct {
	mu     sync.Mutex
	events []models.LedgerEvent
}

func record(l *Ledger) *eventRecorder {
	rec := &eventRecorder{}
	l.Subscribe(func(e models.LedgerEvent) {
		rec.mu.Lock()
		defer rec.mu.Unlock()
		rec.events = append(rec.events, e)
	})
	return rec
}

func (r *eventRecorder) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Name
	}
	return out
}

func TestNewRejectsBadOptions(t *testing.T) {
	db, err := database.OpenMemory()
	require.NoError(t, err)

	opts := testOptions()
	opts.MarketAddress = opts.TokenAddress
	_, err = New(db, opts)
	assert.Error(t, err)

	opts = testOptions()
	opts.Deployer = ""
	_, err = New(db, opts)
	assert.Error(t, err)

	opts = testOptions()
	opts.Params.TokensPerUnit = 0
	_, err = New(db, opts)
	assert.Error(t, err)
}

func TestBootstrapIsIdempotent(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	require.NoError(t, l.Bootstrap(ctx))

	owners, err := l.Caps.Members(ctx, ScopeToken, RoleOwner)
	require.NoError(t, err)
	assert.Equal(t, []Address{deployer}, owners)

	minter, err := l.Certificates.IsMinter(ctx, mktAddr)
	require.NoError(t, err)
	assert.True(t, minter)

	info, err := l.Token.Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, "YiDeng Token", info.Name)
	assert.Equal(t, "YD", info.Symbol)
	assert.Equal(t, uint64(1250000), info.MaxSupply)
	assert.Equal(t, uint64(1000), info.TokensPerUnit)
	assert.Zero(t, info.TotalSupply)
}

func TestEventsAreSequencedAndListed(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()
	rec := record(l)

	fund(t, l, alice, 1)

	assert.Equal(t, []string{EventNativeDeposited, EventTransfer, EventTokensPurchased}, rec.names())

	events, total, err := l.Events.List(ctx, EventFilter{Name: EventTokensPurchased})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	assert.Equal(t, string(tokenAddr), events[0].Contract)
	assert.JSONEq(t,
		`{"buyer":"0x70997970c51812dc3a010c7d01b50e0d17dc79c8","ethAmount":"1000000000000000000","tokenAmount":1000}`,
		string(events[0].Payload))

	all, _, err := l.Events.List(ctx, EventFilter{})
	require.NoError(t, err)
	for i := 1; i < len(all); i++ {
		assert.Equal(t, all[i-1].Seq+1, all[i].Seq)
	}

	after, _, err := l.Events.List(ctx, EventFilter{AfterSeq: all[len(all)-2].Seq})
	require.NoError(t, err)
	assert.Len(t, after, 1)
}

func TestFailedOperationEmitsNothing(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()
	rec := record(l)

	_, err := l.Token.BuyWithNative(ctx, alice, ether(1))
	assert.ErrorIs(t, err, ErrInsufficientNative)
	assert.Empty(t, rec.names())

	_, total, err := l.Events.List(ctx, EventFilter{Name: EventTransfer})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestSubscriberPanicDoesNotBreakDelivery(t *testing.T) {
	l := newTestLedger(t)
	l.Subscribe(func(models.LedgerEvent) { panic("boom") })
	rec := record(l)

	fund(t, l, alice, 1)
	assert.NotEmpty(t, rec.names())
}

func TestHistory(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	fund(t, l, alice, 2)

	rows, total, err := l.History(ctx, HistoryFilter{Account: alice, Asset: models.AssetToken})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	assert.Equal(t, models.TransactionTypeTokenPurchase, rows[0].TransactionType)
	assert.True(t, rows[0].BalanceAfter.Equal(decimal.NewFromInt(2000)))

	rows, total, err = l.History(ctx, HistoryFilter{Account: alice, Asset: models.AssetNative})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	// newest first
	assert.Equal(t, models.TransactionTypeTokenPurchase, rows[0].TransactionType)
	assert.Equal(t, models.TransactionTypeDeposit, rows[1].TransactionType)

	_, _, err = l.History(ctx, HistoryFilter{})
	assert.ErrorIs(t, err, ErrInvalidAddress)
}

func TestErrorKinds(t *testing.T) {
	assert.Equal(t, KindAuthorization, KindOf(ErrUnauthorized))
	assert.Equal(t, KindPrecondition, KindOf(ErrAlreadyPurchased))
	assert.Equal(t, KindResource, KindOf(ErrExceedsMaxSupply))
	assert.Equal(t, KindValidation, KindOf(ErrInvalidHolder))
	assert.Equal(t, KindInternal, KindOf(assert.AnError))
	assert.Equal(t, "Would exceed max supply", Reason(ErrExceedsMaxSupply))
}

func TestParseAddress(t *testing.T) {
	a, err := ParseAddress(" 0x70997970C51812dc3A010C7d01b50e0d17dc79C8 ")
	require.NoError(t, err)
	assert.Equal(t, alice, a)

	_, err = ParseAddress("0x1234")
	assert.ErrorIs(t, err, ErrInvalidAddress)

	assert.True(t, ZeroAddress.IsZero())
	assert.True(t, Address("").IsZero())
	assert.False(t, alice.IsZero())
}
