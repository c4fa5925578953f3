package ledger

import (
	"context"
	"errors"
	"fmt"
	"log"

	"yideng/models"

	"gorm.io/gorm"
)

// Options wire a ledger to its addresses and outside collaborators.
type Options struct {
	Params EconomyParams

	// Deployer receives every admin capability at bootstrap.
	Deployer           Address
	TokenAddress       Address
	CertificateAddress Address
	MarketAddress      Address

	Market MarketOptions

	// Payout sends redemption proceeds. Defaults to the native vault.
	Payout Payout
	// Oracle confirms completions claimed by holders. Optional.
	Oracle CompletionOracle
}

// Ledger bundles the components that share one runner and one set of capabilities.
type Ledger struct {
	Caps         *Capabilities
	Vault        *NativeVault
	Token        *TokenEconomy
	Certificates *CertificateRegistry
	Market       *CourseMarketplace
	Events       *EventLog

	deployer Address
	runner   *Runner
}

func New(db *gorm.DB, opts Options) (*Ledger, error) {
	if err := opts.Params.validate(); err != nil {
		return nil, fmt.Errorf("economy params: %w", err)
	}

	addrs := map[string]Address{
		"deployer":    opts.Deployer,
		"token":       opts.TokenAddress,
		"certificate": opts.CertificateAddress,
		"market":      opts.MarketAddress,
	}
	seen := make(map[Address]string, len(addrs))
	for name, addr := range addrs {
		if addr.IsZero() {
			return nil, fmt.Errorf("%s address is required", name)
		}
		if other, ok := seen[addr]; ok {
			return nil, fmt.Errorf("%s and %s share address %s", name, other, addr)
		}
		seen[addr] = name
	}

	runner := newRunner(db)
	caps := &Capabilities{runner: runner}
	caps.address = func(scope Scope) Address {
		switch scope {
		case ScopeToken:
			return opts.TokenAddress
		case ScopeCertificate:
			return opts.CertificateAddress
		case ScopeMarket:
			return opts.MarketAddress
		}
		return ZeroAddress
	}

	vault := &NativeVault{runner: runner, caps: caps, self: ZeroAddress}
	payout := opts.Payout
	if payout == nil {
		payout = vault
	}

	token := &TokenEconomy{
		address: opts.TokenAddress,
		params:  opts.Params,
		runner:  runner,
		caps:    caps,
		vault:   vault,
		payout:  payout,
	}
	registry := &CertificateRegistry{address: opts.CertificateAddress, runner: runner, caps: caps}
	market := &CourseMarketplace{
		address:  opts.MarketAddress,
		runner:   runner,
		caps:     caps,
		token:    token,
		registry: registry,
		oracle:   opts.Oracle,
		opts:     opts.Market,
	}

	return &Ledger{
		Caps:         caps,
		Vault:        vault,
		Token:        token,
		Certificates: registry,
		Market:       market,
		Events:       &EventLog{db: db},
		deployer:     opts.Deployer,
		runner:       runner,
	}, nil
}

// Bootstrap creates the token state and hands the deployer its admin capabilities.
// The marketplace is made a certificate minter. Running it again changes nothing.
func (l *Ledger) Bootstrap(ctx context.Context) error {
	grants := []struct {
		scope   Scope
		role    Role
		account Address
	}{
		{ScopeToken, RoleOwner, l.deployer},
		{ScopeCertificate, RoleAdmin, l.deployer},
		{ScopeMarket, RoleAdmin, l.deployer},
		{ScopeVault, RoleAdmin, l.deployer},
		{ScopeCertificate, RoleMinter, l.Market.address},
	}

	err := l.runner.Run(ctx, func(tx *Tx) error {
		if _, err := l.Token.state(tx); err != nil {
			return err
		}
		for _, g := range grants {
			if err := l.Caps.grant(tx, g.scope, g.role, g.account, l.deployer); err != nil {
				return fmt.Errorf("grant %s %s: %w", g.scope, g.role, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Printf("[LEDGER] Bootstrapped for deployer %s", l.deployer)
	return nil
}

func (l *Ledger) Deployer() Address {
	return l.deployer
}

// Subscribe registers fn for every committed event.
func (l *Ledger) Subscribe(fn func(models.LedgerEvent)) {
	l.runner.Subscribe(fn)
}

// HistoryFilter narrows a balance history query. An empty Asset matches both.
type HistoryFilter struct {
	Account Address
	Asset   models.Asset
	Offset  int
	Limit   int
}

// History returns the balance movements of an account, newest first.
func (l *Ledger) History(ctx context.Context, f HistoryFilter) ([]models.LedgerTransaction, int64, error) {
	if f.Account.IsZero() {
		return nil, 0, ErrInvalidAddress
	}

	query := l.runner.db.WithContext(ctx).Model(&models.LedgerTransaction{}).Where("account = ?", string(f.Account))
	if f.Asset != "" {
		query = query.Where("asset = ?", f.Asset)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}

	var rows []models.LedgerTransaction
	err := query.Order("id DESC").Offset(f.Offset).Limit(limit).Find(&rows).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, total, nil
	}
	return rows, total, err
}
