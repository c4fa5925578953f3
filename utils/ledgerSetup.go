package utils

import (
	"context"
	"fmt"
	"log"

	"yideng/config"
	"yideng/ledger"

	"gorm.io/gorm"
)

// NewLedger builds the ledger from configuration and runs its bootstrap.
func NewLedger(ctx context.Context, db *gorm.DB, cfg *config.Config) (*ledger.Ledger, error) {
	opts := ledger.Options{
		Params: ledger.DefaultEconomyParams(),
		Market: ledger.MarketOptions{
			AllowReissue:    cfg.AllowCertificateReissue,
			MetadataBaseURL: cfg.MetadataBaseURL,
		},
	}
	opts.Params.TokensPerUnit = cfg.TokensPerUnit
	opts.Params.MaxSupply = cfg.MaxSupply

	addrs := []struct {
		key string
		raw string
		dst *ledger.Address
	}{
		{"DEPLOYER_ADDRESS", cfg.DeployerAddress, &opts.Deployer},
		{"TOKEN_ADDRESS", cfg.TokenAddress, &opts.TokenAddress},
		{"CERTIFICATE_ADDRESS", cfg.CertificateAddress, &opts.CertificateAddress},
		{"MARKET_ADDRESS", cfg.MarketAddress, &opts.MarketAddress},
	}
	for _, a := range addrs {
		parsed, err := ledger.ParseAddress(a.raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", a.key, err)
		}
		*a.dst = parsed
	}

	if cfg.CompletionOracleURL != "" {
		opts.Oracle = NewCompletionOracleClient(cfg.CompletionOracleURL)
		log.Printf("[LEDGER] Completion oracle at %s", cfg.CompletionOracleURL)
	}

	l, err := ledger.New(db, opts)
	if err != nil {
		return nil, err
	}
	if err := l.Bootstrap(ctx); err != nil {
		return nil, fmt.Errorf("bootstrap ledger: %w", err)
	}
	return l, nil
}
