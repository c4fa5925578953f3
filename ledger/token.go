package ledger

import (
	"context"
	"errors"
	"fmt"
	"math"

	"yideng/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UnlimitedAllowance is stored for approvals at or above it and is never decremented.
const UnlimitedAllowance uint64 = math.MaxInt64

// EconomyParams are the token constants. They are written to the token state on first
// use and the stored values win from then on.
type EconomyParams struct {
	Name          string
	Symbol        string
	TokensPerUnit uint64
	MaxSupply     uint64
	// wei in one native currency unit
	WeiPerUnit decimal.Decimal

	TeamPercent      uint64
	MarketingPercent uint64
	CommunityPercent uint64
}

func DefaultEconomyParams() EconomyParams {
	return EconomyParams{
		Name:             "YiDeng Token",
		Symbol:           "YD",
		TokensPerUnit:    1000,
		MaxSupply:        1250000,
		WeiPerUnit:       decimal.New(1, 18),
		TeamPercent:      20,
		MarketingPercent: 10,
		CommunityPercent: 10,
	}
}

func (p EconomyParams) validate() error {
	switch {
	case p.TokensPerUnit == 0:
		return errors.New("tokens per unit must be positive")
	case p.MaxSupply == 0 || p.MaxSupply > math.MaxInt64:
		return fmt.Errorf("max supply must be in (0, %d]", uint64(math.MaxInt64))
	case !p.WeiPerUnit.IsPositive():
		return errors.New("wei per unit must be positive")
	case p.TeamPercent+p.MarketingPercent+p.CommunityPercent > 100:
		return errors.New("distribution shares exceed 100 percent")
	}
	return nil
}

// TokenEconomy is the fungible token ledger with fixed-rate issuance against a
// native currency reserve.
type TokenEconomy struct {
	address Address
	params  EconomyParams
	runner  *Runner
	caps    *Capabilities
	vault   *NativeVault
	payout  Payout
}

func (t *TokenEconomy) Address() Address {
	return t.address
}

// Info returns the current supply accounting.
func (t *TokenEconomy) Info(ctx context.Context) (models.TokenState, error) {
	var st models.TokenState
	err := t.runner.db.WithContext(ctx).Where("contract = ?", string(t.address)).First(&st).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return t.freshState(), nil
	}
	return st, err
}

func (t *TokenEconomy) BalanceOf(ctx context.Context, holder Address) (uint64, error) {
	return tokenBalance(t.runner.db.WithContext(ctx), holder)
}

func (t *TokenEconomy) Allowance(ctx context.Context, owner, spender Address) (uint64, error) {
	return allowance(t.runner.db.WithContext(ctx), owner, spender)
}

// Quote returns the tokens issued for wei at the stored rate.
func (t *TokenEconomy) Quote(ctx context.Context, wei decimal.Decimal) (uint64, error) {
	st, err := t.Info(ctx)
	if err != nil {
		return 0, err
	}
	return t.tokensFor(wei, st.TokensPerUnit)
}

// DistributeInitial credits the team, marketing and community shares of the max
// supply. It succeeds once.
func (t *TokenEconomy) DistributeInitial(ctx context.Context, caller, team, marketing, community Address) error {
	return t.runner.Run(ctx, func(tx *Tx) error {
		if err := t.caps.require(tx, ScopeToken, RoleOwner, caller); err != nil {
			return err
		}
		if team.IsZero() || marketing.IsZero() || community.IsZero() {
			return ErrInvalidHolder
		}

		st, err := t.state(tx)
		if err != nil {
			return err
		}
		if st.Distributed {
			return ErrDistributionDone
		}

		shares := []struct {
			to      Address
			percent uint64
		}{
			{team, t.params.TeamPercent},
			{marketing, t.params.MarketingPercent},
			{community, t.params.CommunityPercent},
		}
		for _, share := range shares {
			amount, err := mulU64(st.MaxSupply, share.percent)
			if err != nil {
				return err
			}
			amount /= 100
			if err := t.mint(tx, st, share.to, amount, tokenMove{
				typ:  models.TransactionTypeDistribution,
				memo: "Initial distribution",
			}); err != nil {
				return err
			}
		}

		st.Distributed = true
		if err := t.saveState(tx, st); err != nil {
			return err
		}
		return tx.Emit(t.address, EventInitialDistribution, InitialDistribution{
			Team: team, Marketing: marketing, Community: community,
		})
	})
}

// BuyWithNative issues tokens for wei taken from the payer's native balance into the
// reserve. Requests that would pass the max supply are rejected whole.
func (t *TokenEconomy) BuyWithNative(ctx context.Context, payer Address, wei decimal.Decimal) (uint64, error) {
	if payer.IsZero() {
		return 0, ErrInvalidHolder
	}

	var issued uint64
	err := t.runner.Run(ctx, func(tx *Tx) error {
		st, err := t.state(tx)
		if err != nil {
			return err
		}
		tokens, err := t.tokensFor(wei, st.TokensPerUnit)
		if err != nil {
			return err
		}
		if err := checkSupply(st, tokens); err != nil {
			return err
		}

		if err := t.vault.move(tx, payer, t.address, wei, models.TransactionTypeTokenPurchase, "Token purchase"); err != nil {
			return err
		}
		st.Reserve = st.Reserve.Add(wei)

		if err := t.mint(tx, st, payer, tokens, tokenMove{
			typ:          models.TransactionTypeTokenPurchase,
			counterparty: t.address,
			memo:         "Bought with native currency",
		}); err != nil {
			return err
		}
		if err := t.saveState(tx, st); err != nil {
			return err
		}

		issued = tokens
		return tx.Emit(t.address, EventTokensPurchased, TokensPurchased{
			Buyer: payer, EthAmount: wei, TokenAmount: tokens,
		})
	})
	if err != nil {
		return 0, err
	}
	return issued, nil
}

// Redeem burns tokens from the holder and pays their fixed-rate value out of the
// reserve. Balances and reserve are updated before the payout is issued.
func (t *TokenEconomy) Redeem(ctx context.Context, holder Address, tokens uint64) (decimal.Decimal, error) {
	if holder.IsZero() {
		return decimal.Zero, ErrInvalidHolder
	}
	if tokens == 0 {
		return decimal.Zero, ErrInvalidAmount
	}

	var paid decimal.Decimal
	err := t.runner.Run(ctx, func(tx *Tx) error {
		st, err := t.state(tx)
		if err != nil {
			return err
		}
		balance, err := tokenBalance(tx.db, holder)
		if err != nil {
			return err
		}
		if tokens > balance {
			return ErrInsufficientBalance
		}

		wei := t.weiFor(tokens, st.TokensPerUnit)
		if st.Reserve.LessThan(wei) {
			return ErrInsufficientReserve
		}

		if err := t.debit(tx, holder, tokens, tokenMove{
			typ:          models.TransactionTypeTokenSale,
			counterparty: t.address,
			memo:         "Sold for native currency",
		}); err != nil {
			return err
		}
		if st.TotalSupply, err = subU64(st.TotalSupply, tokens); err != nil {
			return err
		}
		st.Reserve = st.Reserve.Sub(wei)
		if err := t.saveState(tx, st); err != nil {
			return err
		}
		if err := tx.Emit(t.address, EventTokensSold, TokensSold{
			Seller: holder, TokenAmount: tokens, EthAmount: wei,
		}); err != nil {
			return err
		}

		paid = wei
		return t.runner.interact(tx, func() error {
			return t.payout.Pay(tx, t.address, holder, wei)
		})
	})
	if err != nil {
		return decimal.Zero, err
	}
	return paid, nil
}

func (t *TokenEconomy) Transfer(ctx context.Context, from, to Address, amount uint64) error {
	return t.runner.Run(ctx, func(tx *Tx) error {
		return t.transfer(tx, from, to, amount, models.TransactionTypeTransferOut, models.TransactionTypeTransferIn, "")
	})
}

// Approve sets the amount spender may move from owner's balance.
func (t *TokenEconomy) Approve(ctx context.Context, owner, spender Address, amount uint64) error {
	if owner.IsZero() || spender.IsZero() {
		return ErrInvalidAddress
	}
	if amount > UnlimitedAllowance {
		amount = UnlimitedAllowance
	}

	return t.runner.Run(ctx, func(tx *Tx) error {
		if err := saveAllowance(tx.db, owner, spender, amount); err != nil {
			return err
		}
		return tx.Emit(t.address, EventApproval, TokenApproval{Owner: owner, Spender: spender, Value: amount})
	})
}

// TransferFrom moves amount from owner to recipient against spender's allowance.
func (t *TokenEconomy) TransferFrom(ctx context.Context, spender, owner, to Address, amount uint64) error {
	return t.runner.Run(ctx, func(tx *Tx) error {
		return t.transferFrom(tx, spender, owner, to, amount, "")
	})
}

// transferFrom spends spender's allowance. A non-empty ref marks the move as payment
// for that course.
func (t *TokenEconomy) transferFrom(tx *Tx, spender, owner, to Address, amount uint64, ref string) error {
	if err := t.spendAllowance(tx, owner, spender, amount); err != nil {
		return err
	}
	outType, inType := models.TransactionTypeTransferOut, models.TransactionTypeTransferIn
	if ref != "" {
		outType, inType = models.TransactionTypeCoursePurchase, models.TransactionTypeCoursePurchase
	}
	return t.transfer(tx, owner, to, amount, outType, inType, ref)
}

func (t *TokenEconomy) transfer(tx *Tx, from, to Address, amount uint64, outType, inType models.TransactionType, ref string) error {
	if from.IsZero() || to.IsZero() {
		return ErrInvalidHolder
	}

	if err := t.debit(tx, from, amount, tokenMove{typ: outType, counterparty: to, memo: "Token transfer", ref: ref}); err != nil {
		return err
	}
	if err := t.credit(tx, to, amount, tokenMove{typ: inType, counterparty: from, memo: "Token transfer", ref: ref}); err != nil {
		return err
	}
	return tx.Emit(t.address, EventTransfer, TokenTransfer{From: from, To: to, Value: amount})
}

func (t *TokenEconomy) spendAllowance(tx *Tx, owner, spender Address, amount uint64) error {
	allowed, err := allowance(tx.db, owner, spender)
	if err != nil {
		return err
	}
	if allowed < amount {
		return ErrInsufficientAllow
	}
	if allowed == UnlimitedAllowance {
		return nil
	}
	return saveAllowance(tx.db, owner, spender, allowed-amount)
}

// mint credits new tokens under the supply cap. The caller saves st.
func (t *TokenEconomy) mint(tx *Tx, st *models.TokenState, to Address, amount uint64, mv tokenMove) error {
	if err := checkSupply(st, amount); err != nil {
		return err
	}
	st.TotalSupply += amount
	if err := t.credit(tx, to, amount, mv); err != nil {
		return err
	}
	return tx.Emit(t.address, EventTransfer, TokenTransfer{From: ZeroAddress, To: to, Value: amount})
}

func checkSupply(st *models.TokenState, amount uint64) error {
	next, err := addU64(st.TotalSupply, amount)
	if err != nil || next > st.MaxSupply {
		return ErrExceedsMaxSupply
	}
	return nil
}

// tokensFor converts wei to tokens. The conversion must be exact.
func (t *TokenEconomy) tokensFor(wei decimal.Decimal, rate uint64) (uint64, error) {
	if !wei.IsPositive() || !wei.Equal(wei.Truncate(0)) {
		return 0, ErrInvalidAmount
	}
	q, r := wei.Mul(decimalFromUint64(rate)).QuoRem(t.params.WeiPerUnit, 0)
	if !r.IsZero() || q.IsZero() {
		return 0, ErrInvalidAmount
	}
	return uint64FromDecimal(q)
}

func (t *TokenEconomy) weiFor(tokens uint64, rate uint64) decimal.Decimal {
	q, _ := decimalFromUint64(tokens).Mul(t.params.WeiPerUnit).QuoRem(decimalFromUint64(rate), 0)
	return q
}

type tokenMove struct {
	typ          models.TransactionType
	counterparty Address
	memo         string
	ref          string
}

func (t *TokenEconomy) credit(tx *Tx, addr Address, amount uint64, mv tokenMove) error {
	before, err := tokenBalance(tx.db, addr)
	if err != nil {
		return err
	}
	after, err := addU64(before, amount)
	if err != nil {
		return err
	}
	if after > math.MaxInt64 {
		return ErrArithmeticOverflow
	}
	if err := saveTokenBalance(tx.db, addr, after); err != nil {
		return err
	}
	return t.record(tx, addr, decimalFromUint64(amount), before, after, mv)
}

func (t *TokenEconomy) debit(tx *Tx, addr Address, amount uint64, mv tokenMove) error {
	before, err := tokenBalance(tx.db, addr)
	if err != nil {
		return err
	}
	if amount > before {
		return ErrInsufficientBalance
	}
	after := before - amount
	if err := saveTokenBalance(tx.db, addr, after); err != nil {
		return err
	}
	return t.record(tx, addr, decimalFromUint64(amount).Neg(), before, after, mv)
}

func (t *TokenEconomy) record(tx *Tx, addr Address, amount decimal.Decimal, before, after uint64, mv tokenMove) error {
	entry := models.LedgerTransaction{
		Account:         string(addr),
		Asset:           models.AssetToken,
		TransactionType: mv.typ,
		Amount:          amount,
		BalanceBefore:   decimalFromUint64(before),
		BalanceAfter:    decimalFromUint64(after),
		Counterparty:    string(mv.counterparty),
		Description:     mv.memo,
	}
	if mv.ref != "" {
		entry.ReferenceType = "course"
		entry.ReferenceID = mv.ref
	}
	return recordMovement(tx, entry)
}

func (t *TokenEconomy) freshState() models.TokenState {
	return models.TokenState{
		Contract:      string(t.address),
		Name:          t.params.Name,
		Symbol:        t.params.Symbol,
		MaxSupply:     t.params.MaxSupply,
		TokensPerUnit: t.params.TokensPerUnit,
		Reserve:       decimal.Zero,
	}
}

// state loads the token's singleton row, creating it on first use.
func (t *TokenEconomy) state(tx *Tx) (*models.TokenState, error) {
	var st models.TokenState
	err := tx.db.Where("contract = ?", string(t.address)).First(&st).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		st = t.freshState()
		if err := tx.db.Create(&st).Error; err != nil {
			return nil, fmt.Errorf("init token state: %w", err)
		}
		return &st, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read token state: %w", err)
	}
	return &st, nil
}

func (t *TokenEconomy) saveState(tx *Tx, st *models.TokenState) error {
	if err := tx.db.Save(st).Error; err != nil {
		return fmt.Errorf("write token state: %w", err)
	}
	return nil
}

func tokenBalance(db *gorm.DB, holder Address) (uint64, error) {
	var row models.TokenBalance
	err := db.Where("holder = ?", string(holder)).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read token balance: %w", err)
	}
	return row.Balance, nil
}

func saveTokenBalance(db *gorm.DB, holder Address, balance uint64) error {
	row := models.TokenBalance{Holder: string(holder), Balance: balance}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "holder"}},
		DoUpdates: clause.AssignmentColumns([]string{"balance", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("write token balance: %w", err)
	}
	return nil
}

func allowance(db *gorm.DB, owner, spender Address) (uint64, error) {
	var row models.TokenAllowance
	err := db.Where("owner = ? AND spender = ?", string(owner), string(spender)).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read allowance: %w", err)
	}
	return row.Amount, nil
}

func saveAllowance(db *gorm.DB, owner, spender Address, amount uint64) error {
	row := models.TokenAllowance{Owner: string(owner), Spender: string(spender), Amount: amount}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner"}, {Name: "spender"}},
		DoUpdates: clause.AssignmentColumns([]string{"amount", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("write allowance: %w", err)
	}
	return nil
}
