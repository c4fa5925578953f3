package ledger

import (
	"math/big"
	"math/bits"

	"github.com/shopspring/decimal"
)

func addU64(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, ErrArithmeticOverflow
	}
	return sum, nil
}

func subU64(a, b uint64) (uint64, error) {
	diff, borrow := bits.Sub64(a, b, 0)
	if borrow != 0 {
		return 0, ErrArithmeticOverflow
	}
	return diff, nil
}

func mulU64(a, b uint64) (uint64, error) {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return 0, ErrArithmeticOverflow
	}
	return lo, nil
}

func decimalFromUint64(v uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(v), 0)
}

// uint64FromDecimal converts a non-negative whole decimal.
func uint64FromDecimal(d decimal.Decimal) (uint64, error) {
	if d.IsNegative() || !d.Equal(d.Truncate(0)) {
		return 0, ErrInvalidAmount
	}
	b := d.BigInt()
	if !b.IsUint64() {
		return 0, ErrArithmeticOverflow
	}
	return b.Uint64(), nil
}
