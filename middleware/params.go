package middleware

import (
	"strconv"

	"yideng/ledger"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// AddressParam reads a route parameter as a ledger address.
func AddressParam(c *fiber.Ctx, name string) (ledger.Address, error) {
	return ledger.ParseAddress(c.Params(name))
}

// Uint64Param reads a positive route parameter such as a token id.
func Uint64Param(c *fiber.Ctx, name string) (uint64, error) {
	v, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || v == 0 {
		return 0, ledger.ErrInvalidAmount
	}
	return v, nil
}

// ParseWei reads a decimal wei amount from a request field.
func ParseWei(s string) (decimal.Decimal, error) {
	wei, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ledger.ErrInvalidAmount
	}
	return wei, nil
}
