package vaultValidator

import (
	"yideng/validators"

	"github.com/gofiber/fiber/v2"
)

type DepositRequest struct {
	To   string `json:"to" validate:"required,eth_addr"`
	Wei  string `json:"wei" validate:"required,numeric"`
	Memo string `json:"memo" validate:"max=255"`
}

type WithdrawRequest struct {
	Wei string `json:"wei" validate:"required,numeric"`
}

// Deposit validates an operator crediting native currency
func Deposit() fiber.Handler {
	return validators.Body[DepositRequest]("validatedDeposit")
}

func Withdraw() fiber.Handler {
	return validators.Body[WithdrawRequest]("validatedWithdraw")
}
