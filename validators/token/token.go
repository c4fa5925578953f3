package tokenValidator

import (
	"yideng/validators"

	"github.com/gofiber/fiber/v2"
)

// BuyRequest pays Wei, a decimal string of native currency in wei.
type BuyRequest struct {
	Wei string `json:"wei" validate:"required,numeric"`
}

type SellRequest struct {
	Amount uint64 `json:"amount" validate:"required,gt=0"`
}

type TransferRequest struct {
	To     string `json:"to" validate:"required,eth_addr"`
	Amount uint64 `json:"amount" validate:"required,gt=0"`
}

// ApproveRequest sets an allowance. Zero clears it.
type ApproveRequest struct {
	Spender string `json:"spender" validate:"required,eth_addr"`
	Amount  uint64 `json:"amount"`
}

type TransferFromRequest struct {
	From   string `json:"from" validate:"required,eth_addr"`
	To     string `json:"to" validate:"required,eth_addr"`
	Amount uint64 `json:"amount" validate:"required,gt=0"`
}

type DistributeRequest struct {
	Team      string `json:"team" validate:"required,eth_addr"`
	Marketing string `json:"marketing" validate:"required,eth_addr"`
	Community string `json:"community" validate:"required,eth_addr"`
}

func Buy() fiber.Handler {
	return validators.Body[BuyRequest]("validatedBuy")
}

func Sell() fiber.Handler {
	return validators.Body[SellRequest]("validatedSell")
}

func Transfer() fiber.Handler {
	return validators.Body[TransferRequest]("validatedTransfer")
}

func Approve() fiber.Handler {
	return validators.Body[ApproveRequest]("validatedApprove")
}

func TransferFrom() fiber.Handler {
	return validators.Body[TransferFromRequest]("validatedTransferFrom")
}

func Distribute() fiber.Handler {
	return validators.Body[DistributeRequest]("validatedDistribute")
}
