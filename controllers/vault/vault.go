package vaultController

import (
	"log"

	"yideng/ledger"
	"yideng/middleware"
	"yideng/models"
	"yideng/validators"
	vaultValidator "yideng/validators/vault"

	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	ledger *ledger.Ledger
}

func New(l *ledger.Ledger) *Handler {
	return &Handler{ledger: l}
}

// GetBalance returns the native currency balance of an address in wei
func (h *Handler) GetBalance(c *fiber.Ctx) error {
	address, err := middleware.AddressParam(c, "address")
	if err != nil {
		return middleware.LedgerErrorResponse(c, err)
	}

	balance, err := h.ledger.Vault.BalanceOf(c.UserContext(), address)
	if err != nil {
		return middleware.LedgerErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Native balance fetched!", fiber.Map{
		"address": address,
		"wei":     balance,
	})
}

// Deposit credits native currency to an address, confirmed by a vault admin
func (h *Handler) Deposit(c *fiber.Ctx) error {
	reqData := c.Locals("validatedDeposit").(*vaultValidator.DepositRequest)

	to, err := ledger.ParseAddress(reqData.To)
	if err != nil {
		return middleware.LedgerErrorResponse(c, err)
	}
	wei, err := middleware.ParseWei(reqData.Wei)
	if err != nil {
		return middleware.LedgerErrorResponse(c, err)
	}

	if err := h.ledger.Vault.Deposit(c.UserContext(), middleware.Caller(c), to, wei, reqData.Memo); err != nil {
		return middleware.LedgerErrorResponse(c, err)
	}
	log.Printf("[VAULT] %s wei deposited to %s by %s", wei, to, middleware.Caller(c))

	balance, err := h.ledger.Vault.BalanceOf(c.UserContext(), to)
	if err != nil {
		return middleware.LedgerErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Deposit successful!", fiber.Map{
		"address": to,
		"amount":  wei,
		"balance": balance,
	})
}

func (h *Handler) Withdraw(c *fiber.Ctx) error {
	reqData := c.Locals("validatedWithdraw").(*vaultValidator.WithdrawRequest)
	caller := middleware.Caller(c)

	wei, err := middleware.ParseWei(reqData.Wei)
	if err != nil {
		return middleware.LedgerErrorResponse(c, err)
	}
	if err := h.ledger.Vault.Withdraw(c.UserContext(), caller, wei); err != nil {
		return middleware.LedgerErrorResponse(c, err)
	}

	balance, err := h.ledger.Vault.BalanceOf(c.UserContext(), caller)
	if err != nil {
		return middleware.LedgerErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Withdrawal successful!", fiber.Map{
		"address": caller,
		"amount":  wei,
		"balance": balance,
	})
}

// GetHistory lists the caller's native currency movements
func (h *Handler) GetHistory(c *fiber.Ctx) error {
	page := c.Locals("validatedPagination").(*validators.Pagination)

	rows, total, err := h.ledger.History(c.UserContext(), ledger.HistoryFilter{
		Account: middleware.Caller(c),
		Asset:   models.AssetNative,
		Offset:  page.Offset(),
		Limit:   page.Limit,
	})
	if err != nil {
		return middleware.LedgerErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Vault history fetched!", fiber.Map{
		"transactions": rows,
		"pagination": fiber.Map{
			"total": total,
			"page":  page.Page,
			"limit": page.Limit,
		},
	})
}
