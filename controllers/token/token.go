package tokenController

import (
	"log"

	"yideng/ledger"
	"yideng/middleware"
	"yideng/models"
	"yideng/validators"
	tokenValidator "yideng/validators/token"

	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	ledger *ledger.Ledger
}

func New(l *ledger.Ledger) *Handler {
	return &Handler{ledger: l}
}

// GetInfo returns the token constants and supply accounting
func (h *Handler) GetInfo(c *fiber.Ctx) error {
	info, err := h.ledger.Token.Info(c.UserContext())
	if err != nil {
		return middleware.LedgerErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Token info fetched!", fiber.Map{
		"address":       h.ledger.Token.Address(),
		"name":          info.Name,
		"symbol":        info.Symbol,
		"totalSupply":   info.TotalSupply,
		"maxSupply":     info.MaxSupply,
		"tokensPerUnit": info.TokensPerUnit,
		"reserve":       info.Reserve,
		"distributed":   info.Distributed,
	})
}

func (h *Handler) GetBalance(c *fiber.Ctx) error {
	address, err := middleware.AddressParam(c, "address")
	if err != nil {
		return middleware.LedgerErrorResponse(c, err)
	}

	balance, err := h.ledger.Token.BalanceOf(c.UserContext(), address)
	if err != nil {
		return middleware.LedgerErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Token balance fetched!", fiber.Map{
		"address": address,
		"balance": balance,
	})
}

func (h *Handler) GetAllowance(c *fiber.Ctx) error {
	owner, err := middleware.AddressParam(c, "owner")
	if err != nil {
		return middleware.LedgerErrorResponse(c, err)
	}
	spender, err := middleware.AddressParam(c, "spender")
	if err != nil {
		return middleware.LedgerErrorResponse(c, err)
	}

	allowance, err := h.ledger.Token.Allowance(c.UserContext(), owner, spender)
	if err != nil {
		return middleware.LedgerErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Allowance fetched!", fiber.Map{
		"owner":     owner,
		"spender":   spender,
		"allowance": allowance,
	})
}

// Buy issues tokens for native currency taken from the caller's vault balance
func (h *Handler) Buy(c *fiber.Ctx) error {
	reqData := c.Locals("validatedBuy").(*tokenValidator.BuyRequest)
	caller := middleware.Caller(c)

	wei, err := middleware.ParseWei(reqData.Wei)
	if err != nil {
		return middleware.LedgerErrorResponse(c, err)
	}

	tokens, err := h.ledger.Token.BuyWithNative(c.UserContext(), caller, wei)
	if err != nil {
		return middleware.LedgerErrorResponse(c, err)
	}
	log.Printf("[TOKEN] %s bought %d tokens for %s wei", caller, tokens, wei)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Tokens purchased!", fiber.Map{
		"buyer":       caller,
		"ethAmount":   wei,
		"tokenAmount": tokens,
	})
}

// Sell redeems tokens for native currency at the fixed rate
func (h *Handler) Sell(c *fiber.Ctx) error {
	reqData := c.Locals("validatedSell").(*tokenValidator.SellRequest)
	caller := middleware.Caller(c)

	paid, err := h.ledger.Token.Redeem(c.UserContext(), caller, reqData.Amount)
	if err != nil {
		return middleware.LedgerErrorResponse(c, err)
	}
	log.Printf("[TOKEN] %s sold %d tokens for %s wei", caller, reqData.Amount, paid)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Tokens sold!", fiber.Map{
		"seller":      caller,
		"tokenAmount": reqData.Amount,
		"ethAmount":   paid,
	})
}

func (h *Handler) Transfer(c *fiber.Ctx) error {
	reqData := c.Locals("validatedTransfer").(*tokenValidator.TransferRequest)

	to, err := ledger.ParseAddress(reqData.To)
	if err != nil {
		return middleware.LedgerErrorResponse(c, err)
	}
	if err := h.ledger.Token.Transfer(c.UserContext(), middleware.Caller(c), to, reqData.Amount); err != nil {
		return middleware.LedgerErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Transfer successful!", fiber.Map{
		"from":  middleware.Caller(c),
		"to":    to,
		"value": reqData.Amount,
	})
}

func (h *Handler) Approve(c *fiber.Ctx) error {
	reqData := c.Locals("validatedApprove").(*tokenValidator.ApproveRequest)

	spender, err := ledger.ParseAddress(reqData.Spender)
	if err != nil {
		return middleware.LedgerErrorResponse(c, err)
	}
	if err := h.ledger.Token.Approve(c.UserContext(), middleware.Caller(c), spender, reqData.Amount); err != nil {
		return middleware.LedgerErrorResponse(c, err)
	}

	allowance, err := h.ledger.Token.Allowance(c.UserContext(), middleware.Caller(c), spender)
	if err != nil {
		return middleware.LedgerErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Approval set!", fiber.Map{
		"owner":     middleware.Caller(c),
		"spender":   spender,
		"allowance": allowance,
	})
}

// TransferFrom moves tokens from an owner who approved the caller
func (h *Handler) TransferFrom(c *fiber.Ctx) error {
	reqData := c.Locals("validatedTransferFrom").(*tokenValidator.TransferFromRequest)

	from, err := ledger.ParseAddress(reqData.From)
	if err != nil {
		return middleware.LedgerErrorResponse(c, err)
	}
	to, err := ledger.ParseAddress(reqData.To)
	if err != nil {
		return middleware.LedgerErrorResponse(c, err)
	}

	if err := h.ledger.Token.TransferFrom(c.UserContext(), middleware.Caller(c), from, to, reqData.Amount); err != nil {
		return middleware.LedgerErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Transfer successful!", fiber.Map{
		"from":  from,
		"to":    to,
		"value": reqData.Amount,
	})
}

// Distribute performs the one-time stakeholder allocation
func (h *Handler) Distribute(c *fiber.Ctx) error {
	reqData := c.Locals("validatedDistribute").(*tokenValidator.DistributeRequest)

	var wallets [3]ledger.Address
	for i, raw := range []string{reqData.Team, reqData.Marketing, reqData.Community} {
		addr, err := ledger.ParseAddress(raw)
		if err != nil {
			return middleware.LedgerErrorResponse(c, err)
		}
		wallets[i] = addr
	}

	err := h.ledger.Token.DistributeInitial(c.UserContext(), middleware.Caller(c), wallets[0], wallets[1], wallets[2])
	if err != nil {
		return middleware.LedgerErrorResponse(c, err)
	}
	log.Printf("[TOKEN] Initial distribution done by %s", middleware.Caller(c))

	info, err := h.ledger.Token.Info(c.UserContext())
	if err != nil {
		return middleware.LedgerErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Initial distribution done!", fiber.Map{
		"team":        wallets[0],
		"marketing":   wallets[1],
		"community":   wallets[2],
		"totalSupply": info.TotalSupply,
	})
}

// GetHistory lists the caller's token balance movements
func (h *Handler) GetHistory(c *fiber.Ctx) error {
	page := c.Locals("validatedPagination").(*validators.Pagination)

	rows, total, err := h.ledger.History(c.UserContext(), ledger.HistoryFilter{
		Account: middleware.Caller(c),
		Asset:   models.AssetToken,
		Offset:  page.Offset(),
		Limit:   page.Limit,
	})
	if err != nil {
		return middleware.LedgerErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Token history fetched!", fiber.Map{
		"transactions": rows,
		"pagination": fiber.Map{
			"total": total,
			"page":  page.Page,
			"limit": page.Limit,
		},
	})
}
