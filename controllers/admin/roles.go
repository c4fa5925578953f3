package adminController

import (
	"yideng/ledger"
	"yideng/middleware"
	"yideng/models"
	"yideng/validators"
	adminValidator "yideng/validators/admin"

	"github.com/gofiber/fiber/v2"
)

// AccountList pages through registered accounts, newest first
func (h *Handler) AccountList(c *fiber.Ctx) error {
	page := c.Locals("validatedPagination").(*validators.Pagination)

	var accounts []models.Account
	var total int64

	db := h.db.WithContext(c.UserContext())
	if err := db.Where("is_deleted = ?", false).
		Order("id DESC").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&accounts).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch account list!", nil)
	}
	db.Model(&models.Account{}).Where("is_deleted = ?", false).Count(&total)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Account List.", fiber.Map{
		"accounts": accounts,
		"pagination": fiber.Map{
			"total": total,
			"page":  page.Page,
			"limit": page.Limit,
		},
	})
}

// GrantRole gives an address a role; the caller must administer the scope
func (h *Handler) GrantRole(c *fiber.Ctx) error {
	reqData := c.Locals("validatedRole").(*adminValidator.RoleRequest)

	account, err := ledger.ParseAddress(reqData.Address)
	if err != nil {
		return middleware.LedgerErrorResponse(c, err)
	}
	scope, role := ledger.Scope(reqData.Scope), ledger.Role(reqData.Role)
	if err := h.ledger.Caps.Grant(c.UserContext(), middleware.Caller(c), scope, role, account); err != nil {
		return middleware.LedgerErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Role granted!", fiber.Map{
		"scope":   scope,
		"role":    role,
		"address": account,
	})
}

func (h *Handler) RevokeRole(c *fiber.Ctx) error {
	reqData := c.Locals("validatedRole").(*adminValidator.RoleRequest)

	account, err := ledger.ParseAddress(reqData.Address)
	if err != nil {
		return middleware.LedgerErrorResponse(c, err)
	}
	scope, role := ledger.Scope(reqData.Scope), ledger.Role(reqData.Role)
	if err := h.ledger.Caps.Revoke(c.UserContext(), middleware.Caller(c), scope, role, account); err != nil {
		return middleware.LedgerErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Role revoked!", fiber.Map{
		"scope":   scope,
		"role":    role,
		"address": account,
	})
}

func (h *Handler) RoleMembers(c *fiber.Ctx) error {
	reqData := c.Locals("validatedRoleQuery").(*adminValidator.RoleQuery)

	members, err := h.ledger.Caps.Members(c.UserContext(), ledger.Scope(reqData.Scope), ledger.Role(reqData.Role))
	if err != nil {
		return middleware.LedgerErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Role members fetched!", members)
}
