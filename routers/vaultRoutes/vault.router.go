package vaultRoutes

import (
	vaultController "yideng/controllers/vault"
	"yideng/ledger"
	"yideng/middleware"
	"yideng/validators"
	vaultValidator "yideng/validators/vault"

	"github.com/gofiber/fiber/v2"
)

func SetupVaultRoutes(app *fiber.App, l *ledger.Ledger) {
	h := vaultController.New(l)
	vaultGroup := app.Group("/vault")

	vaultGroup.Get("/balance/:address", h.GetBalance)
	vaultGroup.Get("/history", middleware.JWTMiddleware, validators.Paginate(), h.GetHistory)
	vaultGroup.Post("/withdraw", middleware.JWTMiddleware, vaultValidator.Withdraw(), h.Withdraw)

	// Admin routes
	vaultGroup.Post("/deposit", middleware.JWTMiddleware, vaultValidator.Deposit(), h.Deposit)
}
