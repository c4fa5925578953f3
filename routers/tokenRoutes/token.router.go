package tokenRoutes

import (
	tokenController "yideng/controllers/token"
	"yideng/ledger"
	"yideng/middleware"
	"yideng/validators"
	tokenValidator "yideng/validators/token"

	"github.com/gofiber/fiber/v2"
)

func SetupTokenRoutes(app *fiber.App, l *ledger.Ledger) {
	h := tokenController.New(l)
	tokenGroup := app.Group("/token")

	// Public reads
	tokenGroup.Get("/info", h.GetInfo)
	tokenGroup.Get("/balance/:address", h.GetBalance)
	tokenGroup.Get("/allowance/:owner/:spender", h.GetAllowance)

	// Holder routes
	tokenGroup.Get("/history", middleware.JWTMiddleware, validators.Paginate(), h.GetHistory)
	tokenGroup.Post("/buy", middleware.JWTMiddleware, tokenValidator.Buy(), h.Buy)
	tokenGroup.Post("/sell", middleware.JWTMiddleware, tokenValidator.Sell(), h.Sell)
	tokenGroup.Post("/transfer", middleware.JWTMiddleware, tokenValidator.Transfer(), h.Transfer)
	tokenGroup.Post("/approve", middleware.JWTMiddleware, tokenValidator.Approve(), h.Approve)
	tokenGroup.Post("/transfer-from", middleware.JWTMiddleware, tokenValidator.TransferFrom(), h.TransferFrom)

	// Owner routes
	tokenGroup.Post("/distribute", middleware.JWTMiddleware, tokenValidator.Distribute(), h.Distribute)
}
