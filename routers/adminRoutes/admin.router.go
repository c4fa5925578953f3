package adminRoutes

import (
	adminController "yideng/controllers/admin"
	"yideng/ledger"
	"yideng/middleware"
	"yideng/validators"
	adminValidator "yideng/validators/admin"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupAdminRoutes(app *fiber.App, l *ledger.Ledger, db *gorm.DB) {
	h := adminController.New(l, db)

	adminGroup := app.Group("/admin",
		middleware.JWTMiddleware,
		middleware.RequireRole(l.Caps, ledger.ScopeToken, ledger.RoleOwner, ledger.RoleAdmin),
	)
	adminGroup.Get("/reconcile", h.Reconcile)
	adminGroup.Get("/stats", h.GetStats)
	adminGroup.Get("/accounts", validators.Paginate(), h.AccountList)

	// Scope admins manage their own roles, so the ledger does the authorization here
	roleGroup := app.Group("/roles", middleware.JWTMiddleware)
	roleGroup.Get("", adminValidator.Members(), h.RoleMembers)
	roleGroup.Post("", adminValidator.Role(), h.GrantRole)
	roleGroup.Delete("", adminValidator.Role(), h.RevokeRole)
}
