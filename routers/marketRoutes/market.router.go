package marketRoutes

import (
	marketController "yideng/controllers/market"
	"yideng/ledger"
	"yideng/middleware"
	"yideng/validators"
	marketValidator "yideng/validators/market"

	"github.com/gofiber/fiber/v2"
)

func SetupMarketRoutes(app *fiber.App, l *ledger.Ledger) {
	h := marketController.New(l)
	marketGroup := app.Group("/market")

	// Catalog
	marketGroup.Get("/courses", validators.Paginate(), h.ListCourses)
	marketGroup.Get("/courses/:courseId", h.GetCourse)
	marketGroup.Get("/has-course/:address/:courseId", h.HasCourse)

	// Holder routes
	marketGroup.Post("/purchase", middleware.JWTMiddleware, marketValidator.Purchase(), h.Purchase)
	marketGroup.Post("/verify/oracle", middleware.JWTMiddleware, marketValidator.OracleVerify(), h.OracleVerify)

	// Admin and oracle routes
	marketGroup.Post("/courses", middleware.JWTMiddleware, middleware.RequireRole(l.Caps, ledger.ScopeMarket, ledger.RoleAdmin), marketValidator.AddCourse(), h.AddCourse)
	marketGroup.Post("/verify", middleware.JWTMiddleware, marketValidator.Verify(), h.Verify)
	marketGroup.Post("/verify/batch", middleware.JWTMiddleware, marketValidator.BatchVerify(), h.BatchVerify)
}
