package authRoutes

import (
	authController "yideng/controllers/auth"
	"yideng/middleware"
	"yideng/validators"
	authValidator "yideng/validators/auth"

	"github.com/gofiber/fiber/v2"
)

func SetupAuthRoutes(app *fiber.App) {
	authGroup := app.Group("/auth")

	authGroup.Post("/register", authValidator.Register(), authController.Register)
	authGroup.Post("/login", authValidator.Login(), authController.Login)
	authGroup.Get("/login/history", middleware.JWTMiddleware, validators.Paginate(), authController.LoginHistoryList)
}
