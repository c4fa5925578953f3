package routers

import (
	"yideng/ledger"
	"yideng/routers/adminRoutes"
	"yideng/routers/authRoutes"
	"yideng/routers/certificateRoutes"
	"yideng/routers/eventRoutes"
	"yideng/routers/marketRoutes"
	"yideng/routers/tokenRoutes"
	"yideng/routers/vaultRoutes"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"
)

// NewApp builds the HTTP application around a bootstrapped ledger.
func NewApp(l *ledger.Ledger, db *gorm.DB) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: "yideng",
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE",        // Allowed HTTP methods
		AllowHeaders: "Content-Type,Authorization", // Allowed headers
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": true, "message": "ok"})
	})

	authRoutes.SetupAuthRoutes(app)
	tokenRoutes.SetupTokenRoutes(app, l)
	certificateRoutes.SetupCertificateRoutes(app, l)
	marketRoutes.SetupMarketRoutes(app, l)
	vaultRoutes.SetupVaultRoutes(app, l)
	eventRoutes.SetupEventRoutes(app, l)
	adminRoutes.SetupAdminRoutes(app, l, db)

	return app
}
