package certificateRoutes

import (
	certificateController "yideng/controllers/certificate"
	"yideng/ledger"
	"yideng/middleware"
	certificateValidator "yideng/validators/certificate"

	"github.com/gofiber/fiber/v2"
)

func SetupCertificateRoutes(app *fiber.App, l *ledger.Ledger) {
	h := certificateController.New(l)
	certGroup := app.Group("/certificate")

	// Minter management, restricted to certificate admins
	certGroup.Get("/minters", h.GetMinters)
	certGroup.Post("/minters", middleware.JWTMiddleware, certificateValidator.GrantMinter(), h.GrantMinter)
	certGroup.Delete("/minters/:address", middleware.JWTMiddleware, h.RevokeMinter)

	certGroup.Post("/mint", middleware.JWTMiddleware, certificateValidator.Mint(), h.Mint)
	certGroup.Get("/holder/:address/:courseId", h.GetHolderCertificates)
	certGroup.Get("/:tokenId", h.GetCertificate)
	certGroup.Post("/:tokenId/transfer", middleware.JWTMiddleware, certificateValidator.Transfer(), h.Transfer)
}
