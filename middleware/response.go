package middleware

import (
	"log"

	"yideng/ledger"

	"github.com/gofiber/fiber/v2"
)

func JsonResponse(c *fiber.Ctx, statusCode int, status bool, message string, data interface{}) error {
	return c.Status(statusCode).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"data":    data,
	})
}

func ValidationErrorResponse(c *fiber.Ctx, errors map[string]string) error {
	return JsonResponse(c, fiber.StatusUnprocessableEntity, false, "Validation failed!", errors)
}

// LedgerErrorResponse reports a failed ledger operation with its stable reason.
func LedgerErrorResponse(c *fiber.Ctx, err error) error {
	status := StatusFor(err)
	if status == fiber.StatusInternalServerError {
		log.Printf("[LEDGER] %s %s failed: %v", c.Method(), c.Path(), err)
		return JsonResponse(c, status, false, "Failed to process your request!", nil)
	}
	return JsonResponse(c, status, false, ledger.Reason(err), nil)
}

// StatusFor maps a ledger error kind to an HTTP status.
func StatusFor(err error) int {
	switch ledger.KindOf(err) {
	case ledger.KindAuthorization:
		return fiber.StatusForbidden
	case ledger.KindPrecondition:
		return fiber.StatusConflict
	case ledger.KindResource:
		return fiber.StatusUnprocessableEntity
	case ledger.KindValidation:
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}
