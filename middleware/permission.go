package middleware

import (
	"log"

	"yideng/ledger"

	"github.com/gofiber/fiber/v2"
)

// RequireRole returns a middleware that lets the request through when the caller holds
// any of roles in scope. Ledger operations check again on their own.
func RequireRole(caps *ledger.Capabilities, scope ledger.Scope, roles ...ledger.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller := Caller(c)
		if caller.IsZero() {
			return JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized: address not found", nil)
		}

		for _, role := range roles {
			ok, err := caps.Has(c.UserContext(), scope, role, caller)
			if err != nil {
				log.Printf("[AUTH] role check for %s failed: %v", caller, err)
				return JsonResponse(c, fiber.StatusInternalServerError, false, "Server error while checking permissions!", nil)
			}
			if ok {
				return c.Next()
			}
		}

		return JsonResponse(c, fiber.StatusForbidden, false, "You do not have permission to access this resource!", nil)
	}
}
