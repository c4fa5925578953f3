package eventRoutes

import (
	eventsController "yideng/controllers/events"
	"yideng/ledger"
	"yideng/validators"

	"github.com/gofiber/fiber/v2"
)

func SetupEventRoutes(app *fiber.App, l *ledger.Ledger) {
	h := eventsController.New(l)
	app.Get("/events", validators.Paginate(), h.ListEvents)
}
