package eventsController

import (
	"strconv"

	"yideng/ledger"
	"yideng/middleware"
	"yideng/validators"

	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	ledger *ledger.Ledger
}

func New(l *ledger.Ledger) *Handler {
	return &Handler{ledger: l}
}

// ListEvents is the feed indexers poll. Filters: name, contract, afterSeq.
func (h *Handler) ListEvents(c *fiber.Ctx) error {
	page := c.Locals("validatedPagination").(*validators.Pagination)

	filter := ledger.EventFilter{
		Name:   c.Query("name"),
		Offset: page.Offset(),
		Limit:  page.Limit,
	}
	if raw := c.Query("contract"); raw != "" {
		contract, err := ledger.ParseAddress(raw)
		if err != nil {
			return middleware.LedgerErrorResponse(c, err)
		}
		filter.Contract = contract
	}
	if raw := c.Query("afterSeq"); raw != "" {
		seq, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return middleware.ValidationErrorResponse(c, map[string]string{"afterSeq": "afterSeq must be a number!"})
		}
		filter.AfterSeq = seq
	}

	events, total, err := h.ledger.Events.List(c.UserContext(), filter)
	if err != nil {
		return middleware.LedgerErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Events fetched!", fiber.Map{
		"events": events,
		"pagination": fiber.Map{
			"total": total,
			"page":  page.Page,
			"limit": page.Limit,
		},
	})
}
