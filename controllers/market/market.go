package marketController

import (
	"log"

	"yideng/ledger"
	"yideng/middleware"
	"yideng/validators"
	marketValidator "yideng/validators/market"

	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	ledger *ledger.Ledger
}

func New(l *ledger.Ledger) *Handler {
	return &Handler{ledger: l}
}

func (h *Handler) ListCourses(c *fiber.Ctx) error {
	page := c.Locals("validatedPagination").(*validators.Pagination)

	courses, total, err := h.ledger.Market.Courses(c.UserContext(), page.Offset(), page.Limit)
	if err != nil {
		return middleware.LedgerErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched!", fiber.Map{
		"courses": courses,
		"pagination": fiber.Map{
			"total": total,
			"page":  page.Page,
			"limit": page.Limit,
		},
	})
}

// GetCourse looks a course up by its external id
func (h *Handler) GetCourse(c *fiber.Ctx) error {
	course, err := h.ledger.Market.CourseByExternalID(c.UserContext(), c.Params("courseId"))
	if err != nil {
		return middleware.LedgerErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course fetched!", course)
}

func (h *Handler) HasCourse(c *fiber.Ctx) error {
	holder, err := middleware.AddressParam(c, "address")
	if err != nil {
		return middleware.LedgerErrorResponse(c, err)
	}
	courseID := c.Params("courseId")

	purchase, err := h.ledger.Market.Purchase(c.UserContext(), holder, courseID)
	if err != nil && ledger.KindOf(err) == ledger.KindInternal {
		return middleware.LedgerErrorResponse(c, err)
	}

	data := fiber.Map{
		"holder":       holder,
		"web2CourseId": courseID,
		"hasCourse":    purchase != nil,
		"status":       "NOT_PURCHASED",
	}
	if purchase != nil {
		data["status"] = purchase.Status
		data["completions"] = purchase.Completions
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Purchase status fetched!", data)
}

// AddCourse registers a course. The caller becomes its creator and receives its sales.
func (h *Handler) AddCourse(c *fiber.Ctx) error {
	reqData := c.Locals("validatedCourse").(*marketValidator.AddCourseRequest)

	course, err := h.ledger.Market.AddCourse(c.UserContext(), middleware.Caller(c), reqData.CourseID, reqData.Name, reqData.Price)
	if err != nil {
		return middleware.LedgerErrorResponse(c, err)
	}
	log.Printf("[MARKET] Course %d (%s) added by %s", course.ID, course.ExternalID, course.Creator)

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Course added!", course)
}

// Purchase buys a course with tokens the caller approved for the marketplace
func (h *Handler) Purchase(c *fiber.Ctx) error {
	reqData := c.Locals("validatedPurchase").(*marketValidator.PurchaseRequest)

	purchase, err := h.ledger.Market.PurchaseCourse(c.UserContext(), middleware.Caller(c), reqData.CourseID)
	if err != nil {
		return middleware.LedgerErrorResponse(c, err)
	}
	log.Printf("[MARKET] %s purchased %s", purchase.Holder, purchase.ExternalCourseID)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course purchased!", purchase)
}

func (h *Handler) Verify(c *fiber.Ctx) error {
	reqData := c.Locals("validatedVerify").(*marketValidator.VerifyRequest)

	student, err := ledger.ParseAddress(reqData.Student)
	if err != nil {
		return middleware.LedgerErrorResponse(c, err)
	}

	tokenID, err := h.ledger.Market.VerifyCompletion(c.UserContext(), middleware.Caller(c), student, reqData.CourseID)
	if err != nil {
		return middleware.LedgerErrorResponse(c, err)
	}
	log.Printf("[MARKET] %s completed %s, certificate #%d", student, reqData.CourseID, tokenID)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course completion verified!", fiber.Map{
		"student":       student,
		"web2CourseId":  reqData.CourseID,
		"certificateId": tokenID,
	})
}

type batchEntry struct {
	Student       ledger.Address `json:"student"`
	CertificateID uint64         `json:"certificateId,omitempty"`
	Success       bool           `json:"success"`
	Error         string         `json:"error,omitempty"`
}

// BatchVerify verifies each student on its own; failures are reported per entry
func (h *Handler) BatchVerify(c *fiber.Ctx) error {
	reqData := c.Locals("validatedBatchVerify").(*marketValidator.BatchVerifyRequest)

	students := make([]ledger.Address, len(reqData.Students))
	for i, raw := range reqData.Students {
		addr, err := ledger.ParseAddress(raw)
		if err != nil {
			return middleware.LedgerErrorResponse(c, err)
		}
		students[i] = addr
	}

	results, err := h.ledger.Market.BatchVerifyCompletion(c.UserContext(), middleware.Caller(c), students, reqData.CourseID)
	if err != nil {
		return middleware.LedgerErrorResponse(c, err)
	}

	entries := make([]batchEntry, len(results))
	verified := 0
	for i, r := range results {
		entries[i] = batchEntry{Student: r.Holder, CertificateID: r.CertificateID, Success: r.Err == nil}
		if r.Err != nil {
			entries[i].Error = ledger.Reason(r.Err)
			continue
		}
		verified++
	}
	log.Printf("[MARKET] Batch verify %s: %d of %d verified", reqData.CourseID, verified, len(entries))

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Batch verification processed!", fiber.Map{
		"web2CourseId": reqData.CourseID,
		"verified":     verified,
		"failed":       len(entries) - verified,
		"results":      entries,
	})
}

// OracleVerify lets the caller claim completion, confirmed by the completion oracle
func (h *Handler) OracleVerify(c *fiber.Ctx) error {
	reqData := c.Locals("validatedClaim").(*marketValidator.PurchaseRequest)
	caller := middleware.Caller(c)

	tokenID, err := h.ledger.Market.VerifyWithOracle(c.UserContext(), caller, reqData.CourseID)
	if err != nil {
		if ledger.KindOf(err) == ledger.KindInternal {
			log.Printf("[MARKET] Oracle check for %s on %s failed: %v", caller, reqData.CourseID, err)
			return middleware.JsonResponse(c, fiber.StatusBadGateway, false, "Completion oracle unavailable!", nil)
		}
		return middleware.LedgerErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course completion verified!", fiber.Map{
		"student":       caller,
		"web2CourseId":  reqData.CourseID,
		"certificateId": tokenID,
	})
}
