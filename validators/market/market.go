package marketValidator

import (
	"yideng/validators"

	"github.com/gofiber/fiber/v2"
)

type AddCourseRequest struct {
	CourseID string `json:"web2CourseId" validate:"required,max=100"`
	Name     string `json:"name" validate:"required,max=255"`
	Price    uint64 `json:"price"`
}

type PurchaseRequest struct {
	CourseID string `json:"web2CourseId" validate:"required,max=100"`
}

type VerifyRequest struct {
	Student  string `json:"student" validate:"required,eth_addr"`
	CourseID string `json:"web2CourseId" validate:"required,max=100"`
}

type BatchVerifyRequest struct {
	Students []string `json:"students" validate:"required,min=1,max=100,dive,eth_addr"`
	CourseID string   `json:"web2CourseId" validate:"required,max=100"`
}

func AddCourse() fiber.Handler {
	return validators.Body[AddCourseRequest]("validatedCourse")
}

func Purchase() fiber.Handler {
	return validators.Body[PurchaseRequest]("validatedPurchase")
}

func Verify() fiber.Handler {
	return validators.Body[VerifyRequest]("validatedVerify")
}

func BatchVerify() fiber.Handler {
	return validators.Body[BatchVerifyRequest]("validatedBatchVerify")
}

// OracleVerify validates a holder's own completion claim.
func OracleVerify() fiber.Handler {
	return validators.Body[PurchaseRequest]("validatedClaim")
}
