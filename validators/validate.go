package validators

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"yideng/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// report fields by their json names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Struct validates req and returns the failures keyed by field.
func Struct(req any) map[string]string {
	errs := make(map[string]string)

	err := validate.Struct(req)
	if err == nil {
		return errs
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		errs["body"] = "Invalid request body!"
		return errs
	}
	for _, fe := range fieldErrs {
		errs[fieldKey(fe)] = message(fe)
	}
	return errs
}

func fieldKey(fe validator.FieldError) string {
	// drop the struct name prefix, keep indexes for list elements
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required!", fe.Field())
	case "eth_addr":
		return "Invalid address!"
	case "numeric":
		return fmt.Sprintf("%s must be a number!", fe.Field())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s!", fe.Field(), fe.Param())
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s needs at least %s entries!", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s characters long!", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s!", fe.Field(), fe.Param())
	case "max":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s allows at most %s entries!", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s characters long!", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid!", fe.Field())
	}
}

// Body parses the JSON body into T, validates it and stores it in c.Locals(key).
func Body[T any](key string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(T)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if errs := Struct(reqData); len(errs) > 0 {
			return middleware.ValidationErrorResponse(c, errs)
		}

		c.Locals(key, reqData)
		return c.Next()
	}
}

// Query is Body for query string parameters.
func Query[T any](key string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(T)
		if err := c.QueryParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
		}

		if errs := Struct(reqData); len(errs) > 0 {
			return middleware.ValidationErrorResponse(c, errs)
		}

		c.Locals(key, reqData)
		return c.Next()
	}
}

// Pagination holds page and limit query parameters.
type Pagination struct {
	Page  int `query:"page" json:"page"`
	Limit int `query:"limit" json:"limit"`
}

func (p *Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Paginate parses page and limit, defaulting to the first page of 20.
func Paginate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := &Pagination{Page: 1, Limit: 20}
		if err := c.QueryParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
		}

		errs := make(map[string]string)
		if reqData.Page < 1 {
			errs["page"] = "Page must be greater than 0!"
		}
		if reqData.Limit < 1 || reqData.Limit > 100 {
			errs["limit"] = "Limit must be between 1 and 100!"
		}
		if len(errs) > 0 {
			return middleware.ValidationErrorResponse(c, errs)
		}

		c.Locals("validatedPagination", reqData)
		return c.Next()
	}
}
