package validators

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type verifyRequest struct {
	Students []string `json:"students" validate:"required,min=1,max=3,dive,eth_addr"`
	CourseID string   `json:"web2CourseId" validate:"required,max=10"`
	Amount   uint64   `json:"amount" validate:"required,gt=0"`
}

const alice = "0x70997970c51812dc3a010c7d01b50e0d17dc79c8"

func TestStructReportsJSONFieldNames(t *testing.T) {
	errs := Struct(&verifyRequest{
		Students: []string{alice, "0xnope"},
		CourseID: "COURSE-000000001",
	})

	assert.Equal(t, map[string]string{
		"students[1]":  "Invalid address!",
		"web2CourseId": "web2CourseId must be at most 10 characters long!",
		"amount":       "amount is required!",
	}, errs)

	assert.Empty(t, Struct(&verifyRequest{Students: []string{alice}, CourseID: "C-1", Amount: 1}))
}

func TestStructSliceLimits(t *testing.T) {
	errs := Struct(&verifyRequest{
		Students: []string{alice, alice, alice, alice},
		CourseID: "C-1",
		Amount:   1,
	})
	assert.Equal(t, "students allows at most 3 entries!", errs["students"])
}

func decode(t *testing.T, body io.Reader) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.NewDecoder(body).Decode(&out))
	return out
}

func TestBodyHandler(t *testing.T) {
	app := fiber.New()
	app.Post("/", Body[verifyRequest]("validatedVerify"), func(c *fiber.Ctx) error {
		req := c.Locals("validatedVerify").(*verifyRequest)
		return c.JSON(fiber.Map{"course": req.CourseID})
	})

	post := func(body string) (int, map[string]any) {
		req := httptest.NewRequest(fiber.MethodPost, "/", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp.StatusCode, decode(t, resp.Body)
	}

	status, out := post(`{"students":["` + alice + `"],"web2CourseId":"C-1","amount":5}`)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "C-1", out["course"])

	status, out = post(`{"students":[],"web2CourseId":"C-1","amount":5}`)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Equal(t, "Validation failed!", out["message"])

	status, _ = post(`{"students":`)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestPaginate(t *testing.T) {
	app := fiber.New()
	app.Get("/", Paginate(), func(c *fiber.Ctx) error {
		p := c.Locals("validatedPagination").(*Pagination)
		return c.JSON(fiber.Map{"page": p.Page, "limit": p.Limit, "offset": p.Offset()})
	})

	get := func(query string) (int, map[string]any) {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/"+query, nil))
		require.NoError(t, err)
		return resp.StatusCode, decode(t, resp.Body)
	}

	status, out := get("")
	assert.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 1, out["page"])
	assert.EqualValues(t, 20, out["limit"])
	assert.EqualValues(t, 0, out["offset"])

	_, out = get("?page=3&limit=10")
	assert.EqualValues(t, 20, out["offset"])

	status, _ = get("?page=0")
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)

	status, _ = get("?limit=101")
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
}
