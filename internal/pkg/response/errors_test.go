package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"

	"stockex-backend/internal/domain"
	"stockex-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	cases := map[error]int{
		domain.ErrRoundNotFound:                         404,
		fmt.Errorf("load: %w", domain.ErrStockNotFound): 404,
		domain.ErrAlreadyAllotted:                       409,
		domain.ErrDuplicateApplication:                  409,
		domain.ErrEmailTaken:                            409,
		domain.ErrRoundNotClosed:                        400,
		domain.ErrInsufficientFunds:                     400,
		domain.ErrBelowMinimumLot:                       400,
		domain.ErrNotAllotted:                           400,
		&validation.Error{Field: "x", Message: "bad"}:   400,
		errors.New("boom"):                              500,
		&domain.SettlementFailedError{RoundID: uuid.New(), Cause: domain.ErrStockNotFound}: 500,
	}
	for err, want := range cases {
		assert.Equal(t, want, StatusFor(err), err.Error())
	}
}

func TestFromError_HidesServerErrors(t *testing.T) {
	app := fiber.New()
	app.Get("/nf", func(c *fiber.Ctx) error { return FromError(c, domain.ErrRoundNotFound) })
	app.Get("/boom", func(c *fiber.Ctx) error { return FromError(c, errors.New("password=hunter2")) })

	resp, err := app.Test(httptest.NewRequest("GET", "/nf", nil))
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
	var body ErrorBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "error", body.Status)
	assert.Equal(t, "IPO round not found", body.Error.Message)

	resp, err = app.Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, 500, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Internal Server Error", body.Error.Message)
}
