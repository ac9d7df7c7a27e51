package response

import (
	"errors"

	"stockex-backend/internal/domain"
	"stockex-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// StatusFor maps service errors onto HTTP status codes.
func StatusFor(err error) int {
	var verr *validation.Error
	var settle *domain.SettlementFailedError
	switch {
	case errors.As(err, &verr):
		return fiber.StatusBadRequest
	case errors.As(err, &settle):
		return fiber.StatusInternalServerError
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrAlreadyAllotted),
		errors.Is(err, domain.ErrDuplicateApplication),
		errors.Is(err, domain.ErrEmailTaken),
		errors.Is(err, domain.ErrSymbolTaken):
		return fiber.StatusConflict
	case errors.Is(err, domain.ErrRoundNotClosed),
		errors.Is(err, domain.ErrRoundNotOpen),
		errors.Is(err, domain.ErrBelowMinimumLot),
		errors.Is(err, domain.ErrInvalidRound),
		errors.Is(err, domain.ErrInsufficientFunds),
		errors.Is(err, domain.ErrInsufficientShares),
		errors.Is(err, domain.ErrNoPortfolio),
		errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrStockNotListed),
		errors.Is(err, domain.ErrInvalidAllotmentInput),
		errors.Is(err, domain.ErrNotAllotted):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

// FromError answers err in the standard error format. Server errors are logged and
// their message is not exposed.
func FromError(c *fiber.Ctx, err error) error {
	code := StatusFor(err)
	if code >= fiber.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Msg("request failed")
		return Error(c, "Internal Server Error", code, nil)
	}
	return Error(c, err.Error(), code, nil)
}
