package transactions

import (
	txsvc "stockex-backend/internal/application/transactions"
	"stockex-backend/internal/middleware"
	"stockex-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *txsvc.Service
}

// List GET /api/v1/transactions returns the caller's ledger, newest first.
func (h *Handlers) List(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	txs, err := h.Service.List(c.UserContext(), userID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Transactions retrieved successfully", txs, fiber.Map{"count": len(txs)})
}
