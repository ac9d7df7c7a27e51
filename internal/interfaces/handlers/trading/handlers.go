package trading

import (
	tradesvc "stockex-backend/internal/application/trading"
	"stockex-backend/internal/middleware"
	"stockex-backend/internal/pkg/response"
	"stockex-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *tradesvc.Service
}

type orderRequest struct {
	StockID  uuid.UUID `json:"stock_id" validate:"required"`
	Quantity int       `json:"quantity" validate:"required,gt=0"`
}

func (h *Handlers) parse(c *fiber.Ctx) (uuid.UUID, *orderRequest, error) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return uuid.Nil, nil, response.Unauthorized(c, "Unauthorized")
	}
	var req orderRequest
	if err := c.BodyParser(&req); err != nil {
		return uuid.Nil, nil, response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	if req.StockID == uuid.Nil {
		return uuid.Nil, nil, response.Error(c, "stock_id is required", fiber.StatusBadRequest, nil)
	}
	if err := validation.Struct(req); err != nil {
		return uuid.Nil, nil, response.FromError(c, err)
	}
	return userID, &req, nil
}

// Buy POST /api/v1/trading/buy
func (h *Handlers) Buy(c *fiber.Ctx) error {
	userID, req, err := h.parse(c)
	if req == nil {
		return err
	}
	res, err := h.Service.Buy(c.UserContext(), userID, req.StockID, req.Quantity)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Purchase completed", res, nil)
}

// Sell POST /api/v1/trading/sell
func (h *Handlers) Sell(c *fiber.Ctx) error {
	userID, req, err := h.parse(c)
	if req == nil {
		return err
	}
	res, err := h.Service.Sell(c.UserContext(), userID, req.StockID, req.Quantity)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Sale completed", res, nil)
}
