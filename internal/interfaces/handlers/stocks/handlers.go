package stocks

import (
	stocksvc "stockex-backend/internal/application/stocks"
	"stockex-backend/internal/pkg/response"
	"stockex-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *stocksvc.Service
}

// List GET /api/v1/stocks?listed=true
func (h *Handlers) List(c *fiber.Ctx) error {
	stocks, err := h.Service.List(c.UserContext(), c.QueryBool("listed", false))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Stocks retrieved successfully", stocks, fiber.Map{"count": len(stocks)})
}

// Get GET /api/v1/stocks/:id
func (h *Handlers) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid stock id", fiber.StatusBadRequest, nil)
	}
	st, err := h.Service.Get(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Stock retrieved successfully", st, nil)
}

// Create POST /api/v1/stocks (admin)
func (h *Handlers) Create(c *fiber.Ctx) error {
	var req stocksvc.CreateStockInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	if err := validation.Struct(req); err != nil {
		return response.FromError(c, err)
	}
	if req.CurrentPrice.IsNegative() {
		return response.Error(c, "current_price must not be negative", fiber.StatusBadRequest, nil)
	}
	st, err := h.Service.Create(c.UserContext(), req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Stock created successfully", st, nil)
}
