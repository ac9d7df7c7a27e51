package portfolio

import (
	portfoliosvc "stockex-backend/internal/application/portfolio"
	"stockex-backend/internal/middleware"
	"stockex-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *portfoliosvc.Service
}

// View GET /api/v1/portfolio
func (h *Handlers) View(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	v, err := h.Service.View(c.UserContext(), userID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Portfolio retrieved successfully", v, nil)
}
