package notifications

import (
	notifsvc "stockex-backend/internal/application/notifications"
	"stockex-backend/internal/middleware"
	"stockex-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *notifsvc.Service
}

// List GET /api/v1/notifications?unread=true
func (h *Handlers) List(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	items, err := h.Service.List(c.UserContext(), userID, c.QueryBool("unread", false))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Notifications retrieved successfully", items, fiber.Map{"count": len(items)})
}

// MarkRead PATCH /api/v1/notifications/:id/read
func (h *Handlers) MarkRead(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid notification id", fiber.StatusBadRequest, nil)
	}
	n, err := h.Service.MarkRead(c.UserContext(), userID, id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Notification marked as read", n, nil)
}
