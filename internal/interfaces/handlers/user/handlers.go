package user

import (
	usersvc "stockex-backend/internal/application/user"
	"stockex-backend/internal/middleware"
	"stockex-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

type Handlers struct {
	Service *usersvc.Service
	Rdb     *redis.Client
	Config  middleware.SessionConfig
}

// Register POST /api/v1/users/register creates the user with a funded portfolio and logs them in.
func (h *Handlers) Register(c *fiber.Ctx) error {
	var req usersvc.RegisterInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Missing required fields", fiber.StatusBadRequest, nil)
	}
	p, err := h.Service.Register(c.UserContext(), req)
	if err != nil {
		return response.FromError(c, err)
	}
	if h.Rdb != nil {
		err := middleware.StartSession(c, h.Rdb, h.Config, middleware.SessionUser{
			UserID:   p.User.UserID.String(),
			Fullname: p.User.Fullname,
			Email:    p.User.Email,
			Role:     p.User.Role,
		})
		if err != nil {
			return response.FromError(c, err)
		}
	}
	return response.SuccessCreated(c, "User created successfully", p, nil)
}

// Me GET /api/v1/users/me
func (h *Handlers) Me(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	p, err := h.Service.View(c.UserContext(), userID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "User retrieved successfully", p, nil)
}
