package auth

import (
	"errors"

	authsvc "stockex-backend/internal/application/auth"
	"stockex-backend/internal/middleware"
	"stockex-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

type Handlers struct {
	UserFinder authsvc.UserFinder
	Rdb        *redis.Client
	Config     middleware.SessionConfig
}

// Login POST /api/v1/auth/login
func (h *Handlers) Login(c *fiber.Ctx) error {
	if h.UserFinder == nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	var req authsvc.LoginInput
	if err := c.BodyParser(&req); err != nil || req.Email == "" || req.Password == "" {
		return response.Error(c, authsvc.ErrEmailPasswordRequired.Error(), fiber.StatusBadRequest, nil)
	}

	user, err := h.UserFinder.FindByEmailAndPassword(c.UserContext(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, authsvc.ErrEmailPasswordRequired):
			return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
		case errors.Is(err, authsvc.ErrInvalidCredentials):
			log.Info().Str("path", "/auth/login").Msg("auth/login: invalid credentials")
			return response.Error(c, err.Error(), fiber.StatusUnauthorized, nil)
		default:
			return response.FromError(c, err)
		}
	}

	su := middleware.SessionUser{
		UserID:   user.UserID.String(),
		Fullname: user.Fullname,
		Email:    user.Email,
		Role:     user.Role,
	}
	if err := middleware.StartSession(c, h.Rdb, h.Config, su); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Login successful", fiber.Map{"user": su}, nil)
}

// Me GET /api/v1/auth/me
func (h *Handlers) Me(c *fiber.Ctx) error {
	user, err := authsvc.VerifyUser(middleware.GetUser(c))
	if err != nil {
		log.Debug().Bool("session_id_present", middleware.GetSessionID(c) != "").
			Msg("auth/me: not authenticated")
		return response.Error(c, "Not authenticated", fiber.StatusUnauthorized, nil)
	}
	return response.Success(c, "Authenticated", fiber.Map{"user": user}, nil)
}

// Logout DELETE /api/v1/auth/logout
func (h *Handlers) Logout(c *fiber.Ctx) error {
	sessionID := middleware.GetSessionID(c)
	ctx := c.UserContext()

	if sessionID != "" {
		if user, err := authsvc.VerifyUser(middleware.GetUser(c)); err == nil {
			_ = h.Rdb.SRem(ctx, middleware.UserSessionsPrefix+user.UserID, sessionID).Err()
		}
		_ = h.Rdb.Del(ctx, middleware.SessionRedisPrefix+sessionID).Err()
	}
	middleware.DestroySession(c)

	cookie := middleware.SessionCookieConfig(h.Config)
	cookie.Value = ""
	cookie.MaxAge = -1
	c.Cookie(&cookie)

	return response.Success(c, "Logged out successfully", nil, nil)
}

// LogoutAll DELETE /api/v1/auth/sessions ends every session of the current user.
func (h *Handlers) LogoutAll(c *fiber.Ctx) error {
	user, err := authsvc.VerifyUser(middleware.GetUser(c))
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	if err := middleware.DestroyUserSessions(c.UserContext(), h.Rdb, user.UserID); err != nil {
		return response.FromError(c, err)
	}
	middleware.DestroySession(c)

	cookie := middleware.SessionCookieConfig(h.Config)
	cookie.Value = ""
	cookie.MaxAge = -1
	c.Cookie(&cookie)

	return response.Success(c, "All sessions ended", nil, nil)
}
