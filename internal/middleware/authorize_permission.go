package middleware

import (
	"stockex-backend/internal/pkg/constants"
	"stockex-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// AuthorizePermission checks the session user's role against constants.PermissionRoles.
// An unconfigured permission is a server error; a role outside the list is 403.
func AuthorizePermission(permission string) fiber.Handler {
	if _, ok := constants.PermissionRoles[permission]; !ok {
		log.Error().Str("permission", permission).Msg("authorize: permission not configured")
	}
	return func(c *fiber.Ctx) error {
		user := GetUser(c)
		if user == nil {
			return response.Unauthorized(c, "Unauthorized")
		}
		role := getRoleFromUser(user)
		if role == "" {
			return response.Error(c, "Authorization error", fiber.StatusInternalServerError, nil)
		}
		if roles := constants.PermissionRoles[permission]; len(roles) == 0 {
			return response.Error(c, "Permission configuration error", fiber.StatusInternalServerError, nil)
		}
		if !constants.AllowedRole(permission, role) {
			return response.Error(c, "User is Forbidden from performing this action", fiber.StatusForbidden, nil)
		}
		return c.Next()
	}
}

func getRoleFromUser(user interface{}) string {
	m, ok := user.(map[string]interface{})
	if !ok {
		return ""
	}
	r, _ := m["role"].(string)
	return r
}
