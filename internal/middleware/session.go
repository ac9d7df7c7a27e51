package middleware

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SessionConfig controls the session cookie.
type SessionConfig struct {
	Secret            string
	AllowCrossSiteDev bool
	IsProduction      bool
}

const (
	SessionCookieName  = "stockex.sid"
	SessionRedisPrefix = "session:"
	sessionMaxAge      = 24 * time.Hour

	sessionDataLocal = "session_data"
	sessionIDLocal   = "session_id"
)

// SessionUser is the shape stored in the session under "user".
type SessionUser struct {
	UserID   string `json:"user_id"`
	Fullname string `json:"fullname"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// NewRedis parses a redis:// URL into a client.
func NewRedis(url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return redis.NewClient(opt), nil
}

// Session loads the session named by the cookie from Redis into Locals and writes it
// back after the handler ran. Cookie values look like "s:<id>" or "s:<id>.<sig>".
func Session(rdb *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID := c.Cookies(SessionCookieName)
		if strings.HasPrefix(sessionID, "s:") {
			parts := strings.SplitN(sessionID[2:], ".", 2)
			sessionID = parts[0]
		}

		var data map[string]interface{}
		if sessionID != "" {
			b, err := rdb.Get(c.UserContext(), SessionRedisPrefix+sessionID).Bytes()
			if err == nil {
				_ = json.Unmarshal(b, &data)
			}
		}
		if data == nil {
			data = make(map[string]interface{})
		}

		c.Locals(sessionDataLocal, data)
		c.Locals(userLocal, data["user"])
		c.Locals(sessionIDLocal, sessionID)

		if err := c.Next(); err != nil {
			return err
		}

		sid, _ := c.Locals(sessionIDLocal).(string)
		updated, _ := c.Locals(sessionDataLocal).(map[string]interface{})
		if sid != "" && len(updated) > 0 {
			b, _ := json.Marshal(updated)
			rdb.Set(c.UserContext(), SessionRedisPrefix+sid, b, sessionMaxAge)
		}
		return nil
	}
}

// GetSessionID returns the current session ID from context (for login/logout).
func GetSessionID(c *fiber.Ctx) string {
	sid, _ := c.Locals(sessionIDLocal).(string)
	return sid
}

// SetSessionUser puts the user in the session; it is persisted when the request finishes.
// Call RegenerateSessionID first.
func SetSessionUser(c *fiber.Ctx, user SessionUser) {
	data, _ := c.Locals(sessionDataLocal).(map[string]interface{})
	if data == nil {
		data = make(map[string]interface{})
	}
	data["user"] = map[string]interface{}{
		"user_id":  user.UserID,
		"fullname": user.Fullname,
		"email":    user.Email,
		"role":     user.Role,
	}
	c.Locals(sessionDataLocal, data)
	c.Locals(userLocal, data["user"])
}

// RegenerateSessionID issues a new session ID. The cookie value is "s:"+ID.
func RegenerateSessionID(c *fiber.Ctx) string {
	newID := uuid.New().String()
	c.Locals(sessionIDLocal, newID)
	return newID
}

// DestroySession clears the session from Locals so nothing is written back.
// The caller deletes the Redis key and clears the cookie.
func DestroySession(c *fiber.Ctx) {
	c.Locals(sessionDataLocal, make(map[string]interface{}))
	c.Locals(userLocal, nil)
	c.Locals(sessionIDLocal, "")
}

// SessionCookieConfig returns the cookie options used for set and clear.
func SessionCookieConfig(cfg SessionConfig) fiber.Cookie {
	sameSite := "Lax"
	if cfg.AllowCrossSiteDev {
		sameSite = "None"
	}
	return fiber.Cookie{
		Name:     SessionCookieName,
		Path:     "/",
		MaxAge:   int(sessionMaxAge.Seconds()),
		HTTPOnly: true,
		Secure:   cfg.IsProduction || cfg.AllowCrossSiteDev,
		SameSite: sameSite,
	}
}

// UserSessionsPrefix keys the Redis set of a user's live session IDs.
const UserSessionsPrefix = "user_sessions:"

// StartSession rotates the session ID, stores the user, records the session under
// the user's session set and sets the cookie.
func StartSession(c *fiber.Ctx, rdb *redis.Client, cfg SessionConfig, user SessionUser) error {
	sid := RegenerateSessionID(c)
	SetSessionUser(c, user)
	if err := rdb.SAdd(c.UserContext(), UserSessionsPrefix+user.UserID, sid).Err(); err != nil {
		return err
	}
	cookie := SessionCookieConfig(cfg)
	cookie.Value = "s:" + sid
	c.Cookie(&cookie)
	return nil
}

// DestroyUserSessions deletes every session recorded for the user, then the set itself.
func DestroyUserSessions(ctx context.Context, rdb *redis.Client, userID string) error {
	if userID == "" {
		return nil
	}
	key := UserSessionsPrefix + userID
	sessionIDs, err := rdb.SMembers(ctx, key).Result()
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(sessionIDs)+1)
	for _, sid := range sessionIDs {
		keys = append(keys, SessionRedisPrefix+sid)
	}
	keys = append(keys, key)
	return rdb.Del(ctx, keys...).Err()
}
