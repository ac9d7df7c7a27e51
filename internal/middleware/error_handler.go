package middleware

import (
	"encoding/json"
	"errors"
	"time"

	"stockex-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const errorLogSize = 50

// ErrorHandler is the global error handler. Unhandled errors are logged and, when rdb
// is set, pushed onto the health error log read by /health/errors.
func ErrorHandler(rdb *redis.Client) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal Server Error"

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			message = fe.Message
		}
		if code >= fiber.StatusInternalServerError {
			log.Error().Err(err).Str("trace_id", GetTraceID(c)).Str("path", c.Path()).Msg("unhandled error")
			if rdb != nil {
				entry, _ := json.Marshal(map[string]interface{}{
					"time":    time.Now().UTC(),
					"path":    c.Path(),
					"method":  c.Method(),
					"message": err.Error(),
				})
				ctx := c.UserContext()
				rdb.LPush(ctx, KeyErrorLog, entry)
				rdb.LTrim(ctx, KeyErrorLog, 0, errorLogSize-1)
			}
		}
		return response.Error(c, message, code, nil)
	}
}
