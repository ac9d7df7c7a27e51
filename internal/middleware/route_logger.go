package middleware

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// RouteLogger logs one line per request with status, duration and trace ID.
// Health probes log at debug.
func RouteLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		traceID := GetTraceID(c)
		if traceID == "" {
			traceID = "no-trace-id"
		}
		level := zerolog.InfoLevel
		if strings.HasPrefix(c.Path(), "/health") {
			level = zerolog.DebugLevel
		}
		status := c.Response().StatusCode()
		if status >= fiber.StatusInternalServerError || err != nil {
			level = zerolog.WarnLevel
		}
		log.WithLevel(level).
			Str("trace_id", traceID).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Int64("ms", time.Since(start).Milliseconds()).
			Msg("request")
		return err
	}
}
