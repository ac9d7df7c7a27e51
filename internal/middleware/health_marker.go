package middleware

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// Redis keys for request statistics shown by /health/json.
const (
	KeyReqTotal  = "health:global:req_total"
	KeyReqErrors = "health:global:req_errors"
	KeyResTime   = "health:global:res_time_total"
	KeyResCount  = "health:global:res_count"
	KeyStartTime = "health:global:start_time"
	KeyLastReq   = "health:global:last_request"
	KeyErrorLog  = "health:global:error_log"
)

// HealthKeys lists every statistics key, for reset.
var HealthKeys = []string{KeyReqTotal, KeyReqErrors, KeyResTime, KeyResCount, KeyStartTime, KeyLastReq, KeyErrorLog}

// HealthMarker records request counts and timings in Redis. Health and root paths are not counted.
func HealthMarker(rdb *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Path()
		if path == "/" || path == "/reset" || strings.HasPrefix(path, "/health") || strings.HasPrefix(path, "/favicon") {
			return c.Next()
		}

		start := time.Now()
		err := c.Next()
		ms := time.Since(start).Milliseconds()

		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			}
		}
		lastReq, _ := json.Marshal(map[string]interface{}{
			"time":   start.UTC(),
			"ip":     c.IP(),
			"path":   c.OriginalURL(),
			"method": c.Method(),
			"status": status,
		})
		_, _ = rdb.Pipelined(c.UserContext(), func(p redis.Pipeliner) error {
			p.Set(c.UserContext(), KeyLastReq, lastReq, 0)
			p.Incr(c.UserContext(), KeyReqTotal)
			p.Incr(c.UserContext(), KeyResCount)
			p.IncrByFloat(c.UserContext(), KeyResTime, float64(ms))
			if status >= fiber.StatusInternalServerError {
				p.Incr(c.UserContext(), KeyReqErrors)
			}
			return nil
		})
		return err
	}
}
