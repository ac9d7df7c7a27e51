package health

import (
	"encoding/json"
	"strconv"
	"time"

	healthsvc "stockex-backend/internal/application/health"
	"stockex-backend/internal/middleware"
	"stockex-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

const serviceName = "stockex-api"

type Handlers struct {
	Rdb            *redis.Client
	Collector      *healthsvc.Collector
	HealthAdminKey string
}

// Reset clears request statistics. Requires ?key=HEALTH_ADMIN_KEY.
func (h *Handlers) Reset(c *fiber.Ctx) error {
	key := c.Query("key")
	if key == "" || key != h.HealthAdminKey {
		return response.Error(c, "Unauthorized", fiber.StatusForbidden, nil)
	}
	ctx := c.UserContext()
	if err := h.Rdb.Del(ctx, middleware.HealthKeys...).Err(); err != nil {
		return response.Error(c, err.Error(), fiber.StatusInternalServerError, nil)
	}
	if err := h.Rdb.Set(ctx, middleware.KeyStartTime, strconv.FormatInt(time.Now().UnixMilli(), 10), 0).Err(); err != nil {
		return response.Error(c, err.Error(), fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Stats reset successfully", fiber.Map{"success": true}, nil)
}

// JSON GET /health/json
func (h *Handlers) JSON(c *fiber.Ctx) error {
	collector := h.Collector
	if collector == nil {
		collector = &healthsvc.Collector{Rdb: h.Rdb}
	}
	result := collector.Collect(c.UserContext())
	code := fiber.StatusOK
	if result.Status != "ok" {
		code = fiber.StatusServiceUnavailable
	}
	return c.Status(code).JSON(fiber.Map{
		"service":       serviceName,
		"status":        result.Status,
		"runtime":       result.Runtime,
		"traffic":       result.Traffic,
		"dependencies":  result.Dependencies,
		"notifications": result.Notifications,
	})
}

// Errors GET /health/errors returns the latest logged server errors, newest first.
func (h *Handlers) Errors(c *fiber.Ctx) error {
	entries, err := h.Rdb.LRange(c.UserContext(), middleware.KeyErrorLog, 0, 49).Result()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON([]interface{}{})
	}
	out := make([]map[string]interface{}, 0, len(entries))
	for _, s := range entries {
		var m map[string]interface{}
		if json.Unmarshal([]byte(s), &m) == nil && m != nil {
			out = append(out, m)
		}
	}
	return c.JSON(out)
}
