package health

import (
	"context"
	"encoding/json"
	"runtime"
	"strconv"
	"time"

	"stockex-backend/internal/middleware"

	"github.com/redis/go-redis/v9"
)

// DBPinger is optional for health check. If nil, database is reported as disconnected.
type DBPinger interface {
	Ping() error
}

// Probe is an extra dependency reported under its name (the STOMP broker, for one).
// Probes are informational and do not change the overall status.
type Probe interface {
	Name() string
	Ping(ctx context.Context) error
}

// QueueKeys names the Redis lists whose lengths are reported under "notifications".
type QueueKeys struct {
	Pending string
	Dead    string
}

type CollectResult struct {
	Status        string               `json:"status"`
	Runtime       RuntimeInfo          `json:"runtime"`
	Traffic       TrafficInfo          `json:"traffic"`
	Dependencies  map[string]DepStatus `json:"dependencies"`
	Notifications *QueueInfo           `json:"notifications,omitempty"`
}

type RuntimeInfo struct {
	UptimeSeconds int64      `json:"uptimeSeconds"`
	Memory        MemoryInfo `json:"memory"`
	Goroutines    int        `json:"goroutines"`
	Platform      string     `json:"platform"`
	GoVersion     string     `json:"goVersion"`
}

type MemoryInfo struct {
	AllocMB    int `json:"allocMb"`
	HeapUsedMB int `json:"heapUsedMb"`
}

type TrafficInfo struct {
	TotalRequests   int         `json:"totalRequests"`
	SuccessCount    int         `json:"successCount"`
	FailedCount     int         `json:"failedCount"`
	SuccessRate     string      `json:"successRate"`
	AvgResponseTime interface{} `json:"avgResponseTime"`
	LastRequest     interface{} `json:"lastRequest"`
}

type DepStatus struct {
	Status string      `json:"status"`
	PingMs interface{} `json:"pingMs"`
}

type QueueInfo struct {
	Pending int64 `json:"pending"`
	Dead    int64 `json:"dead"`
}

// Collector gathers health data from Redis, the database and any probes.
type Collector struct {
	Rdb    *redis.Client
	DB     DBPinger
	Probes []Probe
	Queue  *QueueKeys
}

// CollectHealth is Collector{Rdb, DB}.Collect without probes.
func CollectHealth(ctx context.Context, rdb *redis.Client, db DBPinger) CollectResult {
	return (&Collector{Rdb: rdb, DB: db}).Collect(ctx)
}

func (c *Collector) Collect(ctx context.Context) CollectResult {
	result := CollectResult{
		Dependencies: make(map[string]DepStatus),
	}

	dbStatus := "disconnected"
	var dbPingMs *int64
	if c.DB != nil {
		start := time.Now()
		if err := c.DB.Ping(); err == nil {
			ms := time.Since(start).Milliseconds()
			dbPingMs = &ms
			dbStatus = "connected"
		} else {
			dbStatus = "error"
		}
	}
	result.Dependencies["database"] = DepStatus{Status: dbStatus, PingMs: dbPingMs}

	redisStatus := "disconnected"
	var redisPingMs *int64
	stats := TrafficInfo{AvgResponseTime: 0, SuccessRate: "100"}
	startTimeMs := time.Now().UnixMilli()

	if c.Rdb != nil {
		start := time.Now()
		if err := c.Rdb.Ping(ctx).Err(); err == nil {
			ms := time.Since(start).Milliseconds()
			redisPingMs = &ms
			redisStatus = "connected"
			startTimeMs = c.traffic(ctx, &stats, startTimeMs)
			if c.Queue != nil {
				q := &QueueInfo{}
				q.Pending, _ = c.Rdb.LLen(ctx, c.Queue.Pending).Result()
				q.Dead, _ = c.Rdb.LLen(ctx, c.Queue.Dead).Result()
				result.Notifications = q
			}
		} else {
			redisStatus = "error"
		}
	}
	result.Dependencies["redis"] = DepStatus{Status: redisStatus, PingMs: redisPingMs}

	for _, p := range c.Probes {
		start := time.Now()
		if err := p.Ping(ctx); err != nil {
			result.Dependencies[p.Name()] = DepStatus{Status: "unreachable"}
			continue
		}
		ms := time.Since(start).Milliseconds()
		result.Dependencies[p.Name()] = DepStatus{Status: "reachable", PingMs: &ms}
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	uptimeSec := (time.Now().UnixMilli() - startTimeMs) / 1000
	if uptimeSec < 0 {
		uptimeSec = 0
	}
	result.Runtime = RuntimeInfo{
		UptimeSeconds: uptimeSec,
		Memory:        MemoryInfo{AllocMB: int(m.Alloc / 1024 / 1024), HeapUsedMB: int(m.HeapInuse / 1024 / 1024)},
		Goroutines:    runtime.NumGoroutine(),
		Platform:      runtime.GOOS + " (" + runtime.GOARCH + ")",
		GoVersion:     runtime.Version(),
	}
	result.Traffic = stats

	if dbStatus == "connected" && redisStatus == "connected" {
		result.Status = "ok"
	} else {
		result.Status = "issue"
	}
	return result
}

// traffic fills stats from the counters HealthMarker keeps and returns the recorded start time.
func (c *Collector) traffic(ctx context.Context, stats *TrafficInfo, startTimeMs int64) int64 {
	rdb := c.Rdb
	totalReq, _ := rdb.Get(ctx, middleware.KeyReqTotal).Result()
	totalErr, _ := rdb.Get(ctx, middleware.KeyReqErrors).Result()
	totalTime, _ := rdb.Get(ctx, middleware.KeyResTime).Result()
	resCount, _ := rdb.Get(ctx, middleware.KeyResCount).Result()
	startTimeStr, _ := rdb.Get(ctx, middleware.KeyStartTime).Result()
	lastReqStr, _ := rdb.Get(ctx, middleware.KeyLastReq).Result()

	if startTimeStr != "" {
		if t, err := strconv.ParseInt(startTimeStr, 10, 64); err == nil {
			startTimeMs = t
		}
	} else {
		rdb.Set(ctx, middleware.KeyStartTime, startTimeMs, 0)
	}

	stats.TotalRequests, _ = strconv.Atoi(totalReq)
	stats.FailedCount, _ = strconv.Atoi(totalErr)
	stats.SuccessCount = stats.TotalRequests - stats.FailedCount
	if stats.TotalRequests > 0 {
		stats.SuccessRate = strconv.FormatFloat(float64(stats.SuccessCount)/float64(stats.TotalRequests)*100, 'f', 1, 64)
	}
	timeSum, _ := strconv.ParseFloat(totalTime, 64)
	countSum, _ := strconv.Atoi(resCount)
	if countSum > 0 {
		stats.AvgResponseTime = strconv.FormatFloat(timeSum/float64(countSum), 'f', 2, 64)
	}
	if lastReqStr != "" {
		var lastReq map[string]interface{}
		_ = json.Unmarshal([]byte(lastReqStr), &lastReq)
		stats.LastRequest = lastReq
	}
	return startTimeMs
}
