package health

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPinger struct{ err error }

func (s stubPinger) Ping() error { return s.err }

type stubProbe struct {
	name string
	err  error
}

func (p stubProbe) Name() string                 { return p.name }
func (p stubProbe) Ping(_ context.Context) error { return p.err }

func newRedis(t *testing.T) *redis.Client {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		rdb.Close()
		mr.Close()
	})
	return rdb
}

func TestCollectHealth_WithNilRedis(t *testing.T) {
	result := CollectHealth(context.Background(), nil, nil)
	assert.Equal(t, "issue", result.Status)
	assert.Equal(t, "disconnected", result.Dependencies["database"].Status)
	assert.Equal(t, "disconnected", result.Dependencies["redis"].Status)
	assert.Equal(t, 0, result.Traffic.TotalRequests)
	assert.Nil(t, result.Notifications)
}

func TestCollectHealth_TrafficCounters(t *testing.T) {
	rdb := newRedis(t)
	ctx := context.Background()

	result := CollectHealth(ctx, rdb, stubPinger{})
	assert.Equal(t, "ok", result.Status)
	assert.Equal(t, "connected", result.Dependencies["redis"].Status)
	assert.Equal(t, "100", result.Traffic.SuccessRate)

	require.NoError(t, rdb.Set(ctx, "health:global:req_total", "10", 0).Err())
	require.NoError(t, rdb.Set(ctx, "health:global:req_errors", "2", 0).Err())
	require.NoError(t, rdb.Set(ctx, "health:global:res_time_total", "150.5", 0).Err())
	require.NoError(t, rdb.Set(ctx, "health:global:res_count", "10", 0).Err())
	require.NoError(t, rdb.Set(ctx, "health:global:start_time", "1000000", 0).Err())

	result = CollectHealth(ctx, rdb, stubPinger{})
	assert.Equal(t, 10, result.Traffic.TotalRequests)
	assert.Equal(t, 8, result.Traffic.SuccessCount)
	assert.Equal(t, "80.0", result.Traffic.SuccessRate)
	assert.Equal(t, "15.05", result.Traffic.AvgResponseTime)
}

func TestCollector_DatabaseErrorIsIssue(t *testing.T) {
	result := CollectHealth(context.Background(), newRedis(t), stubPinger{err: errors.New("down")})
	assert.Equal(t, "issue", result.Status)
	assert.Equal(t, "error", result.Dependencies["database"].Status)
}

func TestCollector_ProbesAndQueue(t *testing.T) {
	rdb := newRedis(t)
	ctx := context.Background()
	require.NoError(t, rdb.LPush(ctx, "q:pending", "a", "b").Err())
	require.NoError(t, rdb.LPush(ctx, "q:dead", "c").Err())

	c := &Collector{
		Rdb:    rdb,
		DB:     stubPinger{},
		Probes: []Probe{stubProbe{name: "broker"}, stubProbe{name: "mail", err: errors.New("timeout")}},
		Queue:  &QueueKeys{Pending: "q:pending", Dead: "q:dead"},
	}
	result := c.Collect(ctx)
	assert.Equal(t, "ok", result.Status)
	assert.Equal(t, "reachable", result.Dependencies["broker"].Status)
	assert.Equal(t, "unreachable", result.Dependencies["mail"].Status)
	require.NotNil(t, result.Notifications)
	assert.Equal(t, int64(2), result.Notifications.Pending)
	assert.Equal(t, int64(1), result.Notifications.Dead)
}
