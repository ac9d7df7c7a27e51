package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultQueueKey = "notifications:queue"
	DefaultDeadKey  = "notifications:dead"
)

// ErrQueueFull is returned by MemoryQueue.Enqueue when its buffer has no room.
var ErrQueueFull = errors.New("notification queue is full")

// Queue is a FIFO of pending messages. Dequeue returns (nil, nil) when nothing
// arrived before its poll interval elapsed.
type Queue interface {
	Enqueue(ctx context.Context, m Message) error
	Dequeue(ctx context.Context) (*Message, error)
	DeadLetter(ctx context.Context, m Message) error
}

// RedisQueue is a list-backed queue: LPUSH to enqueue, BRPOP to dequeue.
type RedisQueue struct {
	Rdb     *redis.Client
	Key     string
	DeadKey string
	// Poll bounds how long Dequeue blocks; defaults to one second.
	Poll time.Duration
}

func NewRedisQueue(rdb *redis.Client) *RedisQueue {
	return &RedisQueue{Rdb: rdb, Key: DefaultQueueKey, DeadKey: DefaultDeadKey, Poll: time.Second}
}

func (q *RedisQueue) Enqueue(ctx context.Context, m Message) error {
	b, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return q.Rdb.LPush(ctx, q.Key, b).Err()
}

func (q *RedisQueue) Dequeue(ctx context.Context) (*Message, error) {
	poll := q.Poll
	if poll <= 0 {
		poll = time.Second
	}
	res, err := q.Rdb.BRPop(ctx, poll, q.Key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	// res is [key, value]
	var m Message
	if err := json.Unmarshal([]byte(res[1]), &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (q *RedisQueue) DeadLetter(ctx context.Context, m Message) error {
	b, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return q.Rdb.LPush(ctx, q.DeadKey, b).Err()
}

// MemoryQueue is an in-process queue for runs without Redis. Messages do not survive a restart.
// Enqueue never blocks: a full buffer rejects the message with ErrQueueFull.
type MemoryQueue struct {
	ch   chan Message
	dead chan Message
	Poll time.Duration
}

func NewMemoryQueue(size int) *MemoryQueue {
	if size <= 0 {
		size = 1024
	}
	return &MemoryQueue{ch: make(chan Message, size), dead: make(chan Message, size), Poll: time.Second}
}

func (q *MemoryQueue) Enqueue(ctx context.Context, m Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case q.ch <- m:
		return nil
	default:
		return ErrQueueFull
	}
}

func (q *MemoryQueue) Dequeue(ctx context.Context) (*Message, error) {
	t := time.NewTimer(q.Poll)
	defer t.Stop()
	select {
	case m := <-q.ch:
		return &m, nil
	case <-t.C:
		return nil, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (q *MemoryQueue) DeadLetter(_ context.Context, m Message) error {
	select {
	case q.dead <- m:
	default:
		// full: drop the oldest
		<-q.dead
		q.dead <- m
	}
	return nil
}

// Dead drains and returns the dead-lettered messages.
func (q *MemoryQueue) Dead() []Message {
	var out []Message
	for {
		select {
		case m := <-q.dead:
			out = append(out, m)
		default:
			return out
		}
	}
}
