package notifications

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Worker drains the queue and delivers every message to each sink.
// A message whose delivery fails is re-enqueued after RetryDelay until it has been
// tried MaxAttempts times, then it is dead-lettered.
type Worker struct {
	Queue       Queue
	Sinks       []Sink
	MaxAttempts int
	RetryDelay  time.Duration

	wg sync.WaitGroup
}

// Run blocks until ctx is cancelled. Pending delayed retries are re-enqueued before it returns.
func (w *Worker) Run(ctx context.Context) {
	log.Info().Int("sinks", len(w.Sinks)).Int("max_attempts", w.maxAttempts()).Msg("notifications: worker started")
	for {
		m, err := w.Queue.Dequeue(ctx)
		if ctx.Err() != nil {
			break
		}
		if err != nil {
			log.Error().Err(err).Msg("notifications: dequeue failed")
			sleep(ctx, time.Second)
			continue
		}
		if m == nil {
			continue
		}
		w.Process(ctx, *m)
	}
	w.wg.Wait()
	log.Info().Msg("notifications: worker stopped")
}

// Process delivers one message and schedules its retry or dead-letters it.
func (w *Worker) Process(ctx context.Context, m Message) {
	m.Attempts++
	var failed error
	for _, s := range w.Sinks {
		if m.deliveredTo(s.Name()) {
			continue
		}
		if err := s.Deliver(ctx, m); err != nil {
			log.Warn().Err(err).Str("sink", s.Name()).Str("message_id", m.ID.String()).
				Int("attempt", m.Attempts).Msg("notifications: delivery failed")
			failed = errors.Join(failed, err)
			continue
		}
		m.Delivered = append(m.Delivered, s.Name())
	}
	if failed == nil {
		return
	}
	m.LastError = failed.Error()

	if m.Attempts >= w.maxAttempts() {
		log.Error().Str("message_id", m.ID.String()).Str("user_id", m.UserID.String()).
			Int("attempts", m.Attempts).Msg("notifications: dead-lettered")
		if err := w.Queue.DeadLetter(context.WithoutCancel(ctx), m); err != nil {
			log.Error().Err(err).Str("message_id", m.ID.String()).Msg("notifications: dead-letter failed")
		}
		return
	}
	w.retryLater(ctx, m)
}

func (w *Worker) retryLater(ctx context.Context, m Message) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		sleep(ctx, w.RetryDelay)
		bg := context.WithoutCancel(ctx)
		if err := w.Queue.Enqueue(bg, m); err != nil {
			log.Error().Err(err).Str("message_id", m.ID.String()).Msg("notifications: re-enqueue failed, dead-lettering")
			if err := w.Queue.DeadLetter(bg, m); err != nil {
				log.Error().Err(err).Str("message_id", m.ID.String()).Msg("notifications: dead-letter failed")
			}
		}
	}()
}

func (w *Worker) maxAttempts() int {
	if w.MaxAttempts <= 0 {
		return 1
	}
	return w.MaxAttempts
}

func sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
