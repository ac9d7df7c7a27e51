package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// DefaultSpec runs every four hours. Specs include a seconds field.
const DefaultSpec = "0 0 */4 * * *"

// Scheduler runs the trigger on a cron schedule. Overlapping runs are skipped.
type Scheduler struct {
	Trigger *Trigger
	Spec    string
	Timeout time.Duration

	cron *cron.Cron
}

func (s *Scheduler) Start(ctx context.Context) error {
	spec := s.Spec
	if spec == "" {
		spec = DefaultSpec
	}
	logger := zerologCron{}
	s.cron = cron.New(
		cron.WithSeconds(),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	_, err := s.cron.AddFunc(spec, func() {
		runCtx := ctx
		if s.Timeout > 0 {
			var cancel context.CancelFunc
			runCtx, cancel = context.WithTimeout(ctx, s.Timeout)
			defer cancel()
		}
		if _, err := s.Trigger.RunOnce(runCtx); err != nil {
			log.Error().Err(err).Msg("scheduler: run failed")
		}
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	log.Info().Str("spec", spec).Msg("scheduler: started")
	return nil
}

// Stop halts the schedule and waits for a running job to finish.
func (s *Scheduler) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
	log.Info().Msg("scheduler: stopped")
}

// zerologCron adapts the global zerolog logger to cron.Logger.
type zerologCron struct{}

func (zerologCron) Info(msg string, keysAndValues ...interface{}) {
	log.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (zerologCron) Error(err error, msg string, keysAndValues ...interface{}) {
	log.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
