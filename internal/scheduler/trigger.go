package scheduler

import (
	"context"
	"errors"

	"stockex-backend/internal/application/allotment"
	"stockex-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Rounds is the IPO round lifecycle the trigger drives.
type Rounds interface {
	RefreshStatuses(ctx context.Context) (int, error)
	DueForAllotment(ctx context.Context) ([]domain.IpoRound, error)
}

// Settler runs allotment for one round and retries unsettled holdings.
type Settler interface {
	Settle(ctx context.Context, roundID uuid.UUID) (*allotment.SettlementReport, error)
	SettleOutstanding(ctx context.Context) (allotment.SweepResult, error)
}

// Outcome is the result of one round in a run.
type Outcome struct {
	RoundID uuid.UUID                   `json:"round_id"`
	Report  *allotment.SettlementReport `json:"report,omitempty"`
	Skipped bool                        `json:"skipped"`
	Error   string                      `json:"error,omitempty"`
}

type RunResult struct {
	Refreshed int                   `json:"refreshed"`
	Outcomes  []Outcome             `json:"outcomes"`
	Sweep     allotment.SweepResult `json:"sweep"`
}

// Trigger starts allotment for every round whose listing date has passed.
type Trigger struct {
	Rounds  Rounds
	Settler Settler
}

// RunOnce refreshes round statuses, settles every due round and then sweeps
// allotted applications whose holdings were not materialized. A failing round
// does not stop the others.
func (t *Trigger) RunOnce(ctx context.Context) (RunResult, error) {
	var out RunResult
	n, err := t.Rounds.RefreshStatuses(ctx)
	if err != nil {
		return out, err
	}
	out.Refreshed = n

	due, err := t.Rounds.DueForAllotment(ctx)
	if err != nil {
		return out, err
	}
	for _, r := range due {
		o := Outcome{RoundID: r.RoundID}
		report, err := t.Settler.Settle(ctx, r.RoundID)
		switch {
		case err == nil:
			o.Report = report
		case errors.Is(err, domain.ErrAlreadyAllotted):
			log.Info().Str("round_id", r.RoundID.String()).Msg("scheduler: round already allotted, skipping")
			o.Skipped = true
		default:
			log.Error().Err(err).Str("round_id", r.RoundID.String()).Msg("scheduler: allotment failed")
			o.Error = err.Error()
		}
		out.Outcomes = append(out.Outcomes, o)
	}

	sweep, err := t.Settler.SettleOutstanding(ctx)
	if err != nil {
		log.Error().Err(err).Msg("scheduler: settlement sweep failed")
		return out, err
	}
	out.Sweep = sweep
	log.Info().Int("refreshed", out.Refreshed).Int("due", len(due)).Int("swept", sweep.Settled).Msg("scheduler: run complete")
	return out, nil
}
