package allotment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"stockex-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// HoldingSettler moves an allotted application's shares into the owner's portfolio.
// Calling it again for an already settled application is a no-op.
type HoldingSettler interface {
	ApplyAllotment(ctx context.Context, applicationID uuid.UUID) error
}

// Notifier enqueues a user notification. It must not block on delivery.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, kind string, payload map[string]interface{}) error
}

// Service applies allotment decisions to persisted state.
type Service struct {
	DB       *gorm.DB
	Policy   Policy
	Rand     RandomSource
	Holdings HoldingSettler
	Notifier Notifier
	Now      func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Settle allots a closed round. Application updates, the stock listing flag and the
// round status commit in one transaction guarded by a conditional status update, so a
// concurrent or repeated call gets ErrAlreadyAllotted. Notifications and holding
// settlement run after commit; their failures are logged and never undo the allotment.
func (s *Service) Settle(ctx context.Context, roundID uuid.UUID) (*SettlementReport, error) {
	now := s.now()
	fail := func(err error) error {
		return &domain.SettlementFailedError{RoundID: roundID, Cause: err}
	}

	var report *SettlementReport
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var round domain.IpoRound
		if err := tx.Where("round_id = ?", roundID).First(&round).Error; err != nil {
			if isNotFound(err) {
				return domain.ErrRoundNotFound
			}
			return fail(err)
		}
		if round.Status == domain.RoundAllotted {
			return domain.ErrAlreadyAllotted
		}
		if round.DeriveStatus(now) != domain.RoundClosed {
			return domain.ErrRoundNotClosed
		}

		res := tx.Model(&domain.IpoRound{}).
			Where("round_id = ? AND status <> ?", roundID, domain.RoundAllotted).
			Updates(map[string]interface{}{"status": domain.RoundAllotted, "allotted_at": now})
		if res.Error != nil {
			return fail(res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.ErrAlreadyAllotted
		}

		apps, err := LoadPool(ctx, tx, roundID)
		if err != nil {
			return fail(err)
		}
		decisions, err := s.Policy.Allot(round.TotalShares, apps, s.Rand)
		if err != nil {
			return fmt.Errorf("allot round %s: %w", roundID, err)
		}

		for _, d := range decisions {
			res := tx.Model(&domain.Application{}).
				Where("application_id = ? AND status = ?", d.ApplicationID, domain.ApplicationPending).
				Updates(map[string]interface{}{"status": d.Status, "allotted_shares": d.AllottedShares})
			if res.Error != nil {
				return fail(res.Error)
			}
			if res.RowsAffected != 1 {
				return fail(fmt.Errorf("application %s changed during allotment", d.ApplicationID))
			}
		}

		res = tx.Model(&domain.Stock{}).Where("stock_id = ?", round.StockID).Update("is_listed", true)
		if res.Error != nil {
			return fail(res.Error)
		}
		if res.RowsAffected == 0 {
			return fail(domain.ErrStockNotFound)
		}

		round.Status = domain.RoundAllotted
		report = newReport(round, s.Policy.Name(), decisions)
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyAllotted) {
			log.Ctx(ctx).Info().Str("round_id", roundID.String()).Msg("allotment: round already allotted, skipping")
		} else {
			log.Ctx(ctx).Error().Err(err).Str("round_id", roundID.String()).Msg("allotment: settle failed")
		}
		return nil, err
	}

	log.Ctx(ctx).Info().Str("round_id", roundID.String()).Str("policy", report.Policy).
		Int("applications", len(report.Decisions)).Int("allotted", report.AllottedCount).
		Int("allotted_shares", report.AllottedShares).Msg("allotment: round allotted")

	s.afterCommit(ctx, report)
	return report, nil
}

func (s *Service) afterCommit(ctx context.Context, report *SettlementReport) {
	for _, d := range report.Decisions {
		if d.Status != domain.ApplicationAllotted {
			continue
		}
		if s.Notifier != nil {
			payload := map[string]interface{}{
				"round_id":        report.RoundID.String(),
				"allotted_shares": d.AllottedShares,
			}
			if err := s.Notifier.Notify(ctx, d.UserID, domain.NotificationIpoAllotted, payload); err != nil {
				log.Ctx(ctx).Warn().Err(err).Str("user_id", d.UserID.String()).Str("round_id", report.RoundID.String()).
					Msg("allotment: notification enqueue failed")
			}
		}
		if s.Holdings == nil {
			continue
		}
		if err := s.Holdings.ApplyAllotment(ctx, d.ApplicationID); err != nil {
			report.HoldingFailures++
			log.Ctx(ctx).Error().Err(err).Str("application_id", d.ApplicationID.String()).
				Msg("allotment: holding settlement failed, left for retry")
			continue
		}
		report.HoldingsSettled++
	}
}

// SweepResult counts the outcome of SettleOutstanding.
type SweepResult struct {
	Pending int `json:"pending"`
	Settled int `json:"settled"`
	Failed  int `json:"failed"`
}

// SettleOutstanding retries holding settlement for allotted applications that were
// never moved into a portfolio.
func (s *Service) SettleOutstanding(ctx context.Context) (SweepResult, error) {
	var out SweepResult
	if s.Holdings == nil {
		return out, nil
	}
	var ids []uuid.UUID
	err := s.DB.WithContext(ctx).Model(&domain.Application{}).
		Where("status = ? AND settled_at IS NULL AND allotted_shares > 0", domain.ApplicationAllotted).
		Order("created_at ASC").
		Pluck("application_id", &ids).Error
	if err != nil {
		return out, err
	}
	out.Pending = len(ids)
	for _, id := range ids {
		if err := s.Holdings.ApplyAllotment(ctx, id); err != nil {
			out.Failed++
			log.Ctx(ctx).Warn().Err(err).Str("application_id", id.String()).Msg("allotment: retry of holding settlement failed")
			continue
		}
		out.Settled++
	}
	if out.Pending > 0 {
		log.Ctx(ctx).Info().Int("pending", out.Pending).Int("settled", out.Settled).Int("failed", out.Failed).
			Msg("allotment: outstanding holdings swept")
	}
	return out, nil
}
