package ipo

import (
	"context"
	"errors"
	"time"

	"stockex-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service manages IPO rounds and the applications users submit while a round is open.
type Service struct {
	DB      *gorm.DB
	LotSize int
	Now     func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// CreateRoundInput is the administrative request to open an offering.
type CreateRoundInput struct {
	StockID     uuid.UUID       `json:"stock_id" validate:"required"`
	IssuePrice  decimal.Decimal `json:"issue_price" validate:"required"`
	TotalShares int             `json:"total_shares" validate:"required,gt=0"`
	OpenDate    time.Time       `json:"open_date" validate:"required"`
	CloseDate   time.Time       `json:"close_date" validate:"required,gtfield=OpenDate"`
	ListingDate time.Time       `json:"listing_date" validate:"required,gtfield=CloseDate"`
}

// CreateRound creates a round for a stock that is not yet listed.
func (s *Service) CreateRound(ctx context.Context, in CreateRoundInput) (*domain.IpoRound, error) {
	round := &domain.IpoRound{
		StockID:     in.StockID,
		IssuePrice:  in.IssuePrice,
		TotalShares: in.TotalShares,
		OpenDate:    in.OpenDate,
		CloseDate:   in.CloseDate,
		ListingDate: in.ListingDate,
	}
	if !round.ValidDates() || !in.IssuePrice.IsPositive() || in.TotalShares <= 0 {
		return nil, domain.ErrInvalidRound
	}
	if s.LotSize > 0 && in.TotalShares < s.LotSize {
		return nil, domain.ErrInvalidRound
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var stock domain.Stock
		if err := tx.Where("stock_id = ?", in.StockID).First(&stock).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrStockNotFound
			}
			return err
		}
		if stock.IsListed {
			return domain.ErrInvalidRound
		}
		round.Status = round.DeriveStatus(s.now())
		return tx.Create(round).Error
	})
	if err != nil {
		return nil, err
	}
	return round, nil
}

// GetRound returns one round with its status brought up to date.
func (s *Service) GetRound(ctx context.Context, roundID uuid.UUID) (*domain.IpoRound, error) {
	var r domain.IpoRound
	if err := s.DB.WithContext(ctx).Where("round_id = ?", roundID).First(&r).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRoundNotFound
		}
		return nil, err
	}
	r.Status = r.DeriveStatus(s.now())
	return &r, nil
}

// ListRounds returns rounds by open date, optionally filtered by derived status.
func (s *Service) ListRounds(ctx context.Context, status string) ([]domain.IpoRound, error) {
	var rounds []domain.IpoRound
	if err := s.DB.WithContext(ctx).Order("open_date DESC").Find(&rounds).Error; err != nil {
		return nil, err
	}
	now := s.now()
	out := make([]domain.IpoRound, 0, len(rounds))
	for _, r := range rounds {
		r.Status = r.DeriveStatus(now)
		if status == "" || r.Status == status {
			out = append(out, r)
		}
	}
	return out, nil
}

// Apply records a user's application. The round must be open and the request at least one lot.
// Funds are not reserved here.
func (s *Service) Apply(ctx context.Context, userID, roundID uuid.UUID, requestedShares int) (*domain.Application, error) {
	if s.LotSize > 0 && requestedShares < s.LotSize {
		return nil, domain.ErrBelowMinimumLot
	}
	if requestedShares <= 0 {
		return nil, domain.ErrBelowMinimumLot
	}
	app := &domain.Application{
		UserID:          userID,
		RoundID:         roundID,
		RequestedShares: requestedShares,
		Status:          domain.ApplicationPending,
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var r domain.IpoRound
		if err := tx.Where("round_id = ?", roundID).First(&r).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrRoundNotFound
			}
			return err
		}
		if r.DeriveStatus(s.now()) != domain.RoundOpen {
			return domain.ErrRoundNotOpen
		}
		var count int64
		if err := tx.Model(&domain.Application{}).Where("user_id = ? AND round_id = ?", userID, roundID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return domain.ErrDuplicateApplication
		}
		if err := tx.Create(app).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return domain.ErrDuplicateApplication
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return app, nil
}

// ListApplications returns every application of a round, oldest first.
func (s *Service) ListApplications(ctx context.Context, roundID uuid.UUID) ([]domain.Application, error) {
	if _, err := s.GetRound(ctx, roundID); err != nil {
		return nil, err
	}
	apps := []domain.Application{}
	err := s.DB.WithContext(ctx).Where("round_id = ?", roundID).Order("created_at ASC").Find(&apps).Error
	return apps, err
}

// ListUserApplications returns a user's applications, newest first.
func (s *Service) ListUserApplications(ctx context.Context, userID uuid.UUID) ([]domain.Application, error) {
	apps := []domain.Application{}
	err := s.DB.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&apps).Error
	return apps, err
}

// RefreshStatuses persists the time-driven transitions of every round that is not allotted.
// It returns how many rounds changed.
func (s *Service) RefreshStatuses(ctx context.Context) (int, error) {
	var rounds []domain.IpoRound
	if err := s.DB.WithContext(ctx).Where("status <> ?", domain.RoundAllotted).Find(&rounds).Error; err != nil {
		return 0, err
	}
	now := s.now()
	changed := 0
	for _, r := range rounds {
		next := r.DeriveStatus(now)
		if next == r.Status {
			continue
		}
		res := s.DB.WithContext(ctx).Model(&domain.IpoRound{}).
			Where("round_id = ? AND status = ?", r.RoundID, r.Status).
			Update("status", next)
		if res.Error != nil {
			return changed, res.Error
		}
		changed += int(res.RowsAffected)
	}
	return changed, nil
}

// DueForAllotment returns the rounds whose listing date has passed and that are not yet allotted.
func (s *Service) DueForAllotment(ctx context.Context) ([]domain.IpoRound, error) {
	var rounds []domain.IpoRound
	err := s.DB.WithContext(ctx).
		Where("status <> ?", domain.RoundAllotted).
		Order("listing_date ASC").
		Find(&rounds).Error
	if err != nil {
		return nil, err
	}
	now := s.now()
	due := rounds[:0]
	for _, r := range rounds {
		if !r.ListingDate.After(now) {
			due = append(due, r)
		}
	}
	return due, nil
}
