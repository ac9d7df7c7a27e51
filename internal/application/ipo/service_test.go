package ipo

import (
	"context"
	"errors"
	"testing"
	"time"

	"stockex-backend/internal/domain"
	"stockex-backend/internal/infrastructure/database/dbtest"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var t0 = time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)

func setup(t *testing.T) (*Service, *gorm.DB, *time.Time) {
	t.Helper()
	db := dbtest.Open(t)
	clock := t0
	return &Service{DB: db, LotSize: 10, Now: func() time.Time { return clock }}, db, &clock
}

func seedStock(t *testing.T, db *gorm.DB, listed bool) domain.Stock {
	t.Helper()
	st := domain.Stock{Symbol: "S" + uuid.NewString()[:6], CompanyName: "Stock Co", CurrentPrice: decimal.NewFromInt(10), IsListed: listed}
	require.NoError(t, db.Create(&st).Error)
	return st
}

func validInput(stockID uuid.UUID) CreateRoundInput {
	return CreateRoundInput{
		StockID:     stockID,
		IssuePrice:  decimal.NewFromInt(25),
		TotalShares: 1000,
		OpenDate:    t0.Add(24 * time.Hour),
		CloseDate:   t0.Add(72 * time.Hour),
		ListingDate: t0.Add(96 * time.Hour),
	}
}

func TestCreateRound(t *testing.T) {
	svc, db, _ := setup(t)
	st := seedStock(t, db, false)

	r, err := svc.CreateRound(context.Background(), validInput(st.StockID))
	require.NoError(t, err)
	assert.Equal(t, domain.RoundUpcoming, r.Status)
	assert.NotEqual(t, uuid.Nil, r.RoundID)
}

func TestCreateRound_Rejects(t *testing.T) {
	svc, db, _ := setup(t)
	ctx := context.Background()
	st := seedStock(t, db, false)
	listed := seedStock(t, db, true)

	in := validInput(st.StockID)
	in.CloseDate = in.OpenDate
	_, err := svc.CreateRound(ctx, in)
	assert.True(t, errors.Is(err, domain.ErrInvalidRound))

	in = validInput(st.StockID)
	in.IssuePrice = decimal.Zero
	_, err = svc.CreateRound(ctx, in)
	assert.True(t, errors.Is(err, domain.ErrInvalidRound))

	in = validInput(st.StockID)
	in.TotalShares = 5
	_, err = svc.CreateRound(ctx, in)
	assert.True(t, errors.Is(err, domain.ErrInvalidRound))

	_, err = svc.CreateRound(ctx, validInput(uuid.New()))
	assert.True(t, errors.Is(err, domain.ErrStockNotFound))

	_, err = svc.CreateRound(ctx, validInput(listed.StockID))
	assert.True(t, errors.Is(err, domain.ErrInvalidRound))
}

func TestApply(t *testing.T) {
	svc, db, clock := setup(t)
	ctx := context.Background()
	st := seedStock(t, db, false)
	r, err := svc.CreateRound(ctx, validInput(st.StockID))
	require.NoError(t, err)
	userID := uuid.New()

	_, err = svc.Apply(ctx, userID, r.RoundID, 10)
	assert.True(t, errors.Is(err, domain.ErrRoundNotOpen), "upcoming round")

	*clock = r.OpenDate.Add(time.Hour)
	_, err = svc.Apply(ctx, userID, r.RoundID, 9)
	assert.True(t, errors.Is(err, domain.ErrBelowMinimumLot))

	app, err := svc.Apply(ctx, userID, r.RoundID, 30)
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationPending, app.Status)
	assert.Equal(t, 30, app.RequestedShares)
	assert.Zero(t, app.AllottedShares)

	_, err = svc.Apply(ctx, userID, r.RoundID, 10)
	assert.True(t, errors.Is(err, domain.ErrDuplicateApplication))

	_, err = svc.Apply(ctx, uuid.New(), uuid.New(), 10)
	assert.True(t, errors.Is(err, domain.ErrRoundNotFound))

	*clock = r.CloseDate
	_, err = svc.Apply(ctx, uuid.New(), r.RoundID, 10)
	assert.True(t, errors.Is(err, domain.ErrRoundNotOpen), "closed round")

	apps, err := svc.ListApplications(ctx, r.RoundID)
	require.NoError(t, err)
	assert.Len(t, apps, 1)

	mine, err := svc.ListUserApplications(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestRefreshStatusesAndDue(t *testing.T) {
	svc, db, clock := setup(t)
	ctx := context.Background()
	a, err := svc.CreateRound(ctx, validInput(seedStock(t, db, false).StockID))
	require.NoError(t, err)
	later := validInput(seedStock(t, db, false).StockID)
	later.OpenDate = later.OpenDate.Add(240 * time.Hour)
	later.CloseDate = later.CloseDate.Add(240 * time.Hour)
	later.ListingDate = later.ListingDate.Add(240 * time.Hour)
	b, err := svc.CreateRound(ctx, later)
	require.NoError(t, err)

	*clock = a.OpenDate.Add(time.Minute)
	n, err := svc.RefreshStatuses(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	open, err := svc.ListRounds(ctx, domain.RoundOpen)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, a.RoundID, open[0].RoundID)

	due, err := svc.DueForAllotment(ctx)
	require.NoError(t, err)
	assert.Empty(t, due)

	*clock = a.ListingDate
	n, err = svc.RefreshStatuses(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	due, err = svc.DueForAllotment(ctx)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, a.RoundID, due[0].RoundID)

	got, err := svc.GetRound(ctx, a.RoundID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoundClosed, got.Status)

	require.NoError(t, db.Model(&domain.IpoRound{}).Where("round_id = ?", a.RoundID).Update("status", domain.RoundAllotted).Error)
	due, err = svc.DueForAllotment(ctx)
	require.NoError(t, err)
	assert.Empty(t, due)

	all, err := svc.ListRounds(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, b.RoundID, all[0].RoundID)

	_, err = svc.GetRound(ctx, uuid.New())
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
