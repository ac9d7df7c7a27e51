package stocks

import (
	"context"
	"errors"
	"testing"

	"stockex-backend/internal/domain"
	"stockex-backend/internal/infrastructure/database/dbtest"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateGetList(t *testing.T) {
	db := dbtest.Open(t)
	svc := &Service{DB: db}
	ctx := context.Background()

	st, err := svc.Create(ctx, CreateStockInput{Symbol: " nova ", CompanyName: "Nova Labs", CurrentPrice: decimal.NewFromInt(42)})
	require.NoError(t, err)
	assert.Equal(t, "NOVA", st.Symbol)
	assert.False(t, st.IsListed)

	_, err = svc.Create(ctx, CreateStockInput{Symbol: "NOVA", CompanyName: "Again"})
	assert.True(t, errors.Is(err, domain.ErrSymbolTaken))

	got, err := svc.Get(ctx, st.StockID)
	require.NoError(t, err)
	assert.Equal(t, "Nova Labs", got.CompanyName)

	_, err = svc.Get(ctx, uuid.New())
	assert.True(t, errors.Is(err, domain.ErrStockNotFound))

	_, err = svc.Create(ctx, CreateStockInput{Symbol: "ACME", CompanyName: "Acme"})
	require.NoError(t, err)
	require.NoError(t, db.Model(&domain.Stock{}).Where("symbol = ?", "ACME").Update("is_listed", true).Error)

	all, err := svc.List(ctx, false)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "ACME", all[0].Symbol)

	listed, err := svc.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "ACME", listed[0].Symbol)
}
