package transactions

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	txsvc "stockex-backend/internal/application/transactions"
	"stockex-backend/internal/domain"
	"stockex-backend/internal/infrastructure/database/dbtest"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestList(t *testing.T) {
	db := dbtest.Open(t)
	userID := uuid.New()
	st := domain.Stock{Symbol: "NOVA", CompanyName: "Nova", CurrentPrice: decimal.NewFromInt(10)}
	require.NoError(t, db.Create(&st).Error)
	base := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	for i, typ := range []string{domain.TxIpoAllotment, domain.TxSell} {
		require.NoError(t, db.Create(&domain.Transaction{
			UserID: userID, StockID: st.StockID, Type: typ, Quantity: 10,
			Price: decimal.NewFromInt(10), Total: decimal.NewFromInt(100),
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}).Error)
	}
	require.NoError(t, db.Create(&domain.Transaction{
		UserID: uuid.New(), StockID: st.StockID, Type: domain.TxBuy, Quantity: 1,
		Price: decimal.NewFromInt(10), Total: decimal.NewFromInt(10),
	}).Error)

	h := &Handlers{Service: &txsvc.Service{DB: db}}
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user", map[string]interface{}{"user_id": userID.String()})
		return c.Next()
	})
	app.Get("/transactions", h.List)

	resp, err := app.Test(httptest.NewRequest("GET", "/transactions", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	data := out["data"].([]interface{})
	require.Len(t, data, 2)
	first := data[0].(map[string]interface{})
	assert.Equal(t, domain.TxSell, first["type"])
	assert.Equal(t, "NOVA", first["symbol"])
}

func TestList_Unauthorized(t *testing.T) {
	h := &Handlers{Service: &txsvc.Service{DB: dbtest.Open(t)}}
	app := fiber.New()
	app.Get("/transactions", h.List)
	resp, err := app.Test(httptest.NewRequest("GET", "/transactions", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
