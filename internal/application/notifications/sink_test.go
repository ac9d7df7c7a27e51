package notifications

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"stockex-backend/internal/application/emails"
	"stockex-backend/internal/domain"
	"stockex-backend/internal/infrastructure/database/dbtest"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	to        string
	allotment emails.Allotment
}

func (r *recordingSender) SendWelcome(context.Context, string, string) error { return nil }

func (r *recordingSender) SendIpoAllotted(_ context.Context, to, _ string, a emails.Allotment) error {
	r.to = to
	r.allotment = a
	return nil
}

func TestDBSink_IdempotentByMessageID(t *testing.T) {
	db := dbtest.Open(t)
	sink := &DBSink{DB: db}
	m := Message{ID: uuid.New(), UserID: uuid.New(), Kind: domain.NotificationIpoAllotted,
		Payload: map[string]interface{}{"allotted_shares": 10}}

	require.NoError(t, sink.Deliver(context.Background(), m))
	require.NoError(t, sink.Deliver(context.Background(), m))

	var rows []domain.Notification
	require.NoError(t, db.Where("user_id = ?", m.UserID).Find(&rows).Error)
	require.Len(t, rows, 1)
	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(rows[0].Payload, &payload))
	assert.Equal(t, float64(10), payload["allotted_shares"])
}

func TestEmailSink_Allotment(t *testing.T) {
	db := dbtest.Open(t)
	user := domain.User{Fullname: "Ada", Email: "ada@example.com", PasswordHash: "x", Role: "investor"}
	require.NoError(t, db.Create(&user).Error)
	stock := domain.Stock{Symbol: "NOVA", CompanyName: "Nova", CurrentPrice: decimal.NewFromInt(100)}
	require.NoError(t, db.Create(&stock).Error)
	open := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	round := domain.IpoRound{StockID: stock.StockID, IssuePrice: decimal.NewFromInt(95), TotalShares: 100,
		OpenDate: open, CloseDate: open.AddDate(0, 0, 5), ListingDate: open.AddDate(0, 0, 9), Status: domain.RoundAllotted}
	require.NoError(t, db.Create(&round).Error)

	sender := &recordingSender{}
	sink := &EmailSink{DB: db, Sender: sender}
	err := sink.Deliver(context.Background(), Message{
		ID: uuid.New(), UserID: user.UserID, Kind: domain.NotificationIpoAllotted,
		Payload: map[string]interface{}{"round_id": round.RoundID.String(), "allotted_shares": float64(10)},
	})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", sender.to)
	assert.Equal(t, "NOVA", sender.allotment.Symbol)
	assert.Equal(t, 10, sender.allotment.AllottedShares)
	assert.True(t, sender.allotment.IssuePrice.Equal(decimal.NewFromInt(95)))
}

func TestEmailSink_IgnoresOtherKinds(t *testing.T) {
	sink := &EmailSink{Sender: &recordingSender{}}
	assert.NoError(t, sink.Deliver(context.Background(), Message{Kind: "something_else"}))
}

func TestEmailSink_BadRoundID(t *testing.T) {
	sink := &EmailSink{DB: dbtest.Open(t), Sender: &recordingSender{}}
	err := sink.Deliver(context.Background(), Message{Kind: domain.NotificationIpoAllotted,
		Payload: map[string]interface{}{"round_id": "nope"}})
	assert.Error(t, err)
}
