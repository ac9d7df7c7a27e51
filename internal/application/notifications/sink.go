package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"stockex-backend/internal/application/emails"
	"stockex-backend/internal/domain"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Sink delivers a message to one channel. Name must be stable: it is recorded in Message.Delivered.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, m Message) error
}

// DBSink stores the message as an in-app Notification.
// The message id becomes the row id, so a redelivery is a no-op.
type DBSink struct {
	DB *gorm.DB
}

func (s *DBSink) Name() string { return "inapp" }

func (s *DBSink) Deliver(ctx context.Context, m Message) error {
	payload, err := json.Marshal(m.Payload)
	if err != nil {
		return err
	}
	n := domain.Notification{
		NotificationID: m.ID,
		UserID:         m.UserID,
		Kind:           m.Kind,
		Payload:        datatypes.JSON(payload),
	}
	err = s.DB.WithContext(ctx).Create(&n).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil
	}
	return err
}

// EmailSink mails allotment results. Other kinds are ignored.
type EmailSink struct {
	DB     *gorm.DB
	Sender emails.Sender
}

func (s *EmailSink) Name() string { return "email" }

func (s *EmailSink) Deliver(ctx context.Context, m Message) error {
	if m.Kind != domain.NotificationIpoAllotted {
		return nil
	}
	roundID, err := uuid.Parse(fmt.Sprint(m.Payload["round_id"]))
	if err != nil {
		return fmt.Errorf("email sink: bad round_id: %w", err)
	}
	db := s.DB.WithContext(ctx)

	var u domain.User
	if err := db.Where("user_id = ?", m.UserID).First(&u).Error; err != nil {
		return err
	}
	var round domain.IpoRound
	if err := db.Where("round_id = ?", roundID).First(&round).Error; err != nil {
		return err
	}
	var stock domain.Stock
	if err := db.Where("stock_id = ?", round.StockID).First(&stock).Error; err != nil {
		return err
	}
	return s.Sender.SendIpoAllotted(ctx, u.Email, u.Fullname, emails.Allotment{
		Symbol:         stock.Symbol,
		CompanyName:    stock.CompanyName,
		AllottedShares: intFrom(m.Payload["allotted_shares"]),
		IssuePrice:     round.IssuePrice,
	})
}

// intFrom reads a JSON number that may have round-tripped through the queue as float64.
func intFrom(v interface{}) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	case json.Number:
		i, _ := n.Int64()
		return int(i)
	}
	return 0
}
