package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	TxBuy          = "buy"
	TxSell         = "sell"
	TxIpoAllotment = "ipo_allotment"
)

// Transaction records one settled buy, sell or allotment. Total is the cash moved, fee included.
type Transaction struct {
	TxID      uuid.UUID       `gorm:"column:tx_id;type:uuid;primaryKey" json:"tx_id"`
	UserID    uuid.UUID       `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	StockID   uuid.UUID       `gorm:"column:stock_id;type:uuid;not null" json:"stock_id"`
	RoundID   *uuid.UUID      `gorm:"column:round_id;type:uuid" json:"round_id,omitempty"`
	Type      string          `gorm:"column:type;type:varchar(20);not null" json:"type"`
	Quantity  int             `gorm:"column:quantity;not null" json:"quantity"`
	Price     decimal.Decimal `gorm:"column:price;type:numeric(20,4);not null" json:"price"`
	Fee       decimal.Decimal `gorm:"column:fee;type:numeric(20,4);not null;default:0" json:"fee"`
	Total     decimal.Decimal `gorm:"column:total;type:numeric(20,4);not null" json:"total"`
	CreatedAt time.Time       `gorm:"column:created_at" json:"created_at"`
}

func (Transaction) TableName() string {
	return "transactions"
}

func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.TxID == uuid.Nil {
		t.TxID = uuid.New()
	}
	return nil
}
