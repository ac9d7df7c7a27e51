package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Holding is a position in one stock. Unique per (portfolio, stock); removed when quantity reaches zero.
type Holding struct {
	HoldingID    uuid.UUID       `gorm:"column:holding_id;type:uuid;primaryKey" json:"holding_id"`
	PortfolioID  uuid.UUID       `gorm:"column:portfolio_id;type:uuid;not null;uniqueIndex:idx_holding_portfolio_stock" json:"portfolio_id"`
	StockID      uuid.UUID       `gorm:"column:stock_id;type:uuid;not null;uniqueIndex:idx_holding_portfolio_stock" json:"stock_id"`
	Quantity     int             `gorm:"column:quantity;not null;default:0" json:"quantity"`
	AveragePrice decimal.Decimal `gorm:"column:average_price;type:numeric(20,4);not null;default:0" json:"average_price"`
	CreatedAt    time.Time       `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"column:updated_at" json:"updated_at"`
}

func (Holding) TableName() string {
	return "holdings"
}

// BeforeCreate: never insert zero UUID for primary key; generate random when not set.
func (h *Holding) BeforeCreate(tx *gorm.DB) error {
	if h.HoldingID == uuid.Nil {
		h.HoldingID = uuid.New()
	}
	return nil
}
