package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Portfolio holds a user's cash. One per user, created at registration.
type Portfolio struct {
	PortfolioID uuid.UUID       `gorm:"column:portfolio_id;type:uuid;primaryKey" json:"portfolio_id"`
	UserID      uuid.UUID       `gorm:"column:user_id;type:uuid;not null;uniqueIndex" json:"user_id"`
	Cash        decimal.Decimal `gorm:"column:cash;type:numeric(20,4);not null;default:0" json:"cash"`
	CreatedAt   time.Time       `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"column:updated_at" json:"updated_at"`
}

func (Portfolio) TableName() string {
	return "portfolios"
}

func (p *Portfolio) BeforeCreate(tx *gorm.DB) error {
	if p.PortfolioID == uuid.Nil {
		p.PortfolioID = uuid.New()
	}
	return nil
}
