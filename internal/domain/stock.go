package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Stock is reference data for one tradable company. IsListed flips to true when its IPO is allotted.
type Stock struct {
	StockID      uuid.UUID       `gorm:"column:stock_id;type:uuid;primaryKey" json:"stock_id"`
	Symbol       string          `gorm:"column:symbol;not null;uniqueIndex" json:"symbol"`
	CompanyName  string          `gorm:"column:company_name;not null" json:"company_name"`
	CurrentPrice decimal.Decimal `gorm:"column:current_price;type:numeric(20,4);not null;default:0" json:"current_price"`
	IsListed     bool            `gorm:"column:is_listed;not null;default:false" json:"is_listed"`
	CreatedAt    time.Time       `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"column:updated_at" json:"updated_at"`
}

func (Stock) TableName() string {
	return "stocks"
}

func (s *Stock) BeforeCreate(tx *gorm.DB) error {
	if s.StockID == uuid.Nil {
		s.StockID = uuid.New()
	}
	return nil
}
