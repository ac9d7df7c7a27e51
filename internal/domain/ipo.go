package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	RoundUpcoming = "upcoming"
	RoundOpen     = "open"
	RoundClosed   = "closed"
	RoundAllotted = "allotted"
)

// IpoRound is one company's public offering. TotalShares is fixed once applications begin.
type IpoRound struct {
	RoundID     uuid.UUID       `gorm:"column:round_id;type:uuid;primaryKey" json:"round_id"`
	StockID     uuid.UUID       `gorm:"column:stock_id;type:uuid;not null;index" json:"stock_id"`
	IssuePrice  decimal.Decimal `gorm:"column:issue_price;type:numeric(20,4);not null" json:"issue_price"`
	TotalShares int             `gorm:"column:total_shares;not null" json:"total_shares"`
	OpenDate    time.Time       `gorm:"column:open_date;not null" json:"open_date"`
	CloseDate   time.Time       `gorm:"column:close_date;not null" json:"close_date"`
	ListingDate time.Time       `gorm:"column:listing_date;not null;index" json:"listing_date"`
	Status      string          `gorm:"column:status;type:varchar(20);not null;default:upcoming" json:"status"`
	AllottedAt  *time.Time      `gorm:"column:allotted_at" json:"allotted_at"`
	CreatedAt   time.Time       `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"column:updated_at" json:"updated_at"`
}

func (IpoRound) TableName() string {
	return "ipo_rounds"
}

func (r *IpoRound) BeforeCreate(tx *gorm.DB) error {
	if r.RoundID == uuid.Nil {
		r.RoundID = uuid.New()
	}
	return nil
}

// DeriveStatus returns the time-driven status at now. Allotted is terminal and never derived away.
func (r IpoRound) DeriveStatus(now time.Time) string {
	switch {
	case r.Status == RoundAllotted:
		return RoundAllotted
	case now.Before(r.OpenDate):
		return RoundUpcoming
	case now.Before(r.CloseDate):
		return RoundOpen
	default:
		return RoundClosed
	}
}

// ValidDates reports whether open < close < listing.
func (r IpoRound) ValidDates() bool {
	return r.OpenDate.Before(r.CloseDate) && r.CloseDate.Before(r.ListingDate)
}
