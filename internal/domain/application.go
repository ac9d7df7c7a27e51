package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ApplicationPending     = "pending"
	ApplicationAllotted    = "allotted"
	ApplicationNotAllotted = "not_allotted"
)

// Application is one user's request for shares in a round. It changes status exactly once, during allotment.
// SettledAt is stamped when the allotted quantity has been moved into the user's holdings.
type Application struct {
	ApplicationID   uuid.UUID  `gorm:"column:application_id;type:uuid;primaryKey" json:"application_id"`
	UserID          uuid.UUID  `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_application_user_round" json:"user_id"`
	RoundID         uuid.UUID  `gorm:"column:round_id;type:uuid;not null;uniqueIndex:idx_application_user_round;index" json:"round_id"`
	RequestedShares int        `gorm:"column:requested_shares;not null" json:"requested_shares"`
	Status          string     `gorm:"column:status;type:varchar(20);not null;default:pending" json:"status"`
	AllottedShares  int        `gorm:"column:allotted_shares;not null;default:0" json:"allotted_shares"`
	SettledAt       *time.Time `gorm:"column:settled_at" json:"settled_at"`
	CreatedAt       time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"column:updated_at" json:"updated_at"`
}

func (Application) TableName() string {
	return "ipo_applications"
}

func (a *Application) BeforeCreate(tx *gorm.DB) error {
	if a.ApplicationID == uuid.Nil {
		a.ApplicationID = uuid.New()
	}
	return nil
}
