package allotment

import (
	"context"
	"errors"

	"stockex-backend/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LoadPool returns the pending applications of a round, oldest first.
// Pass the transaction handle when called inside one.
func LoadPool(ctx context.Context, db *gorm.DB, roundID uuid.UUID) ([]domain.Application, error) {
	var count int64
	if err := db.WithContext(ctx).Model(&domain.IpoRound{}).Where("round_id = ?", roundID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, domain.ErrRoundNotFound
	}

	var apps []domain.Application
	err := db.WithContext(ctx).
		Where("round_id = ? AND status = ?", roundID, domain.ApplicationPending).
		Order("created_at ASC, application_id ASC").
		Find(&apps).Error
	if err != nil {
		return nil, err
	}
	return apps, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
