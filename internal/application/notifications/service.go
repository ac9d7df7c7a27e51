package notifications

import (
	"context"
	"time"

	"stockex-backend/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service reads and acknowledges in-app notifications.
type Service struct {
	DB  *gorm.DB
	Now func() time.Time
}

// List returns the user's notifications, newest first.
func (s *Service) List(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]domain.Notification, error) {
	q := s.DB.WithContext(ctx).Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where("read_at IS NULL")
	}
	out := []domain.Notification{}
	if err := q.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// MarkRead stamps read_at once. Marking an already read notification is a no-op.
func (s *Service) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) (*domain.Notification, error) {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	var n domain.Notification
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("notification_id = ? AND user_id = ?", notificationID, userID).First(&n).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return domain.ErrNotificationNotFound
			}
			return err
		}
		if n.ReadAt != nil {
			return nil
		}
		t := now().UTC()
		if err := tx.Model(&n).Where("read_at IS NULL").Update("read_at", t).Error; err != nil {
			return err
		}
		n.ReadAt = &t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &n, nil
}
