package notifications

import (
	"context"
	"errors"
	"testing"
	"time"

	"stockex-backend/internal/domain"
	"stockex-backend/internal/infrastructure/database/dbtest"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_ListAndMarkRead(t *testing.T) {
	db := dbtest.Open(t)
	userID := uuid.New()
	base := time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)
	older := domain.Notification{UserID: userID, Kind: "a", CreatedAt: base}
	newer := domain.Notification{UserID: userID, Kind: "b", CreatedAt: base.Add(time.Minute)}
	require.NoError(t, db.Create(&older).Error)
	require.NoError(t, db.Create(&newer).Error)
	require.NoError(t, db.Create(&domain.Notification{UserID: uuid.New(), Kind: "other"}).Error)

	readAt := base.Add(time.Hour)
	svc := &Service{DB: db, Now: func() time.Time { return readAt }}
	ctx := context.Background()

	all, err := svc.List(ctx, userID, false)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "b", all[0].Kind)

	n, err := svc.MarkRead(ctx, userID, older.NotificationID)
	require.NoError(t, err)
	require.NotNil(t, n.ReadAt)
	assert.True(t, n.ReadAt.Equal(readAt))

	svc.Now = func() time.Time { return readAt.Add(time.Hour) }
	again, err := svc.MarkRead(ctx, userID, older.NotificationID)
	require.NoError(t, err)
	assert.True(t, again.ReadAt.Equal(readAt))

	unread, err := svc.List(ctx, userID, true)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, "b", unread[0].Kind)
}

func TestService_MarkReadOtherUser(t *testing.T) {
	db := dbtest.Open(t)
	n := domain.Notification{UserID: uuid.New(), Kind: "a"}
	require.NoError(t, db.Create(&n).Error)

	svc := &Service{DB: db}
	_, err := svc.MarkRead(context.Background(), uuid.New(), n.NotificationID)
	assert.True(t, errors.Is(err, domain.ErrNotificationNotFound))
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
