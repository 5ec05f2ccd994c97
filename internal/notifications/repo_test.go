package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/marcoberry/barberhub-backend/pkg/db/models"
)

func setupNotificationsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS notifications (
  id TEXT PRIMARY KEY,
  barber_id TEXT NOT NULL,
  message TEXT NOT NULL,
  read_at DATETIME,
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);`
	require.NoError(t, db.Exec(schema).Error)

	t.Cleanup(func() {
		db.Exec("DELETE FROM notifications")
	})

	return db
}

func seedNotification(t *testing.T, db *gorm.DB, barberID uuid.UUID, message string, createdAt time.Time, readAt *time.Time) models.Notification {
	t.Helper()
	notification := models.Notification{
		ID:        uuid.New(),
		BarberID:  barberID,
		Message:   message,
		ReadAt:    readAt,
		CreatedAt: createdAt,
	}
	require.NoError(t, db.Create(&notification).Error)
	return notification
}

func TestRepositoryListPagination(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	barberID := uuid.New()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		seedNotification(t, db, barberID, "msg", base.Add(time.Duration(i)*time.Minute), nil)
	}
	seedNotification(t, db, uuid.New(), "other barber", base, nil)

	rows, cursor, err := repo.List(ctx, listNotificationsParams{BarberID: barberID, Limit: 2})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.NotNil(t, cursor)
	assert.True(t, rows[0].CreatedAt.After(rows[1].CreatedAt))

	rest, next, err := repo.List(ctx, listNotificationsParams{BarberID: barberID, Limit: 2, Cursor: cursor})
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Nil(t, next)
}

func TestRepositoryListUnreadOnly(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	barberID := uuid.New()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	read := base.Add(time.Minute)
	seedNotification(t, db, barberID, "read", base, &read)
	unread := seedNotification(t, db, barberID, "unread", base.Add(2*time.Minute), nil)

	rows, _, err := repo.List(ctx, listNotificationsParams{BarberID: barberID, UnreadOnly: true})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, unread.ID, rows[0].ID)
}

func TestRepositoryMarkRead(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	barberID := uuid.New()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	notification := seedNotification(t, db, barberID, "msg", now.Add(-time.Hour), nil)

	mark, err := repo.MarkRead(ctx, barberID, notification.ID, now)
	require.NoError(t, err)
	assert.True(t, mark.Found)
	assert.True(t, mark.Updated)

	again, err := repo.MarkRead(ctx, barberID, notification.ID, now)
	require.NoError(t, err)
	assert.True(t, again.Found)
	assert.False(t, again.Updated)

	missing, err := repo.MarkRead(ctx, barberID, uuid.New(), now)
	require.NoError(t, err)
	assert.False(t, missing.Found)

	wrongBarber, err := repo.MarkRead(ctx, uuid.New(), notification.ID, now)
	require.NoError(t, err)
	assert.False(t, wrongBarber.Found)
}

func TestRepositoryMarkAllRead(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	barberID := uuid.New()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	seedNotification(t, db, barberID, "a", now.Add(-2*time.Hour), nil)
	seedNotification(t, db, barberID, "b", now.Add(-time.Hour), nil)

	count, err := repo.MarkAllRead(ctx, barberID, now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	again, err := repo.MarkAllRead(ctx, barberID, now)
	require.NoError(t, err)
	assert.Zero(t, again)
}

func TestRepositoryDeleteReadBefore(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	barberID := uuid.New()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	oldRead := now.Add(-40 * 24 * time.Hour)
	recentRead := now.Add(-time.Hour)

	seedNotification(t, db, barberID, "old read", oldRead, &oldRead)
	kept := seedNotification(t, db, barberID, "recent read", recentRead, &recentRead)
	unread := seedNotification(t, db, barberID, "old unread", oldRead, nil)

	count, err := repo.DeleteReadBefore(ctx, now.Add(-30*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	var remaining []models.Notification
	require.NoError(t, db.Where("barber_id = ?", barberID).Find(&remaining).Error)
	require.Len(t, remaining, 2)
	ids := []uuid.UUID{remaining[0].ID, remaining[1].ID}
	assert.Contains(t, ids, kept.ID)
	assert.Contains(t, ids, unread.ID)
}
