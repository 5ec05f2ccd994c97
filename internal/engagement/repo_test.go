package engagement

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/marcoberry/barberhub-backend/pkg/enums"
)

func setupEngagementTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS engagement_counters (
  id TEXT PRIMARY KEY DEFAULT (lower(hex(randomblob(16)))),
  barber_id TEXT NOT NULL,
  day DATETIME NOT NULL,
  kind TEXT NOT NULL,
  count INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE UNIQUE INDEX IF NOT EXISTS ux_engagement_barber_day_kind ON engagement_counters (barber_id, day, kind);`
	require.NoError(t, db.Exec(schema).Error)

	t.Cleanup(func() {
		db.Exec("DELETE FROM engagement_counters")
	})

	return db
}

func TestRepositoryIncrementUpserts(t *testing.T) {
	repo := NewRepository(setupEngagementTestDB(t))
	ctx := context.Background()

	barberID := uuid.New()
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Increment(ctx, barberID, day, enums.EngagementKindClick))
	require.NoError(t, repo.Increment(ctx, barberID, day, enums.EngagementKindClick))
	require.NoError(t, repo.Increment(ctx, barberID, day, enums.EngagementKindImpression))

	totals, err := repo.Totals(ctx, barberID, day.Add(-time.Hour))
	require.NoError(t, err)
	byKind := map[enums.EngagementKind]int64{}
	for _, total := range totals {
		byKind[total.Kind] = total.Total
	}
	assert.Equal(t, int64(2), byKind[enums.EngagementKindClick])
	assert.Equal(t, int64(1), byKind[enums.EngagementKindImpression])
}

func TestRepositoryTotalsRespectWindow(t *testing.T) {
	repo := NewRepository(setupEngagementTestDB(t))
	ctx := context.Background()

	barberID := uuid.New()
	old := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Increment(ctx, barberID, old, enums.EngagementKindClick))
	require.NoError(t, repo.Increment(ctx, barberID, recent, enums.EngagementKindClick))

	totals, err := repo.Totals(ctx, barberID, recent.Add(-24*time.Hour))
	require.NoError(t, err)
	require.Len(t, totals, 1)
	assert.Equal(t, int64(1), totals[0].Total)
}

func TestRepositoryTotalsScopedToBarber(t *testing.T) {
	repo := NewRepository(setupEngagementTestDB(t))
	ctx := context.Background()

	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	barberID := uuid.New()
	require.NoError(t, repo.Increment(ctx, barberID, day, enums.EngagementKindClick))
	require.NoError(t, repo.Increment(ctx, uuid.New(), day, enums.EngagementKindClick))

	totals, err := repo.Totals(ctx, barberID, day.Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, totals, 1)
	assert.Equal(t, int64(1), totals[0].Total)
}

func TestRepositoryListDays(t *testing.T) {
	repo := NewRepository(setupEngagementTestDB(t))
	ctx := context.Background()

	barberID := uuid.New()
	first := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	second := first.Add(24 * time.Hour)
	require.NoError(t, repo.Increment(ctx, barberID, first, enums.EngagementKindClick))
	require.NoError(t, repo.Increment(ctx, barberID, second, enums.EngagementKindClick))

	rows, err := repo.ListDays(ctx, barberID, first.Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.True(t, rows[0].Day.After(rows[1].Day))
}
