package payments

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/marcoberry/barberhub-backend/pkg/db/models"
	"github.com/marcoberry/barberhub-backend/pkg/enums"
)

func setupPaymentsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS payments (
  id TEXT PRIMARY KEY,
  barber_id TEXT NOT NULL,
  reference TEXT NOT NULL,
  amount TEXT NOT NULL,
  currency TEXT NOT NULL,
  status TEXT NOT NULL,
  paid_at DATETIME,
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE UNIQUE INDEX IF NOT EXISTS ux_payments_reference ON payments (reference);`
	require.NoError(t, db.Exec(schema).Error)

	t.Cleanup(func() {
		db.Exec("DELETE FROM payments")
	})

	return db
}

func newTestPayment(barberID uuid.UUID, reference string) *models.Payment {
	paidAt := time.Now().UTC()
	return &models.Payment{
		ID:        uuid.New(),
		BarberID:  barberID,
		Reference: reference,
		Amount:    decimal.NewFromInt(5000),
		Currency:  "NGN",
		Status:    enums.PaymentStatusSuccess,
		PaidAt:    &paidAt,
	}
}

func TestRepositoryCreateAndGetByReference(t *testing.T) {
	repo := NewRepository(setupPaymentsTestDB(t))
	ctx := context.Background()

	barberID := uuid.New()
	payment := newTestPayment(barberID, "trx_"+uuid.NewString())
	require.NoError(t, repo.Create(ctx, payment))

	loaded, err := repo.GetByReference(ctx, payment.Reference)
	require.NoError(t, err)
	assert.Equal(t, payment.ID, loaded.ID)
	assert.Equal(t, barberID, loaded.BarberID)
	assert.True(t, loaded.Amount.Equal(decimal.NewFromInt(5000)))

	_, err = repo.GetByReference(ctx, "trx_missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepositoryReferenceUnique(t *testing.T) {
	repo := NewRepository(setupPaymentsTestDB(t))
	ctx := context.Background()

	reference := "trx_" + uuid.NewString()
	require.NoError(t, repo.Create(ctx, newTestPayment(uuid.New(), reference)))

	err := repo.Create(ctx, newTestPayment(uuid.New(), reference))
	require.Error(t, err)
}

func TestRepositoryListByBarber(t *testing.T) {
	repo := NewRepository(setupPaymentsTestDB(t))
	ctx := context.Background()

	barberID := uuid.New()
	require.NoError(t, repo.Create(ctx, newTestPayment(barberID, "trx_"+uuid.NewString())))
	require.NoError(t, repo.Create(ctx, newTestPayment(barberID, "trx_"+uuid.NewString())))
	require.NoError(t, repo.Create(ctx, newTestPayment(uuid.New(), "trx_"+uuid.NewString())))

	rows, err := repo.ListByBarber(ctx, barberID)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	for _, row := range rows {
		assert.Equal(t, barberID, row.BarberID)
	}
}
