package payments

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/marcoberry/barberhub-backend/internal/barbers"
	"github.com/marcoberry/barberhub-backend/pkg/config"
	"github.com/marcoberry/barberhub-backend/pkg/logger"
	"github.com/marcoberry/barberhub-backend/pkg/db/models"
	"github.com/marcoberry/barberhub-backend/pkg/enums"
	pkgerrors "github.com/marcoberry/barberhub-backend/pkg/errors"
	"github.com/marcoberry/barberhub-backend/pkg/lifecycle"
	"github.com/marcoberry/barberhub-backend/pkg/paystack"
)

type stubPaymentsRepo struct {
	byReference map[string]*models.Payment
	created     []models.Payment
}

func newStubPaymentsRepo() *stubPaymentsRepo {
	return &stubPaymentsRepo{byReference: make(map[string]*models.Payment)}
}

func (s *stubPaymentsRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubPaymentsRepo) Create(ctx context.Context, payment *models.Payment) error {
	if _, exists := s.byReference[payment.Reference]; exists {
		return errors.New(`duplicate key value violates unique constraint "ux_payments_reference"`)
	}
	payment.ID = uuid.New()
	s.byReference[payment.Reference] = payment
	s.created = append(s.created, *payment)
	return nil
}

func (s *stubPaymentsRepo) GetByReference(ctx context.Context, reference string) (*models.Payment, error) {
	payment, ok := s.byReference[reference]
	if !ok {
		return nil, ErrNotFound
	}
	return payment, nil
}

func (s *stubPaymentsRepo) ListByBarber(ctx context.Context, barberID uuid.UUID) ([]models.Payment, error) {
	var rows []models.Payment
	for _, payment := range s.created {
		if payment.BarberID == barberID {
			rows = append(rows, payment)
		}
	}
	return rows, nil
}

func (s *stubPaymentsRepo) CountSuccessful(ctx context.Context) (int64, error) {
	return int64(len(s.created)), nil
}

type stubBarberStore struct {
	barbers map[uuid.UUID]*models.Barber
}

func newStubBarberStore() *stubBarberStore {
	return &stubBarberStore{barbers: make(map[uuid.UUID]*models.Barber)}
}

func (s *stubBarberStore) WithTx(tx *gorm.DB) barbers.Repository { return s }

func (s *stubBarberStore) Create(ctx context.Context, barber *models.Barber) error {
	s.barbers[barber.ID] = barber
	return nil
}

func (s *stubBarberStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Barber, error) {
	barber, ok := s.barbers[id]
	if !ok {
		return nil, barbers.ErrNotFound
	}
	return barber, nil
}

func (s *stubBarberStore) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Barber, error) {
	return s.GetByID(ctx, id)
}

func (s *stubBarberStore) GetByPhone(ctx context.Context, phone string) (*models.Barber, error) {
	return nil, barbers.ErrNotFound
}

func (s *stubBarberStore) ListPotentiallyVisible(ctx context.Context, now time.Time) ([]models.Barber, error) {
	return nil, nil
}

func (s *stubBarberStore) ListAll(ctx context.Context) ([]models.Barber, error) { return nil, nil }

func (s *stubBarberStore) ListLifecycleCandidates(ctx context.Context, now time.Time, limit int) ([]models.Barber, error) {
	return nil, nil
}

func (s *stubBarberStore) UpdateLifecycle(ctx context.Context, id uuid.UUID, result lifecycle.Result) error {
	return nil
}

func (s *stubBarberStore) UpdateLifecycleGuarded(ctx context.Context, id uuid.UUID, storedActive, storedVisible bool, result lifecycle.Result) (bool, error) {
	return false, nil
}

func (s *stubBarberStore) UpdateSubscriptionExpiry(ctx context.Context, id uuid.UUID, expiresAt time.Time, result lifecycle.Result) error {
	barber, ok := s.barbers[id]
	if !ok {
		return barbers.ErrNotFound
	}
	barber.SubscriptionExpiresAt = &expiresAt
	barber.SubscriptionActive = result.SubscriptionActive
	barber.Visible = result.Visible
	return nil
}

func (s *stubBarberStore) Save(ctx context.Context, barber *models.Barber) error { return nil }

func (s *stubBarberStore) Delete(ctx context.Context, id uuid.UUID) error { return nil }

func (s *stubBarberStore) CreateRating(ctx context.Context, rating *models.BarberRating) error {
	return nil
}

func (s *stubBarberStore) AverageRating(ctx context.Context, barberID uuid.UUID) (float64, error) {
	return 0, nil
}

func (s *stubBarberStore) UpdateAverageRating(ctx context.Context, barberID uuid.UUID, average float64) error {
	return nil
}

func (s *stubBarberStore) CreateReview(ctx context.Context, review *models.BarberReview) error {
	return nil
}

func (s *stubBarberStore) ListReviews(ctx context.Context, barberID uuid.UUID) ([]models.BarberReview, error) {
	return nil, nil
}

type stubVerifier struct {
	verification *paystack.Verification
	err          error
	calls        int
}

func (s *stubVerifier) VerifyTransaction(ctx context.Context, reference string) (*paystack.Verification, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.verification, nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

type stubNotifier struct {
	messages []string
	fail     bool
}

func (s *stubNotifier) Append(ctx context.Context, barberID uuid.UUID, message string) error {
	if s.fail {
		return errors.New("notification store down")
	}
	s.messages = append(s.messages, message)
	return nil
}

var testSubCfg = config.SubscriptionConfig{
	TrialDuration: 336 * time.Hour,
	RenewalPeriod: 720 * time.Hour,
	PriceKobo:     500000,
	Currency:      "NGN",
}

func successfulVerification(reference string) *paystack.Verification {
	return &paystack.Verification{
		Reference: reference,
		Status:    enums.PaymentStatusSuccess,
		Amount:    decimal.NewFromInt(5000),
		Currency:  "NGN",
	}
}

func newReconcileFixture(t *testing.T, now time.Time, verifier *stubVerifier) (*service, *stubPaymentsRepo, *stubBarberStore, *stubNotifier) {
	t.Helper()
	paymentsRepo := newStubPaymentsRepo()
	barberStore := newStubBarberStore()
	notifier := &stubNotifier{}

	svc, err := NewService(paymentsRepo, barberStore, verifier, notifier, testLogger(), stubTxRunner{}, testSubCfg)
	require.NoError(t, err)
	impl := svc.(*service)
	impl.now = func() time.Time { return now }
	return impl, paymentsRepo, barberStore, notifier
}

func seedBarber(store *stubBarberStore, trial, sub *time.Time) *models.Barber {
	barber := &models.Barber{
		ID:                    uuid.New(),
		Name:                  "Seeded",
		Phone:                 "+2348012345678",
		TrialExpiresAt:        trial,
		SubscriptionExpiresAt: sub,
	}
	store.barbers[barber.ID] = barber
	return barber
}

func TestReconcile(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("first payment starts the paid window from now", func(t *testing.T) {
		verifier := &stubVerifier{verification: successfulVerification("ref-1")}
		svc, paymentsRepo, barberStore, notifier := newReconcileFixture(t, now, verifier)
		expiredTrial := now.Add(-time.Hour)
		barber := seedBarber(barberStore, &expiredTrial, nil)

		result, err := svc.Reconcile(context.Background(), barber.ID, "ref-1")
		require.NoError(t, err)

		assert.Equal(t, now.Add(720*time.Hour), result.SubscriptionExpiresAt)
		assert.Equal(t, lifecycle.StatusActivePaid, result.Status)
		assert.True(t, result.Visible)
		assert.True(t, barberStore.barbers[barber.ID].SubscriptionActive)
		require.Len(t, paymentsRepo.created, 1)
		assert.Equal(t, "ref-1", paymentsRepo.created[0].Reference)
		assert.Len(t, notifier.messages, 1)
	})

	t.Run("renewal extends from the current expiry, not from now", func(t *testing.T) {
		verifier := &stubVerifier{verification: successfulVerification("ref-2")}
		svc, _, barberStore, _ := newReconcileFixture(t, now, verifier)
		remaining := now.Add(10 * 24 * time.Hour)
		barber := seedBarber(barberStore, nil, &remaining)

		result, err := svc.Reconcile(context.Background(), barber.ID, "ref-2")
		require.NoError(t, err)
		assert.Equal(t, remaining.Add(720*time.Hour), result.SubscriptionExpiresAt)
	})

	t.Run("lapsed subscription restarts from now", func(t *testing.T) {
		verifier := &stubVerifier{verification: successfulVerification("ref-3")}
		svc, _, barberStore, _ := newReconcileFixture(t, now, verifier)
		lapsed := now.Add(-5 * 24 * time.Hour)
		barber := seedBarber(barberStore, nil, &lapsed)

		result, err := svc.Reconcile(context.Background(), barber.ID, "ref-3")
		require.NoError(t, err)
		assert.Equal(t, now.Add(720*time.Hour), result.SubscriptionExpiresAt)
	})

	t.Run("replayed reference only extends once", func(t *testing.T) {
		verifier := &stubVerifier{verification: successfulVerification("ref-4")}
		svc, paymentsRepo, barberStore, _ := newReconcileFixture(t, now, verifier)
		barber := seedBarber(barberStore, nil, nil)

		first, err := svc.Reconcile(context.Background(), barber.ID, "ref-4")
		require.NoError(t, err)

		_, err = svc.Reconcile(context.Background(), barber.ID, "ref-4")
		require.Error(t, err)
		assert.Equal(t, pkgerrors.CodeDuplicateTransaction, pkgerrors.As(err).Code())

		assert.Len(t, paymentsRepo.created, 1)
		require.NotNil(t, barberStore.barbers[barber.ID].SubscriptionExpiresAt)
		assert.Equal(t, first.SubscriptionExpiresAt, *barberStore.barbers[barber.ID].SubscriptionExpiresAt)
	})

	t.Run("non-success status is rejected without writes", func(t *testing.T) {
		verification := successfulVerification("ref-5")
		verification.Status = enums.PaymentStatusFailed
		verifier := &stubVerifier{verification: verification}
		svc, paymentsRepo, barberStore, _ := newReconcileFixture(t, now, verifier)
		barber := seedBarber(barberStore, nil, nil)

		_, err := svc.Reconcile(context.Background(), barber.ID, "ref-5")
		require.Error(t, err)
		assert.Equal(t, pkgerrors.CodeInvalidPayment, pkgerrors.As(err).Code())
		assert.Empty(t, paymentsRepo.created)
		assert.Nil(t, barberStore.barbers[barber.ID].SubscriptionExpiresAt)
	})

	t.Run("amount below the subscription price is rejected", func(t *testing.T) {
		verification := successfulVerification("ref-6")
		verification.Amount = decimal.NewFromInt(4999)
		verifier := &stubVerifier{verification: verification}
		svc, _, barberStore, _ := newReconcileFixture(t, now, verifier)
		barber := seedBarber(barberStore, nil, nil)

		_, err := svc.Reconcile(context.Background(), barber.ID, "ref-6")
		require.Error(t, err)
		assert.Equal(t, pkgerrors.CodeInvalidPayment, pkgerrors.As(err).Code())
	})

	t.Run("currency mismatch is rejected", func(t *testing.T) {
		verification := successfulVerification("ref-7")
		verification.Currency = "USD"
		verifier := &stubVerifier{verification: verification}
		svc, _, barberStore, _ := newReconcileFixture(t, now, verifier)
		barber := seedBarber(barberStore, nil, nil)

		_, err := svc.Reconcile(context.Background(), barber.ID, "ref-7")
		require.Error(t, err)
		assert.Equal(t, pkgerrors.CodeInvalidPayment, pkgerrors.As(err).Code())
	})

	t.Run("gateway failure leaves everything untouched", func(t *testing.T) {
		verifier := &stubVerifier{err: pkgerrors.New(pkgerrors.CodeUpstream, "gateway returned status 503")}
		svc, paymentsRepo, barberStore, notifier := newReconcileFixture(t, now, verifier)
		barber := seedBarber(barberStore, nil, nil)

		_, err := svc.Reconcile(context.Background(), barber.ID, "ref-8")
		require.Error(t, err)
		assert.Equal(t, pkgerrors.CodeUpstream, pkgerrors.As(err).Code())
		assert.Empty(t, paymentsRepo.created)
		assert.Nil(t, barberStore.barbers[barber.ID].SubscriptionExpiresAt)
		assert.Empty(t, notifier.messages)
	})

	t.Run("unknown barber", func(t *testing.T) {
		verifier := &stubVerifier{verification: successfulVerification("ref-9")}
		svc, _, _, _ := newReconcileFixture(t, now, verifier)

		_, err := svc.Reconcile(context.Background(), uuid.New(), "ref-9")
		require.Error(t, err)
		assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
	})

	t.Run("notifier failure does not undo the reconciliation", func(t *testing.T) {
		verifier := &stubVerifier{verification: successfulVerification("ref-nf")}
		svc, paymentsRepo, barberStore, notifier := newReconcileFixture(t, now, verifier)
		notifier.fail = true
		barber := seedBarber(barberStore, nil, nil)

		result, err := svc.Reconcile(context.Background(), barber.ID, "ref-nf")
		require.NoError(t, err)

		assert.Equal(t, now.Add(720*time.Hour), result.SubscriptionExpiresAt)
		assert.True(t, barberStore.barbers[barber.ID].SubscriptionActive)
		require.Len(t, paymentsRepo.created, 1)
		assert.Empty(t, notifier.messages)
	})

	t.Run("blank reference never reaches the gateway", func(t *testing.T) {
		verifier := &stubVerifier{verification: successfulVerification("")}
		svc, _, _, _ := newReconcileFixture(t, now, verifier)

		_, err := svc.Reconcile(context.Background(), uuid.New(), "   ")
		require.Error(t, err)
		assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
		assert.Zero(t, verifier.calls)
	})
}

func TestHistory(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	verifier := &stubVerifier{verification: successfulVerification("ref-h")}
	svc, _, barberStore, _ := newReconcileFixture(t, now, verifier)
	barber := seedBarber(barberStore, nil, nil)

	_, err := svc.Reconcile(context.Background(), barber.ID, "ref-h")
	require.NoError(t, err)

	rows, err := svc.History(context.Background(), barber.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "ref-h", rows[0].Reference)
}
