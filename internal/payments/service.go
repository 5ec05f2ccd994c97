package payments

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/marcoberry/barberhub-backend/internal/barbers"
	"github.com/marcoberry/barberhub-backend/pkg/config"
	"github.com/marcoberry/barberhub-backend/pkg/db"
	"github.com/marcoberry/barberhub-backend/pkg/db/models"
	pkgerrors "github.com/marcoberry/barberhub-backend/pkg/errors"
	"github.com/marcoberry/barberhub-backend/pkg/logger"
	"github.com/marcoberry/barberhub-backend/pkg/lifecycle"
	"github.com/marcoberry/barberhub-backend/pkg/paystack"
)

// Verifier answers what a gateway transaction settled for.
type Verifier interface {
	VerifyTransaction(ctx context.Context, reference string) (*paystack.Verification, error)
}

// Notifier appends an in-app message for a barber.
type Notifier interface {
	Append(ctx context.Context, barberID uuid.UUID, message string) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service reconciles gateway transactions into subscription time.
type Service interface {
	Reconcile(ctx context.Context, barberID uuid.UUID, reference string) (*ReconcileResult, error)
	History(ctx context.Context, barberID uuid.UUID) ([]models.Payment, error)
}

// ReconcileResult reports the extension a verified payment bought.
type ReconcileResult struct {
	Payment               models.Payment   `json:"payment"`
	SubscriptionExpiresAt time.Time        `json:"subscription_expires_at"`
	Status                lifecycle.Status `json:"status"`
	Visible               bool             `json:"visible"`
}

type service struct {
	repo     Repository
	barbers  barbers.Repository
	verifier Verifier
	notifier Notifier
	logg     *logger.Logger
	tx       txRunner
	subCfg   config.SubscriptionConfig
	now      func() time.Time
}

// NewService wires the payment reconciliation dependencies.
func NewService(repo Repository, barbersRepo barbers.Repository, verifier Verifier, notifier Notifier, logg *logger.Logger, tx txRunner, subCfg config.SubscriptionConfig) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "payments repository required")
	}
	if barbersRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "barbers repository required")
	}
	if verifier == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "payment verifier required")
	}
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction runner required")
	}
	return &service{
		repo:     repo,
		barbers:  barbersRepo,
		verifier: verifier,
		notifier: notifier,
		logg:     logg,
		tx:       tx,
		subCfg:   subCfg,
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

// Reconcile verifies the reference at the gateway and, when it settled for at
// least the subscription price, extends the barber's paid window. The gateway
// answer is the only proof accepted; nothing is written when verification
// fails or the amount falls short.
func (s *service) Reconcile(ctx context.Context, barberID uuid.UUID, reference string) (*ReconcileResult, error) {
	if barberID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "barber id is required")
	}
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reference is required")
	}

	verification, err := s.verifier.VerifyTransaction(ctx, reference)
	if err != nil {
		return nil, err
	}

	if !verification.Status.IsSuccessful() {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidPayment,
			fmt.Sprintf("transaction %s is %s, not success", reference, verification.Status))
	}
	expected := s.subCfg.Price()
	if verification.Amount.LessThan(expected) {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidPayment,
			fmt.Sprintf("transaction settled for %s, subscription costs %s", verification.Amount.StringFixed(2), expected.StringFixed(2)))
	}
	if s.subCfg.Currency != "" && !strings.EqualFold(verification.Currency, s.subCfg.Currency) {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidPayment,
			fmt.Sprintf("transaction currency %s does not match %s", verification.Currency, s.subCfg.Currency))
	}

	var result ReconcileResult
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		paymentsRepo := s.repo.WithTx(tx)
		barbersRepo := s.barbers.WithTx(tx)

		barber, err := barbersRepo.GetByIDForUpdate(ctx, barberID)
		if err != nil {
			if err == barbers.ErrNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "barber not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading barber")
		}

		if _, err := paymentsRepo.GetByReference(ctx, reference); err == nil {
			return pkgerrors.New(pkgerrors.CodeDuplicateTransaction, "transaction reference already applied")
		} else if err != ErrNotFound {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checking reference")
		}

		now := s.now()
		base := now
		if barber.SubscriptionExpiresAt != nil && barber.SubscriptionExpiresAt.After(now) {
			base = *barber.SubscriptionExpiresAt
		}
		expiresAt := base.Add(s.subCfg.RenewalPeriod)

		evaluated := lifecycle.Evaluate(lifecycle.State{
			TrialExpiresAt:        barber.TrialExpiresAt,
			SubscriptionExpiresAt: &expiresAt,
		}, now)

		if err := barbersRepo.UpdateSubscriptionExpiry(ctx, barberID, expiresAt, evaluated); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "extending subscription")
		}

		payment := models.Payment{
			BarberID:  barberID,
			Reference: reference,
			Amount:    verification.Amount,
			Currency:  verification.Currency,
			Status:    verification.Status,
			PaidAt:    verification.PaidAt,
		}
		if err := paymentsRepo.Create(ctx, &payment); err != nil {
			if db.IsUniqueViolation(err, "ux_payments_reference") || db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeDuplicateTransaction, "transaction reference already applied")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "recording payment")
		}

		result = ReconcileResult{
			Payment:               payment,
			SubscriptionExpiresAt: expiresAt,
			Status:                evaluated.Status,
			Visible:               evaluated.Visible,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, barberID, fmt.Sprintf(
		"Payment received. Your subscription now runs until %s.",
		result.SubscriptionExpiresAt.Format("2 Jan 2006")))

	return &result, nil
}

// notify appends an in-app notification. The reconciliation already
// committed, so failures are logged and dropped, never surfaced.
func (s *service) notify(ctx context.Context, barberID uuid.UUID, message string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Append(ctx, barberID, message); err != nil && s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"barber_id": barberID.String(),
			"error":     err.Error(),
		})
		s.logg.Warn(logCtx, "notification append dropped")
	}
}

func (s *service) History(ctx context.Context, barberID uuid.UUID) ([]models.Payment, error) {
	if barberID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "barber id is required")
	}
	rows, err := s.repo.ListByBarber(ctx, barberID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing payments")
	}
	return rows, nil
}
