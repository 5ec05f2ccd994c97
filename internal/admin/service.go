package admin

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/marcoberry/barberhub-backend/internal/barbers"
	"github.com/marcoberry/barberhub-backend/pkg/config"
	pkgerrors "github.com/marcoberry/barberhub-backend/pkg/errors"
	"github.com/marcoberry/barberhub-backend/pkg/lifecycle"
)

// Service backs the operator dashboard.
type Service interface {
	Dashboard(ctx context.Context) (*DashboardResult, error)
	DeleteBarber(ctx context.Context, barberID uuid.UUID) error
}

// BarberSummary is one row on the dashboard. Status is always derived from
// expiry timestamps at read time, never taken from the stored flags.
type BarberSummary struct {
	ID                    uuid.UUID        `json:"id"`
	Name                  string           `json:"name"`
	Phone                 string           `json:"phone"`
	Status                lifecycle.Status `json:"status"`
	Visible               bool             `json:"visible"`
	AverageRating         float64          `json:"average_rating"`
	TrialExpiresAt        *time.Time       `json:"trial_expires_at,omitempty"`
	SubscriptionExpiresAt *time.Time       `json:"subscription_expires_at,omitempty"`
	CreatedAt             time.Time        `json:"created_at"`
}

// DashboardResult is the operator overview.
type DashboardResult struct {
	TotalBarbers    int             `json:"total_barbers"`
	VisibleBarbers  int             `json:"visible_barbers"`
	OnTrial         int             `json:"on_trial"`
	ActivePaid      int             `json:"active_paid"`
	MonthlyRevenue  decimal.Decimal `json:"monthly_revenue"`
	Barbers         []BarberSummary `json:"barbers"`
}

type service struct {
	barbers barbers.Repository
	subCfg  config.SubscriptionConfig
	now     func() time.Time
}

// NewService wires the admin dependencies.
func NewService(barbersRepo barbers.Repository, subCfg config.SubscriptionConfig) (Service, error) {
	if barbersRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "barbers repository required")
	}
	return &service{
		barbers: barbersRepo,
		subCfg:  subCfg,
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) Dashboard(ctx context.Context) (*DashboardResult, error) {
	rows, err := s.barbers.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing barbers")
	}

	now := s.now()
	result := DashboardResult{
		TotalBarbers: len(rows),
		Barbers:      make([]BarberSummary, 0, len(rows)),
	}

	for _, barber := range rows {
		evaluated := lifecycle.Evaluate(lifecycle.State{
			TrialExpiresAt:        barber.TrialExpiresAt,
			SubscriptionExpiresAt: barber.SubscriptionExpiresAt,
		}, now)

		if evaluated.Visible {
			result.VisibleBarbers++
		}
		switch evaluated.Status {
		case lifecycle.StatusFreeTrial:
			result.OnTrial++
		case lifecycle.StatusActivePaid:
			result.ActivePaid++
		}

		result.Barbers = append(result.Barbers, BarberSummary{
			ID:                    barber.ID,
			Name:                  barber.Name,
			Phone:                 barber.Phone,
			Status:                evaluated.Status,
			Visible:               evaluated.Visible,
			AverageRating:         barber.AverageRating,
			TrialExpiresAt:        barber.TrialExpiresAt,
			SubscriptionExpiresAt: barber.SubscriptionExpiresAt,
			CreatedAt:             barber.CreatedAt,
		})
	}

	result.MonthlyRevenue = s.subCfg.Price().Mul(decimal.NewFromInt(int64(result.ActivePaid)))
	return &result, nil
}

// DeleteBarber removes the account outright. Dependent rows go with it via
// the schema's ON DELETE CASCADE clauses.
func (s *service) DeleteBarber(ctx context.Context, barberID uuid.UUID) error {
	if barberID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "barber id is required")
	}
	if err := s.barbers.Delete(ctx, barberID); err != nil {
		if err == barbers.ErrNotFound {
			return pkgerrors.New(pkgerrors.CodeNotFound, "barber not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deleting barber")
	}
	return nil
}
