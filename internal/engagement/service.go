package engagement

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/marcoberry/barberhub-backend/pkg/db/models"
	"github.com/marcoberry/barberhub-backend/pkg/enums"
	pkgerrors "github.com/marcoberry/barberhub-backend/pkg/errors"
)

// Service tallies customer interactions against barber profiles.
type Service interface {
	RecordClick(ctx context.Context, barberID uuid.UUID) error
	RecordImpression(ctx context.Context, barberID uuid.UUID) error
	Summary(ctx context.Context, barberID uuid.UUID, window time.Duration) (*SummaryResult, error)
}

// SummaryResult aggregates one barber's interactions over a window.
type SummaryResult struct {
	Clicks      int64                      `json:"clicks"`
	Impressions int64                      `json:"impressions"`
	Days        []models.EngagementCounter `json:"days"`
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService wires the engagement dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "engagement repository required")
	}
	return &service{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) RecordClick(ctx context.Context, barberID uuid.UUID) error {
	return s.record(ctx, barberID, enums.EngagementKindClick)
}

func (s *service) RecordImpression(ctx context.Context, barberID uuid.UUID) error {
	return s.record(ctx, barberID, enums.EngagementKindImpression)
}

func (s *service) record(ctx context.Context, barberID uuid.UUID, kind enums.EngagementKind) error {
	if barberID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "barber id is required")
	}
	day := s.now().Truncate(24 * time.Hour)
	if err := s.repo.Increment(ctx, barberID, day, kind); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "incrementing counter")
	}
	return nil
}

func (s *service) Summary(ctx context.Context, barberID uuid.UUID, window time.Duration) (*SummaryResult, error) {
	if barberID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "barber id is required")
	}
	if window <= 0 {
		window = 30 * 24 * time.Hour
	}
	since := s.now().Add(-window).Truncate(24 * time.Hour)

	totals, err := s.repo.Totals(ctx, barberID, since)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "summing counters")
	}
	days, err := s.repo.ListDays(ctx, barberID, since)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing counters")
	}

	summary := SummaryResult{Days: days}
	for _, total := range totals {
		switch total.Kind {
		case enums.EngagementKindClick:
			summary.Clicks = total.Total
		case enums.EngagementKindImpression:
			summary.Impressions = total.Total
		}
	}
	return &summary, nil
}
