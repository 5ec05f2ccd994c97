package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/marcoberry/barberhub-backend/pkg/db/models"
	"github.com/marcoberry/barberhub-backend/pkg/lifecycle"
	"github.com/marcoberry/barberhub-backend/pkg/logger"
)

const defaultSweepBatchSize = 250

// ExpirySweepJobParams configure the visibility sweep.
type ExpirySweepJobParams struct {
	Logger    *logger.Logger
	Barbers   sweepBarbersRepo
	BatchSize int
}

type sweepBarbersRepo interface {
	ListLifecycleCandidates(ctx context.Context, now time.Time, limit int) ([]models.Barber, error)
	UpdateLifecycleGuarded(ctx context.Context, id uuid.UUID, storedActive, storedVisible bool, result lifecycle.Result) (bool, error)
}

// NewExpirySweepJob builds the job that reconciles stored visibility flags
// with the lifecycle each barber's timestamps imply right now.
func NewExpirySweepJob(params ExpirySweepJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Barbers == nil {
		return nil, fmt.Errorf("barbers repository required")
	}
	batchSize := params.BatchSize
	if batchSize <= 0 {
		batchSize = defaultSweepBatchSize
	}
	return &expirySweepJob{
		logg:      params.Logger,
		barbers:   params.Barbers,
		batchSize: batchSize,
		now:       time.Now,
	}, nil
}

type expirySweepJob struct {
	logg      *logger.Logger
	barbers   sweepBarbersRepo
	batchSize int
	now       func() time.Time
}

func (j *expirySweepJob) Name() string { return "expiry-sweep" }

// Run updates every barber whose stored flags disagree with the lifecycle
// computed at a single sweep timestamp. Guarded writes mean a record refreshed
// concurrently by a login or a payment is skipped, not overwritten. One bad
// record does not stop the sweep; failures are collected and reported at the
// end.
func (j *expirySweepJob) Run(ctx context.Context) error {
	now := j.now().UTC()

	candidates, err := j.barbers.ListLifecycleCandidates(ctx, now, j.batchSize)
	if err != nil {
		return fmt.Errorf("listing sweep candidates: %w", err)
	}

	var updated, skipped int
	var errs error
	for _, barber := range candidates {
		result := lifecycle.Evaluate(lifecycle.State{
			TrialExpiresAt:        barber.TrialExpiresAt,
			SubscriptionExpiresAt: barber.SubscriptionExpiresAt,
		}, now)

		if !lifecycle.Changed(barber.SubscriptionActive, barber.Visible, result) {
			continue
		}

		ok, err := j.barbers.UpdateLifecycleGuarded(ctx, barber.ID, barber.SubscriptionActive, barber.Visible, result)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("sweeping barber %s: %w", barber.ID, err))
			continue
		}
		if ok {
			updated++
		} else {
			skipped++
		}
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"examined": len(candidates),
		"updated":  updated,
		"skipped":  skipped,
		"failed":   len(multierr.Errors(errs)),
	})
	j.logg.Info(logCtx, "expiry sweep complete")
	return errs
}
