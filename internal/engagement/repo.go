package engagement

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/marcoberry/barberhub-backend/pkg/db/models"
	"github.com/marcoberry/barberhub-backend/pkg/enums"
)

// KindTotal is one aggregated tally across days.
type KindTotal struct {
	Kind  enums.EngagementKind `json:"kind"`
	Total int64                `json:"total"`
}

// Repository exposes persistence helpers for engagement counters.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Increment(ctx context.Context, barberID uuid.UUID, day time.Time, kind enums.EngagementKind) error
	Totals(ctx context.Context, barberID uuid.UUID, since time.Time) ([]KindTotal, error)
	ListDays(ctx context.Context, barberID uuid.UUID, since time.Time) ([]models.EngagementCounter, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns an engagement repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

// Increment upserts the per-day bucket so concurrent writers only race inside
// the database, never in application code.
func (r *repositoryImpl) Increment(ctx context.Context, barberID uuid.UUID, day time.Time, kind enums.EngagementKind) error {
	counter := models.EngagementCounter{
		BarberID: barberID,
		Day:      day,
		Kind:     kind,
		Count:    1,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "barber_id"}, {Name: "day"}, {Name: "kind"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"count": gorm.Expr("engagement_counters.count + 1")}),
		}).
		Create(&counter).Error
}

func (r *repositoryImpl) Totals(ctx context.Context, barberID uuid.UUID, since time.Time) ([]KindTotal, error) {
	var totals []KindTotal
	err := r.db.WithContext(ctx).
		Model(&models.EngagementCounter{}).
		Select("kind, SUM(count) AS total").
		Where("barber_id = ? AND day >= ?", barberID, since).
		Group("kind").
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	return totals, nil
}

func (r *repositoryImpl) ListDays(ctx context.Context, barberID uuid.UUID, since time.Time) ([]models.EngagementCounter, error) {
	var rows []models.EngagementCounter
	err := r.db.WithContext(ctx).
		Where("barber_id = ? AND day >= ?", barberID, since).
		Order("day DESC, kind ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
