package barbers

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/marcoberry/barberhub-backend/pkg/db/models"
	"github.com/marcoberry/barberhub-backend/pkg/lifecycle"
)

// ErrNotFound is returned when a barber row does not exist.
var ErrNotFound = errors.New("barber not found")

// Repository exposes persistence helpers for barbers and their ratings/reviews.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, barber *models.Barber) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Barber, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Barber, error)
	GetByPhone(ctx context.Context, phone string) (*models.Barber, error)
	ListPotentiallyVisible(ctx context.Context, now time.Time) ([]models.Barber, error)
	ListAll(ctx context.Context) ([]models.Barber, error)
	ListLifecycleCandidates(ctx context.Context, now time.Time, limit int) ([]models.Barber, error)
	UpdateLifecycle(ctx context.Context, id uuid.UUID, result lifecycle.Result) error
	UpdateLifecycleGuarded(ctx context.Context, id uuid.UUID, storedActive, storedVisible bool, result lifecycle.Result) (bool, error)
	UpdateSubscriptionExpiry(ctx context.Context, id uuid.UUID, expiresAt time.Time, result lifecycle.Result) error
	Save(ctx context.Context, barber *models.Barber) error
	Delete(ctx context.Context, id uuid.UUID) error

	CreateRating(ctx context.Context, rating *models.BarberRating) error
	AverageRating(ctx context.Context, barberID uuid.UUID) (float64, error)
	UpdateAverageRating(ctx context.Context, barberID uuid.UUID, average float64) error
	CreateReview(ctx context.Context, review *models.BarberReview) error
	ListReviews(ctx context.Context, barberID uuid.UUID) ([]models.BarberReview, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a barbers repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, barber *models.Barber) error {
	return r.db.WithContext(ctx).Create(barber).Error
}

func (r *repositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.Barber, error) {
	var barber models.Barber
	err := r.db.WithContext(ctx).First(&barber, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &barber, nil
}

// GetByIDForUpdate row-locks the barber so concurrent reconcilers serialize.
func (r *repositoryImpl) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Barber, error) {
	var barber models.Barber
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&barber, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &barber, nil
}

func (r *repositoryImpl) GetByPhone(ctx context.Context, phone string) (*models.Barber, error) {
	var barber models.Barber
	err := r.db.WithContext(ctx).First(&barber, "phone = ?", phone).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &barber, nil
}

// ListPotentiallyVisible returns the rows whose recomputed lifecycle at now is
// visible, regardless of what the stored flags say.
func (r *repositoryImpl) ListPotentiallyVisible(ctx context.Context, now time.Time) ([]models.Barber, error) {
	var rows []models.Barber
	err := r.db.WithContext(ctx).
		Where("trial_expires_at > ? OR subscription_expires_at > ?", now, now).
		Order("average_rating DESC, created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repositoryImpl) ListAll(ctx context.Context) ([]models.Barber, error) {
	var rows []models.Barber
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListLifecycleCandidates finds rows whose stored flags disagree with a
// recomputation at now. Used by the sweep so it only touches stale records.
func (r *repositoryImpl) ListLifecycleCandidates(ctx context.Context, now time.Time, limit int) ([]models.Barber, error) {
	liveSub := "(subscription_expires_at IS NOT NULL AND subscription_expires_at > ?)"
	liveTrial := "(trial_expires_at IS NOT NULL AND trial_expires_at > ?)"

	query := r.db.WithContext(ctx).
		Where(
			"subscription_active <> "+liveSub+" OR visible <> ("+liveSub+" OR "+liveTrial+")",
			now, now, now, now,
		).
		Order("updated_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []models.Barber
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repositoryImpl) UpdateLifecycle(ctx context.Context, id uuid.UUID, result lifecycle.Result) error {
	return r.db.WithContext(ctx).
		Model(&models.Barber{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"subscription_active": result.SubscriptionActive,
			"visible":             result.Visible,
		}).Error
}

// UpdateLifecycleGuarded only writes when the stored flags still match what the
// caller read, so a racing reconciler is never overwritten with stale state.
func (r *repositoryImpl) UpdateLifecycleGuarded(ctx context.Context, id uuid.UUID, storedActive, storedVisible bool, result lifecycle.Result) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Barber{}).
		Where("id = ? AND subscription_active = ? AND visible = ?", id, storedActive, storedVisible).
		Updates(map[string]any{
			"subscription_active": result.SubscriptionActive,
			"visible":             result.Visible,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repositoryImpl) UpdateSubscriptionExpiry(ctx context.Context, id uuid.UUID, expiresAt time.Time, result lifecycle.Result) error {
	return r.db.WithContext(ctx).
		Model(&models.Barber{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"subscription_expires_at": expiresAt,
			"subscription_active":     result.SubscriptionActive,
			"visible":                 result.Visible,
		}).Error
}

func (r *repositoryImpl) Save(ctx context.Context, barber *models.Barber) error {
	return r.db.WithContext(ctx).Save(barber).Error
}

func (r *repositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&models.Barber{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repositoryImpl) CreateRating(ctx context.Context, rating *models.BarberRating) error {
	return r.db.WithContext(ctx).Create(rating).Error
}

func (r *repositoryImpl) AverageRating(ctx context.Context, barberID uuid.UUID) (float64, error) {
	var average sql.NullFloat64
	err := r.db.WithContext(ctx).
		Model(&models.BarberRating{}).
		Select("AVG(value)").
		Where("barber_id = ?", barberID).
		Scan(&average).Error
	if err != nil {
		return 0, err
	}
	if !average.Valid {
		return 0, nil
	}
	return average.Float64, nil
}

func (r *repositoryImpl) UpdateAverageRating(ctx context.Context, barberID uuid.UUID, average float64) error {
	return r.db.WithContext(ctx).
		Model(&models.Barber{}).
		Where("id = ?", barberID).
		UpdateColumn("average_rating", average).Error
}

func (r *repositoryImpl) CreateReview(ctx context.Context, review *models.BarberReview) error {
	return r.db.WithContext(ctx).Create(review).Error
}

func (r *repositoryImpl) ListReviews(ctx context.Context, barberID uuid.UUID) ([]models.BarberReview, error) {
	var rows []models.BarberReview
	err := r.db.WithContext(ctx).
		Where("barber_id = ?", barberID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
