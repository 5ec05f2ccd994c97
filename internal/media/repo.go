package media

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/marcoberry/barberhub-backend/pkg/db/models"
)

// ErrNotFound is returned when a media row does not exist.
var ErrNotFound = errors.New("media not found")

// Repository exposes persistence helpers for gallery images.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, media *models.BarberMedia) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.BarberMedia, error)
	ListByBarber(ctx context.Context, barberID uuid.UUID) ([]models.BarberMedia, error)
	CountByBarber(ctx context.Context, barberID uuid.UUID) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a media repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, media *models.BarberMedia) error {
	return r.db.WithContext(ctx).Create(media).Error
}

func (r *repositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.BarberMedia, error) {
	var media models.BarberMedia
	err := r.db.WithContext(ctx).First(&media, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &media, nil
}

func (r *repositoryImpl) ListByBarber(ctx context.Context, barberID uuid.UUID) ([]models.BarberMedia, error) {
	var rows []models.BarberMedia
	err := r.db.WithContext(ctx).
		Where("barber_id = ?", barberID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// CountByBarber counts inside the caller's transaction so the gallery cap
// holds under concurrent uploads.
func (r *repositoryImpl) CountByBarber(ctx context.Context, barberID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.BarberMedia{}).
		Where("barber_id = ?", barberID).
		Count(&count).Error
	return count, err
}

func (r *repositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.BarberMedia{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
