package media

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/marcoberry/barberhub-backend/pkg/db/models"
	pkgerrors "github.com/marcoberry/barberhub-backend/pkg/errors"
	"github.com/marcoberry/barberhub-backend/pkg/storage/cloudinary"
)

// maxGallerySize caps how many images a barber can keep at once.
const maxGallerySize = 3

// Uploader stores and removes image assets at the CDN.
type Uploader interface {
	Upload(ctx context.Context, imageData string) (*cloudinary.UploadResult, error)
	Destroy(ctx context.Context, publicID string) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service manages a barber's photo gallery.
type Service interface {
	Upload(ctx context.Context, barberID uuid.UUID, imageData string) (*models.BarberMedia, error)
	Delete(ctx context.Context, barberID, mediaID uuid.UUID) error
	List(ctx context.Context, barberID uuid.UUID) ([]models.BarberMedia, error)
}

type service struct {
	repo     Repository
	uploader Uploader
	tx       txRunner
}

// NewService wires the media dependencies.
func NewService(repo Repository, uploader Uploader, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "media repository required")
	}
	if uploader == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "media uploader required")
	}
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction runner required")
	}
	return &service{repo: repo, uploader: uploader, tx: tx}, nil
}

// Upload pushes the image to the CDN first, then records the row. The count
// check runs inside the insert transaction so two concurrent uploads cannot
// both slip under the cap.
func (s *service) Upload(ctx context.Context, barberID uuid.UUID, imageData string) (*models.BarberMedia, error) {
	if barberID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "barber id is required")
	}
	if strings.TrimSpace(imageData) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "image data is required")
	}

	count, err := s.repo.CountByBarber(ctx, barberID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "counting gallery")
	}
	if count >= maxGallerySize {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "gallery is full, delete an image first")
	}

	uploaded, err := s.uploader.Upload(ctx, imageData)
	if err != nil {
		return nil, err
	}

	media := models.BarberMedia{
		BarberID: barberID,
		PublicID: uploaded.PublicID,
		URL:      uploaded.URL,
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		count, err := repo.CountByBarber(ctx, barberID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "counting gallery")
		}
		if count >= maxGallerySize {
			return pkgerrors.New(pkgerrors.CodeValidation, "gallery is full, delete an image first")
		}
		if err := repo.Create(ctx, &media); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "recording media")
		}
		return nil
	})
	if err != nil {
		// The asset is already at the CDN; clean it up so it does not leak.
		_ = s.uploader.Destroy(ctx, uploaded.PublicID)
		return nil, err
	}

	return &media, nil
}

// Delete removes the row first, then clears the CDN asset best effort. A
// dangling CDN asset is preferable to a gallery row pointing nowhere.
func (s *service) Delete(ctx context.Context, barberID, mediaID uuid.UUID) error {
	if barberID == uuid.Nil || mediaID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "barber id and media id are required")
	}

	media, err := s.repo.GetByID(ctx, mediaID)
	if err != nil {
		if err == ErrNotFound {
			return pkgerrors.New(pkgerrors.CodeNotFound, "media not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading media")
	}
	if media.BarberID != barberID {
		return pkgerrors.New(pkgerrors.CodeNotFound, "media not found")
	}

	if err := s.repo.Delete(ctx, mediaID); err != nil {
		if err == ErrNotFound {
			return pkgerrors.New(pkgerrors.CodeNotFound, "media not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deleting media")
	}

	_ = s.uploader.Destroy(ctx, media.PublicID)
	return nil
}

func (s *service) List(ctx context.Context, barberID uuid.UUID) ([]models.BarberMedia, error) {
	if barberID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "barber id is required")
	}
	rows, err := s.repo.ListByBarber(ctx, barberID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing media")
	}
	return rows, nil
}
