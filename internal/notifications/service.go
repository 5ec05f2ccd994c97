package notifications

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/marcoberry/barberhub-backend/pkg/db/models"
	pkgerrors "github.com/marcoberry/barberhub-backend/pkg/errors"
	"github.com/marcoberry/barberhub-backend/pkg/pagination"
)

// Service defines notification append/list/read operations.
type Service interface {
	Append(ctx context.Context, barberID uuid.UUID, message string) error
	List(ctx context.Context, params ListParams) (*ListResult, error)
	MarkRead(ctx context.Context, barberID, notificationID uuid.UUID) error
	MarkAllRead(ctx context.Context, barberID uuid.UUID) (int64, error)
	DeleteReadOlderThan(ctx context.Context, age time.Duration) (int64, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

// ListParams configures pagination for notifications.
type ListParams struct {
	BarberID   uuid.UUID
	Limit      int
	Cursor     string
	UnreadOnly bool
}

// ListResult wraps returned notifications and the cursor for the next page.
type ListResult struct {
	Items  []models.Notification `json:"items"`
	Cursor string                `json:"cursor"`
}

// NewService wires notifications dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	return &service{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) Append(ctx context.Context, barberID uuid.UUID, message string) error {
	if barberID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "barber id required")
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "message required")
	}

	notification := models.Notification{BarberID: barberID, Message: message}
	if err := s.repo.Create(ctx, &notification); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create notification")
	}
	return nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.BarberID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "barber id required")
	}

	query := listNotificationsParams{
		BarberID:   params.BarberID,
		Limit:      params.Limit,
		UnreadOnly: params.UnreadOnly,
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notifications")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}

	return &ListResult{
		Items:  rows,
		Cursor: cursor,
	}, nil
}

func (s *service) MarkRead(ctx context.Context, barberID, notificationID uuid.UUID) error {
	if barberID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "barber id required")
	}
	if notificationID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification id required")
	}

	result, err := s.repo.MarkRead(ctx, barberID, notificationID, s.now())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notification read")
	}
	if !result.Found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
	}
	return nil
}

func (s *service) MarkAllRead(ctx context.Context, barberID uuid.UUID) (int64, error) {
	if barberID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "barber id required")
	}

	count, err := s.repo.MarkAllRead(ctx, barberID, s.now())
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notifications read")
	}
	return count, nil
}

// DeleteReadOlderThan purges read notifications older than the provided age.
// Unread notifications are kept regardless of how old they are.
func (s *service) DeleteReadOlderThan(ctx context.Context, age time.Duration) (int64, error) {
	if age <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "retention age must be positive")
	}

	count, err := s.repo.DeleteReadBefore(ctx, s.now().Add(-age))
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "purge notifications")
	}
	return count, nil
}
