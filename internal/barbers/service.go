package barbers

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/marcoberry/barberhub-backend/pkg/auth"
	"github.com/marcoberry/barberhub-backend/pkg/config"
	"github.com/marcoberry/barberhub-backend/pkg/db"
	"github.com/marcoberry/barberhub-backend/pkg/db/models"
	dbtypes "github.com/marcoberry/barberhub-backend/pkg/db/types"
	pkgerrors "github.com/marcoberry/barberhub-backend/pkg/errors"
	"github.com/marcoberry/barberhub-backend/pkg/lifecycle"
	"github.com/marcoberry/barberhub-backend/pkg/logger"
	"github.com/marcoberry/barberhub-backend/pkg/security"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Notifier appends an in-app notification for a barber. Satisfied by the
// notifications service; failures are treated as best effort by callers.
type Notifier interface {
	Append(ctx context.Context, barberID uuid.UUID, message string) error
}

// Service defines the barber-facing operations.
type Service interface {
	Signup(ctx context.Context, params SignupParams) (*AuthResult, error)
	Login(ctx context.Context, params LoginParams) (*AuthResult, error)
	Get(ctx context.Context, id uuid.UUID) (*Profile, error)
	ListVisible(ctx context.Context) ([]Profile, error)
	Status(ctx context.Context, id uuid.UUID) (*StatusResult, error)
	Rate(ctx context.Context, params RateParams) (float64, error)
	AddReview(ctx context.Context, params ReviewParams) error
	AddService(ctx context.Context, barberID uuid.UUID, params ServiceParams) error
	UpdateAvailability(ctx context.Context, barberID uuid.UUID, windows []dbtypes.AvailabilityWindow) error
	UpdatePrice(ctx context.Context, barberID uuid.UUID, price decimal.Decimal) error
	WhatsAppLink(ctx context.Context, id uuid.UUID) (string, error)
	CallLink(ctx context.Context, id uuid.UUID) (string, error)
}

type service struct {
	repo     Repository
	tx       txRunner
	notifier Notifier
	logg     *logger.Logger
	subCfg   config.SubscriptionConfig
	jwtCfg   config.JWTConfig
	pwCfg    config.PasswordConfig
	now      func() time.Time
}

// NewService wires the barber service dependencies.
func NewService(repo Repository, tx txRunner, notifier Notifier, logg *logger.Logger, subCfg config.SubscriptionConfig, jwtCfg config.JWTConfig, pwCfg config.PasswordConfig) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "barbers repository required")
	}
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction runner required")
	}
	return &service{
		repo:     repo,
		tx:       tx,
		notifier: notifier,
		logg:     logg,
		subCfg:   subCfg,
		jwtCfg:   jwtCfg,
		pwCfg:    pwCfg,
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

// notify appends an in-app notification. Failures never fail the calling
// operation; they are logged and dropped.
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

// SignupParams carries the fields required to register a barber.
type SignupParams struct {
	Name     string
	Phone    string
	Password string
	Price    decimal.Decimal
	Lat      float64
	Lng      float64
}

// LoginParams carries phone credentials.
type LoginParams struct {
	Phone    string
	Password string
}

// RateParams carries one customer's score for a barber.
type RateParams struct {
	BarberID   uuid.UUID
	CustomerID uuid.UUID
	Value      int
}

// ReviewParams carries free-form customer feedback.
type ReviewParams struct {
	BarberID   uuid.UUID
	CustomerID uuid.UUID
	Rating     int
	Comment    string
}

// ServiceParams describes one price-list entry.
type ServiceParams struct {
	Name            string
	Cost            decimal.Decimal
	DurationMinutes int
}

// Profile is the outward representation of a barber with derived fields.
type Profile struct {
	ID                    uuid.UUID                `json:"id"`
	Name                  string                   `json:"name"`
	Phone                 string                   `json:"phone"`
	Price                 decimal.Decimal          `json:"price"`
	Lat                   float64                  `json:"lat"`
	Lng                   float64                  `json:"lng"`
	Services              dbtypes.ServiceList      `json:"services"`
	Availability          dbtypes.AvailabilityList `json:"availability"`
	AverageRating         float64                  `json:"average_rating"`
	Visible               bool                     `json:"visible"`
	SubscriptionActive    bool                     `json:"subscription_active"`
	Status                lifecycle.Status         `json:"status"`
	TrialExpiresAt        *time.Time               `json:"trial_expires_at,omitempty"`
	SubscriptionExpiresAt *time.Time               `json:"subscription_expires_at,omitempty"`
	Reviews               []models.BarberReview    `json:"reviews,omitempty"`
	CreatedAt             time.Time                `json:"created_at"`
}

// StatusResult is the lifecycle summary for one barber.
type StatusResult struct {
	Status                lifecycle.Status `json:"status"`
	Visible               bool             `json:"visible"`
	SubscriptionActive    bool             `json:"subscription_active"`
	TrialExpiresAt        *time.Time       `json:"trial_expires_at,omitempty"`
	SubscriptionExpiresAt *time.Time       `json:"subscription_expires_at,omitempty"`
}

// AuthResult couples a minted token with the fresh profile.
type AuthResult struct {
	Token  string  `json:"token"`
	Barber Profile `json:"barber"`
}

func (s *service) Signup(ctx context.Context, params SignupParams) (*AuthResult, error) {
	name := strings.TrimSpace(params.Name)
	phone := normalizePhone(params.Phone)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if err := validatePhone(phone); err != nil {
		return nil, err
	}
	if len(params.Password) < 8 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
	}
	if !params.Price.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
	}

	hash, err := security.HashPassword(params.Password, s.pwCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hashing password")
	}

	now := s.now()
	trialExpiry := now.Add(s.subCfg.TrialDuration)
	barber := &models.Barber{
		Name:           name,
		Phone:          phone,
		PasswordHash:   hash,
		Price:          params.Price,
		Lat:            params.Lat,
		Lng:            params.Lng,
		TrialExpiresAt: &trialExpiry,
	}

	result := lifecycle.Evaluate(stateOf(barber), now)
	barber.SubscriptionActive = result.SubscriptionActive
	barber.Visible = result.Visible

	if err := s.repo.Create(ctx, barber); err != nil {
		if db.IsUniqueViolation(err, "ux_barbers_phone") || db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "phone already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating barber")
	}

	s.notify(ctx, barber.ID, "Welcome! Your free trial is active.")

	return s.authResult(barber, result)
}

func (s *service) Login(ctx context.Context, params LoginParams) (*AuthResult, error) {
	phone := normalizePhone(params.Phone)
	if phone == "" || params.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "phone and password are required")
	}

	barber, err := s.repo.GetByPhone(ctx, phone)
	if err != nil {
		if err == ErrNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid phone or password")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading barber")
	}

	ok, err := security.VerifyPassword(params.Password, barber.PasswordHash)
	if err != nil || !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid phone or password")
	}

	result, err := s.refreshLifecycle(ctx, barber)
	if err != nil {
		return nil, err
	}

	return s.authResult(barber, result)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Profile, error) {
	barber, result, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	reviews, err := s.repo.ListReviews(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing reviews")
	}

	profile := toProfile(barber, result)
	profile.Reviews = reviews
	return &profile, nil
}

func (s *service) ListVisible(ctx context.Context) ([]Profile, error) {
	now := s.now()
	rows, err := s.repo.ListPotentiallyVisible(ctx, now)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing barbers")
	}

	profiles := make([]Profile, 0, len(rows))
	for i := range rows {
		barber := &rows[i]
		result := lifecycle.Evaluate(stateOf(barber), now)
		if !result.Visible {
			continue
		}
		if lifecycle.Changed(barber.SubscriptionActive, barber.Visible, result) {
			if err := s.repo.UpdateLifecycle(ctx, barber.ID, result); err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persisting lifecycle")
			}
			barber.SubscriptionActive = result.SubscriptionActive
			barber.Visible = result.Visible
		}
		profiles = append(profiles, toProfile(barber, result))
	}
	return profiles, nil
}

func (s *service) Status(ctx context.Context, id uuid.UUID) (*StatusResult, error) {
	barber, result, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return &StatusResult{
		Status:                result.Status,
		Visible:               result.Visible,
		SubscriptionActive:    result.SubscriptionActive,
		TrialExpiresAt:        barber.TrialExpiresAt,
		SubscriptionExpiresAt: barber.SubscriptionExpiresAt,
	}, nil
}

func (s *service) Rate(ctx context.Context, params RateParams) (float64, error) {
	if params.BarberID == uuid.Nil || params.CustomerID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "barber id and customer id are required")
	}
	if params.Value < 1 || params.Value > 5 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5")
	}

	var average float64
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if _, err := repo.GetByID(ctx, params.BarberID); err != nil {
			if err == ErrNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "barber not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading barber")
		}

		rating := &models.BarberRating{
			BarberID:   params.BarberID,
			CustomerID: params.CustomerID,
			Value:      params.Value,
		}
		if err := repo.CreateRating(ctx, rating); err != nil {
			if db.IsUniqueViolation(err, "ux_barber_ratings_barber_customer") || db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeDuplicateRating, "customer already rated this barber")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving rating")
		}

		mean, err := repo.AverageRating(ctx, params.BarberID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "computing average rating")
		}
		if err := repo.UpdateAverageRating(ctx, params.BarberID, mean); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persisting average rating")
		}
		average = mean
		return nil
	})
	if err != nil {
		return 0, err
	}
	return average, nil
}

func (s *service) AddReview(ctx context.Context, params ReviewParams) error {
	if params.BarberID == uuid.Nil || params.CustomerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "barber id and customer id are required")
	}
	if params.Rating < 1 || params.Rating > 5 {
		return pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5")
	}
	if strings.TrimSpace(params.Comment) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "comment is required")
	}

	if _, err := s.repo.GetByID(ctx, params.BarberID); err != nil {
		if err == ErrNotFound {
			return pkgerrors.New(pkgerrors.CodeNotFound, "barber not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading barber")
	}

	review := &models.BarberReview{
		BarberID:   params.BarberID,
		CustomerID: params.CustomerID,
		Rating:     params.Rating,
		Comment:    strings.TrimSpace(params.Comment),
	}
	if err := s.repo.CreateReview(ctx, review); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving review")
	}
	return nil
}

func (s *service) AddService(ctx context.Context, barberID uuid.UUID, params ServiceParams) error {
	if strings.TrimSpace(params.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "service name is required")
	}
	if !params.Cost.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "service cost must be positive")
	}
	if params.DurationMinutes <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "service duration must be positive")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		barber, err := repo.GetByIDForUpdate(ctx, barberID)
		if err != nil {
			if err == ErrNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "barber not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading barber")
		}

		barber.Services = append(barber.Services, dbtypes.Service{
			Name:            strings.TrimSpace(params.Name),
			Cost:            params.Cost,
			DurationMinutes: params.DurationMinutes,
		})
		if err := repo.Save(ctx, barber); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving services")
		}
		return nil
	})
}

func (s *service) UpdateAvailability(ctx context.Context, barberID uuid.UUID, windows []dbtypes.AvailabilityWindow) error {
	for _, window := range windows {
		if window.DayOfWeek < 0 || window.DayOfWeek > 6 {
			return pkgerrors.New(pkgerrors.CodeValidation, "day_of_week must be between 0 and 6")
		}
		if window.Open == "" || window.Close == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "open and close times are required")
		}
	}

	barber, err := s.repo.GetByID(ctx, barberID)
	if err != nil {
		if err == ErrNotFound {
			return pkgerrors.New(pkgerrors.CodeNotFound, "barber not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading barber")
	}

	barber.Availability = windows
	if err := s.repo.Save(ctx, barber); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving availability")
	}
	return nil
}

func (s *service) UpdatePrice(ctx context.Context, barberID uuid.UUID, price decimal.Decimal) error {
	if !price.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
	}

	barber, err := s.repo.GetByID(ctx, barberID)
	if err != nil {
		if err == ErrNotFound {
			return pkgerrors.New(pkgerrors.CodeNotFound, "barber not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading barber")
	}

	barber.Price = price
	if err := s.repo.Save(ctx, barber); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving price")
	}

	s.notify(ctx, barberID, fmt.Sprintf("Your price was updated to %s.", price.StringFixed(2)))
	return nil
}

func (s *service) WhatsAppLink(ctx context.Context, id uuid.UUID) (string, error) {
	barber, result, err := s.load(ctx, id)
	if err != nil {
		return "", err
	}
	if !result.Visible {
		return "", pkgerrors.New(pkgerrors.CodeNotFound, "barber not found")
	}

	message := fmt.Sprintf("Hello %s, I found you on BarberHub and would like to book a haircut.", barber.Name)
	return fmt.Sprintf("https://wa.me/%s?text=%s", digitsOnly(barber.Phone), url.QueryEscape(message)), nil
}

func (s *service) CallLink(ctx context.Context, id uuid.UUID) (string, error) {
	barber, result, err := s.load(ctx, id)
	if err != nil {
		return "", err
	}
	if !result.Visible {
		return "", pkgerrors.New(pkgerrors.CodeNotFound, "barber not found")
	}
	return "tel:" + barber.Phone, nil
}

// load fetches a barber and refreshes its lifecycle flags in storage.
func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Barber, lifecycle.Result, error) {
	if id == uuid.Nil {
		return nil, lifecycle.Result{}, pkgerrors.New(pkgerrors.CodeValidation, "barber id is required")
	}

	barber, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if err == ErrNotFound {
			return nil, lifecycle.Result{}, pkgerrors.New(pkgerrors.CodeNotFound, "barber not found")
		}
		return nil, lifecycle.Result{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading barber")
	}

	result, err := s.refreshLifecycle(ctx, barber)
	if err != nil {
		return nil, lifecycle.Result{}, err
	}
	return barber, result, nil
}

func (s *service) refreshLifecycle(ctx context.Context, barber *models.Barber) (lifecycle.Result, error) {
	result := lifecycle.Evaluate(stateOf(barber), s.now())
	if lifecycle.Changed(barber.SubscriptionActive, barber.Visible, result) {
		if err := s.repo.UpdateLifecycle(ctx, barber.ID, result); err != nil {
			return lifecycle.Result{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persisting lifecycle")
		}
		barber.SubscriptionActive = result.SubscriptionActive
		barber.Visible = result.Visible
	}
	return result, nil
}

func (s *service) authResult(barber *models.Barber, result lifecycle.Result) (*AuthResult, error) {
	token, err := auth.MintAccessToken(s.jwtCfg, s.now(), auth.AccessTokenPayload{
		BarberID: barber.ID,
		Phone:    barber.Phone,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "minting token")
	}
	return &AuthResult{Token: token, Barber: toProfile(barber, result)}, nil
}

func stateOf(barber *models.Barber) lifecycle.State {
	return lifecycle.State{
		TrialExpiresAt:        barber.TrialExpiresAt,
		SubscriptionExpiresAt: barber.SubscriptionExpiresAt,
	}
}

func toProfile(barber *models.Barber, result lifecycle.Result) Profile {
	return Profile{
		ID:                    barber.ID,
		Name:                  barber.Name,
		Phone:                 barber.Phone,
		Price:                 barber.Price,
		Lat:                   barber.Lat,
		Lng:                   barber.Lng,
		Services:              barber.Services,
		Availability:          barber.Availability,
		AverageRating:         barber.AverageRating,
		Visible:               result.Visible,
		SubscriptionActive:    result.SubscriptionActive,
		Status:                result.Status,
		TrialExpiresAt:        barber.TrialExpiresAt,
		SubscriptionExpiresAt: barber.SubscriptionExpiresAt,
		CreatedAt:             barber.CreatedAt,
	}
}

func normalizePhone(phone string) string {
	return strings.ReplaceAll(strings.TrimSpace(phone), " ", "")
}

func validatePhone(phone string) error {
	digits := digitsOnly(phone)
	if len(digits) < 7 {
		return pkgerrors.New(pkgerrors.CodeValidation, "phone number is invalid")
	}
	return nil
}

func digitsOnly(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
