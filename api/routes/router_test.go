package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/marcoberry/barberhub-backend/internal/admin"
	"github.com/marcoberry/barberhub-backend/internal/barbers"
	"github.com/marcoberry/barberhub-backend/internal/engagement"
	"github.com/marcoberry/barberhub-backend/internal/notifications"
	"github.com/marcoberry/barberhub-backend/internal/payments"
	pkgAuth "github.com/marcoberry/barberhub-backend/pkg/auth"
	"github.com/marcoberry/barberhub-backend/pkg/config"
	"github.com/marcoberry/barberhub-backend/pkg/db/models"
	dbtypes "github.com/marcoberry/barberhub-backend/pkg/db/types"
	"github.com/marcoberry/barberhub-backend/pkg/logger"
	"github.com/marcoberry/barberhub-backend/pkg/redis"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubBarbersService struct{}

func (stubBarbersService) Signup(ctx context.Context, params barbers.SignupParams) (*barbers.AuthResult, error) {
	return &barbers.AuthResult{Token: "token"}, nil
}

func (stubBarbersService) Login(ctx context.Context, params barbers.LoginParams) (*barbers.AuthResult, error) {
	return &barbers.AuthResult{Token: "token"}, nil
}

func (stubBarbersService) Get(ctx context.Context, id uuid.UUID) (*barbers.Profile, error) {
	return &barbers.Profile{ID: id}, nil
}

func (stubBarbersService) ListVisible(ctx context.Context) ([]barbers.Profile, error) {
	return []barbers.Profile{}, nil
}

func (stubBarbersService) Status(ctx context.Context, id uuid.UUID) (*barbers.StatusResult, error) {
	return &barbers.StatusResult{}, nil
}

func (stubBarbersService) Rate(ctx context.Context, params barbers.RateParams) (float64, error) {
	panic("unimplemented")
}

func (stubBarbersService) AddReview(ctx context.Context, params barbers.ReviewParams) error {
	panic("unimplemented")
}

func (stubBarbersService) AddService(ctx context.Context, barberID uuid.UUID, params barbers.ServiceParams) error {
	panic("unimplemented")
}

func (stubBarbersService) UpdateAvailability(ctx context.Context, barberID uuid.UUID, windows []dbtypes.AvailabilityWindow) error {
	panic("unimplemented")
}

func (stubBarbersService) UpdatePrice(ctx context.Context, barberID uuid.UUID, price decimal.Decimal) error {
	panic("unimplemented")
}

func (stubBarbersService) WhatsAppLink(ctx context.Context, id uuid.UUID) (string, error) {
	return "https://wa.me/2348012345678", nil
}

func (stubBarbersService) CallLink(ctx context.Context, id uuid.UUID) (string, error) {
	return "tel:+2348012345678", nil
}

type stubPaymentsService struct{}

func (stubPaymentsService) Reconcile(ctx context.Context, barberID uuid.UUID, reference string) (*payments.ReconcileResult, error) {
	return &payments.ReconcileResult{}, nil
}

func (stubPaymentsService) History(ctx context.Context, barberID uuid.UUID) ([]models.Payment, error) {
	return []models.Payment{}, nil
}

type stubNotificationsService struct{}

func (stubNotificationsService) Append(ctx context.Context, barberID uuid.UUID, message string) error {
	panic("unimplemented")
}

func (stubNotificationsService) List(ctx context.Context, params notifications.ListParams) (*notifications.ListResult, error) {
	return &notifications.ListResult{}, nil
}

func (stubNotificationsService) MarkRead(ctx context.Context, barberID, notificationID uuid.UUID) error {
	return nil
}

func (stubNotificationsService) MarkAllRead(ctx context.Context, barberID uuid.UUID) (int64, error) {
	return 0, nil
}

func (stubNotificationsService) DeleteReadOlderThan(ctx context.Context, age time.Duration) (int64, error) {
	panic("unimplemented")
}

type stubMediaService struct{}

func (stubMediaService) Upload(ctx context.Context, barberID uuid.UUID, imageData string) (*models.BarberMedia, error) {
	panic("unimplemented")
}

func (stubMediaService) Delete(ctx context.Context, barberID, mediaID uuid.UUID) error {
	panic("unimplemented")
}

func (stubMediaService) List(ctx context.Context, barberID uuid.UUID) ([]models.BarberMedia, error) {
	return []models.BarberMedia{}, nil
}

type stubEngagementService struct{}

func (stubEngagementService) RecordClick(ctx context.Context, barberID uuid.UUID) error {
	return nil
}

func (stubEngagementService) RecordImpression(ctx context.Context, barberID uuid.UUID) error {
	return nil
}

func (stubEngagementService) Summary(ctx context.Context, barberID uuid.UUID, window time.Duration) (*engagement.SummaryResult, error) {
	panic("unimplemented")
}

type stubAdminService struct{}

func (stubAdminService) Dashboard(ctx context.Context) (*admin.DashboardResult, error) {
	return &admin.DashboardResult{}, nil
}

func (stubAdminService) DeleteBarber(ctx context.Context, barberID uuid.UUID) error {
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "secret",
			Issuer:            "issuer",
			ExpirationMinutes: 60,
		},
		Admin: config.AdminConfig{SharedSecret: "hub-admin"},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(
		cfg,
		logg,
		stubPinger{},
		(*redis.Client)(nil),
		stubBarbersService{},
		stubPaymentsService{},
		stubNotificationsService{},
		stubMediaService{},
		stubEngagementService{},
		stubAdminService{},
	)
}

func buildToken(t *testing.T, cfg *config.Config) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		BarberID: uuid.New(),
		Phone:    "+2348012345678",
		JTI:      uuid.NewString(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLive(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for liveness got %d", resp.Code)
	}
}

func TestPublicBarbersListing(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/barbers", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for public listing got %d", resp.Code)
	}
}

func TestPublicBarberLinks(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/barbers/"+uuid.NewString()+"/links/whatsapp", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for whatsapp link got %d", resp.Code)
	}
}

func TestPrivateGroupRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestPrivateGroupSucceedsWithJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for authenticated profile got %d", resp.Code)
	}
}

func TestNotificationsRequireJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me/notifications", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}

	authed := httptest.NewRequest(http.MethodGet, "/api/v1/me/notifications", nil)
	authed.Header.Set("Authorization", "Bearer "+buildToken(t, cfg))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, authed)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for authenticated list got %d", resp.Code)
	}
}

func TestQueryParamBoundsRejected(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	token := buildToken(t, cfg)

	cases := []struct {
		name string
		path string
	}{
		{"non-numeric limit", "/api/v1/me/notifications?limit=abc"},
		{"over-range limit", "/api/v1/me/notifications?limit=5000"},
		{"zero days", "/api/v1/me/engagement?days=0"},
		{"non-numeric days", "/api/v1/me/engagement?days=soon"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			req.Header.Set("Authorization", "Bearer "+token)
			resp := httptest.NewRecorder()
			router.ServeHTTP(resp, req)
			if resp.Code != http.StatusBadRequest {
				t.Fatalf("expected 400 for %s got %d", tc.path, resp.Code)
			}
		})
	}
}

func TestAdminGroupRequiresSharedSecret(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	missing := httptest.NewRequest(http.MethodGet, "/api/admin/v1/dashboard", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, missing)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without secret got %d", resp.Code)
	}

	wrong := httptest.NewRequest(http.MethodGet, "/api/admin/v1/dashboard", nil)
	wrong.Header.Set("X-Admin-Secret", "guess")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, wrong)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong secret got %d", resp.Code)
	}

	right := httptest.NewRequest(http.MethodGet, "/api/admin/v1/dashboard", nil)
	right.Header.Set("X-Admin-Secret", "hub-admin")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, right)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for configured secret got %d", resp.Code)
	}
}

func TestAdminGroupDisabledWithoutSecret(t *testing.T) {
	cfg := testConfig()
	cfg.Admin.SharedSecret = ""
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/dashboard", nil)
	req.Header.Set("X-Admin-Secret", "anything")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 when admin surface is disabled got %d", resp.Code)
	}
}

func TestEngagementEndpointsArePublic(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/barbers/"+uuid.NewString()+"/clicks", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusAccepted {
		t.Fatalf("expected 202 for click got %d", resp.Code)
	}
}
