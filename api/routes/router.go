package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/marcoberry/barberhub-backend/api/controllers"
	"github.com/marcoberry/barberhub-backend/api/middleware"
	"github.com/marcoberry/barberhub-backend/internal/admin"
	"github.com/marcoberry/barberhub-backend/internal/barbers"
	"github.com/marcoberry/barberhub-backend/internal/engagement"
	"github.com/marcoberry/barberhub-backend/internal/media"
	"github.com/marcoberry/barberhub-backend/internal/notifications"
	"github.com/marcoberry/barberhub-backend/internal/payments"
	"github.com/marcoberry/barberhub-backend/pkg/config"
	"github.com/marcoberry/barberhub-backend/pkg/db"
	"github.com/marcoberry/barberhub-backend/pkg/logger"
	"github.com/marcoberry/barberhub-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	barbersService barbers.Service,
	paymentsService payments.Service,
	notificationsService notifications.Service,
	mediaService media.Service,
	engagementService engagement.Service,
	adminService admin.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginPhoneLimit,
	)
	signupPolicy := middleware.NewAuthRateLimitPolicy(
		"signup",
		cfg.AuthRateLimit.SignupWindow,
		cfg.AuthRateLimit.SignupIPLimit,
		cfg.AuthRateLimit.SignupPhoneLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(signupPolicy, redisClient, logg)).Post("/signup", controllers.AuthSignup(barbersService, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(barbersService, logg))
	})

	r.Route("/api/v1/barbers", func(r chi.Router) {
		r.Get("/", controllers.ListBarbers(barbersService, logg))
		r.Route("/{barberId}", func(r chi.Router) {
			r.Get("/", controllers.GetBarber(barbersService, logg))
			r.Get("/status", controllers.GetBarberStatus(barbersService, logg))
			r.Post("/ratings", controllers.RateBarber(barbersService, logg))
			r.Post("/reviews", controllers.ReviewBarber(barbersService, logg))
			r.Post("/clicks", controllers.RecordClick(engagementService, logg))
			r.Post("/impressions", controllers.RecordImpression(engagementService, logg))
			r.Get("/links/whatsapp", controllers.BarberWhatsAppLink(barbersService, logg))
			r.Get("/links/call", controllers.BarberCallLink(barbersService, logg))
		})
	})

	r.Post("/api/v1/payments/verify", controllers.VerifyPayment(paymentsService, logg))

	r.Route("/api/v1/me", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Get("/", controllers.Me(barbersService, logg))
		r.Put("/price", controllers.UpdateMyPrice(barbersService, logg))
		r.Put("/availability", controllers.UpdateMyAvailability(barbersService, logg))
		r.Post("/services", controllers.AddMyService(barbersService, logg))
		r.Get("/payments", controllers.MyPayments(paymentsService, logg))
		r.Get("/engagement", controllers.MyEngagement(engagementService, logg))

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(notificationsService, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(notificationsService, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(notificationsService, logg))
		})

		r.Route("/media", func(r chi.Router) {
			r.Get("/", controllers.ListMyMedia(mediaService, logg))
			r.Post("/", controllers.UploadMyMedia(mediaService, logg))
			r.Delete("/{mediaId}", controllers.DeleteMyMedia(mediaService, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.AdminSecret(cfg.Admin, logg))

		r.Get("/dashboard", controllers.AdminDashboard(adminService, logg))
		r.Delete("/barbers/{barberId}", controllers.AdminDeleteBarber(adminService, logg))
	})

	return r
}
