package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/marcoberry/barberhub-backend/api/routes"
	"github.com/marcoberry/barberhub-backend/internal/admin"
	"github.com/marcoberry/barberhub-backend/internal/barbers"
	"github.com/marcoberry/barberhub-backend/internal/engagement"
	"github.com/marcoberry/barberhub-backend/internal/media"
	"github.com/marcoberry/barberhub-backend/internal/notifications"
	"github.com/marcoberry/barberhub-backend/internal/payments"
	"github.com/marcoberry/barberhub-backend/pkg/config"
	"github.com/marcoberry/barberhub-backend/pkg/db"
	"github.com/marcoberry/barberhub-backend/pkg/logger"
	"github.com/marcoberry/barberhub-backend/pkg/migrate"
	"github.com/marcoberry/barberhub-backend/pkg/paystack"
	"github.com/marcoberry/barberhub-backend/pkg/redis"
	"github.com/marcoberry/barberhub-backend/pkg/storage/cloudinary"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	paystackClient, err := paystack.NewClient(cfg.Paystack)
	if err != nil {
		logg.Error(context.Background(), "failed to create paystack client", err)
		os.Exit(1)
	}

	cloudinaryClient, err := cloudinary.NewClient(cfg.Cloudinary)
	if err != nil {
		logg.Error(context.Background(), "failed to create cloudinary client", err)
		os.Exit(1)
	}

	barbersRepo := barbers.NewRepository(dbClient.DB())

	notificationsService, err := notifications.NewService(notifications.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	barbersService, err := barbers.NewService(barbersRepo, dbClient, notificationsService, logg, cfg.Subscription, cfg.JWT, cfg.Password)
	if err != nil {
		logg.Error(context.Background(), "failed to create barbers service", err)
		os.Exit(1)
	}

	paymentsService, err := payments.NewService(payments.NewRepository(dbClient.DB()), barbersRepo, paystackClient, notificationsService, logg, dbClient, cfg.Subscription)
	if err != nil {
		logg.Error(context.Background(), "failed to create payments service", err)
		os.Exit(1)
	}

	mediaService, err := media.NewService(media.NewRepository(dbClient.DB()), cloudinaryClient, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create media service", err)
		os.Exit(1)
	}

	engagementService, err := engagement.NewService(engagement.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create engagement service", err)
		os.Exit(1)
	}

	adminService, err := admin.NewService(barbersRepo, cfg.Subscription)
	if err != nil {
		logg.Error(context.Background(), "failed to create admin service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			barbersService,
			paymentsService,
			notificationsService,
			mediaService,
			engagementService,
			adminService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
