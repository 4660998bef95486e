package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/soundrift/soundrift/internal/gateway"
	"github.com/soundrift/soundrift/internal/gateway/middleware"
	"github.com/soundrift/soundrift/internal/modules/billing"
	"github.com/soundrift/soundrift/internal/modules/catalog"
	"github.com/soundrift/soundrift/internal/modules/discovery"
	"github.com/soundrift/soundrift/internal/modules/engagement"
	"github.com/soundrift/soundrift/internal/modules/filestorage"
	"github.com/soundrift/soundrift/internal/modules/identity"
	"github.com/soundrift/soundrift/internal/modules/notification"
	"github.com/soundrift/soundrift/internal/shared/infrastructure/config"
	"github.com/soundrift/soundrift/internal/shared/infrastructure/database"
	"github.com/soundrift/soundrift/pkg/migration"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := config.Load()
	ctx := context.Background()

	db, err := database.NewPostgresDB(cfg.Database)
	if err != nil {
		slog.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("postgres connected", "host", cfg.Database.Host)

	if err := migration.AutoMigrate(cfg.Database.URL(), cfg.Server.MigrationsPath, logger); err != nil {
		slog.Error("migrations failed", "error", err)
		os.Exit(1)
	}

	redisClient, err := database.NewRedis(cfg.Redis)
	if err != nil {
		slog.Warn("redis unavailable, trending cache disabled", "error", err)
		redisClient = nil
	}

	storageModule, err := filestorage.NewModule(ctx, cfg.FileStorage)
	if err != nil {
		slog.Error("failed to initialize file storage", "error", err)
		os.Exit(1)
	}

	identityModule := identity.NewModule(db, storageModule.Service, cfg.JWT.Secret, cfg.JWT.Expiry, cfg.Google.ClientID)
	notificationModule := notification.NewModule(db, identityModule.Repo)
	discoveryModule := discovery.NewModule(db, redisClient)
	catalogModule := catalog.NewModule(db, storageModule.Service, notificationModule.Service, discoveryModule.Cache)
	engagementModule := engagement.NewModule(db, identityModule.Repo, notificationModule.Service)
	billingModule := billing.NewModule(db, identityModule.Repo, cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret)

	// release fanout needs follower ids; set late to avoid a wiring cycle
	notificationModule.Service.SetFollowerSource(engagementModule.Service)

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)
	mux := gateway.SetupRoutes(gateway.RouterConfig{
		AuthMiddleware:      authMiddleware,
		UserHandler:         identityModule.Handler,
		CatalogHandler:      catalogModule.Handler,
		EngagementHandler:   engagementModule.Handler,
		DiscoveryHandler:    discoveryModule.Handler,
		BillingHandler:      billingModule.Handler,
		NotificationHandler: notificationModule.Handler,
	})

	handler := middleware.CORSMiddleware(middleware.PrometheusMiddleware(mux), cfg.Server.AllowedOrigins)

	server := gateway.NewServer(cfg.Server.Port, handler)
	if err := server.Start(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
	notificationModule.Hub.Stop()
}
