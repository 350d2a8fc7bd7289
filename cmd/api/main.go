package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/straye-as/project-desk-api/docs"
	"github.com/straye-as/project-desk-api/internal/config"
	"github.com/straye-as/project-desk-api/internal/database"
	"github.com/straye-as/project-desk-api/internal/datawarehouse"
	"github.com/straye-as/project-desk-api/internal/drafting"
	"github.com/straye-as/project-desk-api/internal/http/handler"
	"github.com/straye-as/project-desk-api/internal/http/middleware"
	"github.com/straye-as/project-desk-api/internal/http/router"
	"github.com/straye-as/project-desk-api/internal/jobs"
	"github.com/straye-as/project-desk-api/internal/logger"
	"github.com/straye-as/project-desk-api/internal/repository"
	"github.com/straye-as/project-desk-api/internal/service"
	"github.com/straye-as/project-desk-api/internal/storage"
	"go.uber.org/zap"
)

// @title Project Desk API
// @version 1.0
// @description Project dashboard and stakeholder feedback response desk

// @contact.name API Support
// @contact.email support@straye.io

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

const (
	paymentSyncTimeout = 10 * time.Minute
	snapshotTimeout    = time.Minute
	shutdownTimeout    = 30 * time.Second
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// Basic configuration first so the logger exists before Key Vault is contacted
	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", basicCfg.App.Name),
		zap.String("env", basicCfg.App.Environment),
		zap.Int("port", basicCfg.App.Port),
	)

	if basicCfg.App.Environment == "development" || basicCfg.App.Environment == "" {
		docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", basicCfg.App.Port)
	} else {
		// served from whatever host the request reached
		docs.SwaggerInfo.Host = ""
	}

	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Warn("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected", zap.String("driver", cfg.Database.Driver))

	// Snapshot storage is optional; the dashboard works without it
	var snapshotStore storage.Storage
	if cfg.Snapshot.Enabled {
		snapshotStore, err = storage.NewStorage(ctx, &cfg.Storage, log)
		if err != nil {
			log.Warn("Snapshot storage unavailable, continuing without it", zap.Error(err))
			snapshotStore = nil
		} else {
			log.Info("Storage initialized", zap.String("mode", cfg.Storage.Mode))
		}
	}

	// The data warehouse is read-only and optional; payment sync is skipped without it
	dwClient, err := datawarehouse.NewClient(ctx, &cfg.DataWarehouse, log)
	if err != nil {
		log.Warn("Data warehouse connection failed, continuing without it", zap.Error(err))
		dwClient = nil
	} else if dwClient == nil {
		log.Info("Data warehouse not configured, skipping")
	}

	generator, err := drafting.New(ctx, &cfg.Drafting, log)
	if err != nil {
		return fmt.Errorf("failed to initialize draft generator: %w", err)
	}

	// Repositories
	projectRepo := repository.NewProjectRepository(db)
	feedbackRepo := repository.NewFeedbackRepository(db)
	favoriteRepo := repository.NewFavoriteRepository(db)
	auditLogRepo := repository.NewAuditLogRepository(db)

	// Services
	var paymentSource service.PaymentSource
	if dwClient != nil {
		paymentSource = dwClient
	}
	projectService := service.NewProjectService(projectRepo, favoriteRepo, log)
	feedbackService := service.NewFeedbackService(feedbackRepo, projectRepo, log)
	favoriteService := service.NewFavoriteService(favoriteRepo, projectRepo, log)
	dashboardService := service.NewDashboardService(projectRepo, feedbackRepo, favoriteRepo, log)
	deskService := service.NewResponseDeskService(feedbackRepo, projectRepo, generator, drafting.ResilienceFromConfig(&cfg.Drafting).Budget(), log)
	auditLogService := service.NewAuditLogService(auditLogRepo, log)
	paymentSyncService := service.NewPaymentSyncService(paymentSource, projectRepo, log)
	snapshotService := service.NewSnapshotService(dashboardService, snapshotStore, cfg.Snapshot.Prefix, log)

	// Middleware
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)
	auditMiddleware := middleware.NewAuditMiddleware(auditLogService, nil, log)

	// Handlers
	rt := router.NewRouter(
		cfg,
		log,
		rateLimiter,
		auditMiddleware,
		handler.NewHealthHandler(db, dwClient, log),
		handler.NewDashboardHandler(dashboardService, snapshotService, log),
		handler.NewProjectHandler(projectService, log),
		handler.NewFeedbackHandler(feedbackService, log),
		handler.NewFavoriteHandler(favoriteService, log),
		handler.NewDeskHandler(deskService, log),
		handler.NewAuditHandler(auditLogService, log),
		handler.NewAdminHandler(paymentSyncService, snapshotService, log),
	)

	scheduler, err := setupScheduler(cfg, log, deskService, paymentSyncService, snapshotService)
	if err != nil {
		return err
	}
	scheduler.Start()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		<-scheduler.Stop().Done()
		log.Info("Scheduler stopped")

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		// Let in-flight generations land and queued audit entries flush before the database closes
		deskService.Wait()
		auditMiddleware.Wait()

		if dwClient != nil {
			if err := dwClient.Close(); err != nil {
				log.Warn("Error closing data warehouse connection", zap.Error(err))
			}
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}

// setupScheduler registers the background jobs enabled by configuration
func setupScheduler(
	cfg *config.Config,
	log *zap.Logger,
	desk *service.ResponseDeskService,
	payments *service.PaymentSyncService,
	snapshots *service.SnapshotService,
) (*jobs.Scheduler, error) {
	scheduler := jobs.NewScheduler(log)

	ttl := cfg.Desk.SessionTTLDuration()
	if ttl > 0 {
		if err := scheduler.AddJob(jobs.SessionSweepJobName, cfg.Desk.SweepCron, jobs.NewSessionSweepJob(desk, ttl, log)); err != nil {
			return nil, fmt.Errorf("failed to register session sweep: %w", err)
		}
	}

	if payments.IsAvailable() && cfg.DataWarehouse.PaymentSyncCron != "" {
		if err := jobs.RegisterPaymentSyncJob(scheduler, payments, log, cfg.DataWarehouse.PaymentSyncCron, paymentSyncTimeout, true); err != nil {
			// a bad cron expression only disables the sync, the API still serves
			log.Error("Failed to register payment sync job", zap.Error(err))
		}
	} else {
		log.Info("Payment sync disabled", zap.Bool("dw_available", payments.IsAvailable()))
	}

	if cfg.Snapshot.Enabled && snapshots.IsAvailable() {
		if err := scheduler.AddJob(jobs.SnapshotJobName, cfg.Snapshot.Cron, jobs.NewSnapshotJob(snapshots, snapshotTimeout, log)); err != nil {
			log.Error("Failed to register snapshot job", zap.Error(err))
		}
	}

	return scheduler, nil
}
