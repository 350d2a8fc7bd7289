package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/straye-as/project-desk-api/internal/config"
	"github.com/straye-as/project-desk-api/internal/http/handler"
	"github.com/straye-as/project-desk-api/internal/http/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	_ "github.com/straye-as/project-desk-api/docs" // Import generated swagger docs
)

type Router struct {
	cfg              *config.Config
	logger           *zap.Logger
	rateLimiter      *middleware.RateLimiter
	auditMiddleware  *middleware.AuditMiddleware
	healthHandler    *handler.HealthHandler
	dashboardHandler *handler.DashboardHandler
	projectHandler   *handler.ProjectHandler
	feedbackHandler  *handler.FeedbackHandler
	favoriteHandler  *handler.FavoriteHandler
	deskHandler      *handler.DeskHandler
	auditHandler     *handler.AuditHandler
	adminHandler     *handler.AdminHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	rateLimiter *middleware.RateLimiter,
	auditMiddleware *middleware.AuditMiddleware,
	healthHandler *handler.HealthHandler,
	dashboardHandler *handler.DashboardHandler,
	projectHandler *handler.ProjectHandler,
	feedbackHandler *handler.FeedbackHandler,
	favoriteHandler *handler.FavoriteHandler,
	deskHandler *handler.DeskHandler,
	auditHandler *handler.AuditHandler,
	adminHandler *handler.AdminHandler,
) *Router {
	return &Router{
		cfg:              cfg,
		logger:           logger,
		rateLimiter:      rateLimiter,
		auditMiddleware:  auditMiddleware,
		healthHandler:    healthHandler,
		dashboardHandler: dashboardHandler,
		projectHandler:   projectHandler,
		feedbackHandler:  feedbackHandler,
		favoriteHandler:  favoriteHandler,
		deskHandler:      deskHandler,
		auditHandler:     auditHandler,
		adminHandler:     adminHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.LimitByIP)

	r.Get("/health", rt.healthHandler.Live)
	r.Get("/health/db", rt.healthHandler.Database)
	r.Get("/health/ready", rt.healthHandler.Ready)

	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	r.Route("/api/v1", func(r chi.Router) {
		if timeout := rt.cfg.Server.RequestTimeoutDuration(); timeout > 0 {
			r.Use(chimiddleware.Timeout(timeout))
		}
		r.Use(rt.auditMiddleware.Audit)

		// Dashboard
		r.Get("/dashboard/metrics", rt.dashboardHandler.GetMetrics)
		r.Get("/dashboard/snapshots/latest", rt.dashboardHandler.LatestSnapshot)

		// Projects
		r.Route("/projects", func(r chi.Router) {
			r.Get("/", rt.projectHandler.List)
			r.Post("/", rt.projectHandler.Create)
			r.Get("/{id}", rt.projectHandler.GetByID)
			r.Put("/{id}", rt.projectHandler.Update)
			r.Delete("/{id}", rt.projectHandler.Delete)
			r.Get("/{id}/stakeholders", rt.projectHandler.ListStakeholders)
			r.Post("/{id}/stakeholders", rt.projectHandler.AddStakeholder)
		})

		// Feedback
		r.Route("/feedback", func(r chi.Router) {
			r.Get("/", rt.feedbackHandler.List)
			r.Post("/", rt.feedbackHandler.Create)
			r.Get("/{id}", rt.feedbackHandler.GetByID)
			r.Put("/{id}", rt.feedbackHandler.Update)
		})

		// Favorites
		r.Route("/favorites", func(r chi.Router) {
			r.Get("/", rt.favoriteHandler.List)
			r.Put("/{projectId}", rt.favoriteHandler.Add)
			r.Delete("/{projectId}", rt.favoriteHandler.Remove)
		})

		// Response desk
		r.Route("/desk/sessions", func(r chi.Router) {
			r.Post("/", rt.deskHandler.OpenSession)
			r.Get("/{id}", rt.deskHandler.GetSession)
			r.Delete("/{id}", rt.deskHandler.CloseSession)
			r.Post("/{id}/select", rt.deskHandler.Select)
			r.Post("/{id}/cancel", rt.deskHandler.Cancel)
			r.With(rt.rateLimiter.LimitGeneration).Post("/{id}/generate", rt.deskHandler.Generate)
			r.Put("/{id}/draft", rt.deskHandler.EditDraft)
			r.Post("/{id}/save", rt.deskHandler.Save)
		})

		// Audit logs
		r.Get("/audit", rt.auditHandler.List)

		// Admin triggers for scheduled jobs
		r.Route("/admin", func(r chi.Router) {
			r.Post("/payments/sync", rt.adminHandler.SyncPayments)
			r.Post("/snapshots", rt.adminHandler.CaptureSnapshot)
		})
	})

	return r
}
