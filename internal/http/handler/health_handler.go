package handler

import (
	"net/http"

	"github.com/straye-as/project-desk-api/internal/database"
	"github.com/straye-as/project-desk-api/internal/datawarehouse"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// HealthHandler serves liveness and readiness probes
type HealthHandler struct {
	db     *gorm.DB
	dw     *datawarehouse.Client
	logger *zap.Logger
}

// NewHealthHandler creates a health handler. dw may be nil when the warehouse is not configured.
func NewHealthHandler(db *gorm.DB, dw *datawarehouse.Client, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{db: db, dw: dw, logger: logger}
}

// Live godoc
// @Summary Liveness probe
// @Tags Health
// @Success 200 {string} string "OK"
// @Router /health [get]
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// Database godoc
// @Summary Database health with connection pool stats
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health/db [get]
func (h *HealthHandler) Database(w http.ResponseWriter, r *http.Request) {
	if err := database.HealthCheck(r.Context(), h.db); err != nil {
		h.logger.Error("Database health check failed", zap.Error(err))
		respondJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":  "unhealthy",
			"error":   err.Error(),
			"service": "database",
		})
		return
	}

	body := map[string]interface{}{
		"status":  "healthy",
		"service": "database",
		"driver":  h.db.Dialector.Name(),
	}
	if sqlDB, err := h.db.DB(); err == nil {
		stats := sqlDB.Stats()
		body["stats"] = map[string]interface{}{
			"max_open_connections": stats.MaxOpenConnections,
			"open_connections":     stats.OpenConnections,
			"in_use":               stats.InUse,
			"idle":                 stats.Idle,
			"wait_count":           stats.WaitCount,
			"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
		}
	}
	respondJSON(w, http.StatusOK, body)
}

// Ready godoc
// @Summary Readiness probe covering every dependency
// @Description The data warehouse only degrades readiness when it is configured
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health/ready [get]
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]interface{})
	allHealthy := true

	if err := database.HealthCheck(r.Context(), h.db); err != nil {
		h.logger.Error("Database health check failed", zap.Error(err))
		checks["database"] = map[string]interface{}{"status": "unhealthy", "error": err.Error()}
		allHealthy = false
	} else {
		checks["database"] = map[string]interface{}{"status": "healthy"}
	}

	dwStatus := h.dw.HealthCheck(r.Context())
	checks["dataWarehouse"] = dwStatus
	if dwStatus.Status == "unhealthy" {
		allHealthy = false
	}

	status, code := "healthy", http.StatusOK
	if !allHealthy {
		status, code = "unhealthy", http.StatusServiceUnavailable
	}
	respondJSON(w, code, map[string]interface{}{
		"status": status,
		"checks": checks,
	})
}
