package handler

import (
	"net/http"

	"github.com/straye-as/project-desk-api/internal/service"
	"go.uber.org/zap"
)

type DashboardHandler struct {
	dashboardService *service.DashboardService
	snapshotService  *service.SnapshotService
	logger           *zap.Logger
}

func NewDashboardHandler(dashboardService *service.DashboardService, snapshotService *service.SnapshotService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		snapshotService:  snapshotService,
		logger:           logger,
	}
}

// @Summary Get dashboard metrics
// @Description Returns the aggregate dashboard view.
// @Description
// @Description - `activeProjectCount`: projects with progress below 100
// @Description - `pendingFeedbackCount`: feedback items still pending
// @Description - `receivedRatio`: totalPaymentReceived / totalContractValue, 0 when no contract value
// @Description - `projectTypeCounts`: one entry per category, zeros included
// @Description - `priorityProjects`, `feedbackStream`: first four of each collection
// @Tags Dashboard
// @Produce json
// @Success 200 {object} domain.DashboardMetrics
// @Failure 500 {object} domain.APIError
// @Router /dashboard/metrics [get]
func (h *DashboardHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	metrics, err := h.dashboardService.GetMetrics(r.Context())
	if err != nil {
		h.logger.Error("failed to get dashboard metrics", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to compute dashboard metrics")
		return
	}

	respondJSON(w, http.StatusOK, metrics)
}

// @Summary Get latest metrics snapshot
// @Description Returns the most recent archived dashboard metrics
// @Tags Dashboard
// @Produce json
// @Success 200 {object} domain.DashboardMetrics
// @Failure 404 {object} domain.APIError
// @Failure 503 {object} domain.APIError
// @Router /dashboard/snapshots/latest [get]
func (h *DashboardHandler) LatestSnapshot(w http.ResponseWriter, r *http.Request) {
	metrics, err := h.snapshotService.Latest(r.Context())
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, metrics)
}
