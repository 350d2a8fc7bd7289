package handler

import (
	"net/http"

	"github.com/straye-as/project-desk-api/internal/service"
	"go.uber.org/zap"
)

// AdminHandler triggers the background jobs on demand
type AdminHandler struct {
	paymentSync *service.PaymentSyncService
	snapshots   *service.SnapshotService
	logger      *zap.Logger
}

func NewAdminHandler(paymentSync *service.PaymentSyncService, snapshots *service.SnapshotService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		paymentSync: paymentSync,
		snapshots:   snapshots,
		logger:      logger,
	}
}

// SyncPayments godoc
// @Summary Sync received payments from the data warehouse
// @Tags Admin
// @Produce json
// @Success 200 {object} service.PaymentSyncResult
// @Failure 503 {object} domain.APIError
// @Router /admin/payments/sync [post]
func (h *AdminHandler) SyncPayments(w http.ResponseWriter, r *http.Request) {
	result, err := h.paymentSync.Sync(r.Context())
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// CaptureSnapshot godoc
// @Summary Archive the current dashboard metrics
// @Tags Admin
// @Produce json
// @Success 201 {object} map[string]string
// @Failure 503 {object} domain.APIError
// @Router /admin/snapshots [post]
func (h *AdminHandler) CaptureSnapshot(w http.ResponseWriter, r *http.Request) {
	key, err := h.snapshots.Capture(r.Context())
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{"key": key})
}
