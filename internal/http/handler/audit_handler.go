package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/straye-as/project-desk-api/internal/domain"
	"github.com/straye-as/project-desk-api/internal/service"
	"go.uber.org/zap"
)

// AuditHandler handles audit log related HTTP requests
type AuditHandler struct {
	auditService *service.AuditLogService
	logger       *zap.Logger
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(auditService *service.AuditLogService, logger *zap.Logger) *AuditHandler {
	return &AuditHandler{
		auditService: auditService,
		logger:       logger,
	}
}

// AuditLogDTO represents an audit log entry for API response
type AuditLogDTO struct {
	ID         string          `json:"id"`
	Action     string          `json:"action"`
	EntityType string          `json:"entityType"`
	EntityID   string          `json:"entityId,omitempty"`
	Method     string          `json:"method"`
	Path       string          `json:"path"`
	RemoteAddr string          `json:"remoteAddr,omitempty"`
	RequestID  string          `json:"requestId,omitempty"`
	NewValues  json.RawMessage `json:"newValues,omitempty" swaggertype:"object"`
	CreatedAt  string          `json:"createdAt"`
}

// AuditLogListResponse represents a paginated list of audit logs
type AuditLogListResponse struct {
	Data       []AuditLogDTO `json:"data"`
	Total      int64         `json:"total"`
	Page       int           `json:"page"`
	PageSize   int           `json:"pageSize"`
	TotalPages int           `json:"totalPages"`
}

// List godoc
// @Summary List audit logs
// @Description Returns a paginated list of audit log entries with optional filters
// @Tags Audit
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param pageSize query int false "Page size (default: 50, max: 200)"
// @Param action query string false "Filter by action type" Enums(create, update, delete)
// @Param entityType query string false "Filter by entity type"
// @Param entityId query string false "Filter by entity ID"
// @Param startTime query string false "Filter by start time (RFC3339)"
// @Param endTime query string false "Filter by end time (RFC3339)"
// @Success 200 {object} AuditLogListResponse
// @Failure 500 {object} domain.APIError
// @Router /audit [get]
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	page := parseIntQuery(r, "page", 1)
	pageSize := parseIntQuery(r, "pageSize", 50)
	if pageSize < 1 {
		pageSize = 50
	}
	if pageSize > 200 {
		pageSize = 200
	}

	params := service.AuditLogQueryParams{
		EntityType: r.URL.Query().Get("entityType"),
		EntityID:   r.URL.Query().Get("entityId"),
		Page:       page,
		PageSize:   pageSize,
	}
	if actionStr := r.URL.Query().Get("action"); actionStr != "" {
		action := domain.AuditAction(actionStr)
		params.Action = &action
	}
	if startStr := r.URL.Query().Get("startTime"); startStr != "" {
		if startTime, err := time.Parse(time.RFC3339, startStr); err == nil {
			params.StartTime = &startTime
		}
	}
	if endStr := r.URL.Query().Get("endTime"); endStr != "" {
		if endTime, err := time.Parse(time.RFC3339, endStr); err == nil {
			params.EndTime = &endTime
		}
	}

	logs, total, err := h.auditService.List(r.Context(), params)
	if err != nil {
		h.logger.Error("failed to list audit logs", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to retrieve audit logs")
		return
	}

	dtos := make([]AuditLogDTO, len(logs))
	for i := range logs {
		dtos[i] = toAuditLogDTO(&logs[i])
	}

	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}

	respondJSON(w, http.StatusOK, AuditLogListResponse{
		Data:       dtos,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	})
}

func toAuditLogDTO(log *domain.AuditLog) AuditLogDTO {
	dto := AuditLogDTO{
		ID:         log.ID,
		Action:     string(log.Action),
		EntityType: log.EntityType,
		EntityID:   log.EntityID,
		Method:     log.Method,
		Path:       log.Path,
		RemoteAddr: log.RemoteAddr,
		RequestID:  log.RequestID,
		CreatedAt:  log.CreatedAt.UTC().Format(time.RFC3339),
	}
	if log.NewValues != "" && log.NewValues != "null" && json.Valid([]byte(log.NewValues)) {
		dto.NewValues = json.RawMessage(log.NewValues)
	}
	return dto
}

func parseIntQuery(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}
