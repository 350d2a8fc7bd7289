package service

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/straye-as/project-desk-api/internal/domain"
	"github.com/straye-as/project-desk-api/internal/repository"
	"go.uber.org/zap"
)

// AuditLogService handles audit logging operations
type AuditLogService struct {
	auditRepo *repository.AuditLogRepository
	logger    *zap.Logger
	now       func() time.Time
}

// NewAuditLogService creates a new audit log service
func NewAuditLogService(auditRepo *repository.AuditLogRepository, logger *zap.Logger) *AuditLogService {
	return &AuditLogService{
		auditRepo: auditRepo,
		logger:    logger,
		now:       time.Now,
	}
}

// LogEntry represents the input for creating an audit log entry
type LogEntry struct {
	Action     domain.AuditAction
	EntityType string
	EntityID   string
	NewValues  interface{}
}

// Log creates an audit log entry from the request
func (s *AuditLogService) Log(ctx context.Context, r *http.Request, entry LogEntry) error {
	auditLog := &domain.AuditLog{
		Action:     entry.Action,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		NewValues:  "null",
		CreatedAt:  s.now(),
	}

	if r != nil {
		auditLog.Method = r.Method
		auditLog.Path = r.URL.Path
		auditLog.RemoteAddr = clientIP(r)
		auditLog.RequestID = r.Header.Get("X-Request-ID")
	}

	if entry.NewValues != nil {
		if newJSON, err := json.Marshal(entry.NewValues); err == nil {
			auditLog.NewValues = string(newJSON)
		}
	}

	if err := s.auditRepo.Create(ctx, auditLog); err != nil {
		s.logger.Error("failed to create audit log",
			zap.String("action", string(entry.Action)),
			zap.String("entity_type", entry.EntityType),
			zap.Error(err))
		return err
	}
	return nil
}

// AuditLogQueryParams represents query parameters for listing audit logs
type AuditLogQueryParams struct {
	Action     *domain.AuditAction
	EntityType string
	EntityID   string
	StartTime  *time.Time
	EndTime    *time.Time
	Page       int
	PageSize   int
}

// List retrieves audit logs with filters
func (s *AuditLogService) List(ctx context.Context, params AuditLogQueryParams) ([]domain.AuditLog, int64, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 || params.PageSize > 200 {
		params.PageSize = 50
	}
	filter := &repository.AuditLogFilter{
		Action:     params.Action,
		EntityType: params.EntityType,
		EntityID:   params.EntityID,
		StartTime:  params.StartTime,
		EndTime:    params.EndTime,
	}
	return s.auditRepo.List(ctx, filter, params.Page, params.PageSize)
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if first, _, _ := strings.Cut(xff, ","); first != "" {
			return strings.TrimSpace(first)
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
