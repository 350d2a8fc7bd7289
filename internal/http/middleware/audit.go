package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"slices"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/straye-as/project-desk-api/internal/domain"
	"github.com/straye-as/project-desk-api/internal/service"
	"go.uber.org/zap"
)

// AuditConfig holds configuration for audit middleware
type AuditConfig struct {
	// SkipPaths contains path prefixes that are never audited
	SkipPaths []string
	// SkipMethods contains HTTP methods that are never audited
	SkipMethods []string
	// AuditReads enables auditing of GET requests
	AuditReads bool
	// MaxBodyBytes caps how much of a request body is kept in the audit record
	MaxBodyBytes int64
}

// DefaultAuditConfig returns default audit configuration
func DefaultAuditConfig() *AuditConfig {
	return &AuditConfig{
		SkipPaths:    []string{"/health", "/swagger"},
		SkipMethods:  []string{http.MethodOptions, http.MethodHead},
		MaxBodyBytes: 64 << 10,
	}
}

// path segment -> entity type; the last matching segment wins so
// /projects/{id}/stakeholders is recorded as a Stakeholder change
var auditEntities = map[string]string{
	"projects":     "Project",
	"stakeholders": "Stakeholder",
	"feedback":     "Feedback",
	"favorites":    "Favorite",
	"sessions":     "DeskSession",
	"payments":     "PaymentSync",
	"snapshots":    "MetricsSnapshot",
}

// request fields never written to the audit log
var auditRedactedFields = []string{"password", "secret", "token", "apiKey"}

// AuditMiddleware records successful modifying requests
type AuditMiddleware struct {
	auditService *service.AuditLogService
	config       *AuditConfig
	logger       *zap.Logger
	pending      sync.WaitGroup
}

// NewAuditMiddleware creates a new audit middleware
func NewAuditMiddleware(auditService *service.AuditLogService, config *AuditConfig, logger *zap.Logger) *AuditMiddleware {
	if config == nil {
		config = DefaultAuditConfig()
	}
	return &AuditMiddleware{
		auditService: auditService,
		config:       config,
		logger:       logger,
	}
}

// Audit returns middleware that writes an audit entry after each successful modification.
// The entry is written in the background so it never delays the response.
func (m *AuditMiddleware) Audit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.shouldAudit(r) {
			next.ServeHTTP(w, r)
			return
		}

		var requestBody []byte
		if r.Body != nil && (r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch) {
			requestBody, _ = io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewReader(requestBody))
		}

		rw := &responseCapture{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		if rw.statusCode < 200 || rw.statusCode >= 300 || m.auditService == nil {
			return
		}
		action := methodToAction(r.Method)
		if action == "" {
			return
		}

		// the chi route context is recycled once the request returns, so resolve it now
		entityType, entityID := extractEntityInfo(r)
		entry := service.LogEntry{
			Action:     action,
			EntityType: entityType,
			EntityID:   entityID,
			NewValues:  m.auditValues(requestBody),
		}
		ctx := context.WithoutCancel(r.Context())

		m.pending.Add(1)
		go func() {
			defer m.pending.Done()
			if err := m.auditService.Log(ctx, r, entry); err != nil {
				m.logger.Warn("failed to create audit log entry",
					zap.String("path", r.URL.Path),
					zap.String("method", r.Method),
					zap.Error(err))
			}
		}()
	})
}

// Wait blocks until queued audit entries are written
func (m *AuditMiddleware) Wait() {
	m.pending.Wait()
}

func (m *AuditMiddleware) shouldAudit(r *http.Request) bool {
	if slices.Contains(m.config.SkipMethods, r.Method) {
		return false
	}
	if r.Method == http.MethodGet && !m.config.AuditReads {
		return false
	}
	for _, skip := range m.config.SkipPaths {
		if strings.HasPrefix(r.URL.Path, skip) {
			return false
		}
	}
	return true
}

func (m *AuditMiddleware) auditValues(body []byte) interface{} {
	if len(body) == 0 || (m.config.MaxBodyBytes > 0 && int64(len(body)) > m.config.MaxBodyBytes) {
		return nil
	}
	var parsed map[string]interface{}
	if json.Unmarshal(body, &parsed) != nil {
		return nil
	}
	for _, field := range auditRedactedFields {
		delete(parsed, field)
	}
	return parsed
}

func methodToAction(method string) domain.AuditAction {
	switch method {
	case http.MethodPost:
		return domain.AuditActionCreate
	case http.MethodPut, http.MethodPatch:
		return domain.AuditActionUpdate
	case http.MethodDelete:
		return domain.AuditActionDelete
	default:
		return ""
	}
}

// extractEntityInfo resolves the entity type from the matched route pattern and
// the entity ID from its path parameters
func extractEntityInfo(r *http.Request) (string, string) {
	routeCtx := chi.RouteContext(r.Context())
	if routeCtx == nil {
		return parseEntityFromPath(r.URL.Path), ""
	}

	entityID := routeCtx.URLParam("id")
	if entityID == "" {
		entityID = routeCtx.URLParam("projectId")
	}

	pattern := routeCtx.RoutePattern()
	if pattern == "" {
		pattern = r.URL.Path
	}
	return parseEntityFromPath(pattern), entityID
}

func parseEntityFromPath(path string) string {
	entityType := "Unknown"
	for _, part := range strings.Split(strings.Trim(path, "/"), "/") {
		if t, ok := auditEntities[part]; ok {
			entityType = t
		}
	}
	return entityType
}

// responseCapture wraps ResponseWriter to capture the status code
type responseCapture struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseCapture) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
