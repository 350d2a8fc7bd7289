package service

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/project-desk-api/internal/domain"
	"github.com/straye-as/project-desk-api/internal/storage"
	"go.uber.org/zap"
)

// MetricsSource produces the dashboard metrics to archive
type MetricsSource interface {
	GetMetrics(ctx context.Context) (*domain.DashboardMetrics, error)
}

// SnapshotService archives dashboard metrics to storage as JSON documents
type SnapshotService struct {
	metrics MetricsSource
	store   storage.Storage
	prefix  string
	logger  *zap.Logger
	now     func() time.Time
}

// NewSnapshotService creates a new SnapshotService. A nil store disables snapshots.
func NewSnapshotService(metrics MetricsSource, store storage.Storage, prefix string, logger *zap.Logger) *SnapshotService {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		prefix = "snapshots"
	}
	return &SnapshotService{
		metrics: metrics,
		store:   store,
		prefix:  prefix,
		logger:  logger,
		now:     time.Now,
	}
}

// IsAvailable reports whether a snapshot store is configured
func (s *SnapshotService) IsAvailable() bool {
	return s.store != nil
}

// Capture writes the current metrics and returns the storage key
func (s *SnapshotService) Capture(ctx context.Context) (string, error) {
	if s.store == nil {
		return "", ErrSnapshotsUnavailable
	}

	m, err := s.metrics.GetMetrics(ctx)
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("failed to encode snapshot: %w", err)
	}

	key := s.keyFor(s.now().UTC())
	if err := s.store.Put(ctx, key, "application/json", data); err != nil {
		return "", fmt.Errorf("failed to store snapshot: %w", err)
	}

	s.logger.Info("Dashboard snapshot stored", zap.String("key", key), zap.Int("bytes", len(data)))
	return key, nil
}

// Latest returns the most recently captured snapshot
func (s *SnapshotService) Latest(ctx context.Context) (*domain.DashboardMetrics, error) {
	if s.store == nil {
		return nil, ErrSnapshotsUnavailable
	}

	keys, err := s.store.List(ctx, s.prefix+"/")
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	if len(keys) == 0 {
		return nil, ErrNotFound
	}
	// keys embed a zero-padded UTC timestamp, so lexical order is chronological
	sort.Strings(keys)

	data, err := s.store.Get(ctx, keys[len(keys)-1])
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	var m domain.DashboardMetrics
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &m, nil
}

// keyFor builds a fixed-width key with millisecond precision; the random suffix keeps
// two captures within the same millisecond apart
func (s *SnapshotService) keyFor(t time.Time) string {
	name := t.Format("150405.000") + "-" + uuid.NewString()[:8] + ".json"
	return path.Join(s.prefix, t.Format("2006/01/02"), name)
}
