package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const (
	// SessionSweepJobName is the name of the idle desk session sweep
	SessionSweepJobName = "desk_session_sweep"
	// SnapshotJobName is the name of the dashboard snapshot job
	SnapshotJobName = "metrics_snapshot"
)

// SessionSweeper closes idle desk sessions
type SessionSweeper interface {
	SweepIdle(ttl time.Duration) int
}

// SnapshotCapturer archives the dashboard metrics
type SnapshotCapturer interface {
	Capture(ctx context.Context) (string, error)
}

// NewSessionSweepJob returns a job that closes sessions idle for longer than ttl
func NewSessionSweepJob(sweeper SessionSweeper, ttl time.Duration, logger *zap.Logger) func() {
	return func() {
		if closed := sweeper.SweepIdle(ttl); closed > 0 {
			logger.Info("closed idle desk sessions",
				zap.Int("closed", closed),
				zap.Duration("ttl", ttl))
		}
	}
}

// NewSnapshotJob returns a job that captures one metrics snapshot
func NewSnapshotJob(capturer SnapshotCapturer, timeout time.Duration, logger *zap.Logger) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		key, err := capturer.Capture(ctx)
		if err != nil {
			logger.Error("metrics snapshot job failed", zap.Error(err))
			return
		}
		logger.Debug("metrics snapshot job completed", zap.String("key", key))
	}
}
