package jobs

import (
	"context"
	"time"

	"github.com/straye-as/project-desk-api/internal/service"
	"go.uber.org/zap"
)

// PaymentSyncJobName is the name of the data warehouse payment sync job
const PaymentSyncJobName = "payment_sync"

// PaymentSyncer copies received payments from the data warehouse onto projects.
// *service.PaymentSyncService satisfies it.
type PaymentSyncer interface {
	Sync(ctx context.Context) (*service.PaymentSyncResult, error)
}

// PaymentSyncJob runs the payment sync on a schedule
type PaymentSyncJob struct {
	syncer  PaymentSyncer
	logger  *zap.Logger
	timeout time.Duration
}

// NewPaymentSyncJob creates a payment sync job bounded by timeout
func NewPaymentSyncJob(syncer PaymentSyncer, logger *zap.Logger, timeout time.Duration) *PaymentSyncJob {
	return &PaymentSyncJob{
		syncer:  syncer,
		logger:  logger,
		timeout: timeout,
	}
}

// Run executes one sync
func (j *PaymentSyncJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	result, err := j.syncer.Sync(ctx)
	if err != nil {
		j.logger.Error("payment sync job failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return
	}

	j.logger.Info("payment sync job completed",
		zap.Int("fetched", result.Fetched),
		zap.Int("updated", result.Updated),
		zap.Int("unmatched", result.Unmatched),
		zap.Int("failed", result.Failed),
		zap.Duration("duration", time.Since(start)))
}

// RegisterPaymentSyncJob registers the payment sync with the scheduler.
// With runAtStartup a first sync runs in the background so it doesn't block API startup.
func RegisterPaymentSyncJob(scheduler *Scheduler, syncer PaymentSyncer, logger *zap.Logger, cronExpr string, timeout time.Duration, runAtStartup bool) error {
	job := NewPaymentSyncJob(syncer, logger, timeout)
	if runAtStartup {
		go job.Run()
	}
	return scheduler.AddJob(PaymentSyncJobName, cronExpr, job.Run)
}
