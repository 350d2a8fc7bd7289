package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/straye-as/project-desk-api/internal/datawarehouse"
	"github.com/straye-as/project-desk-api/internal/repository"
	"go.uber.org/zap"
)

// PaymentSource supplies received payment totals keyed by project number.
// *datawarehouse.Client satisfies it.
type PaymentSource interface {
	GetProjectPayments(ctx context.Context) ([]datawarehouse.ProjectPayment, error)
}

// PaymentSyncResult summarizes one sync run
type PaymentSyncResult struct {
	Fetched   int `json:"fetched"`
	Updated   int `json:"updated"`
	Unmatched int `json:"unmatched"`
	Failed    int `json:"failed"`
}

// PaymentSyncService copies ERP payment totals onto projects
type PaymentSyncService struct {
	source      PaymentSource
	projectRepo *repository.ProjectRepository
	logger      *zap.Logger
}

// NewPaymentSyncService creates a new PaymentSyncService. A nil source disables syncing.
func NewPaymentSyncService(source PaymentSource, projectRepo *repository.ProjectRepository, logger *zap.Logger) *PaymentSyncService {
	return &PaymentSyncService{
		source:      source,
		projectRepo: projectRepo,
		logger:      logger,
	}
}

// IsAvailable reports whether a payment source is configured
func (s *PaymentSyncService) IsAvailable() bool {
	return s.source != nil
}

// Sync pulls every payment total and updates the matching projects.
// A failed row is logged and counted; the run continues.
func (s *PaymentSyncService) Sync(ctx context.Context) (*PaymentSyncResult, error) {
	if !s.IsAvailable() {
		s.logger.Info("data warehouse not available, skipping payment sync")
		return nil, ErrDataWarehouseUnavailable
	}

	payments, err := s.source.GetProjectPayments(ctx)
	if err != nil {
		s.logger.Error("failed to query data warehouse payments", zap.Error(err))
		return nil, fmt.Errorf("failed to fetch payments: %w", err)
	}

	result := &PaymentSyncResult{Fetched: len(payments)}
	s.logger.Info("starting payment sync", zap.Int("rows", len(payments)))

	for _, p := range payments {
		number := strings.TrimSpace(p.ProjectNumber)
		if number == "" {
			result.Unmatched++
			continue
		}
		rows, err := s.projectRepo.UpdatePaymentReceived(ctx, number, p.Received)
		if err != nil {
			result.Failed++
			s.logger.Warn("failed to update project payment",
				zap.String("project_number", number),
				zap.Error(err))
			continue
		}
		if rows == 0 {
			result.Unmatched++
			continue
		}
		result.Updated += int(rows)
	}

	s.logger.Info("completed payment sync",
		zap.Int("fetched", result.Fetched),
		zap.Int("updated", result.Updated),
		zap.Int("unmatched", result.Unmatched),
		zap.Int("failed", result.Failed))
	return result, nil
}
