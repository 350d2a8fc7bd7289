package service

import (
	"context"
	"fmt"
	"time"

	"github.com/straye-as/project-desk-api/internal/dashboard"
	"github.com/straye-as/project-desk-api/internal/domain"
	"github.com/straye-as/project-desk-api/internal/mapper"
	"github.com/straye-as/project-desk-api/internal/repository"
	"go.uber.org/zap"
)

// DashboardService assembles the dashboard view
type DashboardService struct {
	projectRepo  *repository.ProjectRepository
	feedbackRepo *repository.FeedbackRepository
	favoriteRepo *repository.FavoriteRepository
	logger       *zap.Logger
	now          func() time.Time
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(
	projectRepo *repository.ProjectRepository,
	feedbackRepo *repository.FeedbackRepository,
	favoriteRepo *repository.FavoriteRepository,
	logger *zap.Logger,
) *DashboardService {
	return &DashboardService{
		projectRepo:  projectRepo,
		feedbackRepo: feedbackRepo,
		favoriteRepo: favoriteRepo,
		logger:       logger,
		now:          time.Now,
	}
}

// GetMetrics loads projects, feedback and favorites and computes every aggregate
func (s *DashboardService) GetMetrics(ctx context.Context) (*domain.DashboardMetrics, error) {
	projects, dir, err := loadDirectory(ctx, s.projectRepo)
	if err != nil {
		return nil, err
	}

	feedbacks, err := s.feedbackRepo.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list feedback: %w", err)
	}

	favorites, err := s.favoriteRepo.ProjectIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	isFavorite := func(id string) bool {
		_, ok := favorites[id]
		return ok
	}

	summary := dashboard.Summarize(projects, feedbacks, isFavorite)

	s.logger.Debug("Dashboard metrics computed",
		zap.Int("projects", summary.TotalProjectCount),
		zap.Int("active", summary.ActiveProjectCount),
		zap.Int("pending_feedback", summary.PendingFeedbackCount),
	)

	return &domain.DashboardMetrics{
		ActiveProjectCount:   summary.ActiveProjectCount,
		TotalProjectCount:    summary.TotalProjectCount,
		PendingFeedbackCount: summary.PendingFeedbackCount,
		TotalContractValue:   summary.TotalContractValue,
		TotalPaymentReceived: summary.TotalPaymentReceived,
		ReceivedRatio:        summary.ReceivedRatio,
		ProjectTypeCounts:    summary.TypeCounts,
		FavoriteProjects:     mapper.ToProjectDTOs(summary.Favorites, favorites),
		PriorityProjects:     mapper.ToProjectDTOs(summary.Priority, favorites),
		FeedbackStream:       mapper.ToFeedbackDTOs(summary.Stream, dir),
		GeneratedAt:          s.now().UTC().Format(time.RFC3339),
	}, nil
}
