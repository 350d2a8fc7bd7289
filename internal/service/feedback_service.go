package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/straye-as/project-desk-api/internal/domain"
	"github.com/straye-as/project-desk-api/internal/feedback"
	"github.com/straye-as/project-desk-api/internal/mapper"
	"github.com/straye-as/project-desk-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// FeedbackService handles the feedback inbox
type FeedbackService struct {
	feedbackRepo *repository.FeedbackRepository
	projectRepo  *repository.ProjectRepository
	logger       *zap.Logger
	now          func() time.Time
}

// NewFeedbackService creates a new FeedbackService
func NewFeedbackService(
	feedbackRepo *repository.FeedbackRepository,
	projectRepo *repository.ProjectRepository,
	logger *zap.Logger,
) *FeedbackService {
	return &FeedbackService{
		feedbackRepo: feedbackRepo,
		projectRepo:  projectRepo,
		logger:       logger,
		now:          time.Now,
	}
}

// List returns feedback with pending items first
func (s *FeedbackService) List(ctx context.Context, filter *repository.FeedbackFilter) ([]domain.FeedbackDTO, error) {
	items, err := s.feedbackRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list feedback: %w", err)
	}
	_, dir, err := loadDirectory(ctx, s.projectRepo)
	if err != nil {
		return nil, err
	}
	return mapper.ToFeedbackDTOs(feedback.SortFeedback(items), dir), nil
}

// GetByID returns one feedback item with resolved references
func (s *FeedbackService) GetByID(ctx context.Context, id string) (*domain.FeedbackDTO, error) {
	fb, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toDTO(ctx, fb)
}

// Create records incoming feedback. The project and stakeholder must exist at creation time;
// later deletions leave dangling references that resolve to placeholders.
func (s *FeedbackService) Create(ctx context.Context, req *domain.CreateFeedbackRequest) (*domain.FeedbackDTO, error) {
	if _, err := s.projectRepo.GetByID(ctx, req.ProjectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	if _, err := s.projectRepo.GetStakeholder(ctx, req.ProjectID, req.StakeholderID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStakeholderNotFound
		}
		return nil, fmt.Errorf("failed to get stakeholder: %w", err)
	}

	received := req.ReceivedDate
	if received == "" {
		received = s.now().Format("2006-01-02")
	}

	fb := &domain.Feedback{
		ProjectID:     req.ProjectID,
		StakeholderID: req.StakeholderID,
		Content:       req.Content,
		ReceivedDate:  received,
		Status:        domain.FeedbackStatusPending,
		AssignedTo:    req.AssignedTo,
	}
	if err := s.feedbackRepo.Create(ctx, fb); err != nil {
		return nil, fmt.Errorf("failed to create feedback: %w", err)
	}

	s.logger.Info("Feedback recorded",
		zap.String("feedback_id", fb.ID),
		zap.String("project_id", fb.ProjectID),
	)
	return s.toDTO(ctx, fb)
}

// Update changes status and assignee. Any status may follow any other.
func (s *FeedbackService) Update(ctx context.Context, id string, req *domain.UpdateFeedbackRequest) (*domain.FeedbackDTO, error) {
	fb, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	fb.Status = req.Status
	fb.AssignedTo = req.AssignedTo
	if err := s.feedbackRepo.Update(ctx, fb); err != nil {
		return nil, fmt.Errorf("failed to update feedback: %w", err)
	}

	s.logger.Info("Feedback updated",
		zap.String("feedback_id", id),
		zap.String("status", string(fb.Status)),
	)
	return s.toDTO(ctx, fb)
}

func (s *FeedbackService) get(ctx context.Context, id string) (*domain.Feedback, error) {
	fb, err := s.feedbackRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFeedbackNotFound
		}
		return nil, fmt.Errorf("failed to get feedback: %w", err)
	}
	return fb, nil
}

func (s *FeedbackService) toDTO(ctx context.Context, fb *domain.Feedback) (*domain.FeedbackDTO, error) {
	dir, err := directoryFor(ctx, s.projectRepo, fb.ProjectID)
	if err != nil {
		return nil, err
	}
	dto := mapper.ToFeedbackDTO(fb, dir)
	return &dto, nil
}
