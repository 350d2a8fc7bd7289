package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/straye-as/project-desk-api/internal/dashboard"
	"github.com/straye-as/project-desk-api/internal/domain"
	"github.com/straye-as/project-desk-api/internal/mapper"
	"github.com/straye-as/project-desk-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// FavoriteService manages the pinned project set
type FavoriteService struct {
	favoriteRepo *repository.FavoriteRepository
	projectRepo  *repository.ProjectRepository
	logger       *zap.Logger
}

// NewFavoriteService creates a new FavoriteService
func NewFavoriteService(
	favoriteRepo *repository.FavoriteRepository,
	projectRepo *repository.ProjectRepository,
	logger *zap.Logger,
) *FavoriteService {
	return &FavoriteService{
		favoriteRepo: favoriteRepo,
		projectRepo:  projectRepo,
		logger:       logger,
	}
}

// List returns the favorite projects in project order.
// Favorites pointing at deleted projects are skipped.
func (s *FavoriteService) List(ctx context.Context) ([]domain.ProjectDTO, error) {
	favorites, err := s.favoriteRepo.ProjectIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	projects, err := s.projectRepo.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	selected := dashboard.FavoriteProjects(projects, func(id string) bool {
		_, ok := favorites[id]
		return ok
	})
	return mapper.ToProjectDTOs(selected, favorites), nil
}

// Add pins a project
func (s *FavoriteService) Add(ctx context.Context, projectID string) error {
	if _, err := s.projectRepo.GetByID(ctx, projectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("failed to get project: %w", err)
	}
	if err := s.favoriteRepo.Add(ctx, projectID); err != nil {
		return fmt.Errorf("failed to add favorite: %w", err)
	}
	s.logger.Info("Project pinned", zap.String("project_id", projectID))
	return nil
}

// Remove unpins a project; unpinning a project that is not pinned succeeds
func (s *FavoriteService) Remove(ctx context.Context, projectID string) error {
	if err := s.favoriteRepo.Remove(ctx, projectID); err != nil {
		return fmt.Errorf("failed to remove favorite: %w", err)
	}
	s.logger.Info("Project unpinned", zap.String("project_id", projectID))
	return nil
}
