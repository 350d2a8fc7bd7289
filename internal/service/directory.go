package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/straye-as/project-desk-api/internal/domain"
	"github.com/straye-as/project-desk-api/internal/feedback"
	"github.com/straye-as/project-desk-api/internal/repository"
	"gorm.io/gorm"
)

// loadDirectory indexes every project for feedback reference lookups
func loadDirectory(ctx context.Context, projectRepo *repository.ProjectRepository) ([]domain.Project, *feedback.Directory, error) {
	projects, err := projectRepo.List(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, feedback.NewDirectory(projects), nil
}

// directoryFor indexes the single project a feedback item points at.
// A dangling reference yields an empty directory so lookups fall back to placeholders.
func directoryFor(ctx context.Context, projectRepo *repository.ProjectRepository, projectID string) (*feedback.Directory, error) {
	project, err := projectRepo.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return feedback.NewDirectory(nil), nil
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return feedback.NewDirectory([]domain.Project{*project}), nil
}
