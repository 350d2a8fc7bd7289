package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/straye-as/project-desk-api/internal/domain"
	"github.com/straye-as/project-desk-api/internal/mapper"
	"github.com/straye-as/project-desk-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ProjectService handles business logic for projects and their stakeholders
type ProjectService struct {
	projectRepo  *repository.ProjectRepository
	favoriteRepo *repository.FavoriteRepository
	logger       *zap.Logger
}

// NewProjectService creates a new ProjectService
func NewProjectService(
	projectRepo *repository.ProjectRepository,
	favoriteRepo *repository.FavoriteRepository,
	logger *zap.Logger,
) *ProjectService {
	return &ProjectService{
		projectRepo:  projectRepo,
		favoriteRepo: favoriteRepo,
		logger:       logger,
	}
}

// List returns projects matching the filter
func (s *ProjectService) List(ctx context.Context, filter *repository.ProjectFilter) ([]domain.ProjectDTO, error) {
	projects, err := s.projectRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	favorites, err := s.favoriteRepo.ProjectIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	return mapper.ToProjectDTOs(projects, favorites), nil
}

// Search finds projects by name, number or manager
func (s *ProjectService) Search(ctx context.Context, query string, limit int) ([]domain.ProjectDTO, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	projects, err := s.projectRepo.Search(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search projects: %w", err)
	}
	favorites, err := s.favoriteRepo.ProjectIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	return mapper.ToProjectDTOs(projects, favorites), nil
}

// GetByID returns one project with stakeholders
func (s *ProjectService) GetByID(ctx context.Context, id string) (*domain.ProjectDTO, error) {
	project, err := s.getProject(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toDTO(ctx, project)
}

// Create adds a project. Stakeholders without an ID get one generated.
func (s *ProjectService) Create(ctx context.Context, req *domain.CreateProjectRequest) (*domain.ProjectDTO, error) {
	project := &domain.Project{
		Name:            req.Name,
		ProjectNumber:   req.ProjectNumber,
		Type:            req.Type,
		Status:          req.Status,
		Location:        req.Location,
		ManagerName:     req.ManagerName,
		Progress:        domain.ClampProgress(req.Progress),
		ContractValue:   req.ContractValue,
		PaymentReceived: req.PaymentReceived,
	}

	seen := make(map[string]bool, len(req.Stakeholders))
	for _, sr := range req.Stakeholders {
		stakeholder := newStakeholder(sr)
		if seen[stakeholder.ID] {
			return nil, fmt.Errorf("%w: duplicate stakeholder id %s", ErrInvalidInput, stakeholder.ID)
		}
		seen[stakeholder.ID] = true
		project.Stakeholders = append(project.Stakeholders, stakeholder)
	}

	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	s.logger.Info("Project created",
		zap.String("project_id", project.ID),
		zap.String("name", project.Name),
		zap.Int("stakeholders", len(project.Stakeholders)),
	)
	return s.toDTO(ctx, project)
}

// Update replaces the editable project fields
func (s *ProjectService) Update(ctx context.Context, id string, req *domain.UpdateProjectRequest) (*domain.ProjectDTO, error) {
	project, err := s.getProject(ctx, id)
	if err != nil {
		return nil, err
	}

	project.Name = req.Name
	project.ProjectNumber = req.ProjectNumber
	project.Type = req.Type
	project.Status = req.Status
	project.Location = req.Location
	project.ManagerName = req.ManagerName
	project.Progress = domain.ClampProgress(req.Progress)
	project.ContractValue = req.ContractValue
	project.PaymentReceived = req.PaymentReceived

	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	s.logger.Info("Project updated", zap.String("project_id", id))
	return s.toDTO(ctx, project)
}

// Delete removes a project, its stakeholders and its favorite mark.
// Feedback referencing it is kept and will resolve to the unknown-project placeholder.
func (s *ProjectService) Delete(ctx context.Context, id string) error {
	if err := s.projectRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if err := s.favoriteRepo.Remove(ctx, id); err != nil {
		s.logger.Warn("Failed to remove favorite for deleted project", zap.String("project_id", id), zap.Error(err))
	}
	s.logger.Info("Project deleted", zap.String("project_id", id))
	return nil
}

// ListStakeholders returns the stakeholders of a project
func (s *ProjectService) ListStakeholders(ctx context.Context, projectID string) ([]domain.StakeholderDTO, error) {
	if _, err := s.getProject(ctx, projectID); err != nil {
		return nil, err
	}
	stakeholders, err := s.projectRepo.ListStakeholders(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list stakeholders: %w", err)
	}
	dtos := make([]domain.StakeholderDTO, len(stakeholders))
	for i := range stakeholders {
		dtos[i] = mapper.ToStakeholderDTO(&stakeholders[i])
	}
	return dtos, nil
}

// AddStakeholder attaches a stakeholder to a project
func (s *ProjectService) AddStakeholder(ctx context.Context, projectID string, req *domain.CreateStakeholderRequest) (*domain.StakeholderDTO, error) {
	if _, err := s.getProject(ctx, projectID); err != nil {
		return nil, err
	}

	stakeholder := newStakeholder(*req)
	stakeholder.ProjectID = projectID

	if _, err := s.projectRepo.GetStakeholder(ctx, projectID, stakeholder.ID); err == nil {
		return nil, fmt.Errorf("%w: stakeholder %s already exists", ErrConflict, stakeholder.ID)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check stakeholder: %w", err)
	}

	if err := s.projectRepo.AddStakeholder(ctx, &stakeholder); err != nil {
		return nil, fmt.Errorf("failed to add stakeholder: %w", err)
	}

	dto := mapper.ToStakeholderDTO(&stakeholder)
	return &dto, nil
}

func (s *ProjectService) getProject(ctx context.Context, id string) (*domain.Project, error) {
	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return project, nil
}

func (s *ProjectService) toDTO(ctx context.Context, project *domain.Project) (*domain.ProjectDTO, error) {
	fav, err := s.favoriteRepo.Exists(ctx, project.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check favorite: %w", err)
	}
	dto := mapper.ToProjectDTO(project, fav)
	return &dto, nil
}

func newStakeholder(req domain.CreateStakeholderRequest) domain.Stakeholder {
	id := req.ID
	if id == "" {
		id = uuid.New().String()
	}
	return domain.Stakeholder{ID: id, Name: req.Name, Role: req.Role}
}
