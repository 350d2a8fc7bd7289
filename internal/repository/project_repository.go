package repository

import (
	"context"
	"strings"

	"github.com/straye-as/project-desk-api/internal/domain"
	"gorm.io/gorm"
)

// ProjectFilter narrows project listings
type ProjectFilter struct {
	Type   *domain.ProjectType
	Status *domain.ProjectStatus
	Active *bool
}

type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create inserts the project together with its stakeholders
func (r *ProjectRepository) Create(ctx context.Context, project *domain.Project) error {
	return r.db.WithContext(ctx).Create(project).Error
}

func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	var project domain.Project
	err := r.db.WithContext(ctx).
		Preload("Stakeholders", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") }).
		Where("id = ?", id).
		First(&project).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// Update saves project fields; stakeholders are managed separately
func (r *ProjectRepository) Update(ctx context.Context, project *domain.Project) error {
	return r.db.WithContext(ctx).Omit("Stakeholders").Save(project).Error
}

// Delete removes the project and its stakeholders
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", id).Delete(&domain.Stakeholder{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&domain.Project{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// List returns projects in creation order with their stakeholders
func (r *ProjectRepository) List(ctx context.Context, filter *ProjectFilter) ([]domain.Project, error) {
	var projects []domain.Project

	query := r.db.WithContext(ctx).Model(&domain.Project{}).
		Preload("Stakeholders", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") })

	if filter != nil {
		if filter.Type != nil {
			query = query.Where("type = ?", *filter.Type)
		}
		if filter.Status != nil {
			query = query.Where("status = ?", *filter.Status)
		}
		if filter.Active != nil {
			if *filter.Active {
				query = query.Where("progress < ?", 100)
			} else {
				query = query.Where("progress >= ?", 100)
			}
		}
	}

	err := query.Order("created_at ASC, id ASC").Find(&projects).Error
	return projects, err
}

func (r *ProjectRepository) Search(ctx context.Context, searchQuery string, limit int) ([]domain.Project, error) {
	var projects []domain.Project
	pattern := "%" + strings.ToLower(searchQuery) + "%"
	err := r.db.WithContext(ctx).
		Where("LOWER(name) LIKE ? OR LOWER(project_number) LIKE ? OR LOWER(manager_name) LIKE ?", pattern, pattern, pattern).
		Order("created_at ASC, id ASC").
		Limit(limit).
		Find(&projects).Error
	return projects, err
}

func (r *ProjectRepository) AddStakeholder(ctx context.Context, stakeholder *domain.Stakeholder) error {
	return r.db.WithContext(ctx).Create(stakeholder).Error
}

func (r *ProjectRepository) ListStakeholders(ctx context.Context, projectID string) ([]domain.Stakeholder, error) {
	var stakeholders []domain.Stakeholder
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at ASC, id ASC").
		Find(&stakeholders).Error
	return stakeholders, err
}

func (r *ProjectRepository) GetStakeholder(ctx context.Context, projectID, stakeholderID string) (*domain.Stakeholder, error) {
	var stakeholder domain.Stakeholder
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND id = ?", projectID, stakeholderID).
		First(&stakeholder).Error
	if err != nil {
		return nil, err
	}
	return &stakeholder, nil
}

// UpdatePaymentReceived sets the received amount for the project with the given number.
// Returns the number of rows changed.
func (r *ProjectRepository) UpdatePaymentReceived(ctx context.Context, projectNumber string, amount float64) (int64, error) {
	result := r.db.WithContext(ctx).Model(&domain.Project{}).
		Where("project_number = ?", projectNumber).
		Update("payment_received", amount)
	return result.RowsAffected, result.Error
}
