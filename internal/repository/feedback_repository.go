package repository

import (
	"context"

	"github.com/straye-as/project-desk-api/internal/domain"
	"gorm.io/gorm"
)

// FeedbackFilter narrows feedback listings
type FeedbackFilter struct {
	ProjectID string
	Status    *domain.FeedbackStatus
}

type FeedbackRepository struct {
	db *gorm.DB
}

func NewFeedbackRepository(db *gorm.DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

func (r *FeedbackRepository) Create(ctx context.Context, fb *domain.Feedback) error {
	return r.db.WithContext(ctx).Create(fb).Error
}

func (r *FeedbackRepository) GetByID(ctx context.Context, id string) (*domain.Feedback, error) {
	var fb domain.Feedback
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&fb).Error
	if err != nil {
		return nil, err
	}
	return &fb, nil
}

// Update overwrites every field of an existing record
func (r *FeedbackRepository) Update(ctx context.Context, fb *domain.Feedback) error {
	result := r.db.WithContext(ctx).Model(&domain.Feedback{}).
		Where("id = ?", fb.ID).
		Select("*").
		Omit("id", "created_at").
		Updates(fb)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// List returns feedback newest first
func (r *FeedbackRepository) List(ctx context.Context, filter *FeedbackFilter) ([]domain.Feedback, error) {
	var items []domain.Feedback

	query := r.db.WithContext(ctx).Model(&domain.Feedback{})
	if filter != nil {
		if filter.ProjectID != "" {
			query = query.Where("project_id = ?", filter.ProjectID)
		}
		if filter.Status != nil {
			query = query.Where("status = ?", *filter.Status)
		}
	}

	err := query.Order("received_date DESC, created_at DESC, id ASC").Find(&items).Error
	return items, err
}
