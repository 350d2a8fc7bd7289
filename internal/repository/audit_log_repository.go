package repository

import (
	"context"
	"time"

	"github.com/straye-as/project-desk-api/internal/domain"
	"gorm.io/gorm"
)

// AuditLogFilter represents filter options for querying audit logs
type AuditLogFilter struct {
	Action     *domain.AuditAction
	EntityType string
	EntityID   string
	StartTime  *time.Time
	EndTime    *time.Time
}

// AuditLogRepository is append-only
type AuditLogRepository struct {
	db *gorm.DB
}

func NewAuditLogRepository(db *gorm.DB) *AuditLogRepository {
	return &AuditLogRepository{db: db}
}

func (r *AuditLogRepository) Create(ctx context.Context, log *domain.AuditLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// List returns audit logs newest first with the total count for the filter
func (r *AuditLogRepository) List(ctx context.Context, filter *AuditLogFilter, page, pageSize int) ([]domain.AuditLog, int64, error) {
	var logs []domain.AuditLog
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.AuditLog{})
	if filter != nil {
		if filter.Action != nil {
			query = query.Where("action = ?", *filter.Action)
		}
		if filter.EntityType != "" {
			query = query.Where("entity_type = ?", filter.EntityType)
		}
		if filter.EntityID != "" {
			query = query.Where("entity_id = ?", filter.EntityID)
		}
		if filter.StartTime != nil {
			query = query.Where("created_at >= ?", *filter.StartTime)
		}
		if filter.EndTime != nil {
			query = query.Where("created_at <= ?", *filter.EndTime)
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&logs).Error
	return logs, total, err
}
