package repository

import (
	"context"

	"github.com/straye-as/project-desk-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FavoriteRepository struct {
	db *gorm.DB
}

func NewFavoriteRepository(db *gorm.DB) *FavoriteRepository {
	return &FavoriteRepository{db: db}
}

// List returns favorites in the order they were added
func (r *FavoriteRepository) List(ctx context.Context) ([]domain.Favorite, error) {
	var favorites []domain.Favorite
	err := r.db.WithContext(ctx).Order("created_at ASC, project_id ASC").Find(&favorites).Error
	return favorites, err
}

// ProjectIDs returns the favorite set
func (r *FavoriteRepository) ProjectIDs(ctx context.Context) (map[string]struct{}, error) {
	favorites, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(favorites))
	for _, f := range favorites {
		set[f.ProjectID] = struct{}{}
	}
	return set, nil
}

// Add marks a project as favorite; adding twice is a no-op
func (r *FavoriteRepository) Add(ctx context.Context, projectID string) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&domain.Favorite{ProjectID: projectID}).Error
}

// Remove unmarks a project; removing a missing favorite is a no-op
func (r *FavoriteRepository) Remove(ctx context.Context, projectID string) error {
	return r.db.WithContext(ctx).Where("project_id = ?", projectID).Delete(&domain.Favorite{}).Error
}

func (r *FavoriteRepository) Exists(ctx context.Context, projectID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Favorite{}).Where("project_id = ?", projectID).Count(&count).Error
	return count > 0, err
}
