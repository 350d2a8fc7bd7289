// Package testutil provides database fixtures shared by package tests.
package testutil

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/straye-as/project-desk-api/internal/database"
	"github.com/straye-as/project-desk-api/internal/domain"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB opens a private in-memory sqlite database with the schema migrated.
// Each call gets its own database, so tests can run in parallel.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.AutoMigrate(db))

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return db
}

// CreateTestProject inserts a project with the given stakeholders
func CreateTestProject(t *testing.T, db *gorm.DB, name string, progress int, stakeholders ...domain.Stakeholder) *domain.Project {
	t.Helper()

	project := &domain.Project{
		Name:            name,
		ProjectNumber:   "P-" + uuid.NewString()[:8],
		Type:            domain.ProjectTypeGrid,
		Status:          domain.ProjectStatusConstruction,
		ManagerName:     "张工",
		Progress:        progress,
		ContractValue:   1000000,
		PaymentReceived: 250000,
		Stakeholders:    stakeholders,
	}
	require.NoError(t, db.Create(project).Error)
	return project
}

// CreateTestFeedback inserts a feedback item for the project
func CreateTestFeedback(t *testing.T, db *gorm.DB, projectID, stakeholderID, content string, status domain.FeedbackStatus) *domain.Feedback {
	t.Helper()

	fb := &domain.Feedback{
		ProjectID:     projectID,
		StakeholderID: stakeholderID,
		Content:       content,
		ReceivedDate:  "2024-05-01",
		Status:        status,
	}
	require.NoError(t, db.Create(fb).Error)
	return fb
}
