package database

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/straye-as/project-desk-api/internal/config"
	"github.com/straye-as/project-desk-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDatabase_SQLite(t *testing.T) {
	cfg := &config.DatabaseConfig{
		Driver:     "sqlite",
		SQLitePath: fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
	}

	db, err := NewDatabase(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	for _, model := range []interface{}{&domain.Project{}, &domain.Stakeholder{}, &domain.Feedback{}, &domain.Favorite{}, &domain.AuditLog{}} {
		assert.True(t, db.Migrator().HasTable(model), "%T table should exist", model)
	}

	assert.NoError(t, HealthCheck(context.Background(), db))
}

func TestDialector(t *testing.T) {
	d, err := Dialector(&config.DatabaseConfig{Driver: "postgres", Host: "localhost", Port: 5432})
	require.NoError(t, err)
	assert.Equal(t, "postgres", d.Name())

	d, err = Dialector(&config.DatabaseConfig{Driver: "sqlite", SQLitePath: ":memory:"})
	require.NoError(t, err)
	assert.Equal(t, "sqlite", d.Name())

	_, err = Dialector(&config.DatabaseConfig{Driver: "mysql"})
	assert.Error(t, err)
}
