package config

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "gemini", cfg.Drafting.Provider)
	assert.Equal(t, 3, cfg.Drafting.MaxAttempts)
	assert.Equal(t, 30*time.Second, cfg.Drafting.TimeoutDuration())
	assert.Equal(t, 500*time.Millisecond, cfg.Drafting.RetryDelayDuration())
	assert.Equal(t, time.Hour, cfg.Desk.SessionTTLDuration())
	assert.Equal(t, "local", cfg.Storage.Mode)
	assert.Contains(t, cfg.RateLimit.WhitelistPaths, "/health")
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("DRAFTING_PROVIDER", "disabled")
	t.Setenv("GEMINI_API_KEY", "key-from-env")
	t.Setenv("DATAWAREHOUSE_ENABLED", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "disabled", cfg.Drafting.Provider)
	assert.Equal(t, "key-from-env", cfg.Drafting.APIKey)
	assert.True(t, cfg.DataWarehouse.Enabled)
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "oracle")

	_, err := Load()
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestValidate(t *testing.T) {
	valid := Config{
		Database: DatabaseConfig{Driver: "sqlite"},
		Drafting: DraftingConfig{Provider: "gemini", MaxAttempts: 1},
		Storage:  StorageConfig{Mode: "cloud"},
	}
	assert.NoError(t, valid.Validate())

	noAttempts := valid
	noAttempts.Drafting.MaxAttempts = 0
	assert.Error(t, noAttempts.Validate())

	badProvider := valid
	badProvider.Drafting.Provider = "openai"
	assert.Error(t, badProvider.Validate())

	badStorage := valid
	badStorage.Storage.Mode = "ftp"
	assert.Error(t, badStorage.Validate())
}

func TestLoadWithSecrets_EnvironmentMode(t *testing.T) {
	t.Setenv("USE_AZURE_KEY_VAULT", "false")
	t.Setenv("GEMINI_API_KEY", "env-key")

	cfg, err := LoadWithSecrets(context.Background(), zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.Drafting.APIKey)
}

func TestConnectionString(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5433, User: "u", Password: "p", Name: "desk", SSLMode: "require"}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=desk sslmode=require", d.ConnectionString())
}
