package secrets

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
)

// SecretSource defines where secrets are loaded from
type SecretSource string

const (
	// SourceEnvironment loads secrets from environment variables
	SourceEnvironment SecretSource = "environment"
	// SourceVault loads secrets from Azure Key Vault
	SourceVault SecretSource = "vault"
	// SourceAuto uses the environment in development and the vault everywhere else
	SourceAuto SecretSource = "auto"
)

// Key Vault secret names used by the service
const (
	SecretDatabaseHost      = "POSTGRES-MAIN-HOST"
	SecretDatabaseUser      = "POSTGRES-MAIN-USER"
	SecretDatabasePassword  = "POSTGRES-MAIN-PASSWORD"
	SecretStorageConnection = "storage-connection-string"
	SecretGeminiAPIKey      = "GEMINI-API-KEY"
	SecretWarehouseURL      = "WAREHOUSE-URL"
	SecretWarehouseUser     = "WAREHOUSE-USERNAME"
	SecretWarehousePassword = "WAREHOUSE-PASSWORD"
)

// Provider resolves secrets from the environment or Key Vault
type Provider struct {
	source SecretSource
	vault  *VaultClient
	logger *zap.Logger
	getenv func(string) string
}

// ProviderConfig holds configuration for the secrets provider
type ProviderConfig struct {
	Source       SecretSource
	VaultName    string
	Environment  string
	CacheEnabled bool
	CacheTTL     time.Duration
}

// ResolveSource turns SourceAuto into a concrete source for the given environment
func ResolveSource(source SecretSource, environment string) SecretSource {
	if source != SourceAuto && source != "" {
		return source
	}
	switch environment {
	case "development", "local", "test", "":
		return SourceEnvironment
	default:
		return SourceVault
	}
}

// NewProvider creates a secrets provider, connecting to Key Vault when needed
func NewProvider(cfg *ProviderConfig, logger *zap.Logger) (*Provider, error) {
	source := ResolveSource(cfg.Source, cfg.Environment)
	p := &Provider{source: source, logger: logger, getenv: os.Getenv}

	if source == SourceVault {
		if cfg.VaultName == "" {
			return nil, fmt.Errorf("vault name required when using vault secret source")
		}
		vault, err := NewVaultClient(&VaultConfig{
			VaultName:    cfg.VaultName,
			CacheEnabled: cfg.CacheEnabled,
			CacheTTL:     cfg.CacheTTL,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize vault client: %w", err)
		}
		p.vault = vault
	}

	logger.Info("Secrets provider initialized",
		zap.String("source", string(source)),
		zap.String("environment", cfg.Environment),
	)
	return p, nil
}

// NewEnvironmentProvider returns a provider backed only by environment variables
func NewEnvironmentProvider(logger *zap.Logger) *Provider {
	return &Provider{source: SourceEnvironment, logger: logger, getenv: os.Getenv}
}

// GetSecret retrieves a secret by name. In environment mode the name is the variable name.
func (p *Provider) GetSecret(ctx context.Context, name string) (string, error) {
	switch p.source {
	case SourceEnvironment:
		value := p.getenv(name)
		if value == "" {
			return "", fmt.Errorf("environment variable '%s' not set", name)
		}
		return value, nil
	case SourceVault:
		if p.vault == nil {
			return "", fmt.Errorf("vault client not initialized")
		}
		return p.vault.GetSecret(ctx, name)
	default:
		return "", fmt.Errorf("unknown secret source: %s", p.source)
	}
}

// GetSecretOrEnv prefers an explicitly set environment variable over the configured source
func (p *Provider) GetSecretOrEnv(ctx context.Context, secretName, envName string) (string, error) {
	if value := p.getenv(envName); value != "" {
		p.logger.Debug("Using environment variable override", zap.String("env_name", envName))
		return value, nil
	}
	return p.GetSecret(ctx, secretName)
}

// GetSecretOrEnvWithDefault is GetSecretOrEnv with a fallback value
func (p *Provider) GetSecretOrEnvWithDefault(ctx context.Context, secretName, envName, defaultValue string) string {
	value, err := p.GetSecretOrEnv(ctx, secretName, envName)
	if err != nil {
		return defaultValue
	}
	return value
}

// Source returns the resolved secret source
func (p *Provider) Source() SecretSource {
	return p.source
}

// IsVaultEnabled reports whether secrets come from Key Vault
func (p *Provider) IsVaultEnabled() bool {
	return p.source == SourceVault
}
