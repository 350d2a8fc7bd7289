package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/straye-as/project-desk-api/internal/secrets"
	"go.uber.org/zap"
)

// Config holds all application configuration
type Config struct {
	App           AppConfig
	Database      DatabaseConfig
	DataWarehouse DataWarehouseConfig
	Drafting      DraftingConfig
	Desk          DeskConfig
	Snapshot      SnapshotConfig
	Storage       StorageConfig
	Secrets       SecretsConfig
	Logging       LoggingConfig
	Server        ServerConfig
	CORS          CORSConfig
	Security      SecurityConfig
	RateLimit     RateLimitConfig
}

type AppConfig struct {
	Name        string
	Environment string
	Port        int
}

type DatabaseConfig struct {
	// Driver is "postgres" or "sqlite"
	Driver          string
	Host            string
	Port            int
	Name            string
	User            string
	Password        string
	SSLMode         string
	SQLitePath      string
	AutoMigrate     bool
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
}

// DataWarehouseConfig holds configuration for the read-only MS SQL Server data warehouse
// that feeds received payments into projects
type DataWarehouseConfig struct {
	Enabled bool
	// URL is host:port/database
	URL             string
	User            string
	Password        string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
	// QueryTimeout is in seconds
	QueryTimeout int
	// PaymentsTable is the view holding one payment total per project number
	PaymentsTable   string
	PaymentSyncCron string
}

// DraftingConfig controls the AI response draft generator
type DraftingConfig struct {
	// Provider is "gemini" or "disabled"
	Provider    string
	APIKey      string
	Model       string
	Temperature float64
	// Timeout is the per-attempt timeout in seconds
	Timeout     int
	MaxAttempts int
	// RetryDelay is the initial backoff in milliseconds
	RetryDelay int
}

// DeskConfig controls response desk sessions
type DeskConfig struct {
	// SessionTTL is how long an untouched session survives, in minutes
	SessionTTL int
	SweepCron  string
}

// SnapshotConfig controls the periodic dashboard metrics snapshot
type SnapshotConfig struct {
	Enabled bool
	Cron    string
	Prefix  string
}

type StorageConfig struct {
	// Mode is "local" or "cloud"
	Mode                  string
	LocalBasePath         string
	CloudConnectionString string
	CloudContainer        string
}

type SecretsConfig struct {
	// Source is "environment", "vault" or "auto"
	Source       string
	KeyVaultName string
	CacheEnabled bool
	CacheTTL     int // seconds
}

type LoggingConfig struct {
	Level  string
	Format string
}

type ServerConfig struct {
	ReadTimeout    int
	WriteTimeout   int
	RequestTimeout int
	EnableSwagger  bool
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	// MaxAge is the preflight cache lifetime in seconds
	MaxAge int
}

// SecurityConfig holds security header configuration
type SecurityConfig struct {
	EnableHSTS            bool
	HSTSMaxAge            int
	HSTSIncludeSubdomains bool
	HSTSPreload           bool
	ContentSecurityPolicy string
	// FrameOptions is DENY, SAMEORIGIN, or empty to disable
	FrameOptions       string
	ContentTypeNosniff bool
	XSSProtection      string
	ReferrerPolicy     string
	PermissionsPolicy  string
}

// RateLimitConfig holds per-IP rate limiting configuration
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerMinute int
	// GenerateRequestsPerMinute limits draft generation separately since every call costs model quota
	GenerateRequestsPerMinute int
	WhitelistIPs              []string
	WhitelistPaths            []string
}

// ConnectionString builds the PostgreSQL connection string
func (d *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

// ConnMaxLifetimeDuration returns connection max lifetime as duration
func (d *DatabaseConfig) ConnMaxLifetimeDuration() time.Duration {
	return time.Duration(d.ConnMaxLifetime) * time.Second
}

// ConnMaxLifetimeDuration returns connection max lifetime as duration
func (d *DataWarehouseConfig) ConnMaxLifetimeDuration() time.Duration {
	return time.Duration(d.ConnMaxLifetime) * time.Second
}

// QueryTimeoutDuration returns query timeout as duration
func (d *DataWarehouseConfig) QueryTimeoutDuration() time.Duration {
	return time.Duration(d.QueryTimeout) * time.Second
}

// TimeoutDuration returns the per-attempt generation timeout
func (d *DraftingConfig) TimeoutDuration() time.Duration {
	return time.Duration(d.Timeout) * time.Second
}

// RetryDelayDuration returns the initial retry backoff
func (d *DraftingConfig) RetryDelayDuration() time.Duration {
	return time.Duration(d.RetryDelay) * time.Millisecond
}

// SessionTTLDuration returns the idle session lifetime
func (d *DeskConfig) SessionTTLDuration() time.Duration {
	return time.Duration(d.SessionTTL) * time.Minute
}

// ReadTimeoutDuration returns read timeout as duration
func (s *ServerConfig) ReadTimeoutDuration() time.Duration {
	return time.Duration(s.ReadTimeout) * time.Second
}

// WriteTimeoutDuration returns write timeout as duration
func (s *ServerConfig) WriteTimeoutDuration() time.Duration {
	return time.Duration(s.WriteTimeout) * time.Second
}

// RequestTimeoutDuration returns request timeout as duration
func (s *ServerConfig) RequestTimeoutDuration() time.Duration {
	return time.Duration(s.RequestTimeout) * time.Second
}

// Load reads config.json (if present), .env and environment variables.
// It does not contact Key Vault; use LoadWithSecrets for that.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Drafting.APIKey == "" {
		cfg.Drafting.APIKey = v.GetString("GEMINI_API_KEY")
	}
	if cfg.Secrets.KeyVaultName == "" {
		cfg.Secrets.KeyVaultName = v.GetString("AZURE_KEY_VAULT_NAME")
	}
	if v.GetBool("DATAWAREHOUSE_ENABLED") {
		cfg.DataWarehouse.Enabled = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the service cannot start with
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	switch c.Drafting.Provider {
	case "gemini", "disabled":
	default:
		return fmt.Errorf("unsupported drafting provider %q", c.Drafting.Provider)
	}
	switch c.Storage.Mode {
	case "local", "cloud":
	default:
		return fmt.Errorf("unsupported storage mode %q", c.Storage.Mode)
	}
	if c.Drafting.MaxAttempts < 1 {
		return fmt.Errorf("drafting.maxAttempts must be at least 1")
	}
	return nil
}

// LoadWithSecrets loads configuration and fills credentials from the secrets provider.
// Key Vault is used when USE_AZURE_KEY_VAULT=true in staging or production; otherwise
// the environment provides every secret. Warehouse credentials are read from the vault
// whenever the warehouse is enabled and a vault is configured.
func LoadWithSecrets(ctx context.Context, logger *zap.Logger) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	useKeyVault := strings.ToLower(os.Getenv("USE_AZURE_KEY_VAULT")) == "true"
	isVaultEnv := cfg.App.Environment == "staging" || cfg.App.Environment == "production"

	if cfg.DataWarehouse.Enabled && cfg.Secrets.KeyVaultName != "" {
		if err := loadDataWarehouseSecrets(ctx, cfg, logger); err != nil {
			// the warehouse is optional, so startup continues without payment sync
			logger.Warn("Failed to load data warehouse secrets from Key Vault", zap.Error(err))
		}
	}

	if !useKeyVault || !isVaultEnv {
		logger.Info("Using environment variables for secrets",
			zap.String("environment", cfg.App.Environment),
			zap.Bool("use_key_vault", useKeyVault),
		)
		return cfg, nil
	}

	if cfg.Secrets.KeyVaultName == "" {
		return nil, fmt.Errorf("AZURE_KEY_VAULT_NAME is required when USE_AZURE_KEY_VAULT=true")
	}

	provider, err := secrets.NewProvider(&secrets.ProviderConfig{
		Source:       secrets.SourceVault,
		VaultName:    cfg.Secrets.KeyVaultName,
		Environment:  cfg.App.Environment,
		CacheEnabled: cfg.Secrets.CacheEnabled,
		CacheTTL:     time.Duration(cfg.Secrets.CacheTTL) * time.Second,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize secrets provider: %w", err)
	}

	applySecrets(ctx, cfg, provider)

	logger.Info("Secrets loaded from vault", zap.String("key_vault_name", cfg.Secrets.KeyVaultName))
	return cfg, nil
}

// applySecrets overwrites credentials with values found through the provider
func applySecrets(ctx context.Context, cfg *Config, provider *secrets.Provider) {
	set := func(target *string, secretName, envName string) {
		if value, err := provider.GetSecretOrEnv(ctx, secretName, envName); err == nil && value != "" {
			*target = value
		}
	}

	set(&cfg.Database.Host, secrets.SecretDatabaseHost, "DATABASE_HOST")
	set(&cfg.Database.User, secrets.SecretDatabaseUser, "DATABASE_USER")
	set(&cfg.Database.Password, secrets.SecretDatabasePassword, "DATABASE_PASSWORD")
	set(&cfg.Storage.CloudConnectionString, secrets.SecretStorageConnection, "STORAGE_CLOUDCONNECTIONSTRING")
	set(&cfg.Drafting.APIKey, secrets.SecretGeminiAPIKey, "GEMINI_API_KEY")

	if name := os.Getenv("DEFAULT_DATABASE"); name != "" {
		cfg.Database.Name = name
	}
	if sslMode := os.Getenv("DATABASE_SSLMODE"); sslMode != "" {
		cfg.Database.SSLMode = sslMode
	}
}

// loadDataWarehouseSecrets reads warehouse credentials from Key Vault only
func loadDataWarehouseSecrets(ctx context.Context, cfg *Config, logger *zap.Logger) error {
	provider, err := secrets.NewProvider(&secrets.ProviderConfig{
		Source:       secrets.SourceVault,
		VaultName:    cfg.Secrets.KeyVaultName,
		Environment:  cfg.App.Environment,
		CacheEnabled: cfg.Secrets.CacheEnabled,
		CacheTTL:     time.Duration(cfg.Secrets.CacheTTL) * time.Second,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize vault client for data warehouse: %w", err)
	}

	targets := []struct {
		name   string
		target *string
	}{
		{secrets.SecretWarehouseURL, &cfg.DataWarehouse.URL},
		{secrets.SecretWarehouseUser, &cfg.DataWarehouse.User},
		{secrets.SecretWarehousePassword, &cfg.DataWarehouse.Password},
	}
	for _, t := range targets {
		value, err := provider.GetSecret(ctx, t.name)
		if err != nil {
			return fmt.Errorf("failed to get %s from Key Vault: %w", t.name, err)
		}
		*t.target = value
	}

	logger.Info("Data warehouse credentials loaded from Key Vault")
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "Project Desk API")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.port", 8080)

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "projectdesk")
	v.SetDefault("database.user", "projectdesk_user")
	v.SetDefault("database.password", "projectdesk_password")
	v.SetDefault("database.sslMode", "disable")
	v.SetDefault("database.sqlitePath", "projectdesk.db")
	v.SetDefault("database.autoMigrate", false)
	v.SetDefault("database.maxOpenConns", 25)
	v.SetDefault("database.maxIdleConns", 5)
	v.SetDefault("database.connMaxLifetime", 300)

	v.SetDefault("dataWarehouse.enabled", false)
	v.SetDefault("dataWarehouse.maxOpenConns", 10)
	v.SetDefault("dataWarehouse.maxIdleConns", 2)
	v.SetDefault("dataWarehouse.connMaxLifetime", 300)
	v.SetDefault("dataWarehouse.queryTimeout", 30)
	v.SetDefault("dataWarehouse.paymentsTable", "dbo.ProjectPayments")
	v.SetDefault("dataWarehouse.paymentSyncCron", "0 2 * * *")

	v.SetDefault("drafting.provider", "gemini")
	v.SetDefault("drafting.model", "gemini-2.5-flash")
	v.SetDefault("drafting.temperature", 0.4)
	v.SetDefault("drafting.timeout", 30)
	v.SetDefault("drafting.maxAttempts", 3)
	v.SetDefault("drafting.retryDelay", 500)

	v.SetDefault("desk.sessionTTL", 60)
	v.SetDefault("desk.sweepCron", "*/5 * * * *")

	v.SetDefault("snapshot.enabled", false)
	v.SetDefault("snapshot.cron", "0 * * * *")
	v.SetDefault("snapshot.prefix", "snapshots")

	v.SetDefault("secrets.source", "auto")
	v.SetDefault("secrets.cacheEnabled", true)
	v.SetDefault("secrets.cacheTTL", 300)

	v.SetDefault("storage.mode", "local")
	v.SetDefault("storage.localBasePath", "./storage")
	v.SetDefault("storage.cloudContainer", "project-desk")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("server.readTimeout", 30)
	v.SetDefault("server.writeTimeout", 30)
	v.SetDefault("server.requestTimeout", 60)
	v.SetDefault("server.enableSwagger", true)

	v.SetDefault("cors.allowedOrigins", []string{})
	v.SetDefault("cors.allowedMethods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowedHeaders", []string{"Accept", "Content-Type", "X-Request-ID"})
	v.SetDefault("cors.exposedHeaders", []string{"Location", "X-Request-ID"})
	v.SetDefault("cors.allowCredentials", false)
	v.SetDefault("cors.maxAge", 300)

	v.SetDefault("security.enableHSTS", false) // enable in production behind HTTPS
	v.SetDefault("security.hstsMaxAge", 31536000)
	v.SetDefault("security.hstsIncludeSubdomains", true)
	v.SetDefault("security.hstsPreload", false)
	v.SetDefault("security.contentSecurityPolicy", "default-src 'self'")
	v.SetDefault("security.frameOptions", "DENY")
	v.SetDefault("security.contentTypeNosniff", true)
	v.SetDefault("security.xssProtection", "1; mode=block")
	v.SetDefault("security.referrerPolicy", "strict-origin-when-cross-origin")
	v.SetDefault("security.permissionsPolicy", "geolocation=(), microphone=(), camera=()")

	v.SetDefault("rateLimit.enabled", true)
	v.SetDefault("rateLimit.requestsPerMinute", 120)
	v.SetDefault("rateLimit.generateRequestsPerMinute", 10)
	v.SetDefault("rateLimit.whitelistIPs", []string{"127.0.0.1", "::1"})
	v.SetDefault("rateLimit.whitelistPaths", []string{"/health", "/health/db", "/health/ready"})
}
