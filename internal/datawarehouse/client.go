// Package datawarehouse provides read-only access to the MS SQL Server data warehouse,
// which is the system of record for payments received against project contracts.
package datawarehouse

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	_ "github.com/microsoft/go-mssqldb" // MS SQL Server driver
	"github.com/straye-as/project-desk-api/internal/config"
	"go.uber.org/zap"
)

const (
	defaultConnectAttempts    = 3
	defaultInitialBackoff     = time.Second
	defaultHealthCheckTimeout = 5 * time.Second
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// Client is a pooled read-only connection to the warehouse
type Client struct {
	db            *sql.DB
	logger        *zap.Logger
	queryTimeout  time.Duration
	paymentsTable string
}

// HealthStatus is the result of a warehouse health check
type HealthStatus struct {
	Status    string `json:"status"`
	LatencyMs int64  `json:"latencyMs"`
	Error     string `json:"error,omitempty"`
	Open      int    `json:"openConnections"`
	InUse     int    `json:"inUse"`
	Idle      int    `json:"idle"`
}

// NewClient connects to the warehouse. It returns (nil, nil) when the warehouse
// is disabled or has no credentials, so callers treat a nil client as "not configured".
func NewClient(ctx context.Context, cfg *config.DataWarehouseConfig, logger *zap.Logger) (*Client, error) {
	if cfg == nil || !cfg.Enabled {
		logger.Info("Data warehouse connection disabled")
		return nil, nil
	}
	if cfg.URL == "" || cfg.User == "" || cfg.Password == "" {
		logger.Warn("Data warehouse enabled but missing credentials, skipping connection",
			zap.Bool("url_present", cfg.URL != ""),
			zap.Bool("user_present", cfg.User != ""),
			zap.Bool("password_present", cfg.Password != ""),
		)
		return nil, nil
	}
	if !tableNamePattern.MatchString(cfg.PaymentsTable) {
		return nil, fmt.Errorf("invalid payments table name %q", cfg.PaymentsTable)
	}

	connStr := buildConnectionString(cfg)

	r := retry.New[*sql.DB](retry.Config{
		MaxAttempts:   defaultConnectAttempts,
		InitialDelay:  defaultInitialBackoff,
		BackoffPolicy: retry.BackoffExponential,
	})
	db, err := r.Do(ctx, func(ctx context.Context) (*sql.DB, error) {
		db, err := sql.Open("sqlserver", connStr)
		if err != nil {
			return nil, err
		}
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.ConnMaxLifetimeDuration())

		pingCtx, cancel := context.WithTimeout(ctx, defaultHealthCheckTimeout)
		defer cancel()
		if err := db.PingContext(pingCtx); err != nil {
			logger.Warn("Data warehouse ping failed", zap.Error(err))
			_ = db.Close()
			return nil, err
		}
		return db, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to data warehouse: %w", err)
	}

	logger.Info("Data warehouse connection established",
		zap.Int("max_open_conns", cfg.MaxOpenConns),
		zap.String("payments_table", cfg.PaymentsTable),
	)

	return &Client{
		db:            db,
		logger:        logger,
		queryTimeout:  cfg.QueryTimeoutDuration(),
		paymentsTable: cfg.PaymentsTable,
	}, nil
}

// buildConnectionString turns "host:port/database" into a sqlserver:// URL
func buildConnectionString(cfg *config.DataWarehouseConfig) string {
	hostPort, database, _ := strings.Cut(cfg.URL, "/")
	host, port, found := strings.Cut(hostPort, ":")
	if !found || port == "" {
		port = "1433"
	}

	query := url.Values{}
	query.Add("encrypt", "true")
	query.Add("TrustServerCertificate", "false")
	query.Add("connection timeout", "30")
	query.Add("ApplicationIntent", "ReadOnly")
	if database != "" {
		query.Add("database", database)
	}

	u := &url.URL{
		Scheme:   "sqlserver",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     fmt.Sprintf("%s:%s", host, port),
		RawQuery: query.Encode(),
	}
	return u.String()
}

// IsEnabled reports whether the client is connected
func (c *Client) IsEnabled() bool {
	return c != nil && c.db != nil
}

// Close releases the connection pool
func (c *Client) Close() error {
	if !c.IsEnabled() {
		return nil
	}
	if err := c.db.Close(); err != nil {
		return fmt.Errorf("failed to close data warehouse connection: %w", err)
	}
	return nil
}

// HealthCheck pings the warehouse and reports pool statistics
func (c *Client) HealthCheck(ctx context.Context) *HealthStatus {
	if !c.IsEnabled() {
		return &HealthStatus{Status: "disabled"}
	}

	ctx, cancel := context.WithTimeout(ctx, defaultHealthCheckTimeout)
	defer cancel()

	start := time.Now()
	err := c.db.PingContext(ctx)
	stats := c.db.Stats()

	status := &HealthStatus{
		Status:    "healthy",
		LatencyMs: time.Since(start).Milliseconds(),
		Open:      stats.OpenConnections,
		InUse:     stats.InUse,
		Idle:      stats.Idle,
	}
	if err != nil {
		status.Status = "unhealthy"
		status.Error = err.Error()
	}
	return status
}

// ExecuteQuery runs a read-only query and returns the rows keyed by column name
func (c *Client) ExecuteQuery(ctx context.Context, query string, args ...interface{}) ([]map[string]interface{}, error) {
	if !c.IsEnabled() {
		return nil, fmt.Errorf("data warehouse client not initialized")
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.queryTimeout)
		defer cancel()
	}

	start := time.Now()
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		c.logger.Error("Data warehouse query failed",
			zap.Error(err),
			zap.String("query", truncateQuery(query, 200)),
		)
		return nil, fmt.Errorf("query execution failed: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get column names: %w", err)
	}

	var results []map[string]interface{}
	values := make([]interface{}, len(columns))
	ptrs := make([]interface{}, len(columns))
	for i := range values {
		ptrs[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		row := make(map[string]interface{}, len(columns))
		for i, col := range columns {
			row[col] = values[i]
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	c.logger.Debug("Data warehouse query completed",
		zap.Int("rows_returned", len(results)),
		zap.Duration("duration", time.Since(start)),
	)
	return results, nil
}

func truncateQuery(query string, maxLen int) string {
	if len(query) <= maxLen {
		return query
	}
	return query[:maxLen] + "..."
}
