package drafting

import (
	"context"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"github.com/felixgeelhaar/fortify/timeout"
	"go.uber.org/zap"
)

// ResilienceConfig controls retries and the per-attempt timeout
type ResilienceConfig struct {
	MaxAttempts int
	RetryDelay  time.Duration
	Timeout     time.Duration
}

// DefaultResilienceConfig returns the settings used when none are configured
func DefaultResilienceConfig() ResilienceConfig {
	return ResilienceConfig{
		MaxAttempts: 3,
		RetryDelay:  500 * time.Millisecond,
		Timeout:     30 * time.Second,
	}
}

// withDefaults fills zero fields from DefaultResilienceConfig
func (c ResilienceConfig) withDefaults() ResilienceConfig {
	defaults := DefaultResilienceConfig()
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = defaults.MaxAttempts
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = defaults.RetryDelay
	}
	if c.Timeout <= 0 {
		c.Timeout = defaults.Timeout
	}
	return c
}

// Budget is the longest a full retry sequence can take: every attempt running to its
// timeout plus the doubling backoff between attempts
func (c ResilienceConfig) Budget() time.Duration {
	c = c.withDefaults()
	total := time.Duration(c.MaxAttempts) * c.Timeout
	delay := c.RetryDelay
	for i := 1; i < c.MaxAttempts; i++ {
		total += delay
		delay *= 2
	}
	return total
}

// ResilientGenerator retries a generator with exponential backoff and bounds each attempt
type ResilientGenerator struct {
	inner  Generator
	cfg    ResilienceConfig
	logger *zap.Logger
}

// NewResilientGenerator wraps inner; zero fields in cfg take their defaults
func NewResilientGenerator(inner Generator, cfg ResilienceConfig, logger *zap.Logger) *ResilientGenerator {
	return &ResilientGenerator{
		inner:  inner,
		cfg:    cfg.withDefaults(),
		logger: logger,
	}
}

// Config returns the effective settings
func (g *ResilientGenerator) Config() ResilienceConfig {
	return g.cfg
}

// GenerateDraft implements Generator
func (g *ResilientGenerator) GenerateDraft(ctx context.Context, req Request) (string, error) {
	r := retry.New[string](retry.Config{
		MaxAttempts:   g.cfg.MaxAttempts,
		InitialDelay:  g.cfg.RetryDelay,
		BackoffPolicy: retry.BackoffExponential,
	})
	t := timeout.New[string](timeout.Config{
		DefaultTimeout: g.cfg.Timeout,
	})

	attempt := 0
	text, err := r.Do(ctx, func(ctx context.Context) (string, error) {
		attempt++
		out, err := t.Execute(ctx, g.cfg.Timeout, func(ctx context.Context) (string, error) {
			return g.inner.GenerateDraft(ctx, req)
		})
		if err != nil {
			g.logger.Warn("Draft generation attempt failed",
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", g.cfg.MaxAttempts),
				zap.Error(err),
			)
		}
		return out, err
	})
	if err != nil {
		return "", err
	}
	return text, nil
}
