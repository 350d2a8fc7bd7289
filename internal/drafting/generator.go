// Package drafting produces suggested responses to client feedback.
package drafting

import (
	"context"
	"errors"
	"fmt"

	"github.com/straye-as/project-desk-api/internal/config"
	"go.uber.org/zap"
)

var (
	// ErrEmptyDraft is returned when the model answers without any text
	ErrEmptyDraft = errors.New("draft generator returned no text")

	// ErrDraftingDisabled is returned by the disabled generator
	ErrDraftingDisabled = errors.New("draft generation is disabled")
)

// Request carries everything the generator needs to write a response
type Request struct {
	// ContextSummary describes the project, e.g. "项目名称：X，类型：Y，当前阶段：Z"
	ContextSummary   string
	FeedbackContent  string
	StakeholderLabel string
}

// Generator writes a response draft for one feedback item
type Generator interface {
	GenerateDraft(ctx context.Context, req Request) (string, error)
}

// Disabled never produces text
type Disabled struct{}

// GenerateDraft implements Generator
func (Disabled) GenerateDraft(ctx context.Context, req Request) (string, error) {
	return "", ErrDraftingDisabled
}

// ResilienceFromConfig maps the drafting settings onto retry and timeout settings
func ResilienceFromConfig(cfg *config.DraftingConfig) ResilienceConfig {
	return ResilienceConfig{
		MaxAttempts: cfg.MaxAttempts,
		RetryDelay:  cfg.RetryDelayDuration(),
		Timeout:     cfg.TimeoutDuration(),
	}.withDefaults()
}

// New builds the generator selected by configuration, wrapped with retry and timeout.
// A gemini provider without an API key falls back to Disabled so the rest of the
// desk keeps working.
func New(ctx context.Context, cfg *config.DraftingConfig, logger *zap.Logger) (Generator, error) {
	switch cfg.Provider {
	case "disabled":
		logger.Info("Draft generation disabled by configuration")
		return Disabled{}, nil
	case "gemini":
		if cfg.APIKey == "" {
			logger.Warn("No Gemini API key configured, draft generation disabled")
			return Disabled{}, nil
		}
		gemini, err := NewGeminiGenerator(ctx, cfg.APIKey, cfg.Model, cfg.Temperature)
		if err != nil {
			return nil, err
		}
		logger.Info("Gemini draft generator initialized", zap.String("model", gemini.Model()))
		return NewResilientGenerator(gemini, ResilienceFromConfig(cfg), logger), nil
	default:
		return nil, fmt.Errorf("unsupported drafting provider %q", cfg.Provider)
	}
}
