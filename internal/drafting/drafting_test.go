package drafting

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/straye-as/project-desk-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

type fakeModels struct {
	prompt string
	model  string
	text   string
	err    error
}

func (f *fakeModels) GenerateContent(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model = model
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		f.prompt = contents[0].Parts[0].Text
	}
	if f.err != nil {
		return nil, f.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Role: genai.RoleModel, Parts: []*genai.Part{{Text: f.text}}},
		}},
	}, nil
}

var leakRequest = Request{
	ContextSummary:   "项目名称：城东污水厂，类型：环保，当前阶段：在建",
	FeedbackContent:  "漏水",
	StakeholderLabel: "李主任 (业主代表)",
}

func TestGeminiGenerator_GenerateDraft(t *testing.T) {
	models := &fakeModels{text: "  感谢反馈，已安排维修\n"}
	g := newGeminiGenerator(models, "", 0.4)

	text, err := g.GenerateDraft(context.Background(), leakRequest)
	require.NoError(t, err)
	assert.Equal(t, "感谢反馈，已安排维修", text)
	assert.Equal(t, defaultGeminiModel, models.model)
	assert.Contains(t, models.prompt, "项目名称：城东污水厂")
	assert.Contains(t, models.prompt, "漏水")
	assert.Contains(t, models.prompt, "李主任 (业主代表)")
}

func TestGeminiGenerator_Errors(t *testing.T) {
	t.Run("api failure", func(t *testing.T) {
		g := newGeminiGenerator(&fakeModels{err: errors.New("quota exceeded")}, "gemini-test", 0)
		_, err := g.GenerateDraft(context.Background(), leakRequest)
		assert.ErrorContains(t, err, "quota exceeded")
	})

	t.Run("blank answer", func(t *testing.T) {
		g := newGeminiGenerator(&fakeModels{text: "   "}, "gemini-test", 0)
		_, err := g.GenerateDraft(context.Background(), leakRequest)
		assert.ErrorIs(t, err, ErrEmptyDraft)
	})
}

func TestBuildPrompt_DefaultsStakeholder(t *testing.T) {
	prompt := BuildPrompt(Request{ContextSummary: "ctx", FeedbackContent: "问题"})
	assert.Contains(t, prompt, "反馈人：客户")
	assert.Contains(t, prompt, "反馈内容：问题")
}

type flakyGenerator struct {
	failures int32
	calls    atomic.Int32
}

func (f *flakyGenerator) GenerateDraft(ctx context.Context, req Request) (string, error) {
	n := f.calls.Add(1)
	if n <= f.failures {
		return "", errors.New("temporary failure")
	}
	return "draft", nil
}

func TestResilientGenerator_RetriesUntilSuccess(t *testing.T) {
	inner := &flakyGenerator{failures: 2}
	g := NewResilientGenerator(inner, ResilienceConfig{MaxAttempts: 3, RetryDelay: time.Millisecond, Timeout: time.Second}, zap.NewNop())

	text, err := g.GenerateDraft(context.Background(), leakRequest)
	require.NoError(t, err)
	assert.Equal(t, "draft", text)
	assert.Equal(t, int32(3), inner.calls.Load())
}

func TestResilientGenerator_GivesUp(t *testing.T) {
	inner := &flakyGenerator{failures: 10}
	g := NewResilientGenerator(inner, ResilienceConfig{MaxAttempts: 2, RetryDelay: time.Millisecond, Timeout: time.Second}, zap.NewNop())

	_, err := g.GenerateDraft(context.Background(), leakRequest)
	assert.Error(t, err)
	assert.Equal(t, int32(2), inner.calls.Load())
}

func TestResilientGenerator_Defaults(t *testing.T) {
	g := NewResilientGenerator(Disabled{}, ResilienceConfig{}, zap.NewNop())
	assert.Equal(t, DefaultResilienceConfig(), g.Config())
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	g, err := New(ctx, &config.DraftingConfig{Provider: "disabled"}, zap.NewNop())
	require.NoError(t, err)
	_, err = g.GenerateDraft(ctx, leakRequest)
	assert.ErrorIs(t, err, ErrDraftingDisabled)

	g, err = New(ctx, &config.DraftingConfig{Provider: "gemini"}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, Disabled{}, g, "missing key falls back to disabled")

	_, err = New(ctx, &config.DraftingConfig{Provider: "openai"}, zap.NewNop())
	assert.Error(t, err)
}

func TestResilienceConfig_Budget(t *testing.T) {
	cfg := ResilienceConfig{MaxAttempts: 3, RetryDelay: 500 * time.Millisecond, Timeout: 30 * time.Second}
	// three attempts plus 0.5s and 1s of backoff between them
	assert.Equal(t, 91500*time.Millisecond, cfg.Budget())

	single := ResilienceConfig{MaxAttempts: 1, RetryDelay: time.Second, Timeout: 10 * time.Second}
	assert.Equal(t, 10*time.Second, single.Budget())

	assert.Equal(t, DefaultResilienceConfig().Budget(), ResilienceConfig{}.Budget())
}

func TestResilienceFromConfig(t *testing.T) {
	cfg := ResilienceFromConfig(&config.DraftingConfig{MaxAttempts: 2, Timeout: 5, RetryDelay: 200})
	assert.Equal(t, ResilienceConfig{MaxAttempts: 2, RetryDelay: 200 * time.Millisecond, Timeout: 5 * time.Second}, cfg)
	assert.Equal(t, 10200*time.Millisecond, cfg.Budget())

	assert.Equal(t, DefaultResilienceConfig(), ResilienceFromConfig(&config.DraftingConfig{}))
}
