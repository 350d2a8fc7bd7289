package drafting

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.5-flash"

const systemInstruction = "你是一名工程项目客户关系专员，负责以专业、礼貌、简洁的中文回复客户和相关方的反馈。" +
	"只输出回复正文，不要添加标题、称呼占位符或解释。"

// contentGenerator is the part of the genai client used here
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiGenerator drafts responses with the Gemini API
type GeminiGenerator struct {
	models      contentGenerator
	model       string
	temperature float32
}

// NewGeminiGenerator creates a Gemini client for the given key
func NewGeminiGenerator(ctx context.Context, apiKey, model string, temperature float64) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return newGeminiGenerator(client.Models, model, temperature), nil
}

func newGeminiGenerator(models contentGenerator, model string, temperature float64) *GeminiGenerator {
	if model == "" {
		model = defaultGeminiModel
	}
	return &GeminiGenerator{
		models:      models,
		model:       model,
		temperature: float32(temperature),
	}
}

// Model returns the model name in use
func (g *GeminiGenerator) Model() string {
	return g.model
}

// GenerateDraft implements Generator
func (g *GeminiGenerator) GenerateDraft(ctx context.Context, req Request) (string, error) {
	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(BuildPrompt(req)), &genai.GenerateContentConfig{
		Temperature:       genai.Ptr(g.temperature),
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
	})
	if err != nil {
		return "", fmt.Errorf("gemini generate failed: %w", err)
	}
	if resp == nil {
		return "", ErrEmptyDraft
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrEmptyDraft
	}
	return text, nil
}

// BuildPrompt renders the user prompt for one feedback item
func BuildPrompt(req Request) string {
	stakeholder := req.StakeholderLabel
	if stakeholder == "" {
		stakeholder = "客户"
	}

	var b strings.Builder
	b.WriteString("请根据以下信息，为项目反馈起草一份回复。\n")
	b.WriteString("项目背景：")
	b.WriteString(req.ContextSummary)
	b.WriteString("\n反馈人：")
	b.WriteString(stakeholder)
	b.WriteString("\n反馈内容：")
	b.WriteString(req.FeedbackContent)
	b.WriteString("\n要求：语气专业诚恳，说明处理措施或下一步安排，控制在200字以内。")
	return b.String()
}
