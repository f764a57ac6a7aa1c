package llm

import (
	"context"

	"github.com/pphyo/multichat/internal/models"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

const defaultTemperature = 0.7

// DefaultProvider is the catch-all for model ids with no registered
// prefix. It passes the history through unchanged to an OpenAI-compatible
// endpoint with a fixed temperature, using the bare model id as the
// backend model name.
type DefaultProvider struct {
	apiKey  string
	baseURL string
}

func NewDefaultProvider(apiKey, baseURL string) *DefaultProvider {
	return &DefaultProvider{apiKey: apiKey, baseURL: baseURL}
}

func (p *DefaultProvider) GenerateResponse(ctx context.Context, modelID string, messages []models.ChatMessage) (string, error) {
	opts := []openai.Option{
		openai.WithToken(p.apiKey),
		openai.WithModel(modelID),
	}
	if p.baseURL != "" {
		opts = append(opts, openai.WithBaseURL(p.baseURL))
	}

	client, err := openai.New(opts...)
	if err != nil {
		return "", &ProviderError{Provider: "default", Message: "failed to create client", Cause: err}
	}

	content := make([]llms.MessageContent, 0, len(messages))
	for _, msg := range messages {
		role := llms.ChatMessageTypeHuman
		switch msg.Role {
		case models.RoleAssistant:
			role = llms.ChatMessageTypeAI
		case models.RoleSystem:
			role = llms.ChatMessageTypeSystem
		}
		content = append(content, llms.TextParts(role, msg.Content))
	}

	resp, err := client.GenerateContent(ctx, content, llms.WithTemperature(defaultTemperature))
	if err != nil {
		return "", &ProviderError{Provider: "default", Message: "completion failed", Cause: err}
	}
	if len(resp.Choices) == 0 {
		return "", &ProviderError{Provider: "default", Message: "no choices in response"}
	}
	return resp.Choices[0].Content, nil
}
