package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pphyo/multichat/internal/models"
)

const nvidiaBaseURL = "https://integrate.api.nvidia.com/v1"

// ModelConfig holds the generation parameters for one backend model.
// Extra entries are merged into the request body as-is, which is how
// backend-specific flags like a reasoning toggle get through.
type ModelConfig struct {
	Temperature *float64
	TopP        *float64
	MaxTokens   *int
	Extra       map[string]any
}

// OpenAICompatProvider talks to any OpenAI-compatible chat completions
// endpoint. The full message list, system messages included, is sent
// verbatim; streaming is always disabled.
type OpenAICompatProvider struct {
	name       string
	prefix     string
	baseURL    string
	apiKey     string
	configs    map[string]ModelConfig
	httpClient *http.Client
}

func NewOpenAICompatProvider(name, prefix, baseURL, apiKey string, configs map[string]ModelConfig) *OpenAICompatProvider {
	return &OpenAICompatProvider{
		name:       name,
		prefix:     prefix,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		configs:    configs,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// NewNvidiaProvider serves "nvidia:" model ids through NVIDIA's hosted
// chat completions API, with per-model generation parameters.
func NewNvidiaProvider(apiKey string) *OpenAICompatProvider {
	return NewOpenAICompatProvider("nvidia", "nvidia", nvidiaBaseURL, apiKey, map[string]ModelConfig{
		"moonshotai/kimi-k2-instruct": {
			Temperature: ptr(0.6),
			TopP:        ptr(0.9),
			MaxTokens:   ptr(4096),
		},
		"deepseek-ai/deepseek-v3.1": {
			Temperature: ptr(0.2),
			TopP:        ptr(0.7),
			MaxTokens:   ptr(8192),
			Extra: map[string]any{
				"chat_template_kwargs": map[string]any{"thinking": true},
			},
		},
		"meta/llama-3.1-8b-instruct": {
			Temperature: ptr(0.2),
			TopP:        ptr(0.7),
			MaxTokens:   ptr(1024),
		},
	})
}

func ptr[T any](v T) *T { return &v }

type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type errorEnvelope struct {
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// mapRequest builds the request body as a loose map so per-model Extra
// keys can be merged alongside the standard fields.
func (p *OpenAICompatProvider) mapRequest(modelName string, messages []wireMessage) map[string]any {
	body := map[string]any{
		"model":    modelName,
		"messages": messages,
		"stream":   false,
	}

	// Unknown model names get pure backend defaults.
	cfg := p.configs[modelName]
	if cfg.Temperature != nil {
		body["temperature"] = *cfg.Temperature
	}
	if cfg.TopP != nil {
		body["top_p"] = *cfg.TopP
	}
	if cfg.MaxTokens != nil {
		body["max_tokens"] = *cfg.MaxTokens
	}
	for k, v := range cfg.Extra {
		body[k] = v
	}
	return body
}

func (p *OpenAICompatProvider) GenerateResponse(ctx context.Context, modelID string, messages []models.ChatMessage) (string, error) {
	modelName := strings.TrimPrefix(modelID, p.prefix+":")

	wireMessages := make([]wireMessage, 0, len(messages))
	for _, msg := range messages {
		wireMessages = append(wireMessages, wireMessage{Role: msg.Role, Content: msg.Content})
	}

	payload, err := json.Marshal(p.mapRequest(modelName, wireMessages))
	if err != nil {
		return "", &ProviderError{Provider: p.name, Message: "failed to encode request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", &ProviderError{Provider: p.name, Message: "failed to build request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", &ProviderError{Provider: p.name, Message: "request failed", Cause: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &ProviderError{Provider: p.name, Message: "failed to read response", Cause: err}
	}

	if resp.StatusCode != http.StatusOK {
		var envelope errorEnvelope
		msg := http.StatusText(resp.StatusCode)
		if json.Unmarshal(raw, &envelope) == nil && envelope.Error != nil && envelope.Error.Message != "" {
			msg = envelope.Error.Message
		}
		return "", &ProviderError{
			Provider: p.name,
			Message:  fmt.Sprintf("%s (status %d)", msg, resp.StatusCode),
		}
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(raw, &completion); err != nil {
		return "", &ProviderError{Provider: p.name, Message: "malformed response", Cause: err}
	}
	if len(completion.Choices) == 0 {
		return "", &ProviderError{Provider: p.name, Message: "no choices in response"}
	}
	return completion.Choices[0].Message.Content, nil
}
