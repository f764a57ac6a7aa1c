package llm

import (
	"context"
	"strings"
	"sync"

	"github.com/pphyo/multichat/internal/models"
	"google.golang.org/genai"
)

const googlePrefix = "google"

// GoogleProvider serves "google:" model ids through the Gemini API. The
// backend holds no session memory for us, so every call rebuilds the chat
// from the flat history: all but the last message become prior turns and
// the last message's content is sent as the new prompt.
type GoogleProvider struct {
	apiKey string

	mu     sync.Mutex
	client *genai.Client
}

func NewGoogleProvider(apiKey string) *GoogleProvider {
	return &GoogleProvider{apiKey: apiKey}
}

// ensureClient creates the genai client on first use so that a missing API
// key surfaces as a per-call ProviderError instead of a startup failure.
func (p *GoogleProvider) ensureClient(ctx context.Context) (*genai.Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client != nil {
		return p.client, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  p.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	p.client = client
	return client, nil
}

// buildChatHistory maps the canonical history to Gemini content. Roles map
// user->user and assistant->model; system messages are dropped entirely.
// The last remaining message is split off as the prompt. An empty history
// is rejected rather than sent as an empty prompt.
func buildChatHistory(messages []models.ChatMessage) ([]*genai.Content, string, error) {
	kept := make([]models.ChatMessage, 0, len(messages))
	for _, msg := range messages {
		if msg.Role == models.RoleSystem {
			continue
		}
		kept = append(kept, msg)
	}

	if len(kept) == 0 {
		return nil, "", &ProviderError{Provider: googlePrefix, Message: "empty message history"}
	}

	history := make([]*genai.Content, 0, len(kept)-1)
	for _, msg := range kept[:len(kept)-1] {
		role := "model"
		if msg.Role == models.RoleUser {
			role = "user"
		}
		history = append(history, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: msg.Content}},
		})
	}

	return history, kept[len(kept)-1].Content, nil
}

func (p *GoogleProvider) GenerateResponse(ctx context.Context, modelID string, messages []models.ChatMessage) (string, error) {
	modelName := strings.TrimPrefix(modelID, googlePrefix+":")

	history, prompt, err := buildChatHistory(messages)
	if err != nil {
		return "", err
	}

	client, err := p.ensureClient(ctx)
	if err != nil {
		return "", &ProviderError{Provider: googlePrefix, Message: "failed to create client", Cause: err}
	}

	chat, err := client.Chats.Create(ctx, modelName, nil, history)
	if err != nil {
		return "", &ProviderError{Provider: googlePrefix, Message: "failed to create chat session", Cause: err}
	}

	resp, err := chat.SendMessage(ctx, genai.Part{Text: prompt})
	if err != nil {
		return "", &ProviderError{Provider: googlePrefix, Message: "send message failed", Cause: err}
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", &ProviderError{Provider: googlePrefix, Message: "no valid candidates in response"}
	}
	if part := resp.Candidates[0].Content.Parts[0]; part != nil && part.Text != "" {
		return part.Text, nil
	}
	return "", &ProviderError{Provider: googlePrefix, Message: "response part was not text"}
}
