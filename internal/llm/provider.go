package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/pphyo/multichat/internal/models"
)

// Provider adapts a canonical chat history to one LLM backend family.
// Implementations strip their own model-id prefix, issue a single
// non-streaming completion request and return the reply text. All failures
// come back as *ProviderError.
type Provider interface {
	GenerateResponse(ctx context.Context, modelID string, messages []models.ChatMessage) (string, error)
}

// ProviderError wraps any transport, auth or malformed-response failure
// from an LLM backend.
type ProviderError struct {
	Provider string
	Message  string
	Cause    error
}

func (e *ProviderError) Error() string {
	msg := e.Message
	if msg == "" && e.Cause != nil {
		msg = e.Cause.Error()
	}
	if e.Cause != nil && e.Message != "" {
		return fmt.Sprintf("%s provider: %s: %v", e.Provider, msg, e.Cause)
	}
	return fmt.Sprintf("%s provider: %s", e.Provider, msg)
}

func (e *ProviderError) Unwrap() error { return e.Cause }

// Registry routes a model identifier of the form "<prefix>:<model-name>"
// to the provider registered for the prefix. Identifiers with an unknown
// prefix, or with no prefix at all, fall back to the default provider.
type Registry struct {
	providers map[string]Provider
	fallback  Provider
}

func NewRegistry(fallback Provider) *Registry {
	return &Registry{
		providers: make(map[string]Provider),
		fallback:  fallback,
	}
}

// Register binds a prefix to a provider. Registering the same prefix again
// overwrites the previous binding.
func (r *Registry) Register(prefix string, p Provider) {
	r.providers[prefix] = p
}

func (r *Registry) Get(modelID string) Provider {
	if prefix, _, ok := strings.Cut(modelID, ":"); ok {
		if p, found := r.providers[prefix]; found {
			return p
		}
	}
	return r.fallback
}
