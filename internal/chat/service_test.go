package chat

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/pphyo/multichat/internal/db"
	"github.com/pphyo/multichat/internal/llm"
	"github.com/pphyo/multichat/internal/models"
	"go.uber.org/zap"
)

type fakeProvider struct {
	reply string
	err   error

	gotModelID  string
	gotMessages []models.ChatMessage
}

func (f *fakeProvider) GenerateResponse(ctx context.Context, modelID string, messages []models.ChatMessage) (string, error) {
	f.gotModelID = modelID
	f.gotMessages = messages
	return f.reply, f.err
}

func newTestService(t *testing.T, provider llm.Provider) (*Service, *db.Store) {
	t.Helper()
	store, err := db.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("db.New() err=%v", err)
	}
	t.Cleanup(func() { store.Close() })

	registry := llm.NewRegistry(provider)
	registry.Register("nvidia", provider)

	return New(store, registry, zap.NewNop()), store
}

func TestHandleTurn(t *testing.T) {
	provider := &fakeProvider{reply: "Hi there!"}
	service, store := newTestService(t, provider)

	sessionID, err := store.CreateSession("nvidia:meta/llama-3.1-8b-instruct")
	if err != nil {
		t.Fatalf("CreateSession() err=%v", err)
	}

	reply, err := service.HandleTurn(context.Background(), sessionID, "nvidia:meta/llama-3.1-8b-instruct", "Hello")
	if err != nil {
		t.Fatalf("HandleTurn() err=%v", err)
	}
	if reply != "Hi there!" {
		t.Errorf("reply = %q, want %q", reply, "Hi there!")
	}

	// The provider sees the history including the just-added user message.
	if provider.gotModelID != "nvidia:meta/llama-3.1-8b-instruct" {
		t.Errorf("provider got model %q", provider.gotModelID)
	}
	if len(provider.gotMessages) != 1 || provider.gotMessages[0].Role != "user" || provider.gotMessages[0].Content != "Hello" {
		t.Errorf("provider got history %v, want [{user Hello}]", provider.gotMessages)
	}

	// Both turns are persisted in order.
	history, err := store.GetMessages(sessionID)
	if err != nil {
		t.Fatalf("GetMessages() err=%v", err)
	}
	want := []models.ChatMessage{
		{Role: "user", Content: "Hello"},
		{Role: "assistant", Content: "Hi there!"},
	}
	if len(history) != len(want) {
		t.Fatalf("got %d messages, want %d", len(history), len(want))
	}
	for i := range want {
		if history[i] != want[i] {
			t.Errorf("history[%d] = %v, want %v", i, history[i], want[i])
		}
	}
}

func TestHandleTurnReplaysFullHistory(t *testing.T) {
	provider := &fakeProvider{reply: "again"}
	service, store := newTestService(t, provider)

	sessionID, err := store.CreateSession("nvidia:meta/llama-3.1-8b-instruct")
	if err != nil {
		t.Fatalf("CreateSession() err=%v", err)
	}

	if _, err := service.HandleTurn(context.Background(), sessionID, "nvidia:meta/llama-3.1-8b-instruct", "first"); err != nil {
		t.Fatalf("HandleTurn() err=%v", err)
	}
	if _, err := service.HandleTurn(context.Background(), sessionID, "nvidia:meta/llama-3.1-8b-instruct", "second"); err != nil {
		t.Fatalf("HandleTurn() err=%v", err)
	}

	want := []models.ChatMessage{
		{Role: "user", Content: "first"},
		{Role: "assistant", Content: "again"},
		{Role: "user", Content: "second"},
	}
	if len(provider.gotMessages) != len(want) {
		t.Fatalf("provider got %d messages, want %d", len(provider.gotMessages), len(want))
	}
	for i := range want {
		if provider.gotMessages[i] != want[i] {
			t.Errorf("history[%d] = %v, want %v", i, provider.gotMessages[i], want[i])
		}
	}
}

func TestHandleTurnContainsProviderError(t *testing.T) {
	providerErr := &llm.ProviderError{Provider: "nvidia", Message: "connection refused"}
	provider := &fakeProvider{err: providerErr}
	service, store := newTestService(t, provider)

	sessionID, err := store.CreateSession("nvidia:meta/llama-3.1-8b-instruct")
	if err != nil {
		t.Fatalf("CreateSession() err=%v", err)
	}

	reply, err := service.HandleTurn(context.Background(), sessionID, "nvidia:meta/llama-3.1-8b-instruct", "Hello")
	if err != nil {
		t.Fatalf("HandleTurn() err=%v, provider failures must not propagate", err)
	}

	want := "Sorry, I encountered an error: " + providerErr.Error()
	if reply != want {
		t.Errorf("reply = %q, want %q", reply, want)
	}

	// The apology is stored as the assistant turn.
	history, err := store.GetMessages(sessionID)
	if err != nil {
		t.Fatalf("GetMessages() err=%v", err)
	}
	if len(history) != 2 {
		t.Fatalf("got %d messages, want 2", len(history))
	}
	if history[1].Role != "assistant" || history[1].Content != want {
		t.Errorf("stored assistant turn = %v, want apology", history[1])
	}
}

func TestHandleTurnPlainError(t *testing.T) {
	provider := &fakeProvider{err: errors.New("boom")}
	service, store := newTestService(t, provider)

	sessionID, err := store.CreateSession("nvidia:foo")
	if err != nil {
		t.Fatalf("CreateSession() err=%v", err)
	}

	reply, err := service.HandleTurn(context.Background(), sessionID, "nvidia:foo", "Hello")
	if err != nil {
		t.Fatalf("HandleTurn() err=%v", err)
	}
	if reply != "Sorry, I encountered an error: boom" {
		t.Errorf("reply = %q", reply)
	}
}
