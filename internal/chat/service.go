package chat

import (
	"context"
	"fmt"

	"github.com/pphyo/multichat/internal/db"
	"github.com/pphyo/multichat/internal/llm"
	"github.com/pphyo/multichat/internal/models"
	"go.uber.org/zap"
)

// Service runs one chat turn: persist the user message, replay the full
// history to the provider selected for the model id, persist the reply.
type Service struct {
	store    *db.Store
	registry *llm.Registry
	logger   *zap.Logger
}

func New(store *db.Store, registry *llm.Registry, logger *zap.Logger) *Service {
	return &Service{
		store:    store,
		registry: registry,
		logger:   logger,
	}
}

// HandleTurn returns the assistant reply for one user message. Provider
// failures are not propagated: they are absorbed into the conversation as
// an apologetic assistant message, so the client always gets a well-formed
// reply. Store failures do propagate.
func (s *Service) HandleTurn(ctx context.Context, sessionID, modelID, userMessage string) (string, error) {
	if err := s.store.AddMessage(sessionID, models.RoleUser, userMessage); err != nil {
		return "", fmt.Errorf("failed to save user message: %w", err)
	}

	history, err := s.store.GetMessages(sessionID)
	if err != nil {
		return "", fmt.Errorf("failed to load history: %w", err)
	}

	provider := s.registry.Get(modelID)
	reply, err := provider.GenerateResponse(ctx, modelID, history)
	if err != nil {
		s.logger.Error("provider call failed",
			zap.String("sessionID", sessionID),
			zap.String("model", modelID),
			zap.Error(err))
		reply = fmt.Sprintf("Sorry, I encountered an error: %s", err.Error())
	}

	if err := s.store.AddMessage(sessionID, models.RoleAssistant, reply); err != nil {
		return "", fmt.Errorf("failed to save assistant message: %w", err)
	}

	return reply, nil
}
