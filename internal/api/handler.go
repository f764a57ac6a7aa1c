package api

import (
	"encoding/json"
	"net/http"

	"github.com/pphyo/multichat/internal/chat"
	"github.com/pphyo/multichat/internal/config"
	"github.com/pphyo/multichat/internal/db"
	"go.uber.org/zap"
)

type Handler struct {
	store  *db.Store
	chat   *chat.Service
	models []config.ModelInfo
	logger *zap.Logger
}

func NewHandler(store *db.Store, chatService *chat.Service, models []config.ModelInfo, logger *zap.Logger) *Handler {
	return &Handler{
		store:  store,
		chat:   chatService,
		models: models,
		logger: logger,
	}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /models", h.GetModels)
	mux.HandleFunc("POST /start_chat", h.StartChat)
	mux.HandleFunc("POST /chat", h.Chat)
	mux.HandleFunc("GET /sessions", h.GetSessions)
	mux.HandleFunc("GET /history/{session_id}", h.GetHistory)
	mux.HandleFunc("DELETE /sessions/{session_id}", h.DeleteSession)
	mux.HandleFunc("PUT /sessions/{session_id}/title", h.UpdateTitle)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (h *Handler) GetModels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.models)
}

type startChatRequest struct {
	Model string `json:"model"`
}

func (h *Handler) StartChat(w http.ResponseWriter, r *http.Request) {
	var req startChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Model == "" {
		writeError(w, http.StatusBadRequest, "Model ID is required")
		return
	}

	sessionID, err := h.store.CreateSession(req.Model)
	if err != nil {
		h.logger.Error("failed to create session", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"session_id": sessionID,
		"message":    "New chat session started",
	})
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
	Model     string `json:"model"`
}

func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.SessionID == "" || req.Message == "" || req.Model == "" {
		writeError(w, http.StatusBadRequest, "Missing session_id, model, or message")
		return
	}

	reply, err := h.chat.HandleTurn(r.Context(), req.SessionID, req.Model, req.Message)
	if err != nil {
		h.logger.Error("failed to handle chat turn",
			zap.String("sessionID", req.SessionID),
			zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"reply":      reply,
		"session_id": req.SessionID,
	})
}

func (h *Handler) GetSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.store.GetAllSessions()
	if err != nil {
		h.logger.Error("failed to get sessions", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("session_id")

	messages, err := h.store.GetMessages(sessionID)
	if err != nil {
		h.logger.Error("failed to get history",
			zap.String("sessionID", sessionID),
			zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, messages)
}

func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("session_id")

	if err := h.store.DeleteSession(sessionID); err != nil {
		h.logger.Error("failed to delete session",
			zap.String("sessionID", sessionID),
			zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Deleted"})
}

type updateTitleRequest struct {
	Title string `json:"title"`
}

func (h *Handler) UpdateTitle(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("session_id")

	var req updateTitleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.store.UpdateSessionTitle(sessionID, req.Title); err != nil {
		h.logger.Error("failed to update session title",
			zap.String("sessionID", sessionID),
			zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Updated"})
}
