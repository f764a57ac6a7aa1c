package models

import "time"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

type Session struct {
	ID          string    `json:"id"`
	ModelID     string    `json:"model_id"`
	CustomTitle string    `json:"custom_title,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type Message struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	Role      string    `json:"role"` // user, assistant, or system
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatMessage is one turn of a conversation as replayed to a provider
// and as returned by the history endpoint.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// SessionSummary is one row of the session listing. Title is the custom
// title when set, otherwise the first user message of the session.
type SessionSummary struct {
	ID    string    `json:"id"`
	Model string    `json:"model"`
	Date  time.Time `json:"date"`
	Title string    `json:"title"`
}
