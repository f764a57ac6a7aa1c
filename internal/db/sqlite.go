package db

import (
	"database/sql"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pphyo/multichat/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
    id TEXT PRIMARY KEY,
    model_id TEXT NOT NULL,
    custom_title TEXT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS messages (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id TEXT,
    role TEXT NOT NULL,
    content TEXT NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (session_id) REFERENCES sessions(id)
);`

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// newSessionID returns the first 16 hex characters of a random UUID.
// Collisions are negligible at this scale, so there is no retry.
func newSessionID() string {
	u := uuid.New()
	return hex.EncodeToString(u[:])[:16]
}

func (s *Store) CreateSession(modelID string) (string, error) {
	sessionID := newSessionID()
	_, err := s.db.Exec("INSERT INTO sessions (id, model_id) VALUES (?, ?)", sessionID, modelID)
	if err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}
	return sessionID, nil
}

// AddMessage appends a message. The session is not checked for existence;
// an unknown id produces an orphan row, matching the loose coupling of the
// insert path.
func (s *Store) AddMessage(sessionID, role, content string) error {
	_, err := s.db.Exec(
		"INSERT INTO messages (session_id, role, content) VALUES (?, ?, ?)",
		sessionID, role, content,
	)
	if err != nil {
		return fmt.Errorf("failed to add message: %w", err)
	}
	return nil
}

// GetMessages returns the session's messages in insertion order (id
// ascending). An unknown session yields an empty slice, not an error.
func (s *Store) GetMessages(sessionID string) ([]models.ChatMessage, error) {
	rows, err := s.db.Query(
		"SELECT role, content FROM messages WHERE session_id = ? ORDER BY id ASC",
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get messages: %w", err)
	}
	defer rows.Close()

	messages := make([]models.ChatMessage, 0)
	for rows.Next() {
		var msg models.ChatMessage
		if err := rows.Scan(&msg.Role, &msg.Content); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// GetAllSessions lists sessions newest first. The title is the custom title
// when set, otherwise the first user message; sessions with neither are
// excluded.
func (s *Store) GetAllSessions() ([]models.SessionSummary, error) {
	rows, err := s.db.Query(`
        SELECT
            s.id,
            s.model_id,
            s.created_at,
            COALESCE(s.custom_title, (SELECT content FROM messages m WHERE m.session_id = s.id AND m.role = 'user' ORDER BY m.id ASC LIMIT 1)) AS title
        FROM sessions s
        WHERE title IS NOT NULL
        ORDER BY s.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to get sessions: %w", err)
	}
	defer rows.Close()

	sessions := make([]models.SessionSummary, 0)
	for rows.Next() {
		var sum models.SessionSummary
		if err := rows.Scan(&sum.ID, &sum.Model, &sum.Date, &sum.Title); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, sum)
	}
	return sessions, rows.Err()
}

// DeleteSession removes the session and all its messages. Deleting an
// unknown id is a no-op.
func (s *Store) DeleteSession(sessionID string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin delete: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM messages WHERE session_id = ?", sessionID); err != nil {
		return fmt.Errorf("failed to delete messages: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM sessions WHERE id = ?", sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return tx.Commit()
}

// UpdateSessionTitle sets the custom title. Updating an unknown id silently
// affects zero rows.
func (s *Store) UpdateSessionTitle(sessionID, title string) error {
	_, err := s.db.Exec("UPDATE sessions SET custom_title = ? WHERE id = ?", title, sessionID)
	if err != nil {
		return fmt.Errorf("failed to update session title: %w", err)
	}
	return nil
}
