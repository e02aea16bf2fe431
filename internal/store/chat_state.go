package store

import (
	"database/sql"
	"fmt"
)

// ChatState remembers the active conversation between invocations.
type ChatState struct {
	db *sql.DB
}

func NewChatState(db *sql.DB) *ChatState {
	return &ChatState{db: db}
}

func (s *ChatState) ActiveConversation() (*int64, error) {
	var id sql.NullInt64
	err := s.db.QueryRow(`SELECT conversation_id FROM chat_state WHERE id = 1`).Scan(&id)
	if err == sql.ErrNoRows || (err == nil && !id.Valid) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read active conversation: %w", err)
	}
	v := id.Int64
	return &v, nil
}

func (s *ChatState) SetActiveConversation(id *int64) error {
	var value any
	if id != nil {
		value = *id
	}
	_, err := s.db.Exec(`
INSERT INTO chat_state(id, conversation_id, updated_at)
VALUES(1, ?, CURRENT_TIMESTAMP)
ON CONFLICT(id) DO UPDATE SET conversation_id=excluded.conversation_id, updated_at=excluded.updated_at
`, value)
	if err != nil {
		return fmt.Errorf("store active conversation: %w", err)
	}
	return nil
}
