package store

import (
	"database/sql"
	"fmt"
	"strings"
)

// Tokens persists the single session token. It satisfies api.TokenStore.
type Tokens struct {
	db *sql.DB
}

func NewTokens(db *sql.DB) *Tokens {
	return &Tokens{db: db}
}

func (t *Tokens) Token() (string, error) {
	var token string
	err := t.db.QueryRow(`SELECT access_token FROM session_tokens WHERE id = 1`).Scan(&token)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read session token: %w", err)
	}
	return token, nil
}

func (t *Tokens) SetToken(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return t.ClearToken()
	}
	_, err := t.db.Exec(`
INSERT INTO session_tokens(id, access_token, stored_at)
VALUES(1, ?, CURRENT_TIMESTAMP)
ON CONFLICT(id) DO UPDATE SET access_token=excluded.access_token, stored_at=excluded.stored_at
`, token)
	if err != nil {
		return fmt.Errorf("store session token: %w", err)
	}
	return nil
}

func (t *Tokens) ClearToken() error {
	if _, err := t.db.Exec(`DELETE FROM session_tokens`); err != nil {
		return fmt.Errorf("clear session token: %w", err)
	}
	return nil
}
