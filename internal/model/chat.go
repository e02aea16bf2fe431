package model

import (
	"bytes"
	"encoding/json"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type MessageStatus string

const (
	StatusSent    MessageStatus = "sent"
	StatusPending MessageStatus = "pending"
	StatusFailed  MessageStatus = "failed"
)

// Message is immutable once appended to a log; status changes produce a copy.
// ID is the server id for loaded messages and a client-generated uuid for
// optimistic ones.
type Message struct {
	ID        MessageID     `json:"id"`
	Role      Role          `json:"role"`
	Content   string        `json:"content"`
	CreatedAt *Timestamp    `json:"created_at,omitempty"`
	Status    MessageStatus `json:"status,omitempty"`
}

// MessageID accepts the server's numeric ids as well as string ids.
type MessageID string

func (id *MessageID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = MessageID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = MessageID(n.String())
	return nil
}

type ConversationSummary struct {
	ID           int64   `json:"id"`
	Title        *string `json:"title,omitempty"`
	MessageCount int     `json:"message_count"`
}

type Conversation struct {
	ID       int64     `json:"id"`
	Title    *string   `json:"title,omitempty"`
	Messages []Message `json:"messages"`
}

type ChatReply struct {
	Response       string `json:"response"`
	ConversationID int64  `json:"conversation_id"`
}
