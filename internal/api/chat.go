package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/wisdomie/foodlens/internal/model"
)

func (c *Client) Conversations(ctx context.Context) ([]model.ConversationSummary, error) {
	var out struct {
		Conversations []model.ConversationSummary `json:"conversations"`
	}
	if err := c.get(ctx, "list conversations", "/conversations", &out); err != nil {
		return nil, err
	}
	return out.Conversations, nil
}

func (c *Client) Conversation(ctx context.Context, id int64) (model.Conversation, error) {
	var out struct {
		Conversation *model.Conversation `json:"conversation"`
	}
	if err := c.get(ctx, "get conversation", "/conversations/"+strconv.FormatInt(id, 10), &out); err != nil {
		return model.Conversation{}, err
	}
	if err := requireField("get conversation", "conversation", out.Conversation != nil); err != nil {
		return model.Conversation{}, err
	}
	return *out.Conversation, nil
}

func (c *Client) CreateConversation(ctx context.Context, title string) (model.Conversation, error) {
	payload := map[string]string{}
	if title != "" {
		payload["title"] = title
	}
	var out struct {
		Conversation *model.Conversation `json:"conversation"`
	}
	if err := c.send(ctx, "create conversation", http.MethodPost, "/conversations", payload, &out); err != nil {
		return model.Conversation{}, err
	}
	if err := requireField("create conversation", "conversation", out.Conversation != nil); err != nil {
		return model.Conversation{}, err
	}
	return *out.Conversation, nil
}

func (c *Client) DeleteConversation(ctx context.Context, id int64) error {
	return c.send(ctx, "delete conversation", http.MethodDelete, "/conversations/"+strconv.FormatInt(id, 10), nil, nil)
}

type chatRequest struct {
	Message        string `json:"message"`
	ConversationID *int64 `json:"conversation_id,omitempty"`
}

// SendChat posts message to the advisor. A nil conversationID asks the server
// to start a new conversation; its id comes back in the reply.
func (c *Client) SendChat(ctx context.Context, message string, conversationID *int64) (model.ChatReply, error) {
	var out model.ChatReply
	if err := c.send(ctx, "send chat message", http.MethodPost, "/chat", chatRequest{Message: message, ConversationID: conversationID}, &out); err != nil {
		return model.ChatReply{}, err
	}
	return out, nil
}
