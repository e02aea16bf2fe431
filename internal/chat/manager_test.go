package chat

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wisdomie/foodlens/internal/api"
	"github.com/wisdomie/foodlens/internal/model"
)

type fakeBackend struct {
	mu            sync.Mutex
	conversations []model.ConversationSummary
	details       map[int64]model.Conversation
	nextID        int64
	sendErr       error
	listErr       error
	getErr        error
	deleteErr     error
	sendCalls     int
	listCalls     int
	deleted       []int64
	lastSendID    *int64
	// gate, when set, blocks SendChat until it is closed or ctx ends.
	gate chan struct{}
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{details: map[int64]model.Conversation{}, nextID: 100}
}

func (f *fakeBackend) Conversations(ctx context.Context) ([]model.ConversationSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]model.ConversationSummary(nil), f.conversations...), nil
}

func (f *fakeBackend) Conversation(ctx context.Context, id int64) (model.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return model.Conversation{}, f.getErr
	}
	c, ok := f.details[id]
	if !ok {
		return model.Conversation{}, &api.Error{Status: 404, Message: "Conversation not found"}
	}
	return c, nil
}

func (f *fakeBackend) CreateConversation(ctx context.Context, title string) (model.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	c := model.Conversation{ID: f.nextID}
	if title != "" {
		c.Title = &title
	}
	f.details[c.ID] = c
	f.conversations = append(f.conversations, model.ConversationSummary{ID: c.ID, Title: c.Title})
	return c, nil
}

func (f *fakeBackend) DeleteConversation(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return f.deleteErr
}

func (f *fakeBackend) SendChat(ctx context.Context, message string, conversationID *int64) (model.ChatReply, error) {
	f.mu.Lock()
	f.sendCalls++
	f.lastSendID = conversationID
	gate, sendErr := f.gate, f.sendErr
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return model.ChatReply{}, &api.TransportError{Op: "send chat message", Err: ctx.Err()}
		}
	}
	if sendErr != nil {
		return model.ChatReply{}, sendErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	id := int64(0)
	if conversationID != nil {
		id = *conversationID
	} else {
		f.nextID++
		id = f.nextID
		f.conversations = append(f.conversations, model.ConversationSummary{ID: id, MessageCount: 2})
	}
	return model.ChatReply{Response: "reply to " + message, ConversationID: id}, nil
}

func (f *fakeBackend) sends() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sendCalls
}

type memoryActive struct {
	id *int64
}

func (s *memoryActive) ActiveConversation() (*int64, error) { return s.id, nil }

func (s *memoryActive) SetActiveConversation(id *int64) error {
	s.id = id
	return nil
}

func ptr(v int64) *int64 { return &v }

func TestSendMessageIgnoresBlankText(t *testing.T) {
	t.Parallel()
	backend := newFakeBackend()
	m := NewManager(backend)

	var notified int
	m.Subscribe(func(State) { notified++ })

	for _, text := range []string{"", "   ", "\n\t"} {
		require.NoError(t, m.SendMessage(context.Background(), text))
	}
	assert.Equal(t, 0, backend.sends())
	assert.Equal(t, 0, notified)
	assert.Empty(t, m.Snapshot().Messages)
}

func TestSendMessageStartsConversation(t *testing.T) {
	t.Parallel()
	backend := newFakeBackend()
	store := &memoryActive{}
	m := NewManager(backend, WithActiveStore(store))

	require.NoError(t, m.SendMessage(context.Background(), "X"))

	s := m.Snapshot()
	require.Len(t, s.Messages, 2)
	assert.Equal(t, model.RoleUser, s.Messages[0].Role)
	assert.Equal(t, "X", s.Messages[0].Content)
	assert.Equal(t, model.StatusSent, s.Messages[0].Status)
	assert.Equal(t, model.RoleAssistant, s.Messages[1].Role)
	assert.Equal(t, "reply to X", s.Messages[1].Content)
	require.NotNil(t, s.ActiveID)
	assert.Equal(t, int64(101), *s.ActiveID)
	assert.False(t, s.IsTyping)
	assert.Empty(t, s.Error)

	// The list is refreshed after adopting the new id.
	require.Len(t, s.Conversations, 1)
	assert.Equal(t, int64(101), s.Conversations[0].ID)
	require.NotNil(t, store.id)
	assert.Equal(t, int64(101), *store.id)
	assert.Nil(t, backend.lastSendID)

	require.NoError(t, m.SendMessage(context.Background(), "again"))
	require.NotNil(t, backend.lastSendID)
	assert.Equal(t, int64(101), *backend.lastSendID)
	assert.Len(t, m.Snapshot().Messages, 4)
}

func TestSendMessageFailureKeepsUserMessage(t *testing.T) {
	t.Parallel()
	backend := newFakeBackend()
	backend.sendErr = &api.TransportError{Op: "send chat message", Err: errors.New("connection refused")}
	m := NewManager(backend)

	err := m.SendMessage(context.Background(), "X")
	require.Error(t, err)

	s := m.Snapshot()
	require.Len(t, s.Messages, 1)
	assert.Equal(t, "X", s.Messages[0].Content)
	assert.Equal(t, model.StatusFailed, s.Messages[0].Status)
	assert.False(t, s.IsTyping)
	assert.Equal(t, api.ConnectMessage, s.Error)
	assert.Nil(t, s.ActiveID)
}

func TestSendMessageErrorWithoutTextUsesFallback(t *testing.T) {
	t.Parallel()
	backend := newFakeBackend()
	backend.sendErr = &api.Error{Op: "send chat message", Status: 500}
	m := NewManager(backend)

	require.Error(t, m.SendMessage(context.Background(), "X"))
	s := m.Snapshot()
	assert.Equal(t, "Failed to send message. Please try again.", s.Error)
	require.Len(t, s.Messages, 1)
	assert.Equal(t, model.StatusFailed, s.Messages[0].Status)
}

func TestSendMessageApplicationErrorShowsServerText(t *testing.T) {
	t.Parallel()
	backend := newFakeBackend()
	backend.sendErr = &api.Error{Status: 400, Message: "Message too long"}
	m := NewManager(backend)

	require.Error(t, m.SendMessage(context.Background(), "X"))
	assert.Equal(t, "Message too long", m.Snapshot().Error)
}

func TestSendMessageTransitions(t *testing.T) {
	t.Parallel()
	m := NewManager(newFakeBackend())

	var mu sync.Mutex
	var states []State
	m.Subscribe(func(s State) {
		mu.Lock()
		defer mu.Unlock()
		states = append(states, s)
	})
	require.NoError(t, m.SendMessage(context.Background(), "hi"))

	mu.Lock()
	defer mu.Unlock()
	require.GreaterOrEqual(t, len(states), 4)
	// Optimistic insert precedes the typing indicator.
	require.Len(t, states[0].Messages, 1)
	assert.Equal(t, model.StatusPending, states[0].Messages[0].Status)
	assert.False(t, states[0].IsTyping)
	assert.True(t, states[1].IsTyping)
	assert.Len(t, states[2].Messages, 2)
	assert.False(t, states[3].IsTyping)
}

func TestSendMessageRejectsConcurrentSend(t *testing.T) {
	t.Parallel()
	backend := newFakeBackend()
	backend.gate = make(chan struct{})
	m := NewManager(backend)

	errc := make(chan error, 1)
	go func() { errc <- m.SendMessage(context.Background(), "first") }()

	require.Eventually(t, func() bool { return m.Snapshot().IsTyping }, time.Second, 5*time.Millisecond)
	assert.ErrorIs(t, m.SendMessage(context.Background(), "second"), ErrSendInFlight)
	assert.Len(t, m.Snapshot().Messages, 1)

	close(backend.gate)
	require.NoError(t, <-errc)
	assert.Equal(t, 1, backend.sends())
	assert.Len(t, m.Snapshot().Messages, 2)
}

func TestStaleSendIsDiscarded(t *testing.T) {
	t.Parallel()
	backend := newFakeBackend()
	backend.gate = make(chan struct{})
	m := NewManager(backend)

	errc := make(chan error, 1)
	go func() { errc <- m.SendMessage(context.Background(), "first") }()
	require.Eventually(t, func() bool { return m.Snapshot().IsTyping }, time.Second, 5*time.Millisecond)

	m.StartNewConversation()
	s := m.Snapshot()
	assert.Empty(t, s.Messages)
	assert.False(t, s.IsTyping)

	close(backend.gate)
	assert.ErrorIs(t, <-errc, ErrDiscarded)
	s = m.Snapshot()
	assert.Empty(t, s.Messages)
	assert.Nil(t, s.ActiveID)
}

func TestCloseCancelsInFlightSend(t *testing.T) {
	t.Parallel()
	backend := newFakeBackend()
	backend.gate = make(chan struct{})
	m := NewManager(backend)

	errc := make(chan error, 1)
	go func() { errc <- m.SendMessage(context.Background(), "first") }()
	require.Eventually(t, func() bool { return m.Snapshot().IsTyping }, time.Second, 5*time.Millisecond)

	m.Close()
	select {
	case err := <-errc:
		assert.ErrorIs(t, err, ErrDiscarded)
	case <-time.After(time.Second):
		t.Fatal("send was not cancelled")
	}
	assert.ErrorIs(t, m.SendMessage(context.Background(), "later"), ErrClosed)
}

func TestLoadConversationReplacesLog(t *testing.T) {
	t.Parallel()
	backend := newFakeBackend()
	backend.details[7] = model.Conversation{ID: 7, Messages: []model.Message{
		{ID: "1", Role: model.RoleUser, Content: "old question"},
		{ID: "2", Role: model.RoleAssistant, Content: "old answer"},
	}}
	m := NewManager(backend)

	require.NoError(t, m.SendMessage(context.Background(), "X"))
	require.Len(t, m.Snapshot().Messages, 2)

	require.NoError(t, m.LoadConversation(context.Background(), 7))
	s := m.Snapshot()
	require.Len(t, s.Messages, 2)
	assert.Equal(t, "old question", s.Messages[0].Content)
	assert.Equal(t, "old answer", s.Messages[1].Content)
	assert.Equal(t, model.StatusSent, s.Messages[0].Status)
	require.NotNil(t, s.ActiveID)
	assert.Equal(t, int64(7), *s.ActiveID)
}

func TestLoadConversationFailureKeepsState(t *testing.T) {
	t.Parallel()
	backend := newFakeBackend()
	m := NewManager(backend)
	require.NoError(t, m.SendMessage(context.Background(), "X"))
	before := m.Snapshot()

	require.Error(t, m.LoadConversation(context.Background(), 999))
	s := m.Snapshot()
	assert.Equal(t, "Failed to load conversation", s.Error)
	assert.Equal(t, before.Messages, s.Messages)
	assert.Equal(t, *before.ActiveID, *s.ActiveID)
}

func TestLoadConversationsSwallowsFailure(t *testing.T) {
	t.Parallel()
	backend := newFakeBackend()
	backend.conversations = []model.ConversationSummary{{ID: 1}, {ID: 2}}
	m := NewManager(backend)

	m.LoadConversations(context.Background())
	require.Len(t, m.Snapshot().Conversations, 2)

	backend.mu.Lock()
	backend.listErr = errors.New("boom")
	backend.mu.Unlock()
	m.LoadConversations(context.Background())

	s := m.Snapshot()
	assert.Len(t, s.Conversations, 2)
	assert.Empty(t, s.Error)
}

func TestDeleteActiveConversationResets(t *testing.T) {
	t.Parallel()
	backend := newFakeBackend()
	backend.conversations = []model.ConversationSummary{{ID: 5}, {ID: 6}}
	backend.details[5] = model.Conversation{ID: 5, Messages: []model.Message{{ID: "1", Role: model.RoleUser, Content: "hi"}}}
	store := &memoryActive{}
	m := NewManager(backend, WithActiveStore(store))
	m.LoadConversations(context.Background())
	require.NoError(t, m.LoadConversation(context.Background(), 5))

	require.NoError(t, m.DeleteConversation(context.Background(), 5))
	s := m.Snapshot()
	assert.Nil(t, s.ActiveID)
	assert.Empty(t, s.Messages)
	require.Len(t, s.Conversations, 1)
	assert.Equal(t, int64(6), s.Conversations[0].ID)
	assert.Nil(t, store.id)
}

func TestDeleteRemovesLocallyOnFailure(t *testing.T) {
	t.Parallel()
	backend := newFakeBackend()
	backend.conversations = []model.ConversationSummary{{ID: 5}, {ID: 6}}
	backend.details[6] = model.Conversation{ID: 6}
	backend.deleteErr = &api.Error{Status: 500, Message: "Internal error"}
	m := NewManager(backend)
	m.LoadConversations(context.Background())
	require.NoError(t, m.LoadConversation(context.Background(), 6))

	assert.Error(t, m.DeleteConversation(context.Background(), 5))
	s := m.Snapshot()
	require.Len(t, s.Conversations, 1)
	require.NotNil(t, s.ActiveID)
	assert.Equal(t, int64(6), *s.ActiveID)
	assert.Equal(t, []int64{5}, backend.deleted)
}

func TestCreateConversationActivates(t *testing.T) {
	t.Parallel()
	backend := newFakeBackend()
	m := NewManager(backend)
	require.NoError(t, m.SendMessage(context.Background(), "X"))

	conv, err := m.CreateConversation(context.Background(), "Lunch ideas")
	require.NoError(t, err)
	s := m.Snapshot()
	require.NotNil(t, s.ActiveID)
	assert.Equal(t, conv.ID, *s.ActiveID)
	assert.Empty(t, s.Messages)
	assert.Len(t, s.Conversations, 2)
}

func TestRestoreReopensStoredConversation(t *testing.T) {
	t.Parallel()
	backend := newFakeBackend()
	backend.details[9] = model.Conversation{ID: 9, Messages: []model.Message{{ID: "1", Role: model.RoleAssistant, Content: "welcome back"}}}
	m := NewManager(backend, WithActiveStore(&memoryActive{id: ptr(9)}))

	require.NoError(t, m.Restore(context.Background()))
	s := m.Snapshot()
	require.NotNil(t, s.ActiveID)
	assert.Equal(t, int64(9), *s.ActiveID)
	assert.Len(t, s.Messages, 1)
}
