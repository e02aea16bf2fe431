package chat

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wisdomie/foodlens/internal/api"
	"github.com/wisdomie/foodlens/internal/model"
)

const (
	loadFailedMessage = "Failed to load conversation"
	sendFailedMessage = "Failed to send message. Please try again."
)

var (
	ErrSendInFlight = errors.New("a message is already being sent")
	ErrClosed       = errors.New("chat manager closed")
	// ErrDiscarded reports a result that arrived after the active
	// conversation changed. State was left untouched.
	ErrDiscarded = errors.New("result discarded: conversation changed")
)

// Backend is the subset of the API client the manager needs.
type Backend interface {
	Conversations(ctx context.Context) ([]model.ConversationSummary, error)
	Conversation(ctx context.Context, id int64) (model.Conversation, error)
	CreateConversation(ctx context.Context, title string) (model.Conversation, error)
	DeleteConversation(ctx context.Context, id int64) error
	SendChat(ctx context.Context, message string, conversationID *int64) (model.ChatReply, error)
}

// ActiveStore persists the active conversation id between runs.
type ActiveStore interface {
	ActiveConversation() (*int64, error)
	SetActiveConversation(id *int64) error
}

type State struct {
	Conversations []model.ConversationSummary
	ActiveID      *int64
	Messages      []model.Message
	IsTyping      bool
	Error         string
}

func (s State) clone() State {
	out := s
	out.Conversations = append([]model.ConversationSummary(nil), s.Conversations...)
	out.Messages = append([]model.Message(nil), s.Messages...)
	if s.ActiveID != nil {
		id := *s.ActiveID
		out.ActiveID = &id
	}
	return out
}

type Option func(*Manager)

func WithActiveStore(store ActiveStore) Option {
	return func(m *Manager) { m.store = store }
}

func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// Manager owns the conversation list and the single materialized
// conversation log.
//
// The epoch advances whenever the log is replaced or reset. Requests record
// the epoch they started in and only apply their result if it is unchanged.
type Manager struct {
	backend Backend
	store   ActiveStore
	logger  *slog.Logger
	now     func() time.Time

	life   context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	state   State
	epoch   uint64
	loadSeq uint64
	sending bool
	closed  bool
	subs    map[int]func(State)
	nextSub int
}

func NewManager(backend Backend, opts ...Option) *Manager {
	life, cancel := context.WithCancel(context.Background())
	m := &Manager{
		backend: backend,
		logger:  slog.Default(),
		now:     time.Now,
		life:    life,
		cancel:  cancel,
		subs:    map[int]func(State){},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.clone()
}

func (m *Manager) Subscribe(fn func(State)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subs, id)
	}
}

// mutate applies fn under the lock and notifies subscribers. When epoch is
// non-nil, fn only runs if the manager is still in that epoch.
func (m *Manager) mutate(epoch *uint64, fn func(s *State)) bool {
	m.mu.Lock()
	if m.closed || (epoch != nil && *epoch != m.epoch) {
		m.mu.Unlock()
		return false
	}
	fn(&m.state)
	snapshot := m.state.clone()
	subs := make([]func(State), 0, len(m.subs))
	for _, sub := range m.subs {
		subs = append(subs, sub)
	}
	m.mu.Unlock()

	for _, sub := range subs {
		sub(snapshot)
	}
	return true
}

// advance moves to a new epoch. Must be called with mu held.
func (m *Manager) advance() {
	m.epoch++
	m.sending = false
	m.state.IsTyping = false
}

func (m *Manager) currentEpoch() (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, ErrClosed
	}
	return m.epoch, nil
}

// requestContext derives a context that is also cancelled by Close.
func (m *Manager) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	rctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(m.life, cancel)
	return rctx, func() {
		stop()
		cancel()
	}
}

func (m *Manager) persistActive(id *int64) {
	if m.store == nil {
		return
	}
	if err := m.store.SetActiveConversation(id); err != nil {
		m.logger.Warn("persist active conversation", "err", err)
	}
}

// Restore reopens the conversation recorded in the active store, if any.
func (m *Manager) Restore(ctx context.Context) error {
	if m.store == nil {
		return nil
	}
	id, err := m.store.ActiveConversation()
	if err != nil {
		return err
	}
	if id == nil {
		return nil
	}
	return m.LoadConversation(ctx, *id)
}

// LoadConversations replaces the list wholesale. Failures are logged and
// the previous list is kept.
func (m *Manager) LoadConversations(ctx context.Context) {
	if _, err := m.currentEpoch(); err != nil {
		return
	}
	rctx, done := m.requestContext(ctx)
	defer done()

	list, err := m.backend.Conversations(rctx)
	if err != nil {
		m.logger.Warn("load conversations", "err", err)
		return
	}
	m.mutate(nil, func(s *State) {
		s.Conversations = list
	})
}

// LoadConversation makes id active and replaces the log with the server's
// messages. Only the most recent load may apply.
func (m *Manager) LoadConversation(ctx context.Context, id int64) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	m.loadSeq++
	seq, epoch := m.loadSeq, m.epoch
	m.mu.Unlock()

	rctx, done := m.requestContext(ctx)
	defer done()

	conv, err := m.backend.Conversation(rctx, id)

	m.mu.Lock()
	stale := m.closed || seq != m.loadSeq || epoch != m.epoch
	if !stale && err == nil {
		m.advance()
		epoch = m.epoch
	}
	m.mu.Unlock()
	if stale {
		return ErrDiscarded
	}

	if err != nil {
		m.logger.Warn("load conversation", "id", id, "err", err)
		m.mutate(&epoch, func(s *State) { s.Error = loadFailedMessage })
		return err
	}

	messages := make([]model.Message, 0, len(conv.Messages))
	for _, msg := range conv.Messages {
		msg.Status = model.StatusSent
		messages = append(messages, msg)
	}
	m.mutate(&epoch, func(s *State) {
		active := id
		s.ActiveID = &active
		s.Messages = messages
		s.Error = ""
	})
	m.persistActive(&id)
	return nil
}

// StartNewConversation clears the active id and the log without a request.
// The server creates the conversation on the next send.
func (m *Manager) StartNewConversation() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.advance()
	epoch := m.epoch
	m.mu.Unlock()

	m.mutate(&epoch, func(s *State) {
		s.ActiveID = nil
		s.Messages = nil
		s.Error = ""
	})
	m.persistActive(nil)
}

// CreateConversation creates a conversation on the server and switches to
// it with an empty log.
func (m *Manager) CreateConversation(ctx context.Context, title string) (model.Conversation, error) {
	epoch, err := m.currentEpoch()
	if err != nil {
		return model.Conversation{}, err
	}
	rctx, done := m.requestContext(ctx)
	defer done()

	conv, err := m.backend.CreateConversation(rctx, title)
	if err != nil {
		return model.Conversation{}, err
	}

	m.mu.Lock()
	stale := m.closed || epoch != m.epoch
	if !stale {
		m.advance()
		epoch = m.epoch
	}
	m.mu.Unlock()
	if stale {
		return conv, ErrDiscarded
	}

	m.mutate(&epoch, func(s *State) {
		id := conv.ID
		s.ActiveID = &id
		s.Messages = nil
		s.Error = ""
	})
	m.persistActive(&conv.ID)
	m.LoadConversations(ctx)
	return conv, nil
}

// SendMessage appends text optimistically, sends it, then appends the
// assistant reply. Whitespace-only text is ignored. A send while another is
// in flight is rejected with ErrSendInFlight.
func (m *Manager) SendMessage(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	if m.sending {
		m.mu.Unlock()
		return ErrSendInFlight
	}
	m.sending = true
	epoch := m.epoch
	var conversationID *int64
	if m.state.ActiveID != nil {
		id := *m.state.ActiveID
		conversationID = &id
	}
	m.mu.Unlock()

	userMsg := model.Message{
		ID:        model.MessageID(uuid.NewString()),
		Role:      model.RoleUser,
		Content:   text,
		CreatedAt: model.NewTimestamp(m.now()),
		Status:    model.StatusPending,
	}
	m.mutate(&epoch, func(s *State) {
		s.Error = ""
		s.Messages = append(s.Messages, userMsg)
	})
	m.mutate(&epoch, func(s *State) { s.IsTyping = true })

	rctx, done := m.requestContext(ctx)
	reply, err := m.backend.SendChat(rctx, text, conversationID)
	done()

	adopted := false
	applied := m.mutate(&epoch, func(s *State) {
		if err != nil {
			setStatus(s.Messages, userMsg.ID, model.StatusFailed)
			s.Error = api.UserMessage(err, sendFailedMessage)
			return
		}
		setStatus(s.Messages, userMsg.ID, model.StatusSent)
		s.Messages = append(s.Messages, model.Message{
			ID:        model.MessageID(uuid.NewString()),
			Role:      model.RoleAssistant,
			Content:   reply.Response,
			CreatedAt: model.NewTimestamp(m.now()),
			Status:    model.StatusSent,
		})
		if s.ActiveID == nil && reply.ConversationID != 0 {
			id := reply.ConversationID
			s.ActiveID = &id
			adopted = true
		}
	})
	m.mutate(&epoch, func(s *State) { s.IsTyping = false })

	m.mu.Lock()
	if epoch == m.epoch {
		m.sending = false
	}
	m.mu.Unlock()

	if !applied {
		return ErrDiscarded
	}
	if err != nil {
		m.logger.Warn("send chat message", "err", err)
		return err
	}
	if adopted {
		m.persistActive(&reply.ConversationID)
		m.LoadConversations(ctx)
	}
	return nil
}

// DeleteConversation asks the server to delete id and removes it locally
// whatever the outcome. Deleting the active conversation starts a new one.
func (m *Manager) DeleteConversation(ctx context.Context, id int64) error {
	if _, err := m.currentEpoch(); err != nil {
		return err
	}
	rctx, done := m.requestContext(ctx)
	err := m.backend.DeleteConversation(rctx, id)
	done()
	if err != nil {
		m.logger.Warn("delete conversation", "id", id, "err", err)
	}

	wasActive := false
	m.mutate(nil, func(s *State) {
		kept := s.Conversations[:0:0]
		for _, c := range s.Conversations {
			if c.ID != id {
				kept = append(kept, c)
			}
		}
		s.Conversations = kept
		wasActive = s.ActiveID != nil && *s.ActiveID == id
	})
	if wasActive {
		m.StartNewConversation()
	}
	return err
}

// Close cancels in-flight requests. Results that arrive afterwards are
// dropped.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.advance()
	m.closed = true
	m.mu.Unlock()
	m.cancel()
}

func setStatus(messages []model.Message, id model.MessageID, status model.MessageStatus) {
	for i := range messages {
		if messages[i].ID == id {
			messages[i].Status = status
			return
		}
	}
}
