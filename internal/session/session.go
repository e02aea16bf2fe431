// Package session owns the signed-in user. It is the single source of truth
// for authentication state: views read Snapshot and call the operations
// below, never the fields.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/wisdomie/foodlens/internal/api"
	"github.com/wisdomie/foodlens/internal/model"
)

type GuardState int

const (
	Resolving GuardState = iota
	Authenticated
	Unauthenticated
)

func (g GuardState) String() string {
	switch g {
	case Resolving:
		return "resolving"
	case Authenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

type State struct {
	User    *model.User
	Loading bool
	Error   string
}

func (s State) IsAuthenticated() bool { return s.User != nil }

func (s State) Guard() GuardState {
	switch {
	case s.User != nil:
		return Authenticated
	case s.Loading:
		return Resolving
	default:
		return Unauthenticated
	}
}

type Backend interface {
	Me(ctx context.Context) (model.User, error)
	Login(ctx context.Context, username, password string) (api.AuthResult, error)
	Register(ctx context.Context, username, password string) (api.AuthResult, error)
	Logout(ctx context.Context) error
	UpdateProfile(ctx context.Context, p model.Profile) (model.Profile, error)
}

type Manager struct {
	backend Backend
	tokens  api.TokenStore
	logger  *slog.Logger
	now     func() time.Time

	mu        sync.Mutex
	state     State
	observers map[int]func(State)
	nextObs   int
}

func NewManager(backend Backend, tokens api.TokenStore, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		backend:   backend,
		tokens:    tokens,
		logger:    logger.With(slog.String("component", "session")),
		now:       time.Now,
		state:     State{Loading: true},
		observers: map[int]func(State){},
	}
}

// Attach registers the manager with the client's 401 policy so a rejected
// token from any request signs the user out.
func (m *Manager) Attach(c *api.Client) {
	c.OnUnauthorized(m.HandleUnauthorized)
}

func (m *Manager) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Manager) IsAuthenticated() bool { return m.Snapshot().IsAuthenticated() }

func (m *Manager) Guard() GuardState { return m.Snapshot().Guard() }

// Subscribe calls fn after every state change. The returned func removes it.
func (m *Manager) Subscribe(fn func(State)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextObs
	m.nextObs++
	m.observers[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.observers, id)
	}
}

func (m *Manager) update(fn func(*State)) {
	m.mu.Lock()
	fn(&m.state)
	snapshot := m.state
	observers := make([]func(State), 0, len(m.observers))
	for _, o := range m.observers {
		observers = append(observers, o)
	}
	m.mu.Unlock()
	for _, o := range observers {
		o(snapshot)
	}
}

// Resume restores the session from a stored token. Any failure clears the
// token; Loading is false when it returns. The returned error is only for
// reporting, the session is already settled.
func (m *Manager) Resume(ctx context.Context) error {
	defer m.update(func(s *State) { s.Loading = false })

	token, err := m.tokens.Token()
	if err != nil {
		m.logger.Warn("read stored token", slog.String("error", err.Error()))
		return err
	}
	if token == "" {
		return nil
	}
	if tokenExpired(token, m.now()) {
		m.logger.Debug("stored token expired")
		m.dropToken(token)
		return nil
	}

	user, err := m.backend.Me(ctx)
	if err != nil {
		m.logger.Debug("not authenticated", slog.String("error", err.Error()))
		m.dropToken(token)
		return err
	}
	m.update(func(s *State) { s.User = &user })
	return nil
}

// dropToken clears the stored token unless a concurrent login replaced it.
func (m *Manager) dropToken(stale string) {
	current, err := m.tokens.Token()
	if err == nil && current != stale {
		return
	}
	if err := m.tokens.ClearToken(); err != nil {
		m.logger.Warn("clear stored token", slog.String("error", err.Error()))
	}
}

func (m *Manager) Login(ctx context.Context, username, password string) error {
	return m.authenticate(ctx, m.backend.Login, username, password, "Login failed")
}

// Register creates the account and signs in with it.
func (m *Manager) Register(ctx context.Context, username, password string) error {
	return m.authenticate(ctx, m.backend.Register, username, password, "Registration failed")
}

type authFunc func(ctx context.Context, username, password string) (api.AuthResult, error)

func (m *Manager) authenticate(ctx context.Context, fn authFunc, username, password, fallback string) error {
	m.update(func(s *State) { s.Error = "" })

	res, err := fn(ctx, username, password)
	if err != nil {
		msg := api.UserMessage(err, fallback)
		m.update(func(s *State) { s.Error = msg })
		return err
	}
	if res.User == nil || res.AccessToken == "" {
		m.update(func(s *State) { s.Error = fallback })
		return &api.DecodeError{Op: "authenticate", Err: errors.New("response carried no session")}
	}
	if err := m.tokens.SetToken(res.AccessToken); err != nil {
		m.update(func(s *State) { s.Error = fallback })
		return err
	}
	user := *res.User
	m.update(func(s *State) {
		s.User = &user
		s.Error = ""
	})
	return nil
}

// Logout never fails from the caller's point of view: the server is told on
// a best-effort basis and local state is cleared regardless.
func (m *Manager) Logout(ctx context.Context) {
	token, err := m.tokens.Token()
	if err != nil {
		m.logger.Warn("read stored token", slog.String("error", err.Error()))
	}
	if token != "" {
		if err := m.backend.Logout(ctx); err != nil {
			m.logger.Warn("logout request failed", slog.String("error", err.Error()))
		}
	}
	if err := m.tokens.ClearToken(); err != nil {
		m.logger.Warn("clear stored token", slog.String("error", err.Error()))
	}
	m.update(func(s *State) {
		s.User = nil
		s.Error = ""
	})
}

// UpdateProfile sends the whole profile and stores the server's copy, which
// may differ from what was submitted.
func (m *Manager) UpdateProfile(ctx context.Context, p model.Profile) (model.Profile, error) {
	confirmed, err := m.backend.UpdateProfile(ctx, p)
	if err != nil {
		return model.Profile{}, err
	}
	m.update(func(s *State) {
		if s.User == nil {
			return
		}
		u := *s.User
		u.Profile = &confirmed
		s.User = &u
	})
	return confirmed, nil
}

// HandleUnauthorized resets the user after the client dropped a rejected
// token. It may run while another operation is in flight.
func (m *Manager) HandleUnauthorized() {
	m.update(func(s *State) { s.User = nil })
}
