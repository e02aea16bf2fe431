// Package tui is the interactive chat screen.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wisdomie/foodlens/internal/chat"
	"github.com/wisdomie/foodlens/internal/view"
)

const helpText = "Enter to send. /new, /list, /open <id>, /delete <id>, /quit."

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#4a90a4"))
	faintStyle  = lipgloss.NewStyle().Faint(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280"))
)

type stateMsg chat.State

type opDoneMsg struct {
	state  chat.State
	err    error
	status string
}

// Model drives a chat.Manager from a bubbletea program.
type Model struct {
	ctx      context.Context
	mgr      *chat.Manager
	username string
	updates  chan chat.State

	input    textinput.Model
	spin     spinner.Model
	viewport viewport.Model
	state    chat.State
	status   string
}

func New(ctx context.Context, mgr *chat.Manager, username string) *Model {
	in := textinput.New()
	in.Placeholder = "Ask me about your diet..."
	in.Prompt = "You> "
	in.Focus()
	in.Width = 60

	s := spinner.New()
	s.Spinner = spinner.Dot

	m := &Model{
		ctx:      ctx,
		mgr:      mgr,
		username: username,
		updates:  make(chan chat.State, 16),
		input:    in,
		spin:     s,
		viewport: viewport.New(80, 20),
		state:    mgr.Snapshot(),
	}
	mgr.Subscribe(func(s chat.State) {
		select {
		case m.updates <- s:
		default:
		}
	})
	return m
}

// Run starts the program on the terminal and blocks until the user quits.
func Run(ctx context.Context, mgr *chat.Manager, username string) error {
	_, err := tea.NewProgram(New(ctx, mgr, username), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.listen(), m.run("", func(ctx context.Context) error {
		m.mgr.LoadConversations(ctx)
		return nil
	}))
}

func (m *Model) listen() tea.Cmd {
	return func() tea.Msg {
		select {
		case s := <-m.updates:
			return stateMsg(s)
		case <-m.ctx.Done():
			return nil
		}
	}
}

// run executes op off the UI goroutine and reports the final state.
func (m *Model) run(status string, op func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		err := op(m.ctx)
		return opDoneMsg{state: m.mgr.Snapshot(), err: err, status: status}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-6, 3)
		m.input.Width = max(msg.Width-8, 10)
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.mgr.Close()
			return m, tea.Quit
		case tea.KeyEnter:
			return m.submit()
		case tea.KeyPgUp, tea.KeyPgDown:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

	case stateMsg:
		m.state = chat.State(msg)
		m.refresh()
		return m, m.listen()

	case opDoneMsg:
		m.state = msg.state
		m.status = msg.status
		if msg.err != nil && !errors.Is(msg.err, chat.ErrDiscarded) && m.state.Error == "" {
			m.status = msg.err.Error()
		}
		m.refresh()
		return m, nil
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	if !m.state.IsTyping {
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.spin, cmd = m.spin.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m *Model) submit() (tea.Model, tea.Cmd) {
	text := m.input.Value()
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || m.state.IsTyping {
		return m, nil
	}
	m.input.SetValue("")
	m.status = ""

	if !strings.HasPrefix(trimmed, "/") {
		return m, m.run("", func(ctx context.Context) error {
			return m.mgr.SendMessage(ctx, text)
		})
	}

	fields := strings.Fields(trimmed)
	switch fields[0] {
	case "/quit", "/exit":
		m.mgr.Close()
		return m, tea.Quit
	case "/new":
		m.mgr.StartNewConversation()
		m.state = m.mgr.Snapshot()
		m.refresh()
		return m, nil
	case "/list":
		return m, m.run("", func(ctx context.Context) error {
			m.mgr.LoadConversations(ctx)
			return nil
		})
	case "/open", "/delete":
		if len(fields) != 2 {
			m.status = fmt.Sprintf("usage: %s <id>", fields[0])
			return m, nil
		}
		id, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil || id <= 0 {
			m.status = fmt.Sprintf("invalid conversation id %q", fields[1])
			return m, nil
		}
		if fields[0] == "/open" {
			return m, m.run("", func(ctx context.Context) error {
				return m.mgr.LoadConversation(ctx, id)
			})
		}
		return m, m.run(fmt.Sprintf("Deleted conversation %d", id), func(ctx context.Context) error {
			return m.mgr.DeleteConversation(ctx, id)
		})
	case "/help":
		m.status = helpText
		return m, nil
	default:
		m.status = fmt.Sprintf("unknown command %s", fields[0])
		return m, nil
	}
}

func (m *Model) refresh() {
	var b strings.Builder
	r := view.NewStyled(&b, lipgloss.DefaultRenderer())
	if len(m.state.Messages) == 0 {
		fmt.Fprintf(&b, "Welcome, %s! I'm your personal Diet Advisor.\n\n", m.username)
		if len(m.state.Conversations) > 0 {
			r.Conversations(m.state.Conversations, m.state.ActiveID)
			b.WriteString("\n")
		}
	}
	r.Transcript(m.state.Messages, false)
	m.viewport.SetContent(b.String())
	m.viewport.GotoBottom()
}

func (m *Model) View() string {
	var b strings.Builder
	title := "Diet Advisor"
	if m.state.ActiveID != nil {
		title = fmt.Sprintf("%s · conversation %d", title, *m.state.ActiveID)
	}
	b.WriteString(titleStyle.Render(title) + "\n")
	b.WriteString(m.viewport.View() + "\n")

	if m.state.IsTyping {
		b.WriteString(m.spin.View() + " AI is typing...\n")
	} else {
		b.WriteString(m.input.View() + "\n")
	}
	if m.state.Error != "" {
		b.WriteString(errorStyle.Render(m.state.Error) + "\n")
	}
	if m.status != "" {
		b.WriteString(statusStyle.Render(m.status) + "\n")
	}
	b.WriteString(faintStyle.Render(helpText))
	return b.String()
}
