package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/powerdrillai/powerdrill-flow-sub000/runtime"
)

// Messages sent into the program by the session relay.
type (
	// TranscriptUpdatedMsg means the transcript changed and the viewport
	// should re-render.
	TranscriptUpdatedMsg struct{}
	// FollowUpsMsg carries fresh follow-up question suggestions.
	FollowUpsMsg struct{ Questions []string }
	// NoticeMsg carries a user-facing error notice.
	NoticeMsg struct{ Notice runtime.Notice }

	// submitDoneMsg means the blocking Submit call returned.
	submitDoneMsg struct{}
	// cancelDoneMsg means a requested cancellation settled.
	cancelDoneMsg struct{}
)

// Relay forwards session callbacks into the running program. Callbacks
// fire from the submit goroutine before the program exists, so the
// pointer is attached late and sends before attachment are dropped.
type Relay struct {
	program atomic.Pointer[tea.Program]
}

// NewRelay creates an unattached relay.
func NewRelay() *Relay { return &Relay{} }

// Bind installs the relay's forwarding callbacks on a session config.
func (r *Relay) Bind(cfg *runtime.Config) {
	cfg.OnUpdate = func() { r.send(TranscriptUpdatedMsg{}) }
	cfg.OnQuestions = func(qs []string) { r.send(FollowUpsMsg{Questions: qs}) }
	cfg.Notifier = runtime.NotifierFunc(func(n runtime.Notice) { r.send(NoticeMsg{Notice: n}) })
}

func (r *Relay) send(msg tea.Msg) {
	if p := r.program.Load(); p != nil {
		p.Send(msg)
	}
}

// keyMap defines the chat key bindings.
type keyMap struct {
	Submit key.Binding
	Cancel key.Binding
	Quit   key.Binding
}

var keys = keyMap{
	Submit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "ask")),
	Cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel stream")),
	Quit:   key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
}

// ChatModel is the Bubble Tea model for the chat view.
type ChatModel struct {
	session *runtime.Session
	ctx     context.Context

	viewport viewport.Model
	input    textarea.Model
	spin     spinner.Model

	width     int
	height    int
	ready     bool
	streaming bool
	followUps []string
	notice    *runtime.Notice
	quitting  bool
}

// NewChat creates the chat model over an existing session. The session's
// transcript may already be populated from history.
func NewChat(ctx context.Context, session *runtime.Session) ChatModel {
	input := textarea.New()
	input.Placeholder = "Ask a question about your data…"
	input.Prompt = "┃ "
	input.SetHeight(3)
	input.CharLimit = 4000
	input.ShowLineNumbers = false
	input.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = lipgloss.NewStyle().Foreground(primaryColor)

	return ChatModel{
		session: session,
		ctx:     ctx,
		input:   input,
		spin:    spin,
	}
}

// Init implements tea.Model.
func (m ChatModel) Init() tea.Cmd {
	return textarea.Blink
}

// Update implements tea.Model.
func (m ChatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.refreshViewport(true)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.quitting = true
			return m, tea.Sequence(m.cancelCmd(), tea.Quit)

		case key.Matches(msg, keys.Cancel):
			if m.streaming {
				return m, m.cancelCmd()
			}
			return m, nil

		case key.Matches(msg, keys.Submit):
			question := strings.TrimSpace(m.input.Value())
			if question == "" || m.streaming {
				return m, nil
			}
			if n, err := strconv.Atoi(question); err == nil && n >= 1 && n <= len(m.followUps) {
				// Bare numbers pick the matching suggestion.
				question = m.followUps[n-1]
			}
			m.input.Reset()
			m.streaming = true
			m.notice = nil
			m.followUps = nil
			return m, tea.Batch(m.submitCmd(question), m.spin.Tick)
		}

	case TranscriptUpdatedMsg:
		m.refreshViewport(true)
		return m, nil

	case FollowUpsMsg:
		m.followUps = msg.Questions
		m.layout()
		return m, nil

	case NoticeMsg:
		notice := msg.Notice
		m.notice = &notice
		m.layout()
		return m, nil

	case submitDoneMsg, cancelDoneMsg:
		m.streaming = false
		m.refreshViewport(true)
		return m, nil

	case spinner.TickMsg:
		if !m.streaming {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submitCmd runs the blocking Submit call off the UI goroutine. Progress
// arrives through the relay; the returned message only flips the
// streaming flag back.
func (m ChatModel) submitCmd(question string) tea.Cmd {
	session, ctx := m.session, m.ctx
	return func() tea.Msg {
		session.Submit(ctx, question)
		return submitDoneMsg{}
	}
}

// cancelCmd aborts the active stream, if any.
func (m ChatModel) cancelCmd() tea.Cmd {
	session := m.session
	return func() tea.Msg {
		session.Cancel()
		return cancelDoneMsg{}
	}
}

// layout resizes the viewport around the prompt and footer.
func (m *ChatModel) layout() {
	if m.width == 0 {
		return
	}
	m.input.SetWidth(m.width - 2)

	footer := 1 // help line
	if m.notice != nil {
		footer++
	}
	if len(m.followUps) > 0 {
		footer += 1 + len(m.followUps)
	}

	vh := m.height - m.input.Height() - footer - 1
	if vh < 3 {
		vh = 3
	}
	if !m.ready {
		m.viewport = viewport.New(m.width, vh)
		m.ready = true
	} else {
		m.viewport.Width = m.width
		m.viewport.Height = vh
	}
}

// refreshViewport re-renders the transcript and keeps the view pinned to
// the newest content.
func (m *ChatModel) refreshViewport(toBottom bool) {
	if !m.ready {
		return
	}
	m.viewport.SetContent(renderTranscript(m.session.Turns(), m.viewport.Width))
	if toBottom {
		m.viewport.GotoBottom()
	}
}

// View implements tea.Model.
func (m ChatModel) View() string {
	if m.quitting || !m.ready {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	if m.notice != nil {
		b.WriteString(NoticeStyle.Render(m.notice.Title+": ") + m.notice.Description)
		b.WriteString("\n")
	}
	if fu := renderFollowUps(m.followUps); fu != "" {
		b.WriteString(fu)
		b.WriteString("\n")
	}

	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(m.helpLine())
	return b.String()
}

func (m ChatModel) helpLine() string {
	if m.streaming {
		return m.spin.View() + HelpStyle.Render(" streaming… • esc cancel • ctrl+c quit")
	}
	help := "enter ask • ctrl+c quit"
	if len(m.followUps) > 0 {
		help = fmt.Sprintf("enter ask • type 1-%d for a suggestion • ctrl+c quit", len(m.followUps))
	}
	return HelpStyle.Render(help)
}

// Run starts the chat program and blocks until the user quits.
func Run(ctx context.Context, session *runtime.Session, relay *Relay) error {
	p := tea.NewProgram(NewChat(ctx, session), tea.WithAltScreen())
	relay.program.Store(p)
	_, err := p.Run()
	return err
}
