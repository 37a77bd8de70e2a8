package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"nebula/session"
	"nebula/view"
)

const sidebarWidth = 34

// Model is the terminal front end
type Model struct {
	ctx   context.Context
	sess  Session
	loc   *time.Location
	input textinput.Model
	pane  *view.MessagePane

	state     session.State
	status    string
	statusErr bool
	width     int
	height    int
}

// New builds the model. Session calls made by commands use ctx.
func New(ctx context.Context, sess Session) Model {
	ti := textinput.New()
	ti.Placeholder = "/help for commands, or type a message"
	ti.CharLimit = 2000
	ti.Width = 60
	ti.Focus()

	return Model{
		ctx:    ctx,
		sess:   sess,
		loc:    time.Local,
		input:  ti,
		pane:   view.NewMessagePane(60, 15),
		state:  sess.Snapshot(),
		status: "/register or /login to start",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.runDone("", m.sess.Start))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			line := m.input.Value()
			m.input.SetValue("")
			return m, m.dispatch(line)
		case tea.KeyPgUp, tea.KeyPgDown:
			return m, m.pane.Update(msg)
		}

	case tea.MouseMsg:
		return m, m.pane.Update(msg)

	case invalidateMsg:
		m.state = m.sess.Snapshot()
		if msg.section == session.SectionMessages || msg.section == session.SectionGate {
			m.renderPane()
		}
		return m, nil

	case statusMsg:
		m.statusErr = msg.err != nil
		if msg.err != nil {
			m.status = msg.err.Error()
		} else if msg.text != "" {
			m.status = msg.text
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) renderPane() {
	m.pane.Render(view.ChatTitle(m.state), view.Messages(m.state, m.loc))
}

func (m *Model) resize() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	m.input.Width = max(10, m.width-4)
	paneWidth := max(20, m.width-sidebarWidth-6)
	paneHeight := max(3, m.height-7)
	m.pane.SetSize(paneWidth, paneHeight)
}

func (m Model) View() string {
	gate := m.state.Gate()

	var body string
	if gate.Auth {
		body = lipgloss.JoinVertical(lipgloss.Left,
			view.RenderTitle("Nebula"),
			"",
			view.RenderAccounts(view.Accounts(m.state)),
			"",
			"Log in with /login <username> <password>",
			"or create an account with /register <username> <password>",
		)
	} else {
		sidebar := view.RenderSidebar(sidebarWidth,
			view.RenderAccounts(view.Accounts(m.state)),
			view.RenderFriends(view.Friends(m.state)),
			view.RenderRequests(view.Requests(m.state)),
			view.RenderGroups(view.Groups(m.state)),
			view.RenderSearch(view.SearchResults(m.state)),
		)
		body = lipgloss.JoinHorizontal(lipgloss.Top, sidebar, m.pane.View())
	}

	var b strings.Builder
	b.WriteString(body)
	b.WriteString("\n")
	b.WriteString(view.RenderStatus(m.status, m.statusErr))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	return b.String()
}
