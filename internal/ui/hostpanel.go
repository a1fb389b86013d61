package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/remotix/remotix/internal/control"
)

const noticeHistory = 8

// StoppedMsg is sent into a panel program when the underlying runtime
// returns; it quits the panel.
type StoppedMsg struct {
	Err error
}

type noticeMsg control.Notice

// HostPanel is the interactive host surface: it shows session status and
// owns the one control the host has, the authorization toggle.
type HostPanel struct {
	host     *control.Host
	roomID   string
	spinner  spinner.Model
	notices  []control.Notice
	err      error
	quitting bool
}

func NewHostPanel(host *control.Host, roomID string) *HostPanel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle
	return &HostPanel{host: host, roomID: roomID, spinner: s}
}

func (m *HostPanel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.waitNotice())
}

func (m *HostPanel) waitNotice() tea.Cmd {
	return func() tea.Msg {
		return noticeMsg(<-m.host.Notices())
	}
}

func (m *HostPanel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "a":
			m.host.Authorize(!m.host.Authorized())
			return m, nil
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil

	case noticeMsg:
		m.notices = append(m.notices, control.Notice(msg))
		if len(m.notices) > noticeHistory {
			m.notices = m.notices[len(m.notices)-noticeHistory:]
		}
		return m, m.waitNotice()

	case StoppedMsg:
		m.err = msg.Err
		m.quitting = true
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *HostPanel) View() string {
	if m.quitting {
		if m.err != nil {
			return ErrorStyle.Render(fmt.Sprintf("%s session ended: %v", IconError, m.err)) + "\n"
		}
		return MutedStyle.Render("session ended") + "\n"
	}

	var b strings.Builder

	b.WriteString(TitleStyle.Render(fmt.Sprintf("%s Hosting room %s", IconScreen, m.roomID)))
	b.WriteString("\n")

	gate := ErrorStyle.Render(fmt.Sprintf("%s remote control DENIED", IconLock))
	if m.host.Authorized() {
		gate = SuccessStyle.Render(fmt.Sprintf("%s remote control ALLOWED", IconUnlock))
	}
	b.WriteString(fmt.Sprintf("%s %s\n\n", m.spinner.View(), gate))

	for _, n := range m.notices {
		b.WriteString(renderNotice(n))
	}

	b.WriteString("\n")
	b.WriteString(MutedStyle.Render("a: toggle remote control • q: disconnect"))
	b.WriteString("\n")
	return b.String()
}

func renderNotice(n control.Notice) string {
	switch n.Level {
	case "error":
		return ErrorStyle.Render("  "+n.Text) + "\n"
	case "warn":
		return WarningStyle.Render("  "+n.Text) + "\n"
	default:
		return "  " + n.Text + "\n"
	}
}
