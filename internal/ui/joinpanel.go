package ui

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/remotix/remotix/internal/control"
	"github.com/remotix/remotix/internal/protocol"
)

// JoinPanel is the controlling-side surface. While forwarding is on, every
// keystroke the terminal can capture is sent to the host as a paired
// key-down/key-up (terminals report presses only, never releases).
type JoinPanel struct {
	client     *control.Client
	roomID     string
	spinner    spinner.Model
	notices    []control.Notice
	forwarding bool
	err        error
	quitting   bool
}

func NewJoinPanel(client *control.Client, roomID string) *JoinPanel {
	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = SpinnerStyle
	return &JoinPanel{client: client, roomID: roomID, spinner: s}
}

func (m *JoinPanel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.waitNotice())
}

func (m *JoinPanel) waitNotice() tea.Cmd {
	return func() tea.Msg {
		return noticeMsg(<-m.client.Notices())
	}
}

func (m *JoinPanel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Reserved chords work regardless of forwarding mode; everything
		// else is forwarded when the user enabled it.
		switch msg.String() {
		case "ctrl+q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "ctrl+f":
			m.forwarding = !m.forwarding
			return m, nil
		}
		if m.forwarding {
			if code, ok := keyCode(msg); ok {
				m.client.SendInput(&protocol.InputEvent{Kind: protocol.EventKeyDown, Code: code})
				m.client.SendInput(&protocol.InputEvent{Kind: protocol.EventKeyUp, Code: code})
			}
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

func (m *JoinPanel) View() string {
	if m.quitting {
		if m.err != nil {
			return ErrorStyle.Render(fmt.Sprintf("%s session ended: %v", IconError, m.err)) + "\n"
		}
		return MutedStyle.Render("session ended") + "\n"
	}

	var b strings.Builder

	b.WriteString(TitleStyle.Render(fmt.Sprintf("%s Joined room %s", IconConnect, m.roomID)))
	b.WriteString("\n")

	status := MutedStyle.Render(fmt.Sprintf("%s negotiating with host", IconWaiting))
	if m.client.Connected() {
		status = SuccessStyle.Render("connected to host")
	}
	fwd := MutedStyle.Render("keystroke forwarding off")
	if m.forwarding {
		fwd = WarningStyle.Render("keystroke forwarding ON")
	}
	b.WriteString(fmt.Sprintf("%s %s • %s\n\n", m.spinner.View(), status, fwd))

	for _, n := range m.notices {
		b.WriteString(renderNotice(n))
	}

	b.WriteString("\n")
	b.WriteString(MutedStyle.Render("ctrl+f: toggle forwarding • ctrl+q: disconnect"))
	b.WriteString("\n")
	return b.String()
}

// keyCode translates a terminal key press into a W3C KeyboardEvent.code.
// Only keys a terminal can actually report are covered.
func keyCode(msg tea.KeyMsg) (string, bool) {
	switch msg.Type {
	case tea.KeyEnter:
		return "Enter", true
	case tea.KeyBackspace:
		return "Backspace", true
	case tea.KeyTab:
		return "Tab", true
	case tea.KeySpace:
		return "Space", true
	case tea.KeyEsc:
		return "Escape", true
	case tea.KeyUp:
		return "ArrowUp", true
	case tea.KeyDown:
		return "ArrowDown", true
	case tea.KeyLeft:
		return "ArrowLeft", true
	case tea.KeyRight:
		return "ArrowRight", true
	case tea.KeyHome:
		return "Home", true
	case tea.KeyEnd:
		return "End", true
	case tea.KeyPgUp:
		return "PageUp", true
	case tea.KeyPgDown:
		return "PageDown", true
	case tea.KeyDelete:
		return "Delete", true
	case tea.KeyRunes:
		if len(msg.Runes) != 1 {
			return "", false
		}
		r := msg.Runes[0]
		switch {
		case r >= 'a' && r <= 'z':
			return fmt.Sprintf("Key%c", unicode.ToUpper(r)), true
		case r >= 'A' && r <= 'Z':
			return fmt.Sprintf("Key%c", r), true
		case r >= '0' && r <= '9':
			return fmt.Sprintf("Digit%c", r), true
		}
	}
	return "", false
}
