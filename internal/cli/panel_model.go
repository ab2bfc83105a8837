package cli

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/alexanderramin/muse/internal/cli/formatter"
	"github.com/alexanderramin/muse/internal/coach"
	"github.com/alexanderramin/muse/internal/domain"
)

const recentTriggerLimit = 5

// controller is the slice of the runner the panel drives. Narrowed to
// an interface so tests can substitute a recorder.
type controller interface {
	Dismiss()
	Resolve()
	SendUserTurn(text string)
	SelectMode(id string)
	PauseTriggers()
	ResumeTriggers()
}

// panelModel is the bubbletea model for the live coaching panel shown
// by "muse watch". It renders the latest metrics snapshot, recent
// trigger activity, and the advisory session, and forwards user actions
// to the runner.
type panelModel struct {
	runner   controller
	path     string
	modes    []domain.WritingMode
	modeIdx  int
	paused   bool
	quitting bool

	metrics domain.WritingMetrics
	recent  []domain.TriggerResult
	session coach.Session
	input   textinput.Model
	width   int
	height  int
}

func newPanelModel(runner controller, path string, modes []domain.WritingMode) panelModel {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "reply…"
	ti.CharLimit = 500

	return panelModel{
		runner: runner,
		path:   path,
		modes:  modes,
		input:  ti,
	}
}

func (m panelModel) Init() tea.Cmd {
	return nil
}

func (m panelModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case metricsMsg:
		m.metrics = domain.WritingMetrics(msg)
		return m, nil

	case triggerMsg:
		m.recent = append(m.recent, domain.TriggerResult(msg))
		if len(m.recent) > recentTriggerLimit {
			m.recent = m.recent[len(m.recent)-recentTriggerLimit:]
		}
		return m, nil

	case sessionMsg:
		m.session = coach.Session(msg)
		if m.session.Status == domain.SessionConversing {
			m.input.Focus()
		} else {
			m.input.Blur()
			m.input.SetValue("")
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.input.Focused() {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m panelModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		m.quitting = true
		return m, tea.Quit
	}

	// While conversing the input owns the keyboard: enter sends, esc
	// dismisses, everything else edits the reply.
	if m.input.Focused() {
		switch msg.Type {
		case tea.KeyEnter:
			text := strings.TrimSpace(m.input.Value())
			if text != "" {
				m.runner.SendUserTurn(text)
				m.input.SetValue("")
			}
			return m, nil
		case tea.KeyEsc:
			m.runner.Dismiss()
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "q":
		m.quitting = true
		return m, tea.Quit
	case "d", "esc":
		m.runner.Dismiss()
	case "r":
		m.runner.Resolve()
	case "m":
		if len(m.modes) > 0 {
			m.modeIdx = (m.modeIdx + 1) % len(m.modes)
			m.runner.SelectMode(m.modes[m.modeIdx].ID)
		}
	case "p":
		if m.paused {
			m.runner.ResumeTriggers()
		} else {
			m.runner.PauseTriggers()
		}
		m.paused = !m.paused
	}
	return m, nil
}

func (m panelModel) View() string {
	if m.quitting {
		return ""
	}

	var sections []string
	sections = append(sections, m.renderHeader())
	sections = append(sections, formatter.FormatMetrics(m.metrics))
	sections = append(sections, m.renderSession())
	if len(m.recent) > 0 {
		sections = append(sections, m.renderRecent())
	}
	sections = append(sections, m.renderStatusBar())

	return strings.Join(sections, "\n\n") + "\n"
}

func (m panelModel) renderHeader() string {
	title := formatter.StylePurple.Render("muse")
	parts := []string{title, formatter.Dim(m.path)}
	if len(m.modes) > 0 {
		parts = append(parts, formatter.StyleBlue.Render("["+m.modes[m.modeIdx].ID+"]"))
	}
	if m.paused {
		parts = append(parts, formatter.StyleYellow.Render("(paused)"))
	}
	return strings.Join(parts, "  ")
}

func (m panelModel) renderSession() string {
	switch m.session.Status {
	case domain.SessionPending, domain.SessionConversing:
		var b strings.Builder
		if rule := m.session.ActiveRule; rule != nil {
			b.WriteString(formatter.PriorityIndicator(rule.Priority))
			b.WriteString("  ")
			b.WriteString(formatter.Bold(rule.Name))
			b.WriteString("\n")
		}
		for _, turn := range m.session.Turns {
			style := formatter.StyleFg
			prefix := "you"
			if turn.Role == domain.RoleAssistant {
				style = formatter.StyleBlue
				prefix = "muse"
			}
			b.WriteString(formatter.Dim(prefix+":") + " " + style.Render(turn.Text) + "\n")
		}
		if m.session.LastError != "" {
			b.WriteString(formatter.StyleRed.Render(m.session.LastError) + "\n")
		}
		if m.session.Status == domain.SessionConversing {
			b.WriteString(m.input.View())
		}
		return strings.TrimRight(b.String(), "\n")
	default:
		return formatter.Dim("listening…")
	}
}

func (m panelModel) renderRecent() string {
	var b strings.Builder
	b.WriteString(formatter.Dim("recent triggers"))
	for _, tr := range m.recent {
		b.WriteString("\n  " + formatter.Dim("·") + " " + tr.Rule.Name +
			" " + formatter.Dim(tr.FiredAt.Local().Format("15:04:05")))
	}
	return b.String()
}

func (m panelModel) renderStatusBar() string {
	var hints []string
	switch m.session.Status {
	case domain.SessionConversing:
		hints = append(hints, "enter: send", "esc: end")
	case domain.SessionPending:
		hints = append(hints, "d: dismiss", "r: done")
	default:
		hints = append(hints, "m: mode", "p: pause")
	}
	hints = append(hints, "q: quit")

	styled := make([]string, len(hints))
	for i, h := range hints {
		styled[i] = formatter.Dim(h)
	}
	return strings.Join(styled, "  ")
}
