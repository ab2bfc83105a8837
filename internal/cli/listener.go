package cli

import (
	"log/slog"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/alexanderramin/muse/internal/coach"
	"github.com/alexanderramin/muse/internal/domain"
)

// Messages delivered into the bubbletea loop from the runner goroutine.
type (
	metricsMsg domain.WritingMetrics
	triggerMsg domain.TriggerResult
	sessionMsg coach.Session
)

// programListener bridges runner notifications into a bubbletea program.
// Events arriving before Attach are dropped; the next metrics tick
// repaints the panel anyway.
type programListener struct {
	mu sync.Mutex
	p  *tea.Program
}

func (l *programListener) Attach(p *tea.Program) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.p = p
}

func (l *programListener) send(msg tea.Msg) {
	l.mu.Lock()
	p := l.p
	l.mu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

func (l *programListener) OnMetrics(m domain.WritingMetrics) { l.send(metricsMsg(m)) }
func (l *programListener) OnTrigger(tr domain.TriggerResult) { l.send(triggerMsg(tr)) }
func (l *programListener) OnSession(s coach.Session)         { l.send(sessionMsg(s)) }

// logListener reports runner activity through slog for non-interactive
// runs (piped output, headless sessions).
type logListener struct {
	logger *slog.Logger
}

func (l logListener) OnMetrics(m domain.WritingMetrics) {
	l.logger.Debug("metrics",
		"wpm", m.WordsPerMinute,
		"words", m.TotalWords,
		"trend", string(m.WpmTrend),
		"deletion_ratio", m.DeletionRatio)
}

func (l logListener) OnTrigger(tr domain.TriggerResult) {
	l.logger.Info("trigger fired",
		"rule", tr.Rule.Name,
		"mode", tr.WritingMode,
		"wpm", tr.Metrics.WordsPerMinute,
		"pause_s", tr.Metrics.PauseDurationSeconds)
}

func (l logListener) OnSession(s coach.Session) {
	attrs := []any{"status", string(s.Status)}
	if s.ActiveRule != nil {
		attrs = append(attrs, "rule", s.ActiveRule.Name)
	}
	if len(s.Turns) > 0 {
		last := s.Turns[len(s.Turns)-1]
		attrs = append(attrs, "role", string(last.Role), "text", last.Text)
	}
	if s.LastError != "" {
		attrs = append(attrs, "error", s.LastError)
	}
	l.logger.Info("session", attrs...)
}
