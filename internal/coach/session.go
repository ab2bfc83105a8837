// Package coach owns the advisory session lifecycle: single-shot
// advisories, multi-turn conversations, auto-close when the user
// resumes writing, and discarding of stale backend responses.
package coach

import (
	"log/slog"
	"time"

	"github.com/alexanderramin/muse/internal/domain"
	"github.com/alexanderramin/muse/internal/llm"
)

// Config governs session behavior.
type Config struct {
	// AutoCloseOnWriting ends a conversation as soon as the user makes
	// a non-trivial edit.
	AutoCloseOnWriting bool
	// MaxConversationTurns is the number of assistant exchanges after
	// which a conversation is forced closed. Zero means unlimited.
	MaxConversationTurns int
}

// DefaultConfig returns the default session configuration.
func DefaultConfig() Config {
	return Config{
		AutoCloseOnWriting:   true,
		MaxConversationTurns: 5,
	}
}

// Session is an immutable snapshot of the live session for display.
type Session struct {
	Status     domain.SessionStatus
	ActiveRule *domain.TriggerRule
	Turns      []domain.Turn
	LastError  string
	LastClose  domain.CloseReason
}

// BackendCall is a request the caller must execute against the advisory
// backend. The manager never performs I/O itself: the runner executes
// the call (asynchronously) and feeds the outcome to HandleResponse
// with the same generation tag.
type BackendCall struct {
	Generation int
	Request    llm.ChatRequest
}

// Manager is the session state machine. Exactly one session exists per
// editing context; all terminal transitions land on Idle and clear the
// active rule and turn history. Not safe for concurrent use; the
// runner serializes access.
type Manager struct {
	cfg     Config
	prompts *PromptBuilder
	logger  *slog.Logger
	now     func() time.Time

	status     domain.SessionStatus
	activeRule *domain.TriggerRule
	turns      []domain.Turn
	lastError  string
	lastClose  domain.CloseReason

	// generation tags outstanding backend calls; any response carrying
	// an older generation is stale and dropped without state mutation.
	generation int
	inFlight   bool
	queued     []string
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides the manager clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager creates an idle session manager.
func NewManager(cfg Config, prompts *PromptBuilder, logger *slog.Logger, opts ...Option) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if prompts == nil {
		prompts = NewPromptBuilder("")
	}
	m := &Manager{
		cfg:     cfg,
		prompts: prompts,
		logger:  logger,
		now:     time.Now,
		status:  domain.SessionIdle,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Snapshot returns a copy of the session state for display.
func (m *Manager) Snapshot() Session {
	turns := make([]domain.Turn, len(m.turns))
	copy(turns, m.turns)
	return Session{
		Status:     m.status,
		ActiveRule: m.activeRule,
		Turns:      turns,
		LastError:  m.lastError,
		LastClose:  m.lastClose,
	}
}

// HandleTrigger consumes a fired trigger. From Idle it opens either a
// pending single-shot advisory or a conversation, returning the backend
// call to execute (nil when the rule supplies its own opening message).
// Triggers arriving while a session is live are dropped.
func (m *Manager) HandleTrigger(tr domain.TriggerResult, docText string, mode *domain.WritingMode) *BackendCall {
	if m.status != domain.SessionIdle {
		m.logger.Info("trigger ignored, session already live",
			"rule", tr.Rule.Name, "status", string(m.status))
		return nil
	}

	rule := tr.Rule
	m.activeRule = &rule
	m.lastError = ""
	m.lastClose = ""

	if rule.RequiresConversation {
		m.status = domain.SessionConversing
		if rule.OpeningMessage != "" {
			m.appendTurn(domain.RoleAssistant, rule.OpeningMessage)
			return nil
		}
		return m.issue(llm.TaskConversation, m.prompts.OpeningRequest(tr, docText, mode))
	}

	m.status = domain.SessionPending
	return m.issue(llm.TaskAdvisory, m.prompts.AdvisoryRequest(tr, docText, mode))
}

// SendUserTurn accepts a user message while conversing. If a backend
// call is already in flight the turn queues behind it so responses
// never interleave.
func (m *Manager) SendUserTurn(text string) *BackendCall {
	if m.status != domain.SessionConversing {
		m.logger.Info("user turn ignored outside conversation", "status", string(m.status))
		return nil
	}
	if m.inFlight {
		m.queued = append(m.queued, text)
		return nil
	}
	m.appendTurn(domain.RoleUser, text)
	return m.issue(llm.TaskConversation, m.prompts.FollowUpRequest(m.activeRule, m.turns))
}

// HandleResponse delivers the outcome of a backend call. Stale
// responses (generation mismatch or session no longer waiting) are
// discarded silently. A non-stale failure surfaces as a user-visible
// error state without corrupting turn history. The returned call, if
// any, is the next queued turn's request.
func (m *Manager) HandleResponse(generation int, resp *llm.ChatResponse, err error) *BackendCall {
	if generation != m.generation || !m.inFlight {
		m.logger.Debug("stale backend response dropped", "generation", generation)
		return nil
	}
	m.inFlight = false

	if err != nil {
		m.lastError = err.Error()
		m.logger.Warn("advisory backend failure", "error", err.Error())
		return nil
	}
	m.lastError = ""
	m.appendTurn(domain.RoleAssistant, resp.Text)

	if m.status == domain.SessionConversing {
		if m.cfg.MaxConversationTurns > 0 && m.assistantTurns() >= m.cfg.MaxConversationTurns {
			m.close(domain.CloseMaxTurns)
			return nil
		}
		if len(m.queued) > 0 {
			next := m.queued[0]
			m.queued = m.queued[1:]
			m.appendTurn(domain.RoleUser, next)
			return m.issue(llm.TaskConversation, m.prompts.FollowUpRequest(m.activeRule, m.turns))
		}
	}
	return nil
}

// NoteEdit reports a host edit. While conversing with auto-close
// enabled, a non-trivial edit ends the session immediately; any
// in-flight response becomes stale.
func (m *Manager) NoteEdit(delta domain.EditDelta) bool {
	if m.status != domain.SessionConversing || !m.cfg.AutoCloseOnWriting {
		return false
	}
	if delta.Trivial() {
		return false
	}
	m.close(domain.CloseResumedWriting)
	return true
}

// Dismiss ends the session at the user's request.
func (m *Manager) Dismiss() {
	if m.status == domain.SessionIdle {
		return
	}
	m.close(domain.CloseDismissed)
}

// Resolve acknowledges a pending advisory as handled.
func (m *Manager) Resolve() {
	if m.status != domain.SessionPending {
		return
	}
	m.close(domain.CloseResolved)
}

// Reset forces the session back to Idle regardless of state.
func (m *Manager) Reset() {
	if m.status == domain.SessionIdle {
		return
	}
	m.close(domain.CloseForcedReset)
}

func (m *Manager) close(reason domain.CloseReason) {
	m.status = domain.SessionIdle
	m.activeRule = nil
	m.turns = nil
	m.queued = nil
	m.inFlight = false
	m.generation++
	m.lastClose = reason
	m.logger.Info("session closed", "reason", string(reason))
}

func (m *Manager) issue(task llm.TaskType, req llm.ChatRequest) *BackendCall {
	req.Task = task
	m.generation++
	m.inFlight = true
	return &BackendCall{Generation: m.generation, Request: req}
}

func (m *Manager) appendTurn(role domain.TurnRole, text string) {
	m.turns = append(m.turns, domain.Turn{
		Role:      role,
		Text:      text,
		Timestamp: m.now(),
	})
}

func (m *Manager) assistantTurns() int {
	n := 0
	for _, t := range m.turns {
		if t.Role == domain.RoleAssistant {
			n++
		}
	}
	return n
}
