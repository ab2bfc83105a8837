// Package trigger matches rules against metric snapshots, enforces
// rate limits, and emits at most one trigger per evaluation tick.
package trigger

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/alexanderramin/muse/internal/condition"
	"github.com/alexanderramin/muse/internal/domain"
)

const (
	// DefaultCooldown is the minimum interval between any two firings.
	DefaultCooldown = 300 * time.Second
	// DefaultHighPriorityCooldown is the shorter patience window for
	// high-priority rules, measured from the same last-fire timestamp.
	DefaultHighPriorityCooldown = 180 * time.Second
	// maxHistory caps the trigger event log; oldest entries drop first.
	maxHistory = 100
)

// EventSink receives fired trigger events, e.g. for persistence.
type EventSink interface {
	RecordTrigger(event domain.TriggerEvent) error
}

// Scheduler holds the rule catalog and firing history. All state is
// explicit in the value; independent instances never interfere.
// Not safe for concurrent use; the runner serializes access.
type Scheduler struct {
	rules    []domain.TriggerRule
	logger   *slog.Logger
	now      func() time.Time
	sink     EventSink
	cooldown struct {
		global time.Duration
		high   time.Duration
	}

	lastFire time.Time
	history  []domain.TriggerEvent
	paused   bool

	// satisfiedSince tracks dwell time per rule: when its conditions
	// first held continuously. Cleared whenever they stop holding.
	satisfiedSince map[string]time.Time
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock overrides the scheduler clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// WithCooldowns overrides the global and high-priority cooldowns.
func WithCooldowns(global, high time.Duration) Option {
	return func(s *Scheduler) {
		s.cooldown.global = global
		s.cooldown.high = high
	}
}

// WithEventSink forwards fired events to a sink after recording.
func WithEventSink(sink EventSink) Option {
	return func(s *Scheduler) { s.sink = sink }
}

// NewScheduler creates a scheduler over the given rule catalog.
func NewScheduler(rules []domain.TriggerRule, logger *slog.Logger, opts ...Option) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Scheduler{
		rules:          rules,
		logger:         logger,
		now:            time.Now,
		satisfiedSince: make(map[string]time.Time),
	}
	s.cooldown.global = DefaultCooldown
	s.cooldown.high = DefaultHighPriorityCooldown
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// UpdateRules hot-swaps the rule catalog wholesale. Dwell tracking for
// rules that no longer exist is discarded; firing history and the
// last-fire time survive the swap.
func (s *Scheduler) UpdateRules(rules []domain.TriggerRule) {
	s.rules = rules
	known := make(map[string]bool, len(rules))
	for _, r := range rules {
		known[r.Name] = true
	}
	for name := range s.satisfiedSince {
		if !known[name] {
			delete(s.satisfiedSince, name)
		}
	}
	s.logger.Info("trigger rules updated", "count", len(rules))
}

// Pause stops Tick from firing until Resume.
func (s *Scheduler) Pause() { s.paused = true }

// Resume re-enables firing.
func (s *Scheduler) Resume() { s.paused = false }

// History returns the recorded trigger events, oldest first.
func (s *Scheduler) History() []domain.TriggerEvent {
	out := make([]domain.TriggerEvent, len(s.history))
	copy(out, s.history)
	return out
}

// Tick evaluates rules in declaration order against the snapshot and
// fires at most one. A rule whose conditions match but whose cooldown
// or dwell has not elapsed is skipped for this tick, not deferred.
func (s *Scheduler) Tick(m domain.WritingMetrics, writingMode string) *domain.TriggerResult {
	if s.paused {
		return nil
	}
	now := s.now()

	for _, rule := range s.rules {
		if !rule.AppliesTo(writingMode) {
			s.clearDwell(rule.Name)
			continue
		}
		if !condition.SetSatisfied(rule.Conditions, m, s.logger) {
			s.clearDwell(rule.Name)
			continue
		}
		if !s.dwellElapsed(rule, now) {
			continue
		}
		if !s.cooldownElapsed(rule, now) {
			continue
		}
		return s.fire(rule, m, writingMode, now)
	}
	return nil
}

// ForceFire fires the named rule immediately, bypassing conditions,
// dwell, and rate limiting. Diagnostic use only.
func (s *Scheduler) ForceFire(ruleName string, m domain.WritingMetrics, writingMode string) *domain.TriggerResult {
	for _, rule := range s.rules {
		if rule.Name == ruleName {
			return s.fire(rule, m, writingMode, s.now())
		}
	}
	s.logger.Warn("force-fire of unknown rule", "rule", ruleName)
	return nil
}

// dwellElapsed checks the rule's delay requirement: conditions must
// have held continuously for DelaySeconds before firing.
func (s *Scheduler) dwellElapsed(rule domain.TriggerRule, now time.Time) bool {
	since, ok := s.satisfiedSince[rule.Name]
	if !ok {
		s.satisfiedSince[rule.Name] = now
		since = now
	}
	if rule.DelaySeconds <= 0 {
		return true
	}
	return now.Sub(since) >= time.Duration(rule.DelaySeconds)*time.Second
}

func (s *Scheduler) clearDwell(name string) {
	delete(s.satisfiedSince, name)
}

// cooldownElapsed enforces the global rate limit: the interval since
// the last fire of ANY rule must exceed the cooldown, with the shorter
// override for high-priority rules.
func (s *Scheduler) cooldownElapsed(rule domain.TriggerRule, now time.Time) bool {
	if s.lastFire.IsZero() {
		return true
	}
	window := s.cooldown.global
	if rule.Priority == domain.PriorityHigh {
		window = s.cooldown.high
	}
	return now.Sub(s.lastFire) >= window
}

// fire records the event and updates the last-fire time BEFORE any
// listener sees the result, so a re-entrant tick cannot double-fire.
func (s *Scheduler) fire(rule domain.TriggerRule, m domain.WritingMetrics, writingMode string, now time.Time) *domain.TriggerResult {
	s.lastFire = now
	s.clearDwell(rule.Name)

	event := domain.TriggerEvent{
		ID:          uuid.NewString(),
		RuleName:    rule.Name,
		WritingMode: writingMode,
		Timestamp:   now,
		Metrics:     m,
	}
	s.history = append(s.history, event)
	if len(s.history) > maxHistory {
		s.history = s.history[len(s.history)-maxHistory:]
	}
	if s.sink != nil {
		if err := s.sink.RecordTrigger(event); err != nil {
			s.logger.Warn("recording trigger event", "rule", rule.Name, "error", err.Error())
		}
	}

	s.logger.Info("trigger fired",
		"rule", rule.Name,
		"mode", writingMode,
		"priority", string(rule.Priority),
		"conversational", rule.RequiresConversation,
	)
	return &domain.TriggerResult{
		Rule:        rule,
		Metrics:     m,
		WritingMode: writingMode,
		FiredAt:     now,
	}
}
