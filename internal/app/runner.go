package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/alexanderramin/muse/internal/coach"
	"github.com/alexanderramin/muse/internal/domain"
	"github.com/alexanderramin/muse/internal/host"
	"github.com/alexanderramin/muse/internal/llm"
	"github.com/alexanderramin/muse/internal/metrics"
	"github.com/alexanderramin/muse/internal/rules"
	"github.com/alexanderramin/muse/internal/trigger"
)

const (
	// DefaultMetricsInterval is the cadence of metric recomputation.
	DefaultMetricsInterval = 5 * time.Second
	// DefaultTriggerInterval is the cadence of trigger evaluation.
	DefaultTriggerInterval = 30 * time.Second
)

// Listener receives state changes from the runner loop. Implementations
// must not call back into the Runner from inside a notification.
type Listener interface {
	OnMetrics(m domain.WritingMetrics)
	OnTrigger(tr domain.TriggerResult)
	OnSession(s coach.Session)
}

// SampleSink persists periodic speed samples.
type SampleSink interface {
	RecordSample(at time.Time, wpm float64, totalWords int) error
}

// NoopListener discards all notifications.
type NoopListener struct{}

func (NoopListener) OnMetrics(domain.WritingMetrics) {}
func (NoopListener) OnTrigger(domain.TriggerResult)  {}
func (NoopListener) OnSession(coach.Session)         {}

type commandKind int

const (
	cmdDismiss commandKind = iota
	cmdResolve
	cmdUserTurn
	cmdSelectMode
	cmdForceFire
	cmdPause
	cmdResume
	cmdCatalog
)

type command struct {
	kind    commandKind
	text    string
	catalog rules.Catalog
}

type backendResult struct {
	generation int
	resp       *llm.ChatResponse
	err        error
}

// Runner owns the single event loop that serializes all state mutation.
// Metric recomputation, trigger evaluation, host edits, user commands
// and backend responses are all handled on one goroutine; the only work
// done off-loop is the backend call itself.
type Runner struct {
	engine    *metrics.Engine
	scheduler *trigger.Scheduler
	sessions  *coach.Manager
	prompts   *coach.PromptBuilder
	client    llm.Client
	logger    *slog.Logger
	listener  Listener
	samples   SampleSink

	catalog rules.Catalog
	mode    string

	metricsEvery time.Duration
	triggerEvery time.Duration

	edits     <-chan host.Edit
	commands  chan command
	responses chan backendResult
}

// Option configures a Runner.
type Option func(*Runner)

// WithIntervals overrides the metrics and trigger cadences.
func WithIntervals(metricsEvery, triggerEvery time.Duration) Option {
	return func(r *Runner) {
		r.metricsEvery = metricsEvery
		r.triggerEvery = triggerEvery
	}
}

// WithListener registers the loop's event listener.
func WithListener(l Listener) Option {
	return func(r *Runner) { r.listener = l }
}

// WithSampleSink enables periodic speed sample persistence.
func WithSampleSink(s SampleSink) Option {
	return func(r *Runner) { r.samples = s }
}

// WithMode sets the initial writing mode.
func WithMode(id string) Option {
	return func(r *Runner) { r.mode = id }
}

// NewRunner wires the pipeline components into an event loop. The edits
// channel is owned by the caller; closing it does not stop the loop.
func NewRunner(
	engine *metrics.Engine,
	scheduler *trigger.Scheduler,
	sessions *coach.Manager,
	prompts *coach.PromptBuilder,
	client llm.Client,
	catalog rules.Catalog,
	edits <-chan host.Edit,
	logger *slog.Logger,
	opts ...Option,
) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Runner{
		engine:       engine,
		scheduler:    scheduler,
		sessions:     sessions,
		prompts:      prompts,
		client:       client,
		logger:       logger,
		listener:     NoopListener{},
		catalog:      catalog,
		metricsEvery: DefaultMetricsInterval,
		triggerEvery: DefaultTriggerInterval,
		edits:        edits,
		commands:     make(chan command, 16),
		responses:    make(chan backendResult, 4),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.mode == "" && len(catalog.Modes) > 0 {
		r.mode = catalog.Modes[0].ID
	}
	return r
}

// Run drives the loop until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) {
	metricsTick := time.NewTicker(r.metricsEvery)
	defer metricsTick.Stop()
	triggerTick := time.NewTicker(r.triggerEvery)
	defer triggerTick.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case edit := <-r.edits:
			r.handleEdit(edit)
		case <-metricsTick.C:
			r.recompute()
		case <-triggerTick.C:
			r.evaluateTriggers(ctx)
		case cmd := <-r.commands:
			r.handleCommand(ctx, cmd)
		case res := <-r.responses:
			r.handleResponse(ctx, res)
		}
	}
}

// Dismiss discards a pending advisory.
func (r *Runner) Dismiss() { r.commands <- command{kind: cmdDismiss} }

// Resolve marks a pending advisory as acted upon.
func (r *Runner) Resolve() { r.commands <- command{kind: cmdResolve} }

// SendUserTurn submits a reply in an active conversation.
func (r *Runner) SendUserTurn(text string) {
	r.commands <- command{kind: cmdUserTurn, text: text}
}

// SelectMode switches the active writing mode.
func (r *Runner) SelectMode(id string) {
	r.commands <- command{kind: cmdSelectMode, text: id}
}

// ForceFireRule fires a rule by name regardless of conditions.
func (r *Runner) ForceFireRule(name string) {
	r.commands <- command{kind: cmdForceFire, text: name}
}

// PauseTriggers suspends trigger evaluation.
func (r *Runner) PauseTriggers() { r.commands <- command{kind: cmdPause} }

// ResumeTriggers resumes trigger evaluation.
func (r *Runner) ResumeTriggers() { r.commands <- command{kind: cmdResume} }

// SetCatalog swaps in a freshly loaded rule catalog.
func (r *Runner) SetCatalog(cat rules.Catalog) {
	r.commands <- command{kind: cmdCatalog, catalog: cat}
}

func (r *Runner) handleEdit(edit host.Edit) {
	r.engine.Ingest(edit.Delta)
	r.engine.ObserveCursor(edit.FullText, edit.LineText, edit.Offset)
	if r.sessions.NoteEdit(edit.Delta) {
		r.listener.OnSession(r.sessions.Snapshot())
	}
}

func (r *Runner) recompute() {
	m := r.engine.Recompute()
	if r.samples != nil {
		if err := r.samples.RecordSample(m.ComputedAt, m.WordsPerMinute, m.TotalWords); err != nil {
			r.logger.Warn("recording speed sample", "error", err)
		}
	}
	r.listener.OnMetrics(m)
}

func (r *Runner) evaluateTriggers(ctx context.Context) {
	m := r.engine.Recompute()
	r.listener.OnMetrics(m)
	result := r.scheduler.Tick(m, r.mode)
	if result == nil {
		return
	}
	r.fire(ctx, *result)
}

func (r *Runner) fire(ctx context.Context, result domain.TriggerResult) {
	r.engine.NoteAdvisory()
	r.listener.OnTrigger(result)
	call := r.sessions.HandleTrigger(result, r.engine.Text(), r.currentMode())
	r.listener.OnSession(r.sessions.Snapshot())
	r.execute(ctx, call)
}

func (r *Runner) handleCommand(ctx context.Context, cmd command) {
	switch cmd.kind {
	case cmdDismiss:
		r.sessions.Dismiss()
		r.listener.OnSession(r.sessions.Snapshot())
	case cmdResolve:
		r.sessions.Resolve()
		r.listener.OnSession(r.sessions.Snapshot())
	case cmdUserTurn:
		call := r.sessions.SendUserTurn(cmd.text)
		r.listener.OnSession(r.sessions.Snapshot())
		r.execute(ctx, call)
	case cmdSelectMode:
		if r.catalog.Mode(cmd.text) != nil {
			r.mode = cmd.text
			r.logger.Info("writing mode changed", "mode", cmd.text)
		} else {
			r.logger.Warn("unknown writing mode", "mode", cmd.text)
		}
	case cmdForceFire:
		m := r.engine.Recompute()
		result := r.scheduler.ForceFire(cmd.text, m, r.mode)
		if result == nil {
			return
		}
		r.fire(ctx, *result)
	case cmdPause:
		r.scheduler.Pause()
	case cmdResume:
		r.scheduler.Resume()
	case cmdCatalog:
		r.catalog = cmd.catalog
		r.scheduler.UpdateRules(cmd.catalog.Rules)
		r.prompts.SetMethodology(cmd.catalog.Methodology)
		if r.catalog.Mode(r.mode) == nil && len(cmd.catalog.Modes) > 0 {
			r.mode = cmd.catalog.Modes[0].ID
		}
		r.logger.Info("rule catalog updated", "rules", len(cmd.catalog.Rules))
	}
}

func (r *Runner) handleResponse(ctx context.Context, res backendResult) {
	next := r.sessions.HandleResponse(res.generation, res.resp, res.err)
	r.listener.OnSession(r.sessions.Snapshot())
	r.execute(ctx, next)
}

func (r *Runner) execute(ctx context.Context, call *coach.BackendCall) {
	if call == nil {
		return
	}
	go func() {
		resp, err := r.client.Chat(ctx, call.Request)
		select {
		case r.responses <- backendResult{generation: call.Generation, resp: resp, err: err}:
		case <-ctx.Done():
		}
	}()
}

func (r *Runner) currentMode() *domain.WritingMode {
	return r.catalog.Mode(r.mode)
}
