package coach

import (
	"strings"
	"testing"

	"github.com/alexanderramin/muse/internal/domain"
	"github.com/alexanderramin/muse/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func advisoryTrigger() domain.TriggerResult {
	return domain.TriggerResult{
		Rule: domain.TriggerRule{
			Name:           "fast_flat_prose",
			PromptGuidance: "Suggest sensory detail.",
		},
		Metrics: domain.WritingMetrics{WordsPerMinute: 45},
	}
}

func conversationTrigger() domain.TriggerResult {
	tr := advisoryTrigger()
	tr.Rule.Name = "long_stall"
	tr.Rule.RequiresConversation = true
	return tr
}

func newTestManager(cfg Config) *Manager {
	return NewManager(cfg, NewPromptBuilder("Write with momentum."), nil)
}

func reply(text string) *llm.ChatResponse {
	return &llm.ChatResponse{Text: text}
}

func TestSingleShotAdvisory(t *testing.T) {
	m := newTestManager(DefaultConfig())
	require.Equal(t, domain.SessionIdle, m.Snapshot().Status)

	call := m.HandleTrigger(advisoryTrigger(), "some document text here", nil)
	require.NotNil(t, call)
	assert.Equal(t, llm.TaskAdvisory, call.Request.Task)
	assert.Equal(t, domain.SessionPending, m.Snapshot().Status)
	assert.Contains(t, call.Request.System, "Write with momentum.")
	assert.Contains(t, call.Request.System, "Suggest sensory detail.")
	require.Len(t, call.Request.Messages, 1)
	assert.Contains(t, call.Request.Messages[0].Content, "45.0 words/minute")
	assert.Contains(t, call.Request.Messages[0].Content, "some document text here")

	next := m.HandleResponse(call.Generation, reply("Slow down a little."), nil)
	assert.Nil(t, next)
	snap := m.Snapshot()
	assert.Equal(t, domain.SessionPending, snap.Status, "advisory awaits explicit dismissal")
	require.Len(t, snap.Turns, 1)
	assert.Equal(t, domain.RoleAssistant, snap.Turns[0].Role)

	m.Dismiss()
	snap = m.Snapshot()
	assert.Equal(t, domain.SessionIdle, snap.Status)
	assert.Empty(t, snap.Turns)
	assert.Nil(t, snap.ActiveRule)
	assert.Equal(t, domain.CloseDismissed, snap.LastClose)
}

func TestTriggerIgnoredWhileLive(t *testing.T) {
	m := newTestManager(DefaultConfig())
	require.NotNil(t, m.HandleTrigger(advisoryTrigger(), "", nil))
	assert.Nil(t, m.HandleTrigger(conversationTrigger(), "", nil))
	assert.Equal(t, domain.SessionPending, m.Snapshot().Status)
}

func TestConversationFlow(t *testing.T) {
	m := newTestManager(DefaultConfig())

	call := m.HandleTrigger(conversationTrigger(), "doc", nil)
	require.NotNil(t, call)
	assert.Equal(t, llm.TaskConversation, call.Request.Task)
	assert.Equal(t, domain.SessionConversing, m.Snapshot().Status)

	require.Nil(t, m.HandleResponse(call.Generation, reply("What has you stuck?"), nil))

	call = m.SendUserTurn("I can't find the right opening.")
	require.NotNil(t, call)
	require.Len(t, call.Request.Messages, 2)
	assert.Equal(t, "assistant", call.Request.Messages[0].Role)
	assert.Equal(t, "user", call.Request.Messages[1].Role)

	require.Nil(t, m.HandleResponse(call.Generation, reply("Try starting mid-scene."), nil))
	turns := m.Snapshot().Turns
	require.Len(t, turns, 3)
	assert.Equal(t, domain.RoleAssistant, turns[2].Role)
}

func TestOpeningMessageSkipsBackend(t *testing.T) {
	m := newTestManager(DefaultConfig())
	tr := conversationTrigger()
	tr.Rule.OpeningMessage = "Looks like you paused. Want to talk it through?"

	call := m.HandleTrigger(tr, "", nil)
	assert.Nil(t, call)
	snap := m.Snapshot()
	assert.Equal(t, domain.SessionConversing, snap.Status)
	require.Len(t, snap.Turns, 1)
	assert.Equal(t, tr.Rule.OpeningMessage, snap.Turns[0].Text)
}

func TestUserTurnQueuesBehindInFlight(t *testing.T) {
	m := newTestManager(DefaultConfig())
	call := m.HandleTrigger(conversationTrigger(), "", nil)
	require.NotNil(t, call)
	require.Nil(t, m.HandleResponse(call.Generation, reply("Opening question?"), nil))

	first := m.SendUserTurn("first message")
	require.NotNil(t, first)

	// Second message while the first is in flight: queued, no new call.
	assert.Nil(t, m.SendUserTurn("second message"))

	next := m.HandleResponse(first.Generation, reply("Answer one."), nil)
	require.NotNil(t, next, "queued turn issues the next call")
	last := next.Request.Messages[len(next.Request.Messages)-1]
	assert.Equal(t, "second message", last.Content)

	turns := m.Snapshot().Turns
	require.Len(t, turns, 4)
	assert.Equal(t, "first message", turns[1].Text)
	assert.Equal(t, "Answer one.", turns[2].Text)
	assert.Equal(t, "second message", turns[3].Text)
}

func TestAutoCloseOnWriting(t *testing.T) {
	m := newTestManager(DefaultConfig())
	call := m.HandleTrigger(conversationTrigger(), "", nil)
	require.NotNil(t, call)

	// Whitespace-only noise does not close.
	assert.False(t, m.NoteEdit(domain.EditDelta{Inserted: "  "}))
	assert.Equal(t, domain.SessionConversing, m.Snapshot().Status)

	closed := m.NoteEdit(domain.EditDelta{Inserted: "back to the draft"})
	assert.True(t, closed)
	snap := m.Snapshot()
	assert.Equal(t, domain.SessionIdle, snap.Status)
	assert.Empty(t, snap.Turns)
	assert.Equal(t, domain.CloseResumedWriting, snap.LastClose)

	// The in-flight response is now stale: no mutation, no display.
	assert.Nil(t, m.HandleResponse(call.Generation, reply("Too late."), nil))
	assert.Empty(t, m.Snapshot().Turns)
	assert.Equal(t, domain.SessionIdle, m.Snapshot().Status)
}

func TestAutoCloseDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AutoCloseOnWriting = false
	m := newTestManager(cfg)
	require.NotNil(t, m.HandleTrigger(conversationTrigger(), "", nil))

	assert.False(t, m.NoteEdit(domain.EditDelta{Inserted: "typing again"}))
	assert.Equal(t, domain.SessionConversing, m.Snapshot().Status)
}

func TestMaxTurnsForcesClose(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxConversationTurns = 3
	m := newTestManager(cfg)

	call := m.HandleTrigger(conversationTrigger(), "", nil)
	require.NotNil(t, call)
	require.Nil(t, m.HandleResponse(call.Generation, reply("one"), nil))

	call = m.SendUserTurn("reply one")
	require.NotNil(t, call)
	require.Nil(t, m.HandleResponse(call.Generation, reply("two"), nil))
	assert.Equal(t, domain.SessionConversing, m.Snapshot().Status)

	call = m.SendUserTurn("reply two")
	require.NotNil(t, call)
	require.Nil(t, m.HandleResponse(call.Generation, reply("three"), nil))

	snap := m.Snapshot()
	assert.Equal(t, domain.SessionIdle, snap.Status, "third exchange forces close")
	assert.Empty(t, snap.Turns)
	assert.Equal(t, domain.CloseMaxTurns, snap.LastClose)
}

func TestBackendFailureSurfacesWithoutCorruption(t *testing.T) {
	m := newTestManager(DefaultConfig())
	call := m.HandleTrigger(conversationTrigger(), "", nil)
	require.NotNil(t, call)
	require.Nil(t, m.HandleResponse(call.Generation, reply("Opening?"), nil))

	call = m.SendUserTurn("help me")
	require.NotNil(t, call)
	before := len(m.Snapshot().Turns)

	assert.Nil(t, m.HandleResponse(call.Generation, nil, llm.ErrRateLimited))
	snap := m.Snapshot()
	assert.Equal(t, domain.SessionConversing, snap.Status)
	assert.Len(t, snap.Turns, before, "turn history intact after failure")
	assert.Contains(t, snap.LastError, "rate limited")
}

func TestStaleGenerationDropped(t *testing.T) {
	m := newTestManager(DefaultConfig())
	call := m.HandleTrigger(advisoryTrigger(), "", nil)
	require.NotNil(t, call)

	assert.Nil(t, m.HandleResponse(call.Generation-1, reply("from a past life"), nil))
	assert.Empty(t, m.Snapshot().Turns)
}

func TestResolveAndReset(t *testing.T) {
	m := newTestManager(DefaultConfig())
	require.NotNil(t, m.HandleTrigger(advisoryTrigger(), "", nil))
	m.Resolve()
	assert.Equal(t, domain.CloseResolved, m.Snapshot().LastClose)

	require.NotNil(t, m.HandleTrigger(conversationTrigger(), "", nil))
	m.Resolve()
	assert.Equal(t, domain.SessionConversing, m.Snapshot().Status, "resolve only applies to pending")
	m.Reset()
	assert.Equal(t, domain.SessionIdle, m.Snapshot().Status)
}

func TestMethodologyTruncation(t *testing.T) {
	long := strings.Repeat("m", methodologyCharLimit+500)
	b := NewPromptBuilder(long)
	system := b.SystemContext(nil, nil)
	assert.Contains(t, system, "[... methodology truncated ...]")
	assert.Less(t, len(system), len(long)+500)
}

func TestLastWords(t *testing.T) {
	assert.Equal(t, "", LastWords("", 500))
	assert.Equal(t, "a b c", LastWords("a b c", 500))

	many := strings.Fields(strings.Repeat("w ", 600))
	got := LastWords(strings.Join(many, " "), 500)
	assert.Len(t, strings.Fields(got), 500)
}
