package trigger

import (
	"testing"
	"time"

	"github.com/alexanderramin/muse/internal/domain"
	"github.com/alexanderramin/muse/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flowRule() domain.TriggerRule {
	return domain.TriggerRule{
		Name: "fast_flat_prose",
		Conditions: map[domain.MetricKey]string{
			domain.KeyWordsPerMinute: "> 40",
			domain.KeyAdjectiveRatio: "< 0.05",
		},
		AppliesToModes: []string{"scene"},
		Priority:       domain.PriorityMedium,
		PromptGuidance: "Suggest adding sensory detail.",
	}
}

func stallRule() domain.TriggerRule {
	return domain.TriggerRule{
		Name: "long_stall",
		Conditions: map[domain.MetricKey]string{
			domain.KeyPauseDurationSeconds: "> 180",
		},
		Priority:             domain.PriorityHigh,
		RequiresConversation: true,
		PromptGuidance:       "Ask what is blocking the writer.",
	}
}

func flowMetrics() domain.WritingMetrics {
	return domain.WritingMetrics{WordsPerMinute: 45, AdjectiveRatio: 0.02}
}

func TestTick_ScenarioA_FiresOnceThenCoolsDown(t *testing.T) {
	clock := testutil.NewClock()
	s := NewScheduler([]domain.TriggerRule{flowRule()}, nil, WithClock(clock.Now))

	result := s.Tick(flowMetrics(), "scene")
	require.NotNil(t, result)
	assert.Equal(t, "fast_flat_prose", result.Rule.Name)

	// Conditions persist; cooldown suppresses re-firing.
	for i := 0; i < 9; i++ {
		clock.Advance(30 * time.Second)
		assert.Nil(t, s.Tick(flowMetrics(), "scene"), "tick %d inside cooldown", i)
	}
	clock.Advance(30 * time.Second) // 300s elapsed
	assert.NotNil(t, s.Tick(flowMetrics(), "scene"))
}

func TestTick_ScenarioB_AllModesRule(t *testing.T) {
	clock := testutil.NewClock()
	s := NewScheduler([]domain.TriggerRule{stallRule()}, nil, WithClock(clock.Now))

	m := domain.WritingMetrics{PauseDurationSeconds: 200}
	for _, mode := range []string{"scene", "reflection", ""} {
		s2 := NewScheduler([]domain.TriggerRule{stallRule()}, nil, WithClock(clock.Now))
		assert.NotNil(t, s2.Tick(m, mode), "mode %q", mode)
	}
	assert.NotNil(t, s.Tick(m, "anything"))
}

func TestTick_ModeFilter(t *testing.T) {
	clock := testutil.NewClock()
	s := NewScheduler([]domain.TriggerRule{flowRule()}, nil, WithClock(clock.Now))

	assert.Nil(t, s.Tick(flowMetrics(), "reflection"))
	assert.NotNil(t, s.Tick(flowMetrics(), "scene"))
}

func TestTick_AtMostOnePerTick(t *testing.T) {
	clock := testutil.NewClock()
	other := flowRule()
	other.Name = "also_matching"
	s := NewScheduler([]domain.TriggerRule{flowRule(), other}, nil, WithClock(clock.Now))

	result := s.Tick(flowMetrics(), "scene")
	require.NotNil(t, result)
	assert.Equal(t, "fast_flat_prose", result.Rule.Name, "declaration order wins")
	assert.Len(t, s.History(), 1)
}

func TestTick_HighPriorityOverrideWindow(t *testing.T) {
	clock := testutil.NewClock()
	s := NewScheduler([]domain.TriggerRule{flowRule(), stallRule()}, nil, WithClock(clock.Now))

	require.NotNil(t, s.Tick(flowMetrics(), "scene"))

	stalled := domain.WritingMetrics{PauseDurationSeconds: 200}

	// 150s after any fire: even the high-priority rule must wait.
	clock.Advance(150 * time.Second)
	assert.Nil(t, s.Tick(stalled, "scene"))

	// 180s: the high-priority override window has elapsed, the global
	// 300s window has not.
	clock.Advance(30 * time.Second)
	result := s.Tick(stalled, "scene")
	require.NotNil(t, result)
	assert.Equal(t, "long_stall", result.Rule.Name)

	// A medium rule measured from this new fire still needs 300s.
	clock.Advance(200 * time.Second)
	assert.Nil(t, s.Tick(flowMetrics(), "scene"))
	clock.Advance(100 * time.Second)
	assert.NotNil(t, s.Tick(flowMetrics(), "scene"))
}

func TestTick_DwellTime(t *testing.T) {
	clock := testutil.NewClock()
	rule := flowRule()
	rule.DelaySeconds = 60
	s := NewScheduler([]domain.TriggerRule{rule}, nil, WithClock(clock.Now))

	// First observation starts the dwell clock; no fire yet.
	assert.Nil(t, s.Tick(flowMetrics(), "scene"))
	clock.Advance(30 * time.Second)
	assert.Nil(t, s.Tick(flowMetrics(), "scene"))

	// Conditions lapse; the dwell clock restarts.
	clock.Advance(30 * time.Second)
	assert.Nil(t, s.Tick(domain.WritingMetrics{WordsPerMinute: 10}, "scene"))
	clock.Advance(30 * time.Second)
	assert.Nil(t, s.Tick(flowMetrics(), "scene"), "dwell restarted after lapse")

	clock.Advance(60 * time.Second)
	assert.NotNil(t, s.Tick(flowMetrics(), "scene"))
}

func TestForceFire_BypassesRateLimit(t *testing.T) {
	clock := testutil.NewClock()
	s := NewScheduler([]domain.TriggerRule{flowRule()}, nil, WithClock(clock.Now))

	require.NotNil(t, s.Tick(flowMetrics(), "scene"))
	result := s.ForceFire("fast_flat_prose", flowMetrics(), "scene")
	require.NotNil(t, result)
	assert.Len(t, s.History(), 2)

	assert.Nil(t, s.ForceFire("no_such_rule", flowMetrics(), "scene"))
}

func TestPauseResume(t *testing.T) {
	clock := testutil.NewClock()
	s := NewScheduler([]domain.TriggerRule{flowRule()}, nil, WithClock(clock.Now))

	s.Pause()
	assert.Nil(t, s.Tick(flowMetrics(), "scene"))
	s.Resume()
	assert.NotNil(t, s.Tick(flowMetrics(), "scene"))
}

func TestUpdateRules_SwapsWholesale(t *testing.T) {
	clock := testutil.NewClock()
	s := NewScheduler([]domain.TriggerRule{flowRule()}, nil, WithClock(clock.Now))
	require.NotNil(t, s.Tick(flowMetrics(), "scene"))

	s.UpdateRules([]domain.TriggerRule{stallRule()})
	clock.Advance(400 * time.Second)
	assert.Nil(t, s.Tick(flowMetrics(), "scene"), "old rule gone after swap")

	// Last-fire time survives the swap: cooldown already elapsed here.
	result := s.Tick(domain.WritingMetrics{PauseDurationSeconds: 200}, "scene")
	assert.NotNil(t, result)
}

func TestHistoryCapped(t *testing.T) {
	clock := testutil.NewClock()
	s := NewScheduler([]domain.TriggerRule{flowRule()}, nil, WithClock(clock.Now))

	for i := 0; i < 120; i++ {
		require.NotNil(t, s.ForceFire("fast_flat_prose", flowMetrics(), "scene"))
	}
	history := s.History()
	assert.Len(t, history, 100)
}

type recordingSink struct {
	events []domain.TriggerEvent
}

func (r *recordingSink) RecordTrigger(event domain.TriggerEvent) error {
	r.events = append(r.events, event)
	return nil
}

func TestEventSinkReceivesFire(t *testing.T) {
	clock := testutil.NewClock()
	sink := &recordingSink{}
	s := NewScheduler([]domain.TriggerRule{flowRule()}, nil,
		WithClock(clock.Now), WithEventSink(sink))

	require.NotNil(t, s.Tick(flowMetrics(), "scene"))
	require.Len(t, sink.events, 1)
	assert.Equal(t, "fast_flat_prose", sink.events[0].RuleName)
	assert.NotEmpty(t, sink.events[0].ID)
}
