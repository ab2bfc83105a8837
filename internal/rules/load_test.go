package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alexanderramin/muse/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCatalog(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
}

const validRules = `
rules:
  - name: fast_flat_prose
    description: fast but bare
    conditions:
      wordsPerMinute: "> 40"
      adjectiveRatio: "< 0.05"
    appliesToModes: [scene]
    priority: medium
    delaySeconds: 30
    promptGuidance: Suggest sensory detail.
  - name: long_stall
    conditions:
      pauseDurationSeconds: "> 180"
    appliesToModes: all
    priority: high
    requiresConversation: true
    openingMessage: Stuck? Let's talk.
`

const validModes = `
modes:
  - id: scene
    label: Scene drafting
    triggers: [fast_flat_prose]
    guidance: Favor pacing notes.
  - id: reflection
    label: Reflection
`

func TestLoad_ValidCatalog(t *testing.T) {
	dir := t.TempDir()
	writeCatalog(t, dir, map[string]string{
		"rules.yaml":     validRules,
		"modes.yaml":     validModes,
		"methodology.md": "Coach gently.",
	})

	cat, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "Coach gently.", cat.Methodology)
	require.Len(t, cat.Rules, 2)
	require.Len(t, cat.Modes, 2)

	fast := cat.Rules[0]
	assert.Equal(t, []string{"scene"}, fast.AppliesToModes)
	assert.Equal(t, domain.PriorityMedium, fast.Priority)
	assert.Equal(t, 30, fast.DelaySeconds)
	assert.Equal(t, "> 40", fast.Conditions[domain.KeyWordsPerMinute])

	stall := cat.Rules[1]
	assert.Empty(t, stall.AppliesToModes, `"all" normalizes to empty`)
	assert.True(t, stall.AppliesTo("anything"))
	assert.True(t, stall.RequiresConversation)

	assert.NotNil(t, cat.Mode("scene"))
	assert.Nil(t, cat.Mode("missing"))
}

func TestLoad_MissingFilesFallBackToDefaults(t *testing.T) {
	cat, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, DefaultCatalog().Rules, cat.Rules)
	assert.NotEmpty(t, cat.Methodology)
}

func TestLoad_InvalidCatalogReturnsDefaultsWithError(t *testing.T) {
	tests := []struct {
		name  string
		rules string
	}{
		{"unknown metric key", "rules:\n  - name: r\n    conditions:\n      typoKey: \"> 1\"\n"},
		{"malformed expression", "rules:\n  - name: r\n    conditions:\n      wordsPerMinute: \"!! 40\"\n"},
		{"bad priority", "rules:\n  - name: r\n    priority: urgent\n"},
		{"duplicate names", "rules:\n  - name: r\n  - name: r\n"},
		{"empty name", "rules:\n  - description: nameless\n"},
		{"negative delay", "rules:\n  - name: r\n    delaySeconds: -5\n"},
		{"not yaml", "{{{{"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeCatalog(t, dir, map[string]string{"rules.yaml": tt.rules})
			cat, err := Load(dir)
			require.Error(t, err)
			assert.Equal(t, DefaultCatalog().Rules, cat.Rules, "falls back to defaults")
		})
	}
}

func TestDefaultCatalogIsValid(t *testing.T) {
	cat := DefaultCatalog()
	require.NotEmpty(t, cat.Rules)
	for _, r := range cat.Rules {
		assert.NotEmpty(t, r.Name)
		assert.True(t, domain.ValidPriorities[string(r.Priority)], r.Name)
		for key := range r.Conditions {
			assert.True(t, domain.ValidMetricKeys[key], "rule %s key %s", r.Name, key)
		}
	}
}
