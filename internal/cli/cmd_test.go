package cli

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/muse/internal/domain"
	"github.com/alexanderramin/muse/internal/testutil"
)

func testApp(t *testing.T) *App {
	t.Helper()
	return &App{
		Store:    testutil.TempStore(t),
		RulesDir: t.TempDir(),
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func execute(t *testing.T, a *App, args ...string) string {
	t.Helper()
	var buf bytes.Buffer
	root := NewRootCmd(a)
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(args)
	require.NoError(t, root.Execute())
	return buf.String()
}

func TestStatsCmd(t *testing.T) {
	a := testApp(t)
	now := time.Now()
	require.NoError(t, a.Store.RecordSample(now, 24, 300))
	require.NoError(t, a.Store.RecordTrigger(domain.TriggerEvent{
		ID:        "ev-1",
		RuleName:  "heavy_deletion",
		Timestamp: now,
		Metrics:   domain.WritingMetrics{WordsPerMinute: 24},
	}))

	out := execute(t, a, "stats")
	assert.Contains(t, out, "avg 24 wpm")
	assert.Contains(t, out, "heavy_deletion")
}

func TestStatsCmd_EmptyStore(t *testing.T) {
	out := execute(t, testApp(t), "stats", "--since", "1h")
	assert.Contains(t, out, "No speed samples")
	assert.Contains(t, out, "No trigger events")
}

func TestRulesCmd_DefaultCatalog(t *testing.T) {
	out := execute(t, testApp(t), "rules")
	assert.Contains(t, out, "fast_flat_prose")
	assert.Contains(t, out, "long_stall")
}

func TestRulesCmd_InvalidCatalogFallsBack(t *testing.T) {
	a := testApp(t)
	bad := []byte("rules:\n  - name: broken\n    conditions:\n      wordsPerMinute: \"?? 5\"\n")
	require.NoError(t, os.WriteFile(filepath.Join(a.RulesDir, "rules.yaml"), bad, 0o644))

	out := execute(t, a, "rules")
	assert.Contains(t, out, "showing defaults")
	assert.Contains(t, out, "fast_flat_prose")
}
