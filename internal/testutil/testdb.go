package testutil

import (
	"path/filepath"
	"testing"

	"github.com/alexanderramin/muse/internal/store"
)

// TempStore creates a store backed by a temp-dir SQLite file with all
// migrations applied. It is closed when the test completes.
func TempStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "muse.db"))
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}
