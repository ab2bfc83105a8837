package host

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// pollFallback guards against editors that replace files in ways the
// notify backend misses; the watcher re-reads at this cadence too.
const pollFallback = 2 * time.Second

// Watcher observes one document file and emits an Edit per revision.
type Watcher struct {
	path   string
	logger *slog.Logger
	edits  chan Edit

	lastText string
}

// NewWatcher creates a watcher for the given file path.
func NewWatcher(path string, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		path:   path,
		logger: logger,
		edits:  make(chan Edit, 16),
	}
}

// Edits is the stream of observed revisions.
func (w *Watcher) Edits() <-chan Edit {
	return w.edits
}

// Start reads the initial revision and begins watching. The initial
// content is NOT emitted as an edit: pre-existing text must not count
// as live composition.
func (w *Watcher) Start(ctx context.Context) error {
	data, err := os.ReadFile(w.path)
	if err != nil {
		return err
	}
	w.lastText = string(data)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	// Watch the directory: editors that save via rename-and-replace
	// drop the watch on the file itself.
	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		watcher.Close()
		return err
	}

	go func() {
		defer watcher.Close()
		defer close(w.edits)
		ticker := time.NewTicker(pollFallback)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(w.path) {
					continue
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
					w.emitRevision(ctx)
				}
			case <-ticker.C:
				w.emitRevision(ctx)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				w.logger.Warn("document watcher error", "error", err.Error())
			}
		}
	}()
	return nil
}

func (w *Watcher) emitRevision(ctx context.Context) {
	data, err := os.ReadFile(w.path)
	if err != nil {
		// Transient during rename-and-replace saves.
		return
	}
	text := string(data)
	if text == w.lastText {
		return
	}
	edit := NewEdit(w.lastText, text, time.Now())
	w.lastText = text

	select {
	case w.edits <- edit:
	case <-ctx.Done():
	}
}
