package rules

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce coalesces the burst of fsnotify events an editor emits
// for a single save.
const watchDebounce = 250 * time.Millisecond

// Watch observes the catalog directory and invokes onUpdate with a
// freshly loaded catalog after each change. Load failures keep the
// previous catalog and are logged; the watcher keeps running until the
// context is canceled.
func Watch(ctx context.Context, dir string, logger *slog.Logger, onUpdate func(Catalog)) error {
	if logger == nil {
		logger = slog.Default()
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return err
	}

	go func() {
		defer watcher.Close()
		var pending *time.Timer
		reload := make(chan struct{}, 1)

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !relevantFile(event.Name) {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
					continue
				}
				if pending != nil {
					pending.Stop()
				}
				pending = time.AfterFunc(watchDebounce, func() {
					select {
					case reload <- struct{}{}:
					default:
					}
				})
			case <-reload:
				cat, err := Load(dir)
				if err != nil {
					logger.Warn("rule catalog reload failed, keeping previous",
						"dir", dir, "error", err.Error())
					continue
				}
				logger.Info("rule catalog reloaded", "rules", len(cat.Rules), "modes", len(cat.Modes))
				onUpdate(cat)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("catalog watcher error", "error", err.Error())
			}
		}
	}()
	return nil
}

func relevantFile(path string) bool {
	switch filepath.Base(path) {
	case rulesFile, modesFile, methodologyFile:
		return true
	}
	return false
}
