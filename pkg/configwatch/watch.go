// Package configwatch reloads a YAML config file when it changes on disk.
// Both binaries wrap Watch with their own loader.
package configwatch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// settle coalesces the burst of events an editor produces for one save.
const settle = 50 * time.Millisecond

// Watch calls load(path) whenever the file changes and passes the result to
// onChange. It watches the parent directory so atomic saves (write to a temp
// file, rename over the original) are seen. name prefixes log lines and
// errors. Runs until ctx is cancelled.
//
// A reload that load rejects is logged and onChange is not called, so the
// previous config stays in effect.
func Watch[T any](ctx context.Context, path, name string, load func(string) (T, error), onChange func(T)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("%s: new watcher: %w", name, err)
	}
	defer watcher.Close()

	target := filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("%s: watch %q: %w", name, path, err)
	}
	log := slog.With("component", name, "path", path)
	log.Info(name + ": watching")

	var reload <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				reload = time.After(settle)
			}

		case <-reload:
			reload = nil
			cfg, err := load(path)
			if err != nil {
				log.Error(name+": reload rejected, previous values kept", "err", err)
				continue
			}
			log.Info(name + ": reloaded")
			onChange(cfg)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error(name+": watcher error", "err", err)
		}
	}
}
