package cli

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mark3labs/bru2openapi/internal/bru"
)

// watchDebounce is how long a burst of events must stay quiet before the
// collection is processed again.
var watchDebounce = 300 * time.Millisecond

// watchCollection runs fn once, then again after every debounced burst of
// .bru changes under root, until ctx is cancelled. A failing run is logged
// and watching continues.
func watchCollection(ctx context.Context, root string, logger *slog.Logger, fn func() error) error {
	if err := fn(); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	defer watcher.Close()

	if err := addTree(watcher, root); err != nil {
		return fmt.Errorf("watch %s: %w", root, err)
	}
	logger.Info("watching collection", "root", root)

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watch stopped")
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Create == fsnotify.Create {
				if st, err := os.Stat(event.Name); err == nil && st.IsDir() {
					if err := addTree(watcher, event.Name); err != nil {
						logger.Warn("cannot watch new directory", "dir", event.Name, "error", err)
					}
				}
			}
			if !relevant(event) {
				continue
			}
			logger.Debug("change detected", "file", event.Name, "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(watchDebounce)
			}
			fire = timer.C
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("file watcher error", "error", err)
		case <-fire:
			fire = nil
			if err := fn(); err != nil {
				logger.Error("regeneration failed", "error", err)
			}
		}
	}
}

// relevant reports whether an event can change the generated output: any
// change to a .bru file, or a removal or rename that may take a directory of
// them along.
func relevant(event fsnotify.Event) bool {
	if strings.EqualFold(filepath.Ext(event.Name), bru.Extension) {
		return true
	}
	return event.Op&(fsnotify.Remove|fsnotify.Rename) != 0
}

func addTree(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}
