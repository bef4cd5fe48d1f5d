package trigger

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"dmworker/internal/logger"
)

// Watch calls run whenever a file in dir whose name matches pattern is
// created or written. Bursts of events are coalesced: run fires once the
// directory has been quiet for debounce. Runs happen on the calling
// goroutine, so events arriving during a run lead to one follow-up run.
// Watch returns nil when ctx is done and the error of a failing run otherwise.
func Watch(ctx context.Context, dir, pattern string, debounce time.Duration, run RunFunc, log *logger.Logger) error {
	if _, err := filepath.Match(pattern, ""); err != nil {
		return fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	log.Info("Watching for input files", "dir", dir, "pattern", pattern)

	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}

			if match, _ := filepath.Match(pattern, filepath.Base(event.Name)); !match {
				continue
			}

			log.Debug("Input changed", "file", filepath.Base(event.Name), "op", event.Op.String())
			fire = time.After(debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			log.Warn("Watcher error", "error", err)

		case <-fire:
			fire = nil

			if err := run(ctx); err != nil {
				return err
			}
		}
	}
}
