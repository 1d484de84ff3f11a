package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/matzehuels/pnrjson/pkg/errors"
)

// watchDebounce collapses the burst of events editors emit for one save.
const watchDebounce = 100 * time.Millisecond

// runLogged calls fn and logs its error. A corrupt design panics out of the
// exporter; that panic is logged as well so a watch session survives it.
// Any other panic is re-raised.
func runLogged(logger *log.Logger, fn func() error) {
	defer func() {
		if p := recover(); p != nil {
			err, ok := p.(*errors.Error)
			if !ok || err.Code != errors.ErrCodeCorruptDesign {
				panic(p)
			}
			logger.Error("Export failed", "err", err)
		}
	}()
	if err := fn(); err != nil {
		logger.Error("Export failed", "err", err)
	}
}

// watchFile calls fn every time path is written or re-created, until ctx is
// done. Errors from fn are logged and watching continues.
func watchFile(ctx context.Context, path string, logger *log.Logger, fn func() error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory so atomic saves (rename over the file) are seen.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch directory: %w", err)
	}
	filename := filepath.Base(path)
	logger.Info("Watching for changes", "file", path)

	timer := time.NewTimer(watchDebounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != filename {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				logger.Debug("design changed", "event", event.Op.String())
				timer.Reset(watchDebounce)
			}

		case <-timer.C:
			runLogged(logger, fn)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("File watcher error", "err", err)

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
