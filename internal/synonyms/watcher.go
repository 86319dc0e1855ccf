package synonyms

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounce groups the burst of events editors emit for a single save.
const debounce = 200 * time.Millisecond

// ReloadCallback is called after a successful watcher-driven reload.
type ReloadCallback func(aliases int)

// Watch reloads the synonym file into h whenever it changes, until ctx is
// cancelled. It watches the parent directory so that files replaced by
// rename (as most editors save) are picked up. A file that fails to load
// is logged and the previous table stays active.
func Watch(ctx context.Context, path string, h *Holder, logger *slog.Logger, cb ReloadCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	path = filepath.Clean(path)
	if err := w.Add(filepath.Dir(path)); err != nil {
		return err
	}

	logger.Info("synonyms: watching", slog.String("path", path))

	var reloadTimer *time.Timer
	var reloadCh <-chan time.Time

	scheduleReload := func() {
		if reloadTimer == nil {
			reloadTimer = time.NewTimer(debounce)
			reloadCh = reloadTimer.C
		} else {
			reloadTimer.Reset(debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reloadTimer != nil {
				reloadTimer.Stop()
			}
			logger.Info("synonyms: watcher stopped")
			return nil

		case <-reloadCh:
			n, loadErr := h.Reload(path)
			if loadErr != nil {
				logger.Warn("synonyms: reload failed, keeping previous table",
					slog.String("path", path),
					slog.String("error", loadErr.Error()))
				continue
			}
			logger.Info("synonyms: reloaded", slog.String("path", path), slog.Int("aliases", n))
			if cb != nil {
				cb(n)
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != path {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
				scheduleReload()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("synonyms: watcher error", slog.String("error", watchErr.Error()))
		}
	}
}
