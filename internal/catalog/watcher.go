package catalog

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/acrsantana/project-guide/internal/runstore"
)

// Watch starts an fsnotify watcher on the runs root and keeps the catalog
// reconciled with disk until ctx is cancelled. Run directories created at
// runtime (by an analyzer running in another process) are added to the
// watch list, and any artifact change is debounced into a Sync pass that
// invokes cb for each mutated run.
func Watch(ctx context.Context, db *DB, files runstore.Provider, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(files.Root()); err != nil {
		return err
	}
	runs, err := files.Runs()
	if err != nil {
		return err
	}
	for _, run := range runs {
		// Best-effort: a run dir deleted mid-loop is caught by reconcile.
		_ = w.Add(files.Root() + string(os.PathSeparator) + run.ID)
	}

	logger.Info("watcher: started", slog.String("root", files.Root()))

	// syncTimer debounces bursts of artifact writes into one pass.
	var syncTimer *time.Timer
	var syncCh <-chan time.Time

	scheduleSync := func() {
		if syncTimer == nil {
			syncTimer = time.NewTimer(200 * time.Millisecond)
			syncCh = syncTimer.C
		} else {
			syncTimer.Reset(200 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if syncTimer != nil {
				syncTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-syncCh:
			if err := Sync(db, files, logger, cb); err != nil {
				logger.Warn("watcher: sync failed", slog.String("error", err.Error()))
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			// New run directories join the watch list so their artifact
			// writes are seen.
			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := w.Add(ev.Name); addErr != nil {
						logger.Warn("watcher: add run dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
					} else {
						logger.Debug("watcher: watching run dir", slog.String("path", ev.Name))
					}
				}
			}

			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				scheduleSync()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
