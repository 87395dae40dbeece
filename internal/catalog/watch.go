package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// watchDebounce batches the burst of events a single save produces
const watchDebounce = 200 * time.Millisecond

// WatchSeed calls onChange with the reparsed seed whenever the file at path
// changes, until ctx is done. The parent directory is watched so editors
// that replace the file are picked up. A seed that fails to parse is
// logged and skipped.
func WatchSeed(ctx context.Context, path string, logger *zap.Logger, onChange func(*Seed)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	logger.Info("watching seed file", zap.String("path", abs))

	timer := time.NewTimer(watchDebounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				timer.Reset(watchDebounce)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("seed watcher error", zap.Error(err))

		case <-timer.C:
			seed, err := LoadSeed(abs)
			if err != nil {
				logger.Warn("reload seed failed", zap.String("path", abs), zap.Error(err))
				continue
			}
			logger.Info("seed reloaded", zap.String("path", abs), zap.Int("items", seed.Count()))
			onChange(seed)
		}
	}
}
