// Package watch re-runs scatter reconciliation whenever a scene file changes
// on disk.
package watch

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is how long the watcher waits for writes to settle.
const DefaultDebounce = 250 * time.Millisecond

// Watcher calls OnChange after the watched file was written and no further
// events arrived for Debounce.
type Watcher struct {
	Path     string
	Debounce time.Duration
	OnChange func() error
	Log      *zap.Logger
}

// Run watches until ctx is cancelled. The directory is watched rather than
// the file so editors that replace the file on save are still seen.
func (w *Watcher) Run(ctx context.Context) error {
	log := w.Log
	if log == nil {
		log = zap.NewNop()
	}
	debounce := w.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	path, err := filepath.Abs(w.Path)
	if err != nil {
		return err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := fw.Add(filepath.Dir(path)); err != nil {
		return err
	}
	log.Info("watching scene", zap.String("path", path), zap.Duration("debounce", debounce))

	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			log.Debug("scene event", zap.String("op", event.Op.String()))
			fire = time.After(debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			log.Warn("watch error", zap.Error(err))

		case <-fire:
			fire = nil
			if err := w.OnChange(); err != nil {
				log.Warn("scene update failed", zap.Error(err))
			}
		}
	}
}
