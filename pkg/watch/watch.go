// Package watch re-runs target selection whenever the change-info document
// changes. Intended for iterating on change sets locally, not for CI runs.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ritzau/build-optimizer/pkg/logging"
)

// FileWatcher watches a single document and invokes a callback after edits
// settle. Rapid write bursts (editors, scp) are coalesced by a quiet period.
type FileWatcher struct {
	watcher     *fsnotify.Watcher
	path        string
	quietPeriod time.Duration
	onChange    func()
}

// NewFileWatcher creates a watcher for path. onChange runs on the watcher
// goroutine once per settled burst of edits.
func NewFileWatcher(path string, quietPeriod time.Duration, onChange func()) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	// Watch the containing directory; editors typically replace the file,
	// which would drop a watch on the file itself.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(path), err)
	}

	return &FileWatcher{
		watcher:     watcher,
		path:        path,
		quietPeriod: quietPeriod,
		onChange:    onChange,
	}, nil
}

// Run processes events until ctx is cancelled
func (fw *FileWatcher) Run(ctx context.Context) error {
	defer fw.watcher.Close()

	logging.Info("watching change info", "path", fw.path)

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(fw.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			logging.Debug("change info modified", "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(fw.quietPeriod)
				timerC = timer.C
			} else {
				timer.Reset(fw.quietPeriod)
			}

		case <-timerC:
			timer = nil
			timerC = nil
			fw.onChange()

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return nil
			}
			logging.Warn("watch error", "error", err)
		}
	}
}
