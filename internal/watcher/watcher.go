// Package watcher monitors a source tree for new video files and triggers a
// batch run once activity settles, so a half-downloaded season does not get
// organized file by file mid-transfer.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Nomadcxx/videolabels/internal/logging"
	"github.com/Nomadcxx/videolabels/internal/scanner"
)

// TriggerFunc runs one batch over the watched tree.
type TriggerFunc func(ctx context.Context) error

// Watcher debounces filesystem events into batch triggers.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	root      string
	settle    time.Duration
	trigger   TriggerFunc
	log       *logging.Logger
}

// New watches root recursively. settle is the quiet period required after
// the last relevant event before trigger fires.
func New(root string, settle time.Duration, trigger TriggerFunc, log *logging.Logger) (*Watcher, error) {
	if log == nil {
		log = logging.Nop()
	}
	if settle <= 0 {
		settle = 10 * time.Second
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("unable to create watcher: %w", err)
	}

	w := &Watcher{
		fsWatcher: fsWatcher,
		root:      root,
		settle:    settle,
		trigger:   trigger,
		log:       log,
	}

	if err := w.addRecursive(root); err != nil {
		fsWatcher.Close()
		return nil, err
	}
	return w, nil
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		if strings.HasPrefix(filepath.Base(path), ".") && path != root {
			return filepath.SkipDir
		}
		if err := w.fsWatcher.Add(path); err != nil {
			return fmt.Errorf("unable to watch %s: %w", path, err)
		}
		w.log.Debug("watcher", "watching directory", logging.F("dir", path))
		return nil
	})
}

// Run blocks until ctx is cancelled, firing the trigger after each settled
// burst of video-file activity.
func (w *Watcher) Run(ctx context.Context) error {
	w.log.Info("watcher", "watching for new videos",
		logging.F("root", w.root), logging.F("settle", w.settle))

	var settleTimer *time.Timer
	var settleC <-chan time.Time

	arm := func() {
		if settleTimer == nil {
			settleTimer = time.NewTimer(w.settle)
			settleC = settleTimer.C
			return
		}
		if !settleTimer.Stop() {
			select {
			case <-settleTimer.C:
			default:
			}
		}
		settleTimer.Reset(w.settle)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}

			if event.Op&fsnotify.Create == fsnotify.Create {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if !strings.HasPrefix(filepath.Base(event.Name), ".") {
						w.fsWatcher.Add(event.Name)
						w.log.Debug("watcher", "watching new directory", logging.F("dir", event.Name))
					}
					arm()
					continue
				}
			}

			if scanner.IsVideoFile(event.Name) {
				w.log.Debug("watcher", "activity",
					logging.F("op", event.Op.String()), logging.F("file", filepath.Base(event.Name)))
				arm()
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.log.Warn("watcher", "filesystem watch error", logging.F("reason", err))

		case <-settleC:
			settleC = nil
			settleTimer = nil
			w.log.Info("watcher", "source settled, running batch")
			if err := w.trigger(ctx); err != nil {
				w.log.Error("watcher", "batch run failed", err)
			}
		}
	}
}

// Close stops the underlying filesystem watcher.
func (w *Watcher) Close() error {
	return w.fsWatcher.Close()
}
