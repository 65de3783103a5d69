// Package watch re-triggers review runs when the dataset changes on disk.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/storycurator/curator/internal/infrastructure/storage"
)

// Debouncer coalesces rapid events into a single callback invocation.
type Debouncer struct {
	window   time.Duration
	mu       sync.Mutex
	timer    *time.Timer
	callback func()
}

func NewDebouncer(window time.Duration, callback func()) *Debouncer {
	return &Debouncer{window: window, callback: callback}
}

// Trigger resets the debounce timer. The callback fires after the window
// elapses with no further triggers.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, d.callback)
}

// Stop cancels any pending callback.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
}

// DatasetWatcher watches a dataset directory and fires once the edits have
// settled. Only the files a review run actually reads count: stories.csv,
// skills.csv and the rubric markdown files. An editor writing a swap file
// next to them never triggers a run.
type DatasetWatcher struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration
	logger   *zap.Logger
	onChange func()
}

func NewDatasetWatcher(debounce time.Duration, logger *zap.Logger, onChange func()) (*DatasetWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if debounce == 0 {
		debounce = 500 * time.Millisecond
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DatasetWatcher{
		watcher:  w,
		debounce: debounce,
		logger:   logger,
		onChange: onChange,
	}, nil
}

// Watch registers the dataset root and its rubric directory.
func (w *DatasetWatcher) Watch(root string) error {
	if err := w.watcher.Add(root); err != nil {
		return fmt.Errorf("watch %s: %w", root, err)
	}
	rubricDir := filepath.Join(root, storage.RubricDir)
	if info, err := os.Stat(rubricDir); err == nil && info.IsDir() {
		if err := w.watcher.Add(rubricDir); err != nil {
			return fmt.Errorf("watch %s: %w", rubricDir, err)
		}
	}
	return nil
}

// Run starts the event loop. It blocks until the context is cancelled.
func (w *DatasetWatcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	debouncer := NewDebouncer(w.debounce, w.onChange)
	defer debouncer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			// A rubric directory created after startup still needs watching.
			if event.Op.Has(fsnotify.Create) && filepath.Base(event.Name) == storage.RubricDir {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = w.watcher.Add(event.Name)
				}
				continue
			}
			if !isDatasetFile(event.Name) {
				continue
			}
			w.logger.Debug("dataset changed", zap.String("path", event.Name), zap.String("op", event.Op.String()))
			debouncer.Trigger()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watcher error: %w", err)
		}
	}
}

// isDatasetFile reports whether a path belongs to the review dataset.
func isDatasetFile(path string) bool {
	base := filepath.Base(path)
	if base == storage.StoriesFile || base == storage.SkillsFile {
		return true
	}
	return filepath.Ext(base) == ".md" && filepath.Base(filepath.Dir(path)) == storage.RubricDir
}
