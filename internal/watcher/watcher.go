// Package watcher reloads the sightings document when the scraper rewrites it.
package watcher

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/debounce"
	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/errors"
	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/logger"
)

// DefaultDelay collapses the burst of events produced by a write-then-rename.
const DefaultDelay = 250 * time.Millisecond

// Stats counts watcher activity.
type Stats struct {
	Events  int64
	Reloads int64
	Errors  int64
}

// Watcher watches the directory holding one file and calls onChange after
// changes to that file settle. The directory is watched so atomic renames
// over the file are seen.
type Watcher struct {
	path     string
	fs       *fsnotify.Watcher
	debounce *debounce.Debouncer
	onChange func(context.Context)
	log      logger.Logger

	events  atomic.Int64
	reloads atomic.Int64
	errs    atomic.Int64

	runMu     sync.Mutex
	closeOnce sync.Once
}

// New creates a watcher for path. onChange runs on a timer goroutine, never
// concurrently with itself.
func New(path string, delay time.Duration, onChange func(context.Context)) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.New(err).
			Category(errors.CategoryFileIO).
			Component("watcher").
			FileContext(path, 0).
			Build()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.New(err).
			Category(errors.CategoryFileIO).
			Component("watcher").
			Build()
	}

	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		_ = fsw.Close()
		return nil, errors.New(err).
			Category(errors.CategoryFileIO).
			Component("watcher").
			Context("directory", filepath.Dir(abs)).
			Build()
	}

	return &Watcher{
		path:     abs,
		fs:       fsw,
		debounce: debounce.New(delay),
		onChange: onChange,
		log:      logger.Global().Module("watcher"),
	}, nil
}

// Path returns the absolute path of the watched file.
func (w *Watcher) Path() string { return w.path }

// Run processes events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	w.log.Info("Watching sightings document", logger.String("path", w.path))
	defer w.Close()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, event)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.errs.Add(1)
			w.log.Warn("File watcher error", logger.Error(err))
		}
	}
}

func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}

	w.events.Add(1)
	w.log.Debug("Sightings document changed", logger.String("op", event.Op.String()))

	w.debounce.Trigger(func() {
		if ctx.Err() != nil {
			return
		}
		w.runMu.Lock()
		defer w.runMu.Unlock()
		w.reloads.Add(1)
		w.onChange(ctx)
	})
}

// Stats returns activity counters.
func (w *Watcher) Stats() Stats {
	return Stats{
		Events:  w.events.Load(),
		Reloads: w.reloads.Load(),
		Errors:  w.errs.Load(),
	}
}

// Close stops watching and drops any pending reload.
func (w *Watcher) Close() {
	w.closeOnce.Do(func() {
		w.debounce.Stop()
		if err := w.fs.Close(); err != nil {
			w.log.Warn("Failed to close file watcher", logger.Error(err))
		}
	})
}
