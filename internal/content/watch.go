package content

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

const defaultDebounce = 100 * time.Millisecond

// Watcher reloads a content file into a Store whenever it changes on disk.
type Watcher struct {
	path     string
	store    *Store
	logger   zerolog.Logger
	debounce time.Duration
	onReload func(changed bool)
	fsw      *fsnotify.Watcher
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets how long the watcher waits for writes to settle.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) { w.debounce = d }
}

// WithReloadHook registers a callback run after every reload attempt that
// read the file successfully.
func WithReloadHook(fn func(changed bool)) WatcherOption {
	return func(w *Watcher) { w.onReload = fn }
}

// NewWatcher starts watching the directory holding path. Editors often
// replace files by rename, so the directory is watched rather than the file.
func NewWatcher(path string, store *Store, logger zerolog.Logger, opts ...WatcherOption) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve content path: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	w := &Watcher{
		path:     abs,
		store:    store,
		logger:   logger.With().Str("component", "content-watcher").Logger(),
		debounce: defaultDebounce,
		fsw:      fsw,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Run processes file events until ctx is cancelled, then closes the watcher.
func (w *Watcher) Run(ctx context.Context) {
	defer w.fsw.Close()

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			w.logger.Debug().Str("op", event.Op.String()).Msg("content file changed")
			timer.Reset(w.debounce)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Error().Err(err).Msg("fsnotify error")
		case <-timer.C:
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	text, err := LoadFile(w.path)
	if err != nil {
		// Rename-based saves briefly remove the file; keep the last good text.
		w.logger.Warn().Err(err).Msg("content reload skipped")
		return
	}
	changed := w.store.Set(text)
	if changed {
		w.logger.Info().Int("sections", w.store.Snapshot().Document.Len()).Msg("content reloaded")
	}
	if w.onReload != nil {
		w.onReload(changed)
	}
}
