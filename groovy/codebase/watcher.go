package codebase

import (
	"os"
	"time"
)

// FileWatcher polls the codebase root and rescans source files whose
// modification time changed. Deleted files are removed from the codebase.
type FileWatcher struct {
	codebase     *Codebase
	stopCh       chan struct{}
	doneCh       chan struct{}
	pollInterval time.Duration
	modTimes     map[string]time.Time
	onChange     func(path string, removed bool)
}

type WatcherOption func(*FileWatcher)

// WithPollInterval sets how often the root is scanned.
func WithPollInterval(d time.Duration) WatcherOption {
	return func(w *FileWatcher) {
		if d > 0 {
			w.pollInterval = d
		}
	}
}

// OnChange registers a callback run after each rescanned or removed file.
func OnChange(fn func(path string, removed bool)) WatcherOption {
	return func(w *FileWatcher) {
		w.onChange = fn
	}
}

func NewFileWatcher(c *Codebase, opts ...WatcherOption) *FileWatcher {
	w := &FileWatcher{
		codebase:     c,
		stopCh:       make(chan struct{}),
		doneCh:       make(chan struct{}),
		pollInterval: 1 * time.Second,
		modTimes:     make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *FileWatcher) Start() {
	go w.run()
}

// Stop ends polling and waits for a scan in progress to finish.
func (w *FileWatcher) Stop() {
	close(w.stopCh)
	<-w.doneCh
}

func (w *FileWatcher) run() {
	defer close(w.doneCh)
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.Scan()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.Scan()
		}
	}
}

// Scan runs one polling pass. It reports how many files were rescanned or
// removed.
func (w *FileWatcher) Scan() int {
	changed := 0
	currentFiles := make(map[string]bool)

	for _, dir := range w.codebase.SourceDirs() {
		w.codebase.walkSources(dir, func(path string, info os.FileInfo) {
			currentFiles[path] = true

			lastMod, known := w.modTimes[path]
			if known && !info.ModTime().After(lastMod) {
				return
			}
			w.modTimes[path] = info.ModTime()
			if err := w.codebase.ScanFile(path); err != nil {
				log.Warningf("rescan %s: %s", path, err)
				return
			}
			changed++
			w.notify(path, false)
		})
	}

	for path := range w.modTimes {
		if !currentFiles[path] {
			delete(w.modTimes, path)
			w.codebase.RemoveFile(path)
			changed++
			w.notify(path, true)
		}
	}
	if changed > 0 {
		log.Debugf("watcher picked up %d changes", changed)
	}
	return changed
}

func (w *FileWatcher) notify(path string, removed bool) {
	if w.onChange != nil {
		w.onChange(path, removed)
	}
}
