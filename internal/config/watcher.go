package config

import (
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/universa-bio/origin/internal/logging"
)

// Watcher reloads configuration when the config file changes on disk.
// Editors often emit several write events per save; changes are
// debounced before the reload fires.
type Watcher struct {
	loader   *Loader
	logger   *logging.Logger
	onReload func(*Config)

	mu            sync.Mutex
	watcher       *fsnotify.Watcher
	debounceTimer *time.Timer
	stopped       bool
}

const reloadDebounce = 250 * time.Millisecond

// NewWatcher creates a config watcher. onReload is called with the
// freshly loaded configuration after every debounced change.
func NewWatcher(loader *Loader, logger *logging.Logger, onReload func(*Config)) *Watcher {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Watcher{loader: loader, logger: logger, onReload: onReload}
}

// Start begins watching the config file the loader resolved. Watching
// is optional: without a config file on disk there is nothing to
// watch and Start is a no-op.
func (w *Watcher) Start() error {
	path := w.loader.ConfigFile()
	if path == "" {
		return nil
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fw.Add(path); err != nil {
		_ = fw.Close()
		return err
	}

	w.mu.Lock()
	w.watcher = fw
	w.mu.Unlock()

	go w.loop(fw, path)
	w.logger.Info("watching config file", "path", path)
	return nil
}

// Stop ends watching. Safe to call twice.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	w.stopped = true
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	if w.watcher != nil {
		_ = w.watcher.Close()
	}
}

func (w *Watcher) loop(fw *fsnotify.Watcher, path string) {
	for {
		select {
		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.scheduleReload()
			// Some editors replace the file on save, which drops the
			// watch on the old inode.
			if event.Op&fsnotify.Create != 0 {
				_ = fw.Add(path)
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watch error", "error", err)
		}
	}
}

func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(reloadDebounce, w.reload)
}

func (w *Watcher) reload() {
	cfg, err := w.loader.Load()
	if err != nil {
		w.logger.Warn("config reload failed, keeping previous configuration", "error", err)
		return
	}
	w.logger.Info("configuration reloaded")
	if w.onReload != nil {
		w.onReload(cfg)
	}
}
