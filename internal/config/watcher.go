package config

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"codesmith/internal/logging"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches .smith/config.yaml for changes and reloads it, so a
// running chat session picks up edits without a restart. Editor save
// patterns (write, rename, remove+create) are debounced into a single
// reload.
type Watcher struct {
	mu          sync.Mutex
	watcher     *fsnotify.Watcher
	configPath  string
	onReload    func(*Config)
	debounceDur time.Duration
	pendingAt   time.Time
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool
}

// NewWatcher creates a watcher for the config file inside workspaceDir.
// onReload is called with the freshly loaded config after each change.
func NewWatcher(workspaceDir string, onReload func(*Config)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		watcher:     fw,
		configPath:  filepath.Join(workspaceDir, filepath.FromSlash(FileName)),
		onReload:    onReload,
		debounceDur: 500 * time.Millisecond,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

// Start begins watching. Non-blocking; the event loop runs in a goroutine.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	// Watch the directory, not the file: editors often replace the file
	// wholesale, which would drop a file-level watch.
	dir := filepath.Dir(w.configPath)
	if err := w.watcher.Add(dir); err != nil {
		logging.ConfigWarn("Watch failed for %s (dir may not exist yet): %v", dir, err)
	} else {
		logging.Config("Watching config directory: %s", dir)
	}

	go w.run(ctx)
	return nil
}

// Stop stops the watcher and waits for the event loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	if err := w.watcher.Close(); err != nil {
		logging.ConfigWarn("Error closing watcher: %v", err)
	}
	logging.Config("Config watcher stopped")
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.ConfigWarn("Watcher error: %v", err)

		case <-ticker.C:
			w.flushPending()
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Base(event.Name) != filepath.Base(w.configPath) {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return
	}

	logging.ConfigDebug("Config change detected: %s (%s)", event.Name, event.Op)

	w.mu.Lock()
	w.pendingAt = time.Now()
	w.mu.Unlock()
}

func (w *Watcher) flushPending() {
	w.mu.Lock()
	pending := !w.pendingAt.IsZero() && time.Since(w.pendingAt) >= w.debounceDur
	if pending {
		w.pendingAt = time.Time{}
	}
	w.mu.Unlock()

	if !pending {
		return
	}

	cfg, err := Load(w.configPath)
	if err != nil {
		logging.ConfigWarn("Reload failed, keeping previous config: %v", err)
		return
	}

	if err := logging.ReloadConfig(); err != nil {
		logging.ConfigWarn("Logging reload failed: %v", err)
	}

	logging.Config("Config reloaded from %s", w.configPath)
	if w.onReload != nil {
		w.onReload(cfg)
	}
}
