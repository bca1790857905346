package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const reloadDebounce = 250 * time.Millisecond

// Watcher reloads a config file when it changes and publishes each valid
// result to its subscribers. Invalid edits are logged and skipped.
type Watcher struct {
	path string
	log  *slog.Logger

	mu      sync.RWMutex
	current Config
	subs    []chan Config
}

// NewWatcher loads path once; the initial load must succeed.
func NewWatcher(path string, log *slog.Logger) (*Watcher, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Watcher{path: expandHome(path), log: log, current: cfg}, nil
}

func (w *Watcher) Get() Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// Subscribe returns a channel receiving every successfully reloaded config.
// A slow subscriber misses updates rather than blocking the watcher.
func (w *Watcher) Subscribe(buffer int) <-chan Config {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Config, buffer)
	w.mu.Lock()
	w.subs = append(w.subs, ch)
	w.mu.Unlock()
	return ch
}

// Reload re-reads the file and publishes it when valid.
func (w *Watcher) Reload() error {
	cfg, err := Load(w.path)
	if err != nil {
		return err
	}
	w.mu.Lock()
	w.current = cfg
	subs := append([]chan Config(nil), w.subs...)
	w.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- cfg:
		default:
			w.log.Warn("config subscriber is full, dropping update")
		}
	}
	return nil
}

// Watch blocks until ctx is done. It watches the file's directory so that
// editors which replace the file on save are still noticed.
func (w *Watcher) Watch(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fw.Close()

	dir := filepath.Dir(w.path)
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	target := filepath.Clean(w.path)

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(reloadDebounce)
			} else {
				timer.Reset(reloadDebounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			if err := w.Reload(); err != nil {
				w.log.Warn("config reload failed, keeping previous", "path", w.path, "error", err)
				continue
			}
			w.log.Info("config reloaded", "path", w.path)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("config watcher error", "error", err)
		}
	}
}
