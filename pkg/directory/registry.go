package directory

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/fsnotify.v1"
)

// Registry serves the current directory and optionally keeps it in sync
// with an override directory on disk. Without an override dir it simply
// wraps the embedded defaults. Overrides are whole-file replacements: the
// last YAML file (sorted by name) that parses wins, so corrections ship as
// a single dated file.
type Registry struct {
	mu       sync.RWMutex
	current  *Directory
	dir      string
	watcher  *fsnotify.Watcher
	stopChan chan struct{}
	log      *zap.Logger
}

// NewRegistry returns a registry serving the embedded directory.
func NewRegistry(log *zap.Logger) (*Registry, error) {
	if log == nil {
		log = zap.NewNop()
	}
	dir, err := Default()
	if err != nil {
		return nil, err
	}
	return &Registry{current: dir, log: log}, nil
}

// Current returns the directory in effect. The result is read-only.
func (r *Registry) Current() *Directory {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// LoadDirectory applies the newest parseable YAML override from dir, or
// keeps the embedded defaults when the directory is absent or empty.
func (r *Registry) LoadDirectory(dir string) error {
	r.dir = dir

	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("checking override directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading override directory %s: %w", dir, err)
	}

	var applied string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || (!strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml")) {
			continue
		}
		loaded, err := LoadFile(filepath.Join(dir, name))
		if err != nil {
			r.log.Warn("skipping unparseable directory override",
				zap.String("file", name), zap.Error(err))
			continue
		}
		r.mu.Lock()
		r.current = loaded
		r.mu.Unlock()
		applied = name
	}

	if applied != "" {
		r.log.Info("applied directory override", zap.String("file", applied))
	}
	return nil
}

// Watch starts watching the override directory and reapplies overrides
// whenever a YAML file changes. Stop with StopWatch.
func (r *Registry) Watch() error {
	if r.dir == "" {
		return fmt.Errorf("no override directory configured")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}

	stop := make(chan struct{})
	r.mu.Lock()
	r.watcher = watcher
	r.stopChan = stop
	r.mu.Unlock()
	go r.watchLoop(watcher, stop)

	if err := watcher.Add(r.dir); err != nil {
		r.StopWatch()
		return fmt.Errorf("watching directory %s: %w", r.dir, err)
	}
	return nil
}

func (r *Registry) watchLoop(watcher *fsnotify.Watcher, stop chan struct{}) {
	for {
		select {
		case <-stop:
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !strings.HasSuffix(event.Name, ".yaml") && !strings.HasSuffix(event.Name, ".yml") {
				continue
			}
			if err := r.LoadDirectory(r.dir); err != nil {
				r.log.Warn("reloading directory overrides", zap.Error(err))
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			r.log.Warn("directory watcher error", zap.Error(err))
		}
	}
}

// StopWatch stops watching the override directory. Safe to call more than
// once, and before Watch.
func (r *Registry) StopWatch() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopChan != nil {
		close(r.stopChan)
		r.stopChan = nil
	}
	if r.watcher != nil {
		r.watcher.Close()
		r.watcher = nil
	}
}
