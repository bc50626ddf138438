package config

import (
	"context"
	"fmt"
	"log"
	"path/filepath"

	"monitoring-systemv1/internal/store"

	"github.com/fsnotify/fsnotify"
)

// Watch re-applies scalar limit changes from the YAML file to the store
// until ctx is cancelled. Criteria read limits from the store on every
// evaluation, so edits take effect on the next cycle. All other keys
// require a restart. Watch and reload errors are logged, never fatal.
func Watch(ctx context.Context, path string, st *store.Store) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config: watcher: %w", err)
	}

	// Watch the directory; most editors replace the file instead of
	// writing it in place.
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("config: watch %s: %w", dir, err)
	}

	go func() {
		defer watcher.Close()
		base := filepath.Base(path)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(ev.Name) != base {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
					continue
				}
				applyLimits(path, st)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("[config] watch error: %v", err)
			}
		}
	}()
	return nil
}

func applyLimits(path string, st *store.Store) {
	cfg, err := Load(path)
	if err != nil {
		log.Printf("[config] reload failed: %v", err)
		return
	}
	for _, sc := range cfg.Sensors.ScalarConfigs {
		st.SetConfig(sc)
	}
	log.Printf("[config] reloaded scalar limits for %d sensors", len(cfg.Sensors.ScalarConfigs))
}
