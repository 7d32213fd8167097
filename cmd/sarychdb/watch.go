package main

import (
	"log/slog"

	"github.com/fsnotify/fsnotify"

	"github.com/sarychdb/sarychdb/internal/config"
	"github.com/sarychdb/sarychdb/internal/storage"
)

// watchConfig watches configPath for writes, re-validates the file on each
// change, and applies the knobs that can be changed on a running server (S8)
// to searchCache. Everything else in *config.Config (ports, data dir, rate
// limiter shape) is still sized once at startup, so a changed value there is
// only logged, not applied. When configPath is empty no watcher is started
// and the returned stop func does nothing.
func watchConfig(configPath string, searchCache *storage.SearchCache, logger *slog.Logger) (stop func(), err error) {
	if configPath == "" {
		return func() {}, nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(configPath); err != nil {
		watcher.Close()
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Has(fsnotify.Write) {
					cfg, err := config.Load(configPath)
					if err != nil {
						logger.Warn("config file changed but failed to validate", "path", configPath, "err", err)
						continue
					}
					searchCache.SetMaxEntries(cfg.SearchCache.MaxEntries)
					logger.Info("config file changed; applied search_cache.max_entries live, other settings require a restart",
						"path", configPath, "search_cache.max_entries", cfg.SearchCache.MaxEntries)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("config watcher error", "err", err)
			case <-done:
				return
			}
		}
	}()

	return func() {
		close(done)
		watcher.Close()
	}, nil
}
