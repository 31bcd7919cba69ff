package auth

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/copilot-mcp/internal/logger"
)

// CacheWatcher invalidates a chain's in-memory token when another process
// writes the shared token cache, so the next acquisition re-reads the fresh
// entry instead of refreshing a stale one.
type CacheWatcher struct {
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// WatchCache starts watching the chain's cache file. The watch is on the
// directory because editors and other CLIs replace the file atomically.
func WatchCache(chain *Chain) (*CacheWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	cachePath := chain.CachePath()
	if err := watcher.Add(filepath.Dir(cachePath)); err != nil {
		watcher.Close()
		return nil, err
	}

	w := &CacheWatcher{
		watcher: watcher,
		done:    make(chan struct{}),
	}

	go func() {
		defer close(w.done)
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Name != cachePath {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				chain.InvalidateIfChanged()
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("auth: cache watcher error: %v", err)
			}
		}
	}()

	return w, nil
}

// Close stops the watcher and waits for its goroutine to exit.
func (w *CacheWatcher) Close() error {
	err := w.watcher.Close()
	<-w.done
	return err
}
