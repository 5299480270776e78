package app

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/df07/glcompute-raytracer/pkg/core"
	"github.com/df07/glcompute-raytracer/pkg/gpu"
	"github.com/fsnotify/fsnotify"
)

// ShaderWatcher flags edits to shader files in a directory. The GL thread
// polls Changed and rebuilds programs itself.
type ShaderWatcher struct {
	watcher *fsnotify.Watcher
	changed atomic.Bool
	done    chan struct{}
	wg      sync.WaitGroup
}

// WatchShaders starts watching dir
func WatchShaders(dir string) (*ShaderWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	w := &ShaderWatcher{
		watcher: watcher,
		done:    make(chan struct{}),
	}
	w.wg.Add(1)
	go w.run()

	core.Logger().Info("watching shaders", "dir", dir)
	return w, nil
}

func (w *ShaderWatcher) run() {
	defer w.wg.Done()
	log := core.Logger()

	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			// Editors often save by rename, so any change to a shader counts
			if gpu.IsShaderFile(event.Name) &&
				event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0 {
				log.Debug("shader changed", "file", event.Name, "op", event.Op.String())
				w.changed.Store(true)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Warn("shader watcher error", "err", err)
		}
	}
}

// Changed reports whether a shader changed since the last call
func (w *ShaderWatcher) Changed() bool {
	return w.changed.Swap(false)
}

// Close stops watching
func (w *ShaderWatcher) Close() error {
	close(w.done)
	err := w.watcher.Close()
	w.wg.Wait()
	return err
}
