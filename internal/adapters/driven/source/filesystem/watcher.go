package filesystem

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/inkwell-notes/vaultrag/internal/logger"
)

// DefaultDebounce is how long the watcher waits after the last change
// before signalling. Editors save in bursts; one signal per burst.
const DefaultDebounce = 2 * time.Second

// Watcher signals when vault files change, coalescing bursts of
// filesystem events into single notifications.
type Watcher struct {
	source   *Source
	debounce time.Duration
}

// NewWatcher creates a watcher over the source's vault.
func NewWatcher(source *Source, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		source:   source,
		debounce: debounce,
	}
}

// Watch starts watching and returns a channel that receives one value
// per settled burst of changes. The channel closes when ctx is
// cancelled or the underlying watcher fails.
func (w *Watcher) Watch(ctx context.Context) (<-chan struct{}, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	if err := addDirs(fsw, w.source.Root()); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watching vault: %w", err)
	}

	changes := make(chan struct{}, 1)
	go w.run(ctx, fsw, changes)
	return changes, nil
}

func (w *Watcher) run(ctx context.Context, fsw *fsnotify.Watcher, changes chan<- struct{}) {
	defer close(changes)
	defer fsw.Close()

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()
	pending := false

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if !w.relevant(fsw, event) {
				continue
			}
			logger.Debug("Vault change: %s %s", event.Op, event.Name)
			if pending && !timer.Stop() {
				<-timer.C
			}
			timer.Reset(w.debounce)
			pending = true

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			logger.Warn("Watcher error: %v", err)

		case <-timer.C:
			pending = false
			select {
			case changes <- struct{}{}:
			default:
				// A signal is already queued.
			}
		}
	}
}

// relevant reports whether the event concerns an indexable file, and
// registers newly created directories along the way.
func (w *Watcher) relevant(fsw *fsnotify.Watcher, event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}

	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if !strings.HasPrefix(filepath.Base(event.Name), ".") {
				if err := fsw.Add(event.Name); err != nil {
					logger.Warn("Watching new directory %s: %v", event.Name, err)
				}
			}
			return false
		}
	}

	rel, err := filepath.Rel(w.source.Root(), event.Name)
	if err != nil {
		return false
	}
	return w.source.matches(filepath.ToSlash(rel))
}

// addDirs registers the root and every non-hidden subdirectory.
func addDirs(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return fsw.Add(path)
	})
}
