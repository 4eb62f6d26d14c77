package keyword

import (
	"context"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce coalesces editor save bursts into one reload.
const watchDebounce = 300 * time.Millisecond

// Watch reloads the keyword directory whenever a definition file changes.
// It blocks until ctx is canceled. Definitions reloaded with override
// semantics replace their prior handlers.
func (l *Loader) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(l.dir); err != nil {
		return err
	}

	var timer *time.Timer
	reload := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isKeywordFile(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(watchDebounce, func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			l.logf("keyword watcher: %v", err)
		case <-reload:
			l.reloadAll()
		}
	}
}

// reloadAll re-registers everything currently on disk, dropping handlers
// whose source file disappeared.
func (l *Loader) reloadAll() {
	for _, kw := range l.registry.List() {
		if kw.Meta.Source != "" {
			l.registry.Unregister(kw.Name)
		}
	}
	result := l.LoadAll()
	l.logf("keyword watcher: reloaded %d keyword(s), %d error(s)", len(result.Loaded), len(result.Errors))
}
