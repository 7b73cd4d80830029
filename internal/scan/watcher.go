package scan

import (
	"context"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/trly/host-ops/internal/log"
)

// defaultDebounce is how long the watcher waits for the sites directory to
// settle before triggering. Deploys touch several files in a burst; one
// rescan covers them all.
const defaultDebounce = 2 * time.Second

// Watcher triggers a callback when the sites directory changes, debounced so
// bursts of writes collapse into a single trigger.
type Watcher struct {
	dir      string
	debounce time.Duration
	logger   log.Logger
	trigger  func(context.Context)

	watcher *fsnotify.Watcher
}

// NewWatcher creates a watcher over dir calling trigger after each settled
// burst of changes. A non-positive debounce falls back to the default.
func NewWatcher(dir string, debounce time.Duration, logger log.Logger, trigger func(context.Context)) (*Watcher, error) {
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsWatcher.Add(dir); err != nil {
		_ = fsWatcher.Close()
		return nil, err
	}

	return &Watcher{
		dir:      dir,
		debounce: debounce,
		logger:   logger,
		trigger:  trigger,
		watcher:  fsWatcher,
	}, nil
}

// Run processes events until the context is canceled.
func (w *Watcher) Run(ctx context.Context) {
	defer func() { _ = w.watcher.Close() }()

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	w.logger.Info("Watching sites directory", "dir", w.dir)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			w.logger.Debug("Sites directory changed", "file", event.Name, "op", event.Op.String())
			timer.Reset(w.debounce)
		case <-timer.C:
			w.trigger(ctx)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("Watcher error", "error", err)
		}
	}
}
