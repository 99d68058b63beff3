package plugins

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"github.com/griddeck/griddeck/pkg/async"
	"github.com/griddeck/griddeck/pkg/paths"
)

const watcherLoadTimeout = 30 * time.Second

// Watcher observes the install root in development mode. A directory
// appearing under it is verified and loaded after a settle delay so the
// installer can finish writing files; a directory disappearing is
// uninstalled.
type Watcher struct {
	registry *Registry
	settle   time.Duration
	fsw      *fsnotify.Watcher
	log      *logrus.Logger
}

// NewWatcher creates a watcher over the registry's install root.
func NewWatcher(registry *Registry, settle time.Duration, log *logrus.Logger) (*Watcher, error) {
	if log == nil {
		log = logrus.New()
	}
	if settle <= 0 {
		settle = 2 * time.Second
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := fsw.Add(registry.InstallRoot()); err != nil {
		fsw.Close()
		return nil, err
	}

	return &Watcher{
		registry: registry,
		settle:   settle,
		fsw:      fsw,
		log:      log,
	}, nil
}

// Run processes filesystem events until the context is canceled.
func (w *Watcher) Run(ctx context.Context) error {
	w.log.Infof("Watching install root %s", w.registry.InstallRoot())

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warnf("Install watcher error: %v", err)
		}
	}
}

// Close stops the underlying filesystem watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	// Only direct children of the install root are applications.
	if filepath.Dir(event.Name) != filepath.Clean(w.registry.InstallRoot()) {
		return
	}

	id := filepath.Base(event.Name)
	if err := paths.ValidateAppID(id); err != nil {
		w.log.Debugf("Ignoring install event for %q: %v", id, err)
		return
	}

	switch {
	case event.Op&fsnotify.Create != 0:
		w.log.Infof("New application directory: %s", id)
		w.scheduleLoad(ctx, id)

	case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		if _, ok := w.registry.FindByID(id); !ok {
			return
		}
		w.log.Infof("Application directory removed: %s", id)
		if err := w.registry.Uninstall(ctx, id); err != nil {
			w.log.Warnf("Failed to uninstall %s: %v", id, err)
		}
	}
}

// scheduleLoad verifies and loads an application once the settle delay has
// passed, then fires its install hook. Runs detached so a slow or broken
// install never stalls the event loop.
func (w *Watcher) scheduleLoad(ctx context.Context, id string) {
	async.SafeGo(ctx, w.settle+watcherLoadTimeout, "install "+id, func(ctx context.Context) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(w.settle):
		}

		if err := w.registry.Verify(ctx, id); err != nil {
			w.log.Warnf("Verification failed for %s: %v", id, err)
		}

		if _, err := w.registry.Load(ctx, id); err != nil {
			return nil // already logged by Load
		}

		return w.registry.NotifyInstalled(ctx, id)
	})
}
