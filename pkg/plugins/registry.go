package plugins

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/griddeck/griddeck/pkg/paths"
)

// RegistryOptions configures a Registry.
type RegistryOptions struct {
	// InstallRoot is the directory containing one subdirectory per
	// installed application.
	InstallRoot string

	// Builders maps application ids to compiled-in constructors.
	// Applications without a builder get the descriptor-only default.
	Builders map[string]Builder

	// Linker performs dev-mode dependency linking during verification.
	Linker Linker

	// DevMode enables the linking step in Verify.
	DevMode bool

	Log *logrus.Logger
}

// Registry owns the live set of loaded applications. It is constructed
// once at startup and handed to every component that needs it; there is
// no package-level instance.
type Registry struct {
	installRoot string
	builders    map[string]Builder
	linker      Linker
	devMode     bool

	mu    sync.RWMutex
	apps  map[string]*Instance
	order []string // insertion order of loaded ids

	log *logrus.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(opts RegistryOptions) *Registry {
	log := opts.Log
	if log == nil {
		log = logrus.New()
	}

	linker := opts.Linker
	if linker == nil {
		linker = NopLinker{}
	}

	return &Registry{
		installRoot: opts.InstallRoot,
		builders:    opts.Builders,
		linker:      linker,
		devMode:     opts.DevMode,
		apps:        make(map[string]*Instance),
		log:         log,
	}
}

// InstallRoot returns the directory the registry discovers applications in.
func (r *Registry) InstallRoot() string { return r.installRoot }

// ListInstalledIDs enumerates the ids of installed applications by listing
// the install root. An unreadable root is a *DiscoveryError, which callers
// treat as fatal to startup.
func (r *Registry) ListInstalledIDs(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(r.installRoot)
	if err != nil {
		return nil, &DiscoveryError{Root: r.installRoot, Err: err}
	}

	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if err := paths.ValidateAppID(entry.Name()); err != nil {
			r.log.Warnf("Skipping install directory with invalid name: %v", err)
			continue
		}
		ids = append(ids, entry.Name())
	}

	return ids, nil
}

// Verify performs pre-load validation of one installed application:
// descriptor presence, descriptor validity, and id consistency. In dev
// mode it additionally runs the dependency linker, whose failure is
// logged but never blocks a later load attempt.
func (r *Registry) Verify(ctx context.Context, id string) error {
	if err := paths.ValidateAppID(id); err != nil {
		return err
	}

	dir := paths.InstallDir(r.installRoot, id)
	desc, err := LoadDescriptorFromDir(dir)
	if err != nil {
		return err
	}

	if verrs := ValidateDescriptor(desc); len(verrs) > 0 {
		return &DescriptorInvalidError{Findings: verrs}
	}

	if desc.ID != id {
		return fmt.Errorf("descriptor id %q does not match install directory %q", desc.ID, id)
	}

	if r.devMode {
		if err := r.linker.Link(ctx, id, dir); err != nil {
			// Linking is best-effort dev tooling. Loud, but not fatal.
			r.log.Errorf("Dependency linking failed for %s: %v", id, err)
		}
	}

	return nil
}

// Load resolves, constructs, and registers one application. On failure it
// logs the cause, returns a *LoadError, and leaves the registry unchanged;
// it never panics past its own boundary. Startup iterates all installed
// ids and must not abort because one application is broken.
func (r *Registry) Load(ctx context.Context, id string) (*Instance, error) {
	inst, err := r.loadApp(ctx, id)
	if err != nil {
		r.log.Warnf("Failed to load application %s: %v", id, err)
		return nil, &LoadError{ID: id, Err: err}
	}

	desc := inst.Descriptor()
	r.log.Infof("Loaded application: %s v%s (%s)", desc.ID, desc.Version, desc.DisplayName)
	return inst, nil
}

func (r *Registry) loadApp(ctx context.Context, id string) (*Instance, error) {
	if err := paths.ValidateAppID(id); err != nil {
		return nil, err
	}

	if _, ok := r.FindByID(id); ok {
		return nil, ErrAlreadyLoaded
	}

	dir := paths.InstallDir(r.installRoot, id)
	desc, err := LoadDescriptorFromDir(dir)
	if err != nil {
		return nil, err
	}

	if verrs := ValidateDescriptor(desc); len(verrs) > 0 {
		return nil, &DescriptorInvalidError{Findings: verrs}
	}

	if desc.ID != id {
		return nil, fmt.Errorf("descriptor id %q does not match install directory %q", desc.ID, id)
	}

	builder := r.builders[id]
	if builder == nil {
		builder = func(d *Descriptor) (App, error) { return NewBaseApp(d), nil }
	}

	app, err := buildApp(builder, desc)
	if err != nil {
		return nil, err
	}
	if app == nil {
		return nil, fmt.Errorf("builder returned no application")
	}

	inst := newInstance(app)
	if err := inst.bindPath(dir); err != nil {
		return nil, err
	}

	if err := safeHook("onLoad", app.OnLoad); err != nil {
		return nil, err
	}

	r.mu.Lock()
	if _, exists := r.apps[id]; exists {
		r.mu.Unlock()
		return nil, ErrAlreadyLoaded
	}
	r.apps[id] = inst
	r.order = append(r.order, id)
	r.mu.Unlock()

	return inst, nil
}

// LoadAll discovers every installed application and loads each one,
// isolating per-application failures. Only discovery failure is returned.
func (r *Registry) LoadAll(ctx context.Context) error {
	ids, err := r.ListInstalledIDs(ctx)
	if err != nil {
		return err
	}

	for _, id := range ids {
		if err := r.Verify(ctx, id); err != nil {
			r.log.Warnf("Verification failed for %s: %v", id, err)
		}
		if _, err := r.Load(ctx, id); err != nil {
			continue // already logged
		}
	}

	r.log.Infof("Loaded %d of %d installed applications", r.Len(), len(ids))
	return nil
}

// Uninstall invokes the application's onBeforeUninstall hook and removes
// it from the live set. Hook failures are logged and do not keep the
// application registered. Removing installed files is out of scope here.
func (r *Registry) Uninstall(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	inst, ok := r.apps[id]
	if !ok {
		return ErrNotFound
	}

	if err := safeHook("onBeforeUninstall", inst.app.OnBeforeUninstall); err != nil {
		r.log.Errorf("Uninstall hook failed for %s: %v", id, err)
	}

	delete(r.apps, id)
	for idx, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:idx], r.order[idx+1:]...)
			break
		}
	}

	r.log.Infof("Uninstalled application: %s", id)
	return nil
}

// NotifyInstalled invokes the onAfterInstall hook on a loaded application.
// Called when an application appears at runtime, after its load.
func (r *Registry) NotifyInstalled(ctx context.Context, id string) error {
	inst, ok := r.FindByID(id)
	if !ok {
		return ErrNotFound
	}

	if err := safeHook("onAfterInstall", inst.app.OnAfterInstall); err != nil {
		r.log.Errorf("Install hook failed for %s: %v", id, err)
		return err
	}
	return nil
}

// FindByID returns the loaded instance for an id.
func (r *Registry) FindByID(id string) (*Instance, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	inst, ok := r.apps[id]
	return inst, ok
}

// ListLoaded returns summaries of all loaded applications in load order.
func (r *Registry) ListLoaded() []Summary {
	r.mu.RLock()
	defer r.mu.RUnlock()

	summaries := make([]Summary, 0, len(r.order))
	for _, id := range r.order {
		summaries = append(summaries, r.apps[id].Summary())
	}

	return summaries
}

// Len returns the number of loaded applications.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.apps)
}

// buildApp invokes a builder, converting a panic into an error so a broken
// constructor cannot take down startup.
func buildApp(builder Builder, desc *Descriptor) (app App, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			app = nil
			err = fmt.Errorf("builder panicked: %v", rec)
		}
	}()

	return builder(desc)
}

// safeHook invokes a lifecycle hook, converting a panic into an error.
// No hook failure may cross into registry control flow uncaught.
func safeHook(name string, hook func() error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%s hook panicked: %v", name, rec)
		}
	}()

	if err := hook(); err != nil {
		return fmt.Errorf("%s hook failed: %w", name, err)
	}
	return nil
}
