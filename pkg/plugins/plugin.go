package plugins

import "fmt"

// UnresolvedPath is the install path of an instance before the registry
// binds it. Keeping a recognizable sentinel makes premature use show up
// in logs and errors instead of silently resolving against the process
// working directory.
const UnresolvedPath = "<unresolved>"

// App is the capability interface every application implements. The
// registry drives the hooks; implementations that need no custom behavior
// embed BaseApp.
type App interface {
	Descriptor() *Descriptor
	OnLoad() error
	OnAfterInstall() error
	OnBeforeUninstall() error
}

// Builder constructs an App from its parsed descriptor. Applications with
// compiled-in behavior register a Builder under their id; everything else
// is served by the default descriptor-only implementation.
type Builder func(*Descriptor) (App, error)

// BaseApp is the default App implementation: descriptor metadata with
// no-op lifecycle hooks. Builders embed it and override what they need.
type BaseApp struct {
	desc *Descriptor
}

// NewBaseApp wraps a descriptor in the default implementation.
func NewBaseApp(desc *Descriptor) *BaseApp {
	return &BaseApp{desc: desc}
}

// Descriptor returns the application's static metadata.
func (a *BaseApp) Descriptor() *Descriptor { return a.desc }

// OnLoad runs when the registry loads the application.
func (a *BaseApp) OnLoad() error { return nil }

// OnAfterInstall runs after a fresh installation.
func (a *BaseApp) OnAfterInstall() error { return nil }

// OnBeforeUninstall runs before the registry removes the application.
func (a *BaseApp) OnBeforeUninstall() error { return nil }

// Instance is one live, loaded application: its App implementation plus
// the install path the registry resolved for it.
type Instance struct {
	app          App
	resolvedPath string
}

func newInstance(app App) *Instance {
	return &Instance{app: app, resolvedPath: UnresolvedPath}
}

// Descriptor returns the instance's static metadata.
func (i *Instance) Descriptor() *Descriptor { return i.app.Descriptor() }

// ID returns the instance's application id.
func (i *Instance) ID() string { return i.app.Descriptor().ID }

// ResolvedPath returns the absolute install directory, or UnresolvedPath
// before the registry has bound it.
func (i *Instance) ResolvedPath() string { return i.resolvedPath }

// Resolved reports whether the install path has been bound.
func (i *Instance) Resolved() bool { return i.resolvedPath != UnresolvedPath }

// bindPath sets the install path exactly once.
func (i *Instance) bindPath(path string) error {
	if i.Resolved() {
		return fmt.Errorf("install path already bound to %s", i.resolvedPath)
	}
	i.resolvedPath = path
	return nil
}

// Summary is the outward-facing projection of a loaded application, used
// by listings and the pin service.
type Summary struct {
	ID                  string `json:"id"`
	DisplayName         string `json:"displayName"`
	Description         string `json:"description,omitempty"`
	Version             string `json:"version"`
	HasEmbeddedFrontend bool   `json:"hasEmbeddedFrontend"`
	ExternalURL         string `json:"externalUrl,omitempty"`
}

// Summary builds the outward-facing projection of this instance.
func (i *Instance) Summary() Summary {
	desc := i.Descriptor()
	return Summary{
		ID:                  desc.ID,
		DisplayName:         desc.DisplayName,
		Description:         desc.Description,
		Version:             desc.Version.String(),
		HasEmbeddedFrontend: desc.HasEmbeddedFrontend(),
		ExternalURL:         desc.ExternalURL(),
	}
}
