// Package plugins implements the application plugin system for the Griddeck panel.
//
// # Overview
//
// This package manages discovery, validation, loading, and removal of panel
// applications installed under a shared root directory. Every application ships
// a descriptor file (app.yaml) describing its identity, version, frontend, and
// icon. Loaded applications live in an insertion-ordered registry that the API
// layer projects into panel summaries.
//
// # Application Lifecycle
//
// Descriptor: Parsed and validated app.yaml metadata
// Registry: Insertion-ordered store of loaded application instances
// Watcher: Reacts to installs and removals under the install root
// Linker: Optional dependency linking step for development mode
//
// Applications progress through discovery (directory listing), verification
// (descriptor parsing and validation), and loading (builder construction plus
// the onLoad hook). A failure in any one application never aborts the rest.
//
// # Hooks
//
// Applications may observe lifecycle transitions by implementing App:
//
//	type App interface {
//		Descriptor() *Descriptor
//		OnLoad() error
//		OnAfterInstall() error
//		OnBeforeUninstall() error
//	}
//
// BaseApp provides no-op implementations so most applications only embed it
// and override what they need. Hook panics are recovered and reported as
// errors.
//
// # Usage Example
//
// Load all installed applications:
//
//	registry := plugins.NewRegistry(plugins.RegistryOptions{
//		InstallRoot: "/var/lib/griddeck/applications",
//	})
//	if err := registry.LoadAll(ctx); err != nil {
//		log.Fatal(err)
//	}
//
// Inspect what loaded:
//
//	for _, s := range registry.ListLoaded() {
//		fmt.Printf("%s v%s\n", s.ID, s.Version)
//	}
//
// # Related Packages
//
//   - pkg/assets: Renders icon renditions for loaded applications
//   - pkg/pins: Filters pinned app lists against the registry
//   - pkg/paths: Shared install and cache path layout
package plugins
