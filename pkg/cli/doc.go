// Package cli provides the griddeckctl command-line interface for panel
// administration.
//
// # Overview
//
// This package implements the `griddeckctl` tool for operators to inspect
// and manage a running panel daemon over its HTTP API.
//
// # Commands
//
// list: Show loaded applications
//
//	griddeckctl list
//
// load: Load an installed application
//
//	griddeckctl load --app uk-example-files
//
// uninstall: Unload an application (install files are kept)
//
//	griddeckctl uninstall --app uk-example-files
//
// icon: Fetch one icon rendition to a file
//
//	griddeckctl icon \
//		--app uk-example-files \
//		--rendition largeGridIcon \
//		--out files.webp
//
// pins: Show or replace a user's pinned applications
//
//	griddeckctl pins --user alice
//	griddeckctl pins --user alice --set uk-example-files,uk-example-calendar
//	griddeckctl pins --user alice --clear
//
// settings: Show or update panel settings
//
//	griddeckctl settings
//	griddeckctl settings --set theme=dark
//
// health: Show panel health (non-zero exit when unhealthy)
//
//	griddeckctl health
//
// # Configuration
//
// Panel address:
//
//	export GRIDDECK_SERVER="http://panel.example.com:8080"
//	export GRIDDECK_HEALTH_SERVER="http://panel.example.com:9090"
//	# Or use --server flag
//
// # Related Packages
//
//   - pkg/api: Response types the commands decode
//   - pkg/observability: Health status shape
package cli
