// Package paths computes the canonical filesystem locations used by the
// panel: application install directories, per-application icon cache
// directories, and the global fallback icon. All functions are pure.
package paths

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

const (
	// PanelDir is the namespace directory under the cache root.
	PanelDir = "panel"

	// ApplicationsDir holds per-application cache directories under PanelDir.
	ApplicationsDir = "applications"

	// FallbackIconName is the base name of the global fallback icon.
	FallbackIconName = "invalidIcon"
)

// appIDRegex matches reverse-DNS style identifiers such as "uk-example-app"
// or "org.example.files". Identifiers double as directory names, so the
// character set is deliberately narrow.
var appIDRegex = regexp.MustCompile(`^[a-z0-9]([a-z0-9.-]*[a-z0-9])?$`)

// ValidateAppID reports whether id is safe to use as a single path component.
func ValidateAppID(id string) error {
	if id == "" {
		return fmt.Errorf("application id is empty")
	}
	if strings.Contains(id, "..") {
		return fmt.Errorf("application id %q contains a parent reference", id)
	}
	if !appIDRegex.MatchString(id) {
		return fmt.Errorf("application id %q contains invalid characters", id)
	}
	return nil
}

// InstallDir returns the installation root of one application.
func InstallDir(installRoot, appID string) string {
	return filepath.Join(installRoot, appID)
}

// PanelCacheDir returns the panel namespace directory under the cache root.
func PanelCacheDir(cacheRoot string) string {
	return filepath.Join(cacheRoot, PanelDir)
}

// ApplicationsCacheDir returns the directory holding every per-application
// cache directory.
func ApplicationsCacheDir(cacheRoot string) string {
	return filepath.Join(cacheRoot, PanelDir, ApplicationsDir)
}

// AppCacheDir returns the icon cache directory of one application.
func AppCacheDir(cacheRoot, appID string) string {
	return filepath.Join(cacheRoot, PanelDir, ApplicationsDir, appID)
}

// RenditionFile returns the deterministic cache location of one generated
// rendition, e.g. {cacheRoot}/panel/applications/{appID}/smallGridIcon.webp.
func RenditionFile(cacheRoot, appID, rendition, ext string) string {
	return filepath.Join(cacheRoot, PanelDir, ApplicationsDir, appID, rendition+"."+ext)
}

// FallbackIcon returns the location of the global fallback icon. It lives
// directly under the panel namespace, never under an application directory.
func FallbackIcon(cacheRoot, ext string) string {
	return filepath.Join(cacheRoot, PanelDir, FallbackIconName+"."+ext)
}
