package plugins

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/griddeck/griddeck/pkg/paths"
)

const (
	// DescriptorFileName is the descriptor file shipped in every
	// application's install directory.
	DescriptorFileName = "app.yaml"

	// CurrentConfigVersion is the newest descriptor schema this panel
	// understands. Descriptors declaring a newer version are rejected.
	CurrentConfigVersion = 1
)

// Version is the declared application version.
type Version struct {
	Major int `yaml:"major" json:"major"`
	Minor int `yaml:"minor" json:"minor"`
}

// String renders the version as "major.minor".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Credit names one person or project in the application's credits.
type Credit struct {
	Name string `yaml:"name" json:"name"`
	Site string `yaml:"site,omitempty" json:"site,omitempty"`
}

// Credits groups the people behind an application.
type Credits struct {
	Authors      []Credit `yaml:"authors,omitempty" json:"authors,omitempty"`
	Contributors []Credit `yaml:"contributors,omitempty" json:"contributors,omitempty"`
	Translators  []Credit `yaml:"translators,omitempty" json:"translators,omitempty"`
	Others       []Credit `yaml:"others,omitempty" json:"others,omitempty"`
}

// Frontend declares an embedded UI bundle served by the panel itself.
type Frontend struct {
	Entry string `yaml:"entry" json:"entry"` // entry point within the install dir
}

// ExternalFrontend declares a UI hosted outside the panel.
type ExternalFrontend struct {
	URL string `yaml:"url" json:"url"`
}

// Descriptor is the static metadata of one application, parsed from the
// app.yaml in its install directory. Immutable once loaded.
type Descriptor struct {
	ID               string            `yaml:"id"`                         // unique, reverse-DNS style
	DisplayName      string            `yaml:"displayName"`                // human-readable name
	Description      string            `yaml:"description,omitempty"`      // short description
	Version          Version           `yaml:"version"`                    // {major, minor}
	Credits          *Credits          `yaml:"credits,omitempty"`          // optional credits
	ConfigVersion    int               `yaml:"configVersion"`              // descriptor schema version
	Frontend         *Frontend         `yaml:"frontend,omitempty"`         // embedded UI bundle
	ExternalFrontend *ExternalFrontend `yaml:"externalFrontend,omitempty"` // externally hosted UI
	Icon             string            `yaml:"icon,omitempty"`             // source icon filename
}

// HasEmbeddedFrontend reports whether the application ships a UI bundle.
func (d *Descriptor) HasEmbeddedFrontend() bool {
	return d.Frontend != nil
}

// ExternalURL returns the externally hosted UI address, or "".
func (d *Descriptor) ExternalURL() string {
	if d.ExternalFrontend == nil {
		return ""
	}
	return d.ExternalFrontend.URL
}

// LoadDescriptor loads and parses an application descriptor from a file.
func LoadDescriptor(path string) (*Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read descriptor: %w", err)
	}

	var desc Descriptor
	if err := yaml.Unmarshal(data, &desc); err != nil {
		return nil, fmt.Errorf("failed to parse descriptor: %w", err)
	}

	return &desc, nil
}

// LoadDescriptorFromDir loads the descriptor from an application's install
// directory (looks for app.yaml).
func LoadDescriptorFromDir(dir string) (*Descriptor, error) {
	return LoadDescriptor(filepath.Join(dir, DescriptorFileName))
}

// SaveDescriptor writes a descriptor to a file.
func SaveDescriptor(desc *Descriptor, path string) error {
	data, err := yaml.Marshal(desc)
	if err != nil {
		return fmt.Errorf("failed to marshal descriptor: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write descriptor: %w", err)
	}

	return nil
}

// ValidationError describes one problem found in a descriptor.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidateDescriptor checks a descriptor for structural problems. An empty
// result means the descriptor is acceptable.
func ValidateDescriptor(desc *Descriptor) []ValidationError {
	var errs []ValidationError

	// Required fields
	if desc.ID == "" {
		errs = append(errs, ValidationError{
			Field:   "id",
			Message: "application id is required",
		})
	} else if err := paths.ValidateAppID(desc.ID); err != nil {
		errs = append(errs, ValidationError{
			Field:   "id",
			Message: err.Error(),
		})
	}

	if desc.DisplayName == "" {
		errs = append(errs, ValidationError{
			Field:   "displayName",
			Message: "display name is required",
		})
	}

	if desc.Version.Major < 0 || desc.Version.Minor < 0 {
		errs = append(errs, ValidationError{
			Field:   "version",
			Message: fmt.Sprintf("version components must not be negative: %s", desc.Version),
		})
	}

	// Schema version gate
	if desc.ConfigVersion < 1 {
		errs = append(errs, ValidationError{
			Field:   "configVersion",
			Message: "configVersion is required and must be at least 1",
		})
	} else if desc.ConfigVersion > CurrentConfigVersion {
		errs = append(errs, ValidationError{
			Field:   "configVersion",
			Message: fmt.Sprintf("configVersion %d is newer than the supported version %d", desc.ConfigVersion, CurrentConfigVersion),
		})
	}

	// An application declares at most one frontend wiring mode. Declaring
	// both is rejected rather than resolved by precedence.
	if desc.Frontend != nil && desc.ExternalFrontend != nil {
		errs = append(errs, ValidationError{
			Field:   "frontend",
			Message: "frontend and externalFrontend are mutually exclusive",
		})
	}

	if desc.Frontend != nil && desc.Frontend.Entry == "" {
		errs = append(errs, ValidationError{
			Field:   "frontend.entry",
			Message: "frontend entry point is required",
		})
	}

	if desc.ExternalFrontend != nil {
		u, err := url.Parse(desc.ExternalFrontend.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, ValidationError{
				Field:   "externalFrontend.url",
				Message: fmt.Sprintf("invalid external frontend url: %q", desc.ExternalFrontend.URL),
			})
		}
	}

	// The icon is a bare filename resolved inside the install directory.
	if desc.Icon != "" {
		if strings.ContainsAny(desc.Icon, `/\`) || desc.Icon != filepath.Base(desc.Icon) {
			errs = append(errs, ValidationError{
				Field:   "icon",
				Message: fmt.Sprintf("icon must be a bare filename: %q", desc.Icon),
			})
		}
	}

	return errs
}
