package plugins

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/sirupsen/logrus"
)

// Linker performs the optional development-mode dependency linking step
// during verification. Linking failures are logged and never block a load
// attempt, so implementations should treat the call as best-effort.
type Linker interface {
	Link(ctx context.Context, appID, dir string) error
}

// NopLinker is the production linker: it does nothing.
type NopLinker struct{}

// Link does nothing.
func (NopLinker) Link(ctx context.Context, appID, dir string) error { return nil }

// CommandLinker shells out to a configured command with the application's
// id and install directory in the environment. Used by development setups
// that wire an application's UI bundle into a local dev server.
type CommandLinker struct {
	Command string
	Log     *logrus.Logger
}

// Link runs the configured command in the application's install directory.
func (l *CommandLinker) Link(ctx context.Context, appID, dir string) error {
	if l.Command == "" {
		return nil
	}

	cmd := exec.CommandContext(ctx, "sh", "-c", l.Command)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(),
		"GRIDDECK_APP_ID="+appID,
		"GRIDDECK_APP_DIR="+dir,
	)

	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("link command failed: %w (output: %s)", err, out)
	}

	if l.Log != nil {
		l.Log.Debugf("Linked application %s: %s", appID, out)
	}
	return nil
}
