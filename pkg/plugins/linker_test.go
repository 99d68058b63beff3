package plugins

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNopLinker(t *testing.T) {
	err := NopLinker{}.Link(context.Background(), "test-app", "/srv/apps/test-app")
	assert.NoError(t, err)
}

func TestCommandLinker(t *testing.T) {
	dir := t.TempDir()

	// The command runs in the install directory with the app id exported.
	linker := &CommandLinker{Command: `printf %s "$GRIDDECK_APP_ID" > linked.txt`}

	err := linker.Link(context.Background(), "test-app", dir)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "linked.txt"))
	require.NoError(t, err)
	assert.Equal(t, "test-app", string(data))
}

func TestCommandLinker_Failure(t *testing.T) {
	linker := &CommandLinker{Command: "exit 1"}

	err := linker.Link(context.Background(), "test-app", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "link command failed")
}

func TestCommandLinker_EmptyCommand(t *testing.T) {
	linker := &CommandLinker{}

	err := linker.Link(context.Background(), "test-app", t.TempDir())
	assert.NoError(t, err)
}
