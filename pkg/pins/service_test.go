package pins

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/griddeck/griddeck/pkg/plugins"
	"github.com/griddeck/griddeck/pkg/store"
)

// newTestService wires a Service over a real sqlite store and a real
// registry with an empty install root.
func newTestService(t *testing.T) (*Service, *plugins.Registry, store.RecordStore) {
	t.Helper()

	recordStore, err := store.Open(store.Options{
		Driver: "sqlite3",
		DSN:    filepath.Join(t.TempDir(), "griddeck.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { recordStore.Close() })
	require.NoError(t, recordStore.Migrate(context.Background()))

	registry := plugins.NewRegistry(plugins.RegistryOptions{
		InstallRoot: t.TempDir(),
		Log:         logrus.New(),
	})

	return NewService(recordStore, registry, logrus.New()), registry, recordStore
}

// installApp writes a minimal application under the registry's install
// root and loads it.
func installApp(t *testing.T, registry *plugins.Registry, id string) {
	t.Helper()

	dir := filepath.Join(registry.InstallRoot(), id)
	require.NoError(t, os.MkdirAll(dir, 0o755))

	desc := &plugins.Descriptor{
		ID:            id,
		DisplayName:   "App " + id,
		Version:       plugins.Version{Major: 1},
		ConfigVersion: plugins.CurrentConfigVersion,
	}
	require.NoError(t, plugins.SaveDescriptor(desc, filepath.Join(dir, plugins.DescriptorFileName)))

	_, err := registry.Load(context.Background(), id)
	require.NoError(t, err)
}

func TestService_List_PreservesStoredOrder(t *testing.T) {
	svc, registry, _ := newTestService(t)
	ctx := context.Background()

	installApp(t, registry, "com.example.zeta")
	installApp(t, registry, "com.example.alpha")

	require.NoError(t, svc.Set(ctx, "alice", []string{"com.example.zeta", "com.example.alpha"}))

	summaries, err := svc.List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "com.example.zeta", summaries[0].ID)
	assert.Equal(t, "com.example.alpha", summaries[1].ID)
}

func TestService_List_DropsUnloadedApps(t *testing.T) {
	svc, registry, _ := newTestService(t)
	ctx := context.Background()

	installApp(t, registry, "com.example.files")
	installApp(t, registry, "com.example.music")

	// The middle pin points at an app that was never installed.
	require.NoError(t, svc.Set(ctx, "alice", []string{
		"com.example.files",
		"com.example.ghost",
		"com.example.music",
	}))

	summaries, err := svc.List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "com.example.files", summaries[0].ID)
	assert.Equal(t, "com.example.music", summaries[1].ID)
}

func TestService_List_DropsUninstalledApp(t *testing.T) {
	svc, registry, _ := newTestService(t)
	ctx := context.Background()

	installApp(t, registry, "com.example.files")
	installApp(t, registry, "com.example.music")

	require.NoError(t, svc.Set(ctx, "alice", []string{"com.example.files", "com.example.music"}))
	require.NoError(t, registry.Uninstall(ctx, "com.example.files"))

	summaries, err := svc.List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "com.example.music", summaries[0].ID)

	// The stored list keeps the dangling id for a possible reinstall.
	stored, err := svc.store.GetPins(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"com.example.files", "com.example.music"}, stored)
}

func TestService_List_EmptyForUnknownUser(t *testing.T) {
	svc, _, _ := newTestService(t)

	summaries, err := svc.List(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, summaries)
}

func TestService_Set_RejectsUnsafeIDs(t *testing.T) {
	svc, _, recordStore := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Set(ctx, "alice", []string{"com.example.files"}))

	err := svc.Set(ctx, "alice", []string{"com.example.files", "../../../etc/passwd"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid pin")

	// The rejected write must not have touched the stored list.
	stored, err := recordStore.GetPins(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"com.example.files"}, stored)
}

func TestService_Set_AcceptsUnloadedApps(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	assert.NoError(t, svc.Set(ctx, "alice", []string{"com.example.future"}))
}
