package maintenance

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/griddeck/griddeck/pkg/observability"
	"github.com/griddeck/griddeck/pkg/paths"
	"github.com/griddeck/griddeck/pkg/plugins"
)

type recordingInvalidator struct {
	mu  sync.Mutex
	ids []string
}

func (ri *recordingInvalidator) InvalidateApp(appID string) {
	ri.mu.Lock()
	defer ri.mu.Unlock()
	ri.ids = append(ri.ids, appID)
}

func (ri *recordingInvalidator) invalidated() []string {
	ri.mu.Lock()
	defer ri.mu.Unlock()
	return append([]string(nil), ri.ids...)
}

type stubRegistry struct {
	loaded map[string]bool
}

func (sr *stubRegistry) FindByID(id string) (*plugins.Instance, bool) {
	if sr.loaded[id] {
		return &plugins.Instance{}, true
	}
	return nil, false
}

func newSweepLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// seedApp creates an install directory and a cached rendition for appID.
// Pass installed=false to leave only the cache directory behind.
func seedApp(t *testing.T, installRoot, cacheRoot, appID string, installed bool) string {
	t.Helper()

	if installed {
		require.NoError(t, os.MkdirAll(paths.InstallDir(installRoot, appID), 0o755))
	}

	cacheDir := paths.AppCacheDir(cacheRoot, appID)
	require.NoError(t, os.MkdirAll(cacheDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cacheDir, "small.webp"), []byte("RIFF"), 0o644))
	return cacheDir
}

func TestSweepOnce_RemovesOrphanedCacheDirs(t *testing.T) {
	installRoot := t.TempDir()
	cacheRoot := t.TempDir()

	keptDir := seedApp(t, installRoot, cacheRoot, "com.example.files", true)
	goneDir := seedApp(t, installRoot, cacheRoot, "com.example.gone", false)

	invalidator := &recordingInvalidator{}
	sweeper := NewSweeper(Options{
		InstallRoot: installRoot,
		CacheRoot:   cacheRoot,
		Invalidator: invalidator,
		Logger:      newSweepLogger(),
	})

	stats, err := sweeper.SweepOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, stats.OrphanDirs)
	assert.NoDirExists(t, goneDir)
	assert.DirExists(t, keptDir)
	assert.Equal(t, []string{"com.example.gone"}, invalidator.invalidated())
}

func TestSweepOnce_SparesLoadedApps(t *testing.T) {
	installRoot := t.TempDir()
	cacheRoot := t.TempDir()

	// Installed once, directory since deleted, but still loaded: the cache
	// is all that keeps its icons serving.
	cacheDir := seedApp(t, installRoot, cacheRoot, "com.example.ghost", false)

	sweeper := NewSweeper(Options{
		InstallRoot: installRoot,
		CacheRoot:   cacheRoot,
		Registry:    &stubRegistry{loaded: map[string]bool{"com.example.ghost": true}},
		Logger:      newSweepLogger(),
	})

	stats, err := sweeper.SweepOnce(context.Background())
	require.NoError(t, err)

	assert.Zero(t, stats.OrphanDirs)
	assert.DirExists(t, cacheDir)
}

func TestSweepOnce_RemovesStaleTmpFiles(t *testing.T) {
	installRoot := t.TempDir()
	cacheRoot := t.TempDir()

	cacheDir := seedApp(t, installRoot, cacheRoot, "com.example.files", true)

	stale := filepath.Join(cacheDir, "small.webp.tmp.1f2e3d")
	require.NoError(t, os.WriteFile(stale, []byte("partial"), 0o644))
	old := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(stale, old, old))

	fresh := filepath.Join(cacheDir, "large.webp.tmp.4a5b6c")
	require.NoError(t, os.WriteFile(fresh, []byte("partial"), 0o644))

	sweeper := NewSweeper(Options{
		InstallRoot: installRoot,
		CacheRoot:   cacheRoot,
		Logger:      newSweepLogger(),
	})

	stats, err := sweeper.SweepOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, stats.TmpFiles)
	assert.NoFileExists(t, stale)
	assert.FileExists(t, fresh, "in-flight generations must survive a sweep")
	assert.FileExists(t, filepath.Join(cacheDir, "small.webp"))
}

func TestSweepOnce_RefusesWhenInstallRootMissing(t *testing.T) {
	cacheRoot := t.TempDir()
	orphanDir := seedApp(t, t.TempDir(), cacheRoot, "com.example.gone", false)

	sweeper := NewSweeper(Options{
		InstallRoot: filepath.Join(t.TempDir(), "missing"),
		CacheRoot:   cacheRoot,
		Logger:      newSweepLogger(),
	})

	_, err := sweeper.SweepOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refusing to sweep")

	// Without the installed list everything looks orphaned, so nothing
	// may be touched.
	assert.DirExists(t, orphanDir)
}

func TestSweepOnce_NoCacheDirectory(t *testing.T) {
	sweeper := NewSweeper(Options{
		InstallRoot: t.TempDir(),
		CacheRoot:   t.TempDir(),
		Logger:      newSweepLogger(),
	})

	stats, err := sweeper.SweepOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.OrphanDirs)
	assert.Zero(t, stats.TmpFiles)
}

func TestSweepOnce_RecordsMetrics(t *testing.T) {
	installRoot := t.TempDir()
	cacheRoot := t.TempDir()
	seedApp(t, installRoot, cacheRoot, "com.example.gone", false)

	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)

	sweeper := NewSweeper(Options{
		InstallRoot: installRoot,
		CacheRoot:   cacheRoot,
		Metrics:     metrics,
		Logger:      newSweepLogger(),
	})

	_, err := sweeper.SweepOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.SweepRunsTotal.WithLabelValues("success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.SweepRemovedTotal))
}

func TestStart_InvalidSchedule(t *testing.T) {
	sweeper := NewSweeper(Options{
		InstallRoot: t.TempDir(),
		CacheRoot:   t.TempDir(),
		Logger:      newSweepLogger(),
	})

	_, err := sweeper.Start("not a schedule")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to schedule cache sweep")
}

func TestStart_RunsOnSchedule(t *testing.T) {
	installRoot := t.TempDir()
	cacheRoot := t.TempDir()
	orphanDir := seedApp(t, installRoot, cacheRoot, "com.example.gone", false)

	sweeper := NewSweeper(Options{
		InstallRoot: installRoot,
		CacheRoot:   cacheRoot,
		Logger:      newSweepLogger(),
	})

	c, err := sweeper.Start("@every 50ms")
	require.NoError(t, err)
	defer func() {
		stopCtx := c.Stop()
		<-stopCtx.Done()
	}()

	require.Eventually(t, func() bool {
		_, err := os.Stat(orphanDir)
		return os.IsNotExist(err)
	}, 2*time.Second, 25*time.Millisecond, "scheduled sweep never removed the orphaned directory")
}
