// Package maintenance keeps the icon cache tidy. A scheduled sweep removes
// cache directories left behind by uninstalled applications and temporary
// files abandoned by interrupted generations.
package maintenance

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/griddeck/griddeck/pkg/observability"
	"github.com/griddeck/griddeck/pkg/paths"
	"github.com/griddeck/griddeck/pkg/plugins"
)

// tmpMarker is the substring rendition writers put in their temporary file
// names before the atomic rename.
const tmpMarker = ".tmp."

// defaultTmpMaxAge is how old a temporary file must be before a sweep
// considers its generation abandoned rather than in flight.
const defaultTmpMaxAge = time.Hour

// Invalidator drops any in-memory cache entries for an application whose
// on-disk cache the sweep removed.
type Invalidator interface {
	InvalidateApp(appID string)
}

// Registry reports whether an application is currently loaded.
type Registry interface {
	FindByID(id string) (*plugins.Instance, bool)
}

// Options configures a Sweeper.
type Options struct {
	InstallRoot string
	CacheRoot   string
	Invalidator Invalidator
	Registry    Registry
	Metrics     *observability.Metrics
	Logger      *logrus.Logger

	// TmpMaxAge overrides how old an abandoned temporary file must be
	// before removal. Zero means the default of one hour.
	TmpMaxAge time.Duration
}

// Sweeper removes orphaned per-application cache directories and stale
// temporary files from the icon cache.
type Sweeper struct {
	installRoot string
	cacheRoot   string
	invalidator Invalidator
	registry    Registry
	metrics     *observability.Metrics
	log         *logrus.Logger
	tmpMaxAge   time.Duration
}

// SweepStats reports what one sweep removed.
type SweepStats struct {
	OrphanDirs int
	TmpFiles   int
}

// NewSweeper creates a sweeper over the given roots.
func NewSweeper(opts Options) *Sweeper {
	log := opts.Logger
	if log == nil {
		log = logrus.New()
	}
	tmpMaxAge := opts.TmpMaxAge
	if tmpMaxAge == 0 {
		tmpMaxAge = defaultTmpMaxAge
	}
	return &Sweeper{
		installRoot: opts.InstallRoot,
		cacheRoot:   opts.CacheRoot,
		invalidator: opts.Invalidator,
		registry:    opts.Registry,
		metrics:     opts.Metrics,
		log:         log,
		tmpMaxAge:   tmpMaxAge,
	}
}

// SweepOnce runs a single sweep. It refuses to touch anything when the
// install root cannot be listed: without the list of installed applications
// every cache directory would look orphaned.
func (s *Sweeper) SweepOnce(ctx context.Context) (SweepStats, error) {
	var stats SweepStats

	installed, err := s.installedApps()
	if err != nil {
		s.recordRun("error", 0)
		return stats, fmt.Errorf("refusing to sweep, install root unreadable: %w", err)
	}

	if err := s.sweepOrphanDirs(ctx, installed, &stats); err != nil {
		s.recordRun("error", stats.OrphanDirs+stats.TmpFiles)
		return stats, err
	}
	if err := s.sweepTmpFiles(ctx, &stats); err != nil {
		s.recordRun("error", stats.OrphanDirs+stats.TmpFiles)
		return stats, err
	}

	s.recordRun("success", stats.OrphanDirs+stats.TmpFiles)
	return stats, nil
}

// installedApps lists the directory names under the install root.
func (s *Sweeper) installedApps() (map[string]bool, error) {
	entries, err := os.ReadDir(s.installRoot)
	if err != nil {
		return nil, err
	}

	installed := make(map[string]bool, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			installed[entry.Name()] = true
		}
	}
	return installed, nil
}

// sweepOrphanDirs removes per-application cache directories whose
// application is gone from the install root.
func (s *Sweeper) sweepOrphanDirs(ctx context.Context, installed map[string]bool, stats *SweepStats) error {
	appsDir := paths.ApplicationsCacheDir(s.cacheRoot)
	entries, err := os.ReadDir(appsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to list cache directories: %w", err)
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !entry.IsDir() {
			continue
		}

		appID := entry.Name()
		if installed[appID] {
			continue
		}
		// A loaded application whose install directory vanished keeps
		// serving icons from cache until it is uninstalled.
		if s.registry != nil {
			if _, ok := s.registry.FindByID(appID); ok {
				continue
			}
		}

		if err := os.RemoveAll(filepath.Join(appsDir, appID)); err != nil {
			s.log.WithError(err).Warnf("Failed to remove orphaned icon cache for %s", appID)
			continue
		}
		if s.invalidator != nil {
			s.invalidator.InvalidateApp(appID)
		}
		stats.OrphanDirs++
		s.log.Infof("Removed orphaned icon cache for %s", appID)
	}

	return nil
}

// sweepTmpFiles removes temporary files older than tmpMaxAge anywhere under
// the panel cache. Fresh ones belong to generations still in flight.
func (s *Sweeper) sweepTmpFiles(ctx context.Context, stats *SweepStats) error {
	cutoff := time.Now().Add(-s.tmpMaxAge)
	root := paths.PanelCacheDir(s.cacheRoot)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Concurrent renames remove tmp files under the walker.
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() || !strings.Contains(d.Name(), tmpMarker) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if info.ModTime().After(cutoff) {
			return nil
		}

		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			s.log.WithError(err).Warnf("Failed to remove stale tmp file %s", path)
			return nil
		}
		stats.TmpFiles++
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to sweep tmp files: %w", err)
	}
	return nil
}

// recordRun updates sweep metrics when metrics are wired.
func (s *Sweeper) recordRun(status string, removed int) {
	if s.metrics == nil {
		return
	}
	s.metrics.SweepRunsTotal.WithLabelValues(status).Inc()
	if removed > 0 {
		s.metrics.SweepRemovedTotal.Add(float64(removed))
	}
}

// Start schedules periodic sweeps and returns the running scheduler. The
// caller stops it with Stop and drains the returned context, mirroring the
// cron shutdown contract.
func (s *Sweeper) Start(schedule string) (*cron.Cron, error) {
	cronLog := cron.PrintfLogger(s.log)
	c := cron.New(cron.WithChain(
		cron.Recover(cronLog),
		cron.SkipIfStillRunning(cronLog),
	))

	_, err := c.AddFunc(schedule, func() {
		stats, err := s.SweepOnce(context.Background())
		if err != nil {
			s.log.WithError(err).Error("Icon cache sweep failed")
			return
		}
		if stats.OrphanDirs > 0 || stats.TmpFiles > 0 {
			s.log.Infof("Icon cache sweep removed %d orphaned directories and %d stale tmp files",
				stats.OrphanDirs, stats.TmpFiles)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to schedule cache sweep: %w", err)
	}

	c.Start()
	s.log.Infof("Icon cache sweep scheduled: %s", schedule)
	return c, nil
}
