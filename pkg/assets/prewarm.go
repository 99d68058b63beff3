package assets

import (
	"context"
	"time"

	"github.com/griddeck/griddeck/pkg/async"
)

// prewarmTimeout bounds one rendition generation during prewarm.
const prewarmTimeout = time.Minute

// Prewarm generates every rendition for the given applications through
// the normal fetch path, fanned out over a worker pool. Failures are
// reported per rendition and never abort the rest; a panel configured for
// lazy generation simply skips this.
func (c *Cache) Prewarm(ctx context.Context, appIDs []string, workers int) {
	type job struct {
		appID     string
		rendition Rendition
	}

	jobs := make([]job, 0, len(appIDs)*len(renditionSpecs))
	for _, id := range appIDs {
		for _, r := range Renditions() {
			jobs = append(jobs, job{appID: id, rendition: r})
		}
	}

	errs := async.Batch(ctx, jobs, workers, "icon prewarm", prewarmTimeout,
		func(ctx context.Context, j job) error {
			_, err := c.Fetch(ctx, j.appID, j.rendition)
			return err
		})

	for _, err := range errs {
		c.log.Warnf("Icon prewarm: %v", err)
	}

	c.log.Infof("Prewarmed %d icon renditions for %d applications", len(jobs)-len(errs), len(appIDs))
}
