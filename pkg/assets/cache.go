package assets

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/griddeck/griddeck/pkg/paths"
	"github.com/griddeck/griddeck/pkg/plugins"
)

// fallbackExt is the encoding of the global fallback icon.
const fallbackExt = "webp"

// iconProbeOrder is tried, in order, when a descriptor does not name its
// source icon.
var iconProbeOrder = []string{
	"icon.avif",
	"icon.webp",
	"icon.png",
	"icon.jpg",
	"icon.jpeg",
	"icon.gif",
	"icon.bmp",
}

// InstanceResolver is the slice of the plugin registry the cache needs.
type InstanceResolver interface {
	FindByID(id string) (*plugins.Instance, bool)
}

// Outcome records how a fetch was satisfied.
type Outcome string

const (
	OutcomeMemory    Outcome = "memory"
	OutcomeDisk      Outcome = "disk"
	OutcomeGenerated Outcome = "generated"
	OutcomeFallback  Outcome = "fallback"
)

// Result is one served rendition.
type Result struct {
	Bytes       []byte
	ContentType string
	Outcome     Outcome
}

// CacheOptions configures a Cache.
type CacheOptions struct {
	// CacheRoot is the writable directory the panel namespace lives under.
	CacheRoot string

	// Registry resolves application ids to loaded instances.
	Registry InstanceResolver

	// Resizer generates renditions. Defaults to ImageResizer.
	Resizer Resizer

	// Memory is the optional in-memory byte layer.
	Memory *MemoryCache

	Log *logrus.Logger
}

// Cache lazily generates and serves fixed-size icon renditions. The
// presence of a file at the deterministic cache path is the entire
// cache-hit signal; there is no TTL or freshness comparison.
type Cache struct {
	cacheRoot string
	registry  InstanceResolver
	resizer   Resizer
	memory    *MemoryCache

	group singleflight.Group

	log *logrus.Logger
}

// NewCache creates an asset cache over the given cache root.
func NewCache(opts CacheOptions) *Cache {
	log := opts.Log
	if log == nil {
		log = logrus.New()
	}

	resizer := opts.Resizer
	if resizer == nil {
		resizer = &ImageResizer{}
	}

	return &Cache{
		cacheRoot: opts.CacheRoot,
		registry:  opts.Registry,
		resizer:   resizer,
		memory:    opts.Memory,
		log:       log,
	}
}

// CacheRoot returns the directory the panel namespace lives under.
func (c *Cache) CacheRoot() string { return c.cacheRoot }

// Fetch returns the bytes of one rendition for one application,
// generating them on first use. An unknown application id is
// plugins.ErrNotFound and an unknown rendition is ErrUnknownRendition;
// everything else, including a broken source icon, serves bytes.
func (c *Cache) Fetch(ctx context.Context, appID string, rendition Rendition) (*Result, error) {
	spec, ok := renditionSpecs[rendition]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRendition, rendition)
	}

	inst, ok := c.registry.FindByID(appID)
	if !ok {
		return nil, plugins.ErrNotFound
	}

	cachePath := paths.RenditionFile(c.cacheRoot, appID, string(rendition), spec.ext)

	// Fast path: the file exists, serve it.
	if res, err := c.readCached(cachePath, spec.ext); err == nil {
		return res, nil
	}

	// Collapse concurrent misses for the same rendition into a single
	// generation.
	v, err, _ := c.group.Do(appID+"/"+string(rendition), func() (interface{}, error) {
		return c.generate(ctx, inst, rendition, spec, cachePath)
	})
	if err != nil {
		return nil, err
	}

	return v.(*Result), nil
}

// readCached serves an existing cache file, consulting the memory layer
// only after the file's presence on disk is confirmed.
func (c *Cache) readCached(cachePath, ext string) (*Result, error) {
	if _, err := os.Stat(cachePath); err != nil {
		return nil, err
	}

	if c.memory != nil {
		if data, ok := c.memory.Get(cachePath); ok {
			return &Result{Bytes: data, ContentType: contentTypeForExt(ext), Outcome: OutcomeMemory}, nil
		}
	}

	data, err := os.ReadFile(cachePath)
	if err != nil {
		return nil, err
	}

	if c.memory != nil {
		c.memory.Add(cachePath, data)
	}

	return &Result{Bytes: data, ContentType: contentTypeForExt(ext), Outcome: OutcomeDisk}, nil
}

func (c *Cache) generate(ctx context.Context, inst *plugins.Instance, rendition Rendition, spec renditionSpec, cachePath string) (*Result, error) {
	appID := inst.ID()

	// A concurrent flight may have produced the file after our miss.
	if res, err := c.readCached(cachePath, spec.ext); err == nil {
		return res, nil
	}

	// The application's cache directory is created before the source icon
	// is consulted, so a sourceless application still gets its directory.
	if err := os.MkdirAll(paths.AppCacheDir(c.cacheRoot, appID), 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory for %s: %w", appID, err)
	}

	srcPath, err := c.sourceIcon(inst)
	if err != nil {
		c.log.Warnf("No source icon for %s: %v", appID, err)
		return c.fallback()
	}

	if err := c.renderAtomically(ctx, srcPath, spec, cachePath); err != nil {
		rerr := &RenditionError{AppID: appID, Rendition: rendition, Err: err}
		c.log.Warnf("Serving fallback icon: %v", rerr)
		return c.fallback()
	}

	data, err := os.ReadFile(cachePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read generated rendition: %w", err)
	}

	if c.memory != nil {
		c.memory.Add(cachePath, data)
	}

	c.log.Debugf("Generated %s for %s from %s", rendition, appID, filepath.Base(srcPath))
	return &Result{Bytes: data, ContentType: contentTypeForExt(spec.ext), Outcome: OutcomeGenerated}, nil
}

// sourceIcon locates the application's source icon: the declared filename
// when the descriptor names one, otherwise the probe order.
func (c *Cache) sourceIcon(inst *plugins.Instance) (string, error) {
	dir := inst.ResolvedPath()

	if icon := inst.Descriptor().Icon; icon != "" {
		p := filepath.Join(dir, icon)
		if _, err := os.Stat(p); err != nil {
			return "", fmt.Errorf("declared icon %s: %w", icon, err)
		}
		return p, nil
	}

	for _, name := range iconProbeOrder {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", fmt.Errorf("no icon found in %s", dir)
}

// renderAtomically resizes into a temporary sibling of the cache path and
// renames it into place, so a crashed or canceled generation never leaves
// a partial file where the existence check would find it.
func (c *Cache) renderAtomically(ctx context.Context, srcPath string, spec renditionSpec, cachePath string) error {
	tmpPath := cachePath + ".tmp." + uuid.NewString()

	if err := c.resizer.Resize(ctx, srcPath, spec.size, spec.size, tmpPath, spec.ext); err != nil {
		os.Remove(tmpPath)
		return err
	}

	if err := os.Rename(tmpPath, cachePath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to finalize rendition: %w", err)
	}

	return nil
}

// fallback serves the global placeholder. It never writes anything under
// the application's cache directory, so the next fetch retries the
// source.
func (c *Cache) fallback() (*Result, error) {
	data, err := os.ReadFile(paths.FallbackIcon(c.cacheRoot, fallbackExt))
	if err != nil {
		return nil, fmt.Errorf("failed to read fallback icon: %w", err)
	}

	return &Result{Bytes: data, ContentType: contentTypeForExt(fallbackExt), Outcome: OutcomeFallback}, nil
}

// ProvisionFallback ensures the global fallback icon exists, rendering
// the neutral placeholder on first start. Call before serving traffic.
func (c *Cache) ProvisionFallback(ctx context.Context) error {
	fbPath := paths.FallbackIcon(c.cacheRoot, fallbackExt)
	if _, err := os.Stat(fbPath); err == nil {
		return nil
	}

	if err := os.MkdirAll(paths.PanelCacheDir(c.cacheRoot), 0755); err != nil {
		return fmt.Errorf("failed to create panel cache directory: %w", err)
	}

	tmpPath := fbPath + ".tmp." + uuid.NewString()
	if err := writePlaceholder(tmpPath, fallbackExt); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to render fallback icon: %w", err)
	}

	if err := os.Rename(tmpPath, fbPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to finalize fallback icon: %w", err)
	}

	c.log.Infof("Provisioned fallback icon at %s", fbPath)
	return nil
}

// InvalidateApp drops every in-memory rendition for an application. The
// sweeper calls this when it removes an application's cache directory.
func (c *Cache) InvalidateApp(appID string) {
	if c.memory == nil {
		return
	}

	for r, spec := range renditionSpecs {
		c.memory.Remove(paths.RenditionFile(c.cacheRoot, appID, string(r), spec.ext))
	}
}
