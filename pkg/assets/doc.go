// Package assets implements the derived icon cache for the Griddeck panel.
//
// # Overview
//
// The panel serves each application's icon at several fixed sizes (the
// rendition table). Renditions are generated lazily from the source icon
// in the application's install directory and cached on disk at a
// deterministic path:
//
//	{cacheRoot}/panel/applications/{appID}/{rendition}.webp
//
// The presence of a file at that path is the entire cache-hit signal.
// There is no TTL, checksum, or mtime comparison; regeneration happens by
// deleting the file. An optional in-memory LRU layer sits above the disk
// cache but never replaces the existence check.
//
// # Generation
//
// A fetch that misses runs inside a singleflight group keyed by
// (application, rendition), so concurrent first requests for the same
// icon invoke the Resizer exactly once. Output is written to a temporary
// sibling and renamed into place; a failed or canceled generation leaves
// nothing at the final path.
//
// Applications without a usable source icon are served the global
// fallback at {cacheRoot}/panel/invalidIcon.webp, which lives outside
// every application directory and is provisioned at startup. Serving the
// fallback caches nothing, so the source is retried on the next fetch.
//
// # Usage Example
//
//	cache := assets.NewCache(assets.CacheOptions{
//		CacheRoot: "/var/cache/griddeck",
//		Registry:  registry,
//	})
//	if err := cache.ProvisionFallback(ctx); err != nil {
//		log.Fatal(err)
//	}
//
//	res, err := cache.Fetch(ctx, "uk-example-app", assets.RenditionSmallGrid)
//	if err != nil {
//		// unknown app or rendition
//	}
//	w.Header().Set("Content-Type", res.ContentType)
//	w.Write(res.Bytes)
//
// # Related Packages
//
//   - pkg/plugins: Resolves application ids and install directories
//   - pkg/paths: Canonical cache path layout
//   - pkg/maintenance: Sweeps cache directories of uninstalled applications
package assets
