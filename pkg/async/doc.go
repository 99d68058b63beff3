// Package async provides safe concurrent execution primitives for background tasks.
//
// # Overview
//
// This package handles goroutine lifecycle management with panic recovery, timeout
// enforcement, context cancellation, and error collection.
//
// # Key Functions
//
// SafeGo: Execute function in goroutine with safety features
//
//	async.SafeGo(ctx, 30*time.Second, "install watcher load", func(ctx context.Context) error {
//		_, err := registry.Load(ctx, appID)
//		return err
//	})
//
// WorkerPool: Managed pool of concurrent workers
//
//	pool := async.NewWorkerPool(ctx, 4, "icon prewarm", 30*time.Second)
//	defer pool.Shutdown(5 * time.Second)
//
//	pool.Submit(func(ctx context.Context) error {
//		_, err := cache.Fetch(ctx, appID, rendition)
//		return err
//	})
//
// Batch: Concurrent batch processing
//
//	errs := async.Batch(ctx, appIDs, 4, "icon prewarm", 30*time.Second,
//		func(ctx context.Context, id string) error {
//			return warmIcons(ctx, id)
//		})
//
// # Features
//
// Panic Recovery: Captures panics with stack traces
// Timeout Enforcement: Per-task timeouts
// Context Cancellation: Respects context cancellation
// Error Collection: Non-blocking error channels
// Graceful Shutdown: Worker draining
//
// # Use Cases
//
// Install-watcher loads, icon cache prewarming, maintenance sweeps
//
// # Related Packages
//
//   - pkg/plugins: Uses SafeGo for watcher-triggered loads
//   - pkg/assets: Uses Batch for icon prewarming
package async
