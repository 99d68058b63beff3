package async

import (
	"context"
	"fmt"
	"log"
	"runtime/debug"
	"sync"
	"time"
)

// SafeGo executes a function in a goroutine with context cancellation,
// panic recovery, and timeout enforcement.
//
// Use this instead of bare `go func()` for fire-and-forget work such as
// loading an application after the install watcher sees a new directory.
//
// Example:
//
//	SafeGo(ctx, 30*time.Second, "install uk-example-app", func(ctx context.Context) error {
//	    _, err := registry.Load(ctx, "uk-example-app")
//	    return err
//	})
func SafeGo(parentCtx context.Context, timeout time.Duration, taskName string, fn func(context.Context) error) {
	go func() {
		ctx, cancel := context.WithTimeout(parentCtx, timeout)
		defer cancel()

		defer func() {
			if r := recover(); r != nil {
				log.Printf("[SafeGo] PANIC in %s: %v\nStack trace:\n%s",
					taskName, r, string(debug.Stack()))
			}
		}()

		if err := fn(ctx); err != nil {
			// Log and carry on; the caller decided this work was
			// not worth blocking for.
			log.Printf("[SafeGo] Error in %s: %v", taskName, err)
		}
	}()
}

// WorkerPool runs submitted tasks on a fixed number of workers with
// per-task timeouts, panic recovery, and error collection.
type WorkerPool struct {
	workers  int
	taskName string
	timeout  time.Duration

	workCh chan func(context.Context) error
	doneCh chan struct{}
	errCh  chan error

	ctx    context.Context
	cancel context.CancelFunc

	closeOnce    sync.Once
	shutdownOnce sync.Once
}

// NewWorkerPool creates a worker pool and starts its workers.
//
// Example:
//
//	pool := NewWorkerPool(ctx, 4, "icon prewarm", 30*time.Second)
//	defer pool.Shutdown(5 * time.Second)
//
//	pool.Submit(func(ctx context.Context) error {
//	    _, err := cache.Fetch(ctx, appID, rendition)
//	    return err
//	})
func NewWorkerPool(ctx context.Context, workers int, taskName string, timeout time.Duration) *WorkerPool {
	ctx, cancel := context.WithCancel(ctx)

	pool := &WorkerPool{
		workers:  workers,
		taskName: taskName,
		timeout:  timeout,
		workCh:   make(chan func(context.Context) error, workers*2),
		doneCh:   make(chan struct{}),
		errCh:    make(chan error, workers*10),
		ctx:      ctx,
		cancel:   cancel,
	}

	go func() {
		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(id int) {
				defer wg.Done()
				pool.worker(id)
			}(i)
		}
		wg.Wait()
		close(pool.doneCh)
	}()

	return pool
}

// Submit adds a task to the pool. Returns an error once the pool has been
// drained or shut down.
func (p *WorkerPool) Submit(fn func(context.Context) error) error {
	select {
	case <-p.doneCh:
		return fmt.Errorf("worker pool shut down")
	default:
	}

	// Shutdown may close workCh between the check above and the send
	// below; the recover turns that race into a clean error.
	defer func() { _ = recover() }()

	select {
	case p.workCh <- fn:
		return nil
	case <-p.doneCh:
		return fmt.Errorf("worker pool shut down")
	}
}

// Drain stops accepting tasks and blocks until the workers have finished
// everything already submitted.
func (p *WorkerPool) Drain() {
	p.closeOnce.Do(func() { close(p.workCh) })
	<-p.doneCh
	p.cancel()
}

// Shutdown drains the pool, waiting up to timeout for in-flight tasks.
func (p *WorkerPool) Shutdown(timeout time.Duration) error {
	var shutdownErr error

	p.shutdownOnce.Do(func() {
		p.closeOnce.Do(func() { close(p.workCh) })

		select {
		case <-p.doneCh:
			p.cancel()
		case <-time.After(timeout):
			p.cancel()
			shutdownErr = fmt.Errorf("worker pool shutdown timed out after %v", timeout)
		}
	})

	return shutdownErr
}

// Errors returns the channel carrying task errors. Buffered; read it with
// a non-blocking select.
func (p *WorkerPool) Errors() <-chan error {
	return p.errCh
}

func (p *WorkerPool) worker(id int) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[WorkerPool] PANIC in worker %d (%s): %v\nStack trace:\n%s",
				id, p.taskName, r, string(debug.Stack()))
		}
	}()

	for {
		select {
		case <-p.ctx.Done():
			return

		case fn, ok := <-p.workCh:
			if !ok {
				return
			}

			ctx, cancel := context.WithTimeout(p.ctx, p.timeout)

			func() {
				defer cancel()
				defer func() {
					if r := recover(); r != nil {
						p.reportError(fmt.Errorf("panic: %v", r))
					}
				}()

				if err := fn(ctx); err != nil {
					p.reportError(err)
				}
			}()
		}
	}
}

func (p *WorkerPool) reportError(err error) {
	select {
	case p.errCh <- err:
	default:
		log.Printf("[WorkerPool] Error channel full, dropping error: %v", err)
	}
}

// Batch processes a slice of items concurrently and returns all errors
// encountered. Used to fan the icon prewarmer out across applications.
//
// Example:
//
//	errs := Batch(ctx, appIDs, 4, "icon prewarm", 30*time.Second,
//	    func(ctx context.Context, id string) error {
//	        _, err := cache.Fetch(ctx, id, assets.RenditionSmallGrid)
//	        return err
//	    })
func Batch[T any](ctx context.Context, items []T, workers int, taskName string, timeout time.Duration,
	fn func(context.Context, T) error) []error {

	pool := NewWorkerPool(ctx, workers, taskName, timeout)

	for _, item := range items {
		item := item
		if err := pool.Submit(func(ctx context.Context) error {
			return fn(ctx, item)
		}); err != nil {
			return []error{err}
		}
	}

	pool.Drain()

	var errs []error
	for {
		select {
		case err := <-pool.errCh:
			errs = append(errs, err)
		default:
			return errs
		}
	}
}
