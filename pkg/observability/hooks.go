// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard
// dependencies on specific observability backends. Consumers register
// hooks at startup to receive events about pipeline execution and cache
// operations.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetPipelineHooks(&myPipelineHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Pipeline().OnSliceStart(ctx, sourceName)
//	// ... do slicing ...
//	observability.Pipeline().OnSliceComplete(ctx, sourceName, sliceCount, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// PipelineHooks receives events from the slicing pipeline.
type PipelineHooks interface {
	// OnSliceStart fires when a slicing run begins.
	OnSliceStart(ctx context.Context, sourceName string)

	// OnSliceComplete fires when a slicing run finishes, successfully
	// or not.
	OnSliceComplete(ctx context.Context, sourceName string, sliceCount int, duration time.Duration, err error)

	// OnClusterComplete fires after clustering, with the input box and
	// output cluster counts.
	OnClusterComplete(ctx context.Context, boxCount, clusterCount int)
}

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, key string)
	OnCacheMiss(ctx context.Context, key string)
}

// noopPipelineHooks is the default no-op implementation.
type noopPipelineHooks struct{}

func (noopPipelineHooks) OnSliceStart(context.Context, string)                                {}
func (noopPipelineHooks) OnSliceComplete(context.Context, string, int, time.Duration, error)  {}
func (noopPipelineHooks) OnClusterComplete(context.Context, int, int)                         {}

// noopCacheHooks is the default no-op implementation.
type noopCacheHooks struct{}

func (noopCacheHooks) OnCacheHit(context.Context, string)  {}
func (noopCacheHooks) OnCacheMiss(context.Context, string) {}

var (
	mu            sync.RWMutex
	pipelineHooks PipelineHooks = noopPipelineHooks{}
	cacheHooks    CacheHooks    = noopCacheHooks{}
)

// SetPipelineHooks registers pipeline hooks. Pass nil to restore the
// no-op default. Call at startup, before the pipeline runs.
func SetPipelineHooks(h PipelineHooks) {
	mu.Lock()
	defer mu.Unlock()
	if h == nil {
		pipelineHooks = noopPipelineHooks{}
		return
	}
	pipelineHooks = h
}

// SetCacheHooks registers cache hooks. Pass nil to restore the no-op
// default.
func SetCacheHooks(h CacheHooks) {
	mu.Lock()
	defer mu.Unlock()
	if h == nil {
		cacheHooks = noopCacheHooks{}
		return
	}
	cacheHooks = h
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	mu.RLock()
	defer mu.RUnlock()
	return pipelineHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	mu.RLock()
	defer mu.RUnlock()
	return cacheHooks
}
