// Package observability provides hooks for metrics, tracing, and logging.
//
// Hooks let a binary attach instrumentation without the libraries depending
// on any observability backend. Register implementations at startup; the
// pipeline, cache and HTTP server call them as events happen.
//
// # Usage
//
// Register hooks at application startup. Stats implements all three
// interfaces with Prometheus collectors:
//
//	stats := observability.NewStats()
//	observability.SetGenerationHooks(stats)
//	observability.SetCacheHooks(stats)
//	observability.SetHTTPHooks(stats)
//
// Libraries call hooks to emit events:
//
//	observability.Generation().OnGenerateStart(ctx, date, style)
//	// ... compose ...
//	observability.Generation().OnGenerateComplete(ctx, date, style, duration, err)
package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// =============================================================================
// Generation Hooks
// =============================================================================

// GenerationHooks receives events from the composition pipeline.
type GenerationHooks interface {
	// OnGenerateStart fires before the seed is derived.
	OnGenerateStart(ctx context.Context, date, style string)

	// OnPassComplete fires once per drawing pass, in pass order.
	OnPassComplete(ctx context.Context, date, pass string, draws int, duration time.Duration)

	// OnGenerateComplete fires after encoding, or on failure with err set.
	OnGenerateComplete(ctx context.Context, date, style string, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the HTTP server.
type HTTPHooks interface {
	// OnRequest records an incoming request.
	OnRequest(ctx context.Context, method, path string)

	// OnResponse records the response status and latency.
	OnResponse(ctx context.Context, method, path string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopGenerationHooks is a no-op implementation of GenerationHooks.
type NoopGenerationHooks struct{}

func (NoopGenerationHooks) OnGenerateStart(context.Context, string, string)                    {}
func (NoopGenerationHooks) OnPassComplete(context.Context, string, string, int, time.Duration) {}
func (NoopGenerationHooks) OnGenerateComplete(context.Context, string, string, time.Duration, error) {
}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Registry
// =============================================================================

// slot holds one registered hook implementation.
type slot[T any] struct {
	p   atomic.Pointer[T]
	def T
}

func (s *slot[T]) get() T {
	if h := s.p.Load(); h != nil {
		return *h
	}
	return s.def
}

func (s *slot[T]) set(h T) { s.p.Store(&h) }

func (s *slot[T]) reset() { s.p.Store(nil) }

var (
	generationSlot = slot[GenerationHooks]{def: NoopGenerationHooks{}}
	cacheSlot      = slot[CacheHooks]{def: NoopCacheHooks{}}
	httpSlot       = slot[HTTPHooks]{def: NoopHTTPHooks{}}
)

// SetGenerationHooks registers generation hooks. nil is ignored.
func SetGenerationHooks(h GenerationHooks) {
	if h != nil {
		generationSlot.set(h)
	}
}

// SetCacheHooks registers cache hooks. nil is ignored.
func SetCacheHooks(h CacheHooks) {
	if h != nil {
		cacheSlot.set(h)
	}
}

// SetHTTPHooks registers HTTP hooks. nil is ignored.
func SetHTTPHooks(h HTTPHooks) {
	if h != nil {
		httpSlot.set(h)
	}
}

// Generation returns the registered generation hooks.
func Generation() GenerationHooks { return generationSlot.get() }

// Cache returns the registered cache hooks.
func Cache() CacheHooks { return cacheSlot.get() }

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks { return httpSlot.get() }

// Reset restores the no-op hooks.
func Reset() {
	generationSlot.reset()
	cacheSlot.reset()
	httpSlot.reset()
}
