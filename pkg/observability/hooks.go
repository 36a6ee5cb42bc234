// Package observability lets a host program watch solutionmap at work.
//
// Libraries report record loading, hierarchy construction, rendering,
// diagram clicks, cache traffic and API requests through four hook sets.
// Each defaults to a no-op; [LogHooks] writes every event to a
// charmbracelet logger and is what the CLI installs with --verbose:
//
//	observability.Use(observability.LogHooks{Logger: logger})
//
// Emitting side:
//
//	observability.Pipeline().OnBuildStart(ctx, rows)
package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the load/build/render pipeline.
type PipelineHooks interface {
	// Load events
	OnLoadStart(ctx context.Context, source string)
	OnLoadComplete(ctx context.Context, source string, rows int, duration time.Duration, err error)

	// Build events
	OnBuildStart(ctx context.Context, rows int)
	OnBuildComplete(ctx context.Context, nodes int, duration time.Duration)

	// Render events
	OnRenderStart(ctx context.Context, view string, formats []string)
	OnRenderComplete(ctx context.Context, view string, formats []string, duration time.Duration, err error)
}

// =============================================================================
// Interaction Hooks
// =============================================================================

// Click outcomes reported to [InteractionHooks.OnClick].
const (
	ClickApplied = "applied" // state changed and a transition started
	ClickIgnored = "ignored" // nothing to do (leaf, already focused)
	ClickDropped = "dropped" // a previous transition is still running
)

// InteractionHooks receives events from live diagrams.
type InteractionHooks interface {
	// OnClick records a click on a diagram node and what became of it.
	OnClick(ctx context.Context, view, outcome string)

	// OnTransitionEnd records the end of an animated transition.
	OnTransitionEnd(ctx context.Context, view string, duration time.Duration)
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
// Server Hooks
// =============================================================================

// ServerHooks receives events from the HTTP API.
type ServerHooks interface {
	// OnRequest records an incoming request against a route pattern.
	OnRequest(ctx context.Context, method, route string)

	// OnResponse records the response sent for a request.
	OnResponse(ctx context.Context, method, route string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnLoadStart(context.Context, string)                                      {}
func (NoopPipelineHooks) OnLoadComplete(context.Context, string, int, time.Duration, error)        {}
func (NoopPipelineHooks) OnBuildStart(context.Context, int)                                        {}
func (NoopPipelineHooks) OnBuildComplete(context.Context, int, time.Duration)                      {}
func (NoopPipelineHooks) OnRenderStart(context.Context, string, []string)                          {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, string, []string, time.Duration, error) {}

// NoopInteractionHooks is a no-op implementation of InteractionHooks.
type NoopInteractionHooks struct{}

func (NoopInteractionHooks) OnClick(context.Context, string, string)                {}
func (NoopInteractionHooks) OnTransitionEnd(context.Context, string, time.Duration) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopServerHooks is a no-op implementation of ServerHooks.
type NoopServerHooks struct{}

func (NoopServerHooks) OnRequest(context.Context, string, string)                      {}
func (NoopServerHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Registry
// =============================================================================

// slot holds one registered hook set; an empty slot yields noop.
type slot[T any] struct {
	p    atomic.Pointer[T]
	noop T
}

func (s *slot[T]) get() T {
	if p := s.p.Load(); p != nil {
		return *p
	}
	return s.noop
}

func (s *slot[T]) set(h T) {
	if any(h) != nil {
		s.p.Store(&h)
	}
}

var (
	pipelineSlot    = slot[PipelineHooks]{noop: NoopPipelineHooks{}}
	interactionSlot = slot[InteractionHooks]{noop: NoopInteractionHooks{}}
	cacheSlot       = slot[CacheHooks]{noop: NoopCacheHooks{}}
	serverSlot      = slot[ServerHooks]{noop: NoopServerHooks{}}
)

// SetPipelineHooks registers h; nil is ignored. Register at startup.
func SetPipelineHooks(h PipelineHooks) { pipelineSlot.set(h) }

// SetInteractionHooks registers h; nil is ignored.
func SetInteractionHooks(h InteractionHooks) { interactionSlot.set(h) }

// SetCacheHooks registers h; nil is ignored.
func SetCacheHooks(h CacheHooks) { cacheSlot.set(h) }

// SetServerHooks registers h; nil is ignored.
func SetServerHooks(h ServerHooks) { serverSlot.set(h) }

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks { return pipelineSlot.get() }

// Interaction returns the registered interaction hooks.
func Interaction() InteractionHooks { return interactionSlot.get() }

// Cache returns the registered cache hooks.
func Cache() CacheHooks { return cacheSlot.get() }

// Server returns the registered server hooks.
func Server() ServerHooks { return serverSlot.get() }

// Reset restores every no-op default. Tests use it to undo registrations.
func Reset() {
	pipelineSlot.p.Store(nil)
	interactionSlot.p.Store(nil)
	cacheSlot.p.Store(nil)
	serverSlot.p.Store(nil)
}
