package observability

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks implements every hook set by writing debug records to Logger.
type LogHooks struct {
	Logger *log.Logger
}

// Use registers h for all four hook sets.
func Use(h LogHooks) {
	SetPipelineHooks(h)
	SetInteractionHooks(h)
	SetCacheHooks(h)
	SetServerHooks(h)
}

func (h LogHooks) OnLoadStart(_ context.Context, source string) {
	h.Logger.Debug("load started", "source", source)
}

func (h LogHooks) OnLoadComplete(_ context.Context, source string, rows int, d time.Duration, err error) {
	if err != nil {
		h.Logger.Warn("load failed", "source", source, "took", d, "err", err)
		return
	}
	h.Logger.Debug("load finished", "source", source, "rows", rows, "took", d)
}

func (h LogHooks) OnBuildStart(_ context.Context, rows int) {
	h.Logger.Debug("build started", "rows", rows)
}

func (h LogHooks) OnBuildComplete(_ context.Context, nodes int, d time.Duration) {
	h.Logger.Debug("build finished", "nodes", nodes, "took", d)
}

func (h LogHooks) OnRenderStart(_ context.Context, view string, formats []string) {
	h.Logger.Debug("render started", "view", view, "formats", strings.Join(formats, ","))
}

func (h LogHooks) OnRenderComplete(_ context.Context, view string, formats []string, d time.Duration, err error) {
	if err != nil {
		h.Logger.Warn("render failed", "view", view, "took", d, "err", err)
		return
	}
	h.Logger.Debug("render finished", "view", view, "formats", strings.Join(formats, ","), "took", d)
}

func (h LogHooks) OnClick(_ context.Context, view, outcome string) {
	h.Logger.Debug("click", "view", view, "outcome", outcome)
}

func (h LogHooks) OnTransitionEnd(_ context.Context, view string, d time.Duration) {
	h.Logger.Debug("transition ended", "view", view, "took", d)
}

func (h LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.Logger.Debug("cache hit", "kind", keyType)
}

func (h LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.Logger.Debug("cache miss", "kind", keyType)
}

func (h LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.Logger.Debug("cache set", "kind", keyType, "bytes", size)
}

func (h LogHooks) OnRequest(_ context.Context, method, route string) {}

func (h LogHooks) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	h.Logger.Debug("request", "method", method, "route", route, "status", status, "took", d)
}
