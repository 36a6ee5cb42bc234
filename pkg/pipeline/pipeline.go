// Package pipeline provides the load → build → render pipeline for
// solutionmap.
//
// This package implements the complete pipeline used by the CLI and the
// HTTP server. By centralizing this logic, both entry points apply the
// same defaults, validation and caching.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: read record collections from a source (JSON, CSV, MongoDB)
//  2. Build: turn the records into the category hierarchy
//  3. Render: drive a view to the requested state and write artifacts
//     (SVG, PNG, PDF, JSON)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    View:    "icicle",
//	    Formats: []string{"svg"},
//	    Clicks:  []string{"Energy"},
//	}
//	result, err := runner.Execute(ctx, source, opts)
//	svg := result.Artifacts["svg"]
//
// # Clicks
//
// A render may replay clicks before capturing its frame. A click names a
// node by its path below the root, with "/" between names
// ("Energy/Storage"). Zoom views also accept a preorder cell index, and
// ".." zooms out one level. Transitions are settled between clicks so
// none is dropped.
package pipeline

import (
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/solutionmap/pkg/cache"
	"github.com/matzehuels/solutionmap/pkg/config"
	errs "github.com/matzehuels/solutionmap/pkg/errors"
	"github.com/matzehuels/solutionmap/pkg/frame"
	"github.com/matzehuels/solutionmap/pkg/hierarchy"
	"github.com/matzehuels/solutionmap/pkg/render/sink"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

// ViewNodelink is the static Graphviz overview. It is not interactive.
const ViewNodelink = "nodelink"

// DefaultView is the default visualization.
const DefaultView = string(frame.ViewTree)

// DefaultScale is the PNG resolution factor.
const DefaultScale = 2.0

// MaxClicks bounds the clicks replayed by one render.
const MaxClicks = 64

// ValidViews is the set of supported views.
var ValidViews = map[string]bool{
	string(frame.ViewTree):     true,
	string(frame.ViewIcicle):   true,
	string(frame.ViewSunburst): true,
	ViewNodelink:               true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a render.
// This struct supports JSON serialization for API requests.
type Options struct {
	View    string   `json:"view"`
	Formats []string `json:"formats,omitempty"`

	// Width and Height override the configured view size.
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`

	// Clicks are replayed in order before the frame is captured.
	Clicks []string `json:"clicks,omitempty"`
	// Live captures the frame as the last transition starts instead of
	// after it settles.
	Live bool `json:"live,omitempty"`

	// Detailed adds kinds and counts to nodelink labels.
	Detailed bool `json:"detailed,omitempty"`
	// Scale is the PNG resolution factor.
	Scale float64 `json:"scale,omitempty"`
	// Refresh bypasses cached artifacts.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Config config.Config `json:"-"`
	Logger *log.Logger   `json:"-"`

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	Tree      *hierarchy.Node
	TreeHash  string
	Report    hierarchy.Report
	Artifacts map[string][]byte
	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Records    int
	Nodes      int
	Solutions  int
	LoadTime   time.Duration
	BuildTime  time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	BuildHit  bool // Whether the hierarchy came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateView checks that a view is valid.
func ValidateView(view string) error {
	if !ValidViews[view] {
		return errs.New(errs.ErrCodeInvalidView, "invalid view: %q (must be one of: tree, icicle, sunburst, nodelink)", view)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if _, err := sink.ParseFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks fields and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.View == "" {
		o.View = DefaultView
	}
	if err := ValidateView(o.View); err != nil {
		return err
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{string(sink.FormatSVG)}
	}
	o.Formats = slices.Clone(o.Formats)
	for i, f := range o.Formats {
		format, err := sink.ParseFormat(f)
		if err != nil {
			return err
		}
		o.Formats[i] = string(format)
	}
	o.Formats = slices.Compact(o.Formats)
	if o.Width < 0 || o.Height < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "width and height must not be negative")
	}
	if len(o.Clicks) > MaxClicks {
		return errs.New(errs.ErrCodeInvalidInput, "too many clicks (max %d)", MaxClicks)
	}
	if o.View == ViewNodelink && len(o.Clicks) > 0 {
		return errs.New(errs.ErrCodeInvalidInput, "the nodelink view is not interactive")
	}
	if o.Scale <= 0 {
		o.Scale = DefaultScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// IsNodelink returns true if this is the static overview.
func (o *Options) IsNodelink() bool {
	return o.View == ViewNodelink
}

// ArtifactKeyOpts returns cache key options for one artifact.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		View:     o.View,
		Format:   format,
		Width:    o.Width,
		Height:   o.Height,
		Clicks:   o.Clicks,
		Settled:  !o.Live,
		Settings: settingsHash(o.Config),
	}
}

func settingsHash(c config.Config) string {
	// Only the view sections shape an artifact.
	sum, err := cache.HashJSON([]any{c.Tree, c.Icicle, c.Sunburst})
	if err != nil {
		return ""
	}
	return sum[:16]
}
