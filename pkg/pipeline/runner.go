package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/solutionmap/pkg/cache"
	errs "github.com/matzehuels/solutionmap/pkg/errors"
	"github.com/matzehuels/solutionmap/pkg/hierarchy"
	"github.com/matzehuels/solutionmap/pkg/observability"
	"github.com/matzehuels/solutionmap/pkg/records"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	// Backoff retries unavailable remote sources in Load; the zero value
	// is cache.DefaultBackoff.
	Backoff cache.Backoff
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:   c,
		Keyer:   keyer,
		Logger:  logger,
		Backoff: cache.DefaultBackoff,
	}
}

// Execute runs the complete load → build → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, src records.Source, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{}

	// Stage 1: Load
	loadStart := time.Now()
	c, err := r.Load(ctx, src)
	if err != nil {
		return nil, err
	}
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.Records = c.Len()

	r.Logger.Info("loaded records",
		"categories", len(c.Categories),
		"subcategories", len(c.Subcategories),
		"solutions", len(c.Solutions),
		"duration", result.Stats.LoadTime)

	// Stage 2: Build
	buildStart := time.Now()
	built, hit, err := r.BuildWithCacheInfo(ctx, c)
	if err != nil {
		return nil, err
	}
	result.Tree = built.Tree
	result.TreeHash = built.Hash
	result.Report = built.Report
	result.Stats.BuildTime = time.Since(buildStart)
	result.Stats.Nodes = hierarchy.Count(built.Tree)
	result.Stats.Solutions = CountSolutions(built.Tree)
	result.CacheInfo.BuildHit = hit

	r.Logger.Info("built hierarchy",
		"nodes", result.Stats.Nodes,
		"solutions", result.Stats.Solutions,
		"cached", hit,
		"duration", result.Stats.BuildTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, built.Tree, built.Hash, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"view", opts.View,
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// =============================================================================
// Load
// =============================================================================

// Load reads the record collections from src. Unavailable MongoDB
// sources are retried with backoff.
func (r *Runner) Load(ctx context.Context, src records.Source) (records.Collections, error) {
	if src == nil {
		return records.Collections{}, errs.New(errs.ErrCodeInvalidConfig, "no record source configured")
	}
	name := DescribeSource(src)
	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, name)
	start := time.Now()

	backoff := r.Backoff
	backoff.OnRetry = func(attempt int, err error) {
		r.Logger.Warn("record source unavailable, retrying", "source", name, "attempt", attempt, "error", err)
	}
	var c records.Collections
	err := backoff.Do(ctx, func() error {
		var err error
		c, err = src.Load(ctx)
		if err != nil && retryable(src, err) {
			return cache.Retryable(err)
		}
		return err
	})
	hooks.OnLoadComplete(ctx, name, c.Len(), time.Since(start), err)
	if err != nil {
		if errs.GetCode(err) == "" {
			err = errs.Wrap(errs.ErrCodeSourceUnavailable, err, "load %s", name)
		}
		return records.Collections{}, err
	}
	return c, nil
}

func retryable(src records.Source, err error) bool {
	_, remote := src.(records.MongoSource)
	return remote && errs.Is(err, errs.ErrCodeSourceUnavailable)
}

// DescribeSource names a source for logs and hooks.
func DescribeSource(src records.Source) string {
	switch s := src.(type) {
	case records.JSONSource:
		return "json:" + s.Path
	case records.CSVDir:
		return "csv:" + s.Dir
	case records.MongoSource:
		return "mongo:" + s.Database
	default:
		return fmt.Sprintf("%T", src)
	}
}

// =============================================================================
// Build
// =============================================================================

// Built is a hierarchy with its construction report and content hash.
type Built struct {
	Tree   *hierarchy.Node  `json:"tree"`
	Report hierarchy.Report `json:"report"`
	Hash   string           `json:"-"`
}

// BuildWithCacheInfo builds the hierarchy from c, reusing a cached tree
// built from identical records.
func (r *Runner) BuildWithCacheInfo(ctx context.Context, c records.Collections) (*Built, bool, error) {
	sum, err := cache.HashJSON(c)
	if err != nil {
		return nil, false, errs.Wrap(errs.ErrCodeInvalidInput, err, "encode records")
	}
	key := r.Keyer.TreeKey(sum)

	hooks := observability.Pipeline()
	hooks.OnBuildStart(ctx, c.Len())
	start := time.Now()

	if cached, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		var b Built
		if err := json.NewDecoder(bytes.NewReader(cached)).Decode(&b); err == nil && b.Tree != nil {
			b.Hash = treeHash(b.Tree)
			hooks.OnBuildComplete(ctx, hierarchy.Count(b.Tree), time.Since(start))
			return &b, true, nil
		}
		// A corrupt entry falls through to a rebuild.
	}

	tree, report := hierarchy.BuildReport(c.Categories, c.Subcategories, c.Solutions, hierarchy.WithLogger(r.Logger))
	b := &Built{Tree: tree, Report: report, Hash: treeHash(tree)}
	hooks.OnBuildComplete(ctx, hierarchy.Count(tree), time.Since(start))

	if enc, err := json.Marshal(b); err == nil {
		if err := r.Cache.Set(ctx, key, enc, cache.TreeTTL); err != nil {
			r.Logger.Debug("cache tree", "error", err)
		}
	}
	return b, false, nil
}

// Build is a convenience wrapper that discards the cache hit info.
func (r *Runner) Build(ctx context.Context, c records.Collections) (*Built, error) {
	b, _, err := r.BuildWithCacheInfo(ctx, c)
	return b, err
}

// CountSolutions returns the number of solution nodes in tree.
func CountSolutions(tree *hierarchy.Node) int {
	n := 0
	hierarchy.Walk(tree, func(node *hierarchy.Node, _ int) bool {
		if node.Kind == hierarchy.KindSolution {
			n++
		}
		return true
	})
	return n
}

func treeHash(tree *hierarchy.Node) string {
	data, err := hierarchy.Marshal(tree)
	if err != nil {
		return ""
	}
	return cache.Hash(data)
}

// =============================================================================
// Render
// =============================================================================

// RenderWithCacheInfo renders every requested format, serving each from
// the cache when all of them are cached.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, tree *hierarchy.Node, hash string, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	if hash == "" {
		hash = treeHash(tree)
	}

	if !opts.Refresh {
		artifacts := make(map[string][]byte, len(opts.Formats))
		for _, format := range opts.Formats {
			key := r.Keyer.ArtifactKey(hash, opts.ArtifactKeyOpts(format))
			data, hit, err := r.Cache.Get(ctx, key)
			if err != nil || !hit {
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			return artifacts, true, nil
		}
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.View, opts.Formats)
	start := time.Now()
	rendered, err := Render(ctx, tree, opts)
	hooks.OnRenderComplete(ctx, opts.View, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(hash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, cache.ArtifactTTL); err != nil {
			r.Logger.Debug("cache artifact", "format", format, "error", err)
		}
	}
	return rendered, false, nil
}

// Render is a convenience wrapper that discards the cache hit info.
func (r *Runner) Render(ctx context.Context, tree *hierarchy.Node, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, tree, "", opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
