package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tjorvi/jujutsuka/pkg/cache"
	"github.com/tjorvi/jujutsuka/pkg/observability"
	"github.com/tjorvi/jujutsuka/pkg/render"
	"github.com/tjorvi/jujutsuka/pkg/stackgraph"
	"github.com/tjorvi/jujutsuka/pkg/stackgraph/layout"
	"github.com/tjorvi/jujutsuka/pkg/vcs"
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
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete load → decompose → layout → render pipeline with
// caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Load
	loadStart := time.Now()
	commits, loadHit, err := r.LoadWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Commits = commits
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.CommitCount = len(commits)
	result.CacheInfo.LoadHit = loadHit

	r.Logger.Info("loaded commits",
		"commits", len(commits),
		"duration", result.Stats.LoadTime)

	// Stage 2: Decompose
	decomposeStart := time.Now()
	g, decomposeHit, err := r.DecomposeWithCacheInfo(ctx, commits, opts)
	if err != nil {
		return nil, fmt.Errorf("decompose: %w", err)
	}
	result.Graph = g
	result.Stats.DecomposeTime = time.Since(decomposeStart)
	result.Stats.StackCount = len(g.Stacks)
	result.CacheInfo.DecomposeHit = decomposeHit

	// Compute graph hash for cache keys and API responses
	if graphData, err := stackgraph.MarshalGraph(g); err == nil {
		result.GraphHash = cache.Hash(graphData)
	}

	r.Logger.Info("decomposed stacks",
		"stacks", len(g.Stacks),
		"connections", len(g.Connections),
		"duration", result.Stats.DecomposeTime)

	// Stage 3: Layout
	layoutStart := time.Now()
	lay, layoutHit, err := r.LayoutWithCacheInfo(ctx, g, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Layout = lay
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.GroupCount = len(lay.ParallelGroups)
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"groups", len(lay.ParallelGroups),
		"duration", result.Stats.LayoutTime)

	// Stage 4: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, lay, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// LoadWithCacheInfo reads the commit window with caching and returns cache hit info.
func (r *Runner) LoadWithCacheInfo(ctx context.Context, opts Options) ([]vcs.Commit, bool, error) {
	if err := opts.ValidateForLoad(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	cacheKey := r.Keyer.LogKey(opts.RepoPath, opts.LogKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if commits, err := unmarshalCommits(data); err == nil {
				observability.Cache().OnCacheHit(ctx, "log")
				return commits, true, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "log")
	}

	src, err := opts.source()
	if err != nil {
		return nil, false, err
	}

	loadStart := time.Now()
	observability.Pipeline().OnLoadStart(ctx, opts.RepoPath)
	commits, err := src.Load(ctx)
	observability.Pipeline().OnLoadComplete(ctx, opts.RepoPath, len(commits), time.Since(loadStart), err)
	if err != nil {
		return nil, false, err
	}

	if data, err := marshalCommits(commits); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLLog)
		observability.Cache().OnCacheSet(ctx, "log", len(data))
	}

	return commits, false, nil
}

// Load is a convenience wrapper that calls LoadWithCacheInfo and discards the cache hit info.
func (r *Runner) Load(ctx context.Context, opts Options) ([]vcs.Commit, error) {
	commits, _, err := r.LoadWithCacheInfo(ctx, opts)
	return commits, err
}

// DecomposeWithCacheInfo decomposes the commit window with caching and returns cache hit info.
func (r *Runner) DecomposeWithCacheInfo(ctx context.Context, commits []vcs.Commit, opts Options) (*stackgraph.Graph, bool, error) {
	r.applyLogger(&opts)

	// The graph is a pure function of the commit set, so the content hash of
	// the window is the whole key.
	commitData, err := marshalCommits(commits)
	if err != nil {
		return nil, false, fmt.Errorf("serialize commits for cache key: %w", err)
	}
	cacheKey := r.Keyer.GraphKey(cache.Hash(commitData))

	if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
		if g, err := stackgraph.ReadGraph(bytes.NewReader(data)); err == nil {
			observability.Cache().OnCacheHit(ctx, "graph")
			return g, true, nil
		}
		// If deserialization fails, fall through to recompute
	}
	observability.Cache().OnCacheMiss(ctx, "graph")

	decomposeStart := time.Now()
	observability.Pipeline().OnDecomposeStart(ctx, len(commits))
	g, err := stackgraph.DecomposeCommits(commits)
	stacks := 0
	if g != nil {
		stacks = len(g.Stacks)
	}
	observability.Pipeline().OnDecomposeComplete(ctx, stacks, time.Since(decomposeStart), err)
	if err != nil {
		return nil, false, err
	}

	if data, err := stackgraph.MarshalGraph(g); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLGraph)
		observability.Cache().OnCacheSet(ctx, "graph", len(data))
	}

	return g, false, nil
}

// Decompose is a convenience wrapper that calls DecomposeWithCacheInfo and discards the cache hit info.
func (r *Runner) Decompose(ctx context.Context, commits []vcs.Commit, opts Options) (*stackgraph.Graph, error) {
	g, _, err := r.DecomposeWithCacheInfo(ctx, commits, opts)
	return g, err
}

// LayoutWithCacheInfo computes the layout with caching and returns cache hit info.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, g *stackgraph.Graph, opts Options) (layout.Layout, bool, error) {
	r.applyLogger(&opts)

	graphData, err := stackgraph.MarshalGraph(g)
	if err != nil {
		return layout.Layout{}, false, fmt.Errorf("serialize graph for cache key: %w", err)
	}
	cacheKey := r.Keyer.LayoutKey(cache.Hash(graphData), opts.LayoutKeyOpts())

	if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
		if cached, err := layout.Unmarshal(data); err == nil {
			observability.Cache().OnCacheHit(ctx, "layout")
			return cached, true, nil
		}
	}
	observability.Cache().OnCacheMiss(ctx, "layout")

	layoutStart := time.Now()
	observability.Pipeline().OnLayoutStart(ctx, len(g.Stacks))
	var lay layout.Layout
	if opts.SkipParallel {
		lay = layout.Layout{Graph: g}
	} else {
		lay = layout.EnhanceForLayout(g)
	}
	observability.Pipeline().OnLayoutComplete(ctx, len(lay.ParallelGroups), time.Since(layoutStart), nil)

	if data, err := layout.Marshal(lay); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout)
		observability.Cache().OnCacheSet(ctx, "layout", len(data))
	}

	return lay, false, nil
}

// RenderWithCacheInfo renders artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, lay layout.Layout, opts Options) (map[string][]byte, bool, error) {
	opts.SetRenderDefaults()
	if err := ValidateFormats(opts.Formats); err != nil {
		return nil, false, err
	}
	if err := ValidateTheme(opts.Theme); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	layoutData, err := layout.Marshal(lay)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	layoutHash := cache.Hash(layoutData)

	// Try to get all formats from cache
	allCached := true
	artifacts := make(map[string][]byte)

	for _, format := range opts.Formats {
		cacheKey := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			artifacts[format] = data
		} else {
			allCached = false
			break
		}
	}

	if allCached && len(artifacts) == len(opts.Formats) {
		observability.Cache().OnCacheHit(ctx, "artifact")
		return artifacts, true, nil
	}
	observability.Cache().OnCacheMiss(ctx, "artifact")

	renderStart := time.Now()
	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	rendered, err := renderFormats(lay, layoutData, opts)
	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(renderStart), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact)
		observability.Cache().OnCacheSet(ctx, "artifact", len(data))
	}

	return rendered, false, nil
}

// renderFormats produces every requested artifact from one layout.
func renderFormats(lay layout.Layout, layoutJSON []byte, opts Options) (map[string][]byte, error) {
	out := make(map[string][]byte, len(opts.Formats))
	renderOpts := render.Options{Theme: opts.Theme}

	for _, format := range opts.Formats {
		switch format {
		case FormatJSON:
			out[format] = layoutJSON
		case FormatDOT:
			out[format] = []byte(render.ToDOT(lay, renderOpts))
		case FormatSVG:
			svg, err := render.RenderSVG(render.ToDOT(lay, renderOpts))
			if err != nil {
				return nil, fmt.Errorf("render svg: %w", err)
			}
			out[format] = svg
		}
	}
	return out, nil
}

// applyLogger keeps the runner's logger and the options logger consistent:
// an explicit options logger wins, otherwise the runner's is used.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
