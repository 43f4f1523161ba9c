package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/svgslice/pkg/cache"
	"github.com/matzehuels/svgslice/pkg/cluster"
	"github.com/matzehuels/svgslice/pkg/crop"
	"github.com/matzehuels/svgslice/pkg/errors"
	"github.com/matzehuels/svgslice/pkg/geom"
	"github.com/matzehuels/svgslice/pkg/observability"
	"github.com/matzehuels/svgslice/pkg/pathdata"
	"github.com/matzehuels/svgslice/pkg/profile"
	"github.com/matzehuels/svgslice/pkg/svgdoc"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and server use this to avoid duplicating caching logic.
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

// Execute runs the complete analyze → rank → render pipeline with
// caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	logger := r.logger(&opts)

	start := time.Now()
	observability.Pipeline().OnSliceStart(ctx, opts.SourceName)

	key := r.resultKey(&opts)
	if !opts.NoCache {
		if cached, ok := r.cachedResult(ctx, key); ok {
			logger.Debug("result cache hit", "source", opts.SourceName)
			observability.Pipeline().OnSliceComplete(ctx, opts.SourceName, len(cached.Slices), time.Since(start), nil)
			return cached, nil
		}
	}

	result, err := r.execute(ctx, &opts, logger)
	observability.Pipeline().OnSliceComplete(ctx, opts.SourceName, resultSliceCount(result), time.Since(start), err)
	if err != nil {
		return nil, err
	}

	if !opts.NoCache {
		if data, merr := json.Marshal(result); merr == nil {
			if cerr := r.Cache.Set(ctx, key, data, opts.CacheTTL); cerr != nil {
				logger.Debug("result cache write failed", "err", cerr)
			}
		}
	}
	return result, nil
}

func (r *Runner) execute(ctx context.Context, opts *Options, logger *log.Logger) (*Result, error) {
	analysis, err := r.Analyze(ctx, *opts)
	if err != nil {
		return nil, err
	}

	renderStart := time.Now()
	targets, err := cluster.TopRow(analysis.Clusters, cluster.RankOptions{
		MinWidth:  opts.Profile.MinWidth,
		MinHeight: opts.Profile.MinHeight,
		Count:     len(opts.Profile.Outputs),
	})
	if err != nil {
		return nil, err
	}

	slices := make([]Slice, 0, len(opts.Profile.Outputs))
	for i, out := range opts.Profile.Outputs {
		s, err := RenderSlice(analysis, targets[i], out, opts.Profile)
		if err != nil {
			return nil, err
		}
		logger.Debug("assembled slice",
			"name", s.Name, "viewBox", s.Viewport.Box, "canvas_w", s.Viewport.Width, "canvas_h", s.Viewport.Height)
		slices = append(slices, s)
	}

	stats := analysis.Stats
	stats.RenderTime = time.Since(renderStart)

	logger.Info("sliced document",
		"source", opts.SourceName, "paths", stats.PathCount, "clusters", stats.ClusterCount, "slices", len(slices))

	return &Result{
		RunID:      uuid.NewString(),
		SourceName: opts.SourceName,
		Slices:     slices,
		Clusters:   analysis.Clusters,
		Stats:      stats,
	}, nil
}

// Analyze runs the read → interpret → cluster stage without ranking or
// rendering, for callers that select clusters themselves.
func (r *Runner) Analyze(ctx context.Context, opts Options) (*Analysis, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	logger := r.logger(&opts)
	start := time.Now()

	doc, err := svgdoc.Split(string(opts.Source))
	if err != nil {
		return nil, err
	}

	paths := svgdoc.ExtractPaths(doc.Body)
	candidates := svgdoc.WithFill(paths, opts.Profile.Fill)
	if len(candidates) == 0 {
		return nil, errors.New(errors.ErrCodeInsufficientClusters, "no candidate paths with fill %q", opts.Profile.Fill)
	}

	boxes := make([]geom.BBox, 0, len(candidates))
	for _, p := range candidates {
		if b, ok := pathdata.Bounds(p.D); ok {
			boxes = append(boxes, b)
		}
	}
	if skipped := len(candidates) - len(boxes); skipped > 0 {
		logger.Debug("candidate paths without drawable points", "count", skipped)
	}
	if len(boxes) == 0 {
		return nil, errors.New(errors.ErrCodeInsufficientClusters, "no candidate paths with fill %q produced bounds", opts.Profile.Fill)
	}

	clusters := cluster.Merge(boxes, opts.Profile.Proximity)
	observability.Pipeline().OnClusterComplete(ctx, len(boxes), len(clusters))
	logger.Debug("clustered candidates",
		"paths", len(candidates), "boxes", len(boxes), "clusters", len(clusters), "proximity", opts.Profile.Proximity)

	return &Analysis{
		Doc:      doc,
		Paths:    paths,
		Boxes:    boxes,
		Clusters: clusters,
		Stats: Stats{
			PathCount:    len(candidates),
			BoxCount:     len(boxes),
			ClusterCount: len(clusters),
			AnalyzeTime:  time.Since(start),
		},
	}, nil
}

// RenderSlice assembles one output document for a target cluster box.
// The crop box is validated before it becomes a viewBox: negative
// paddings larger than the target invert the rectangle.
func RenderSlice(a *Analysis, target geom.BBox, out profile.Output, p *profile.Profile) (Slice, error) {
	var raw geom.BBox
	switch out.Crop {
	case profile.CropSquare:
		raw = crop.Square(target, out.Pad)
	default:
		raw = crop.Rect(target, out.Padding())
	}
	box, err := geom.New(raw.MinX, raw.MinY, raw.MaxX, raw.MaxY)
	if err != nil {
		return Slice{}, errors.Wrap(errors.GetCode(err), err, "output %q crop", out.Name)
	}
	view := crop.NewViewport(box, p.MaxCanvasWidth)

	var inner, background string
	if out.FullBody {
		// Embed the full body and rely on the viewBox crop: filtering
		// can drop tiny cover/mask paths and leave visual artifacts.
		inner = a.Doc.Body
		background = p.Background
	} else {
		inner = svgdoc.Tags(svgdoc.FilterByViewport(a.Paths, view.Box, p.Margin))
	}

	return Slice{
		Name:     out.Name,
		Viewport: view,
		SVG:      []byte(svgdoc.Assemble(view, inner, background)),
	}, nil
}

func (r *Runner) resultKey(opts *Options) string {
	profileData, _ := json.Marshal(opts.Profile)
	return r.Keyer.RunKey(cache.Hash(opts.Source), cache.Hash(profileData))
}

func (r *Runner) cachedResult(ctx context.Context, key string) (*Result, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, key)
		return nil, false
	}
	var result Result
	if err := json.Unmarshal(data, &result); err != nil {
		// Stale or corrupt entry - drop it and recompute.
		_ = r.Cache.Delete(ctx, key)
		observability.Cache().OnCacheMiss(ctx, key)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, key)
	result.CacheHit = true
	return &result, true
}

func (r *Runner) logger(opts *Options) *log.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	return r.Logger
}

func resultSliceCount(result *Result) int {
	if result == nil {
		return 0
	}
	return len(result.Slices)
}
