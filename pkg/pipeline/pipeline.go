// Package pipeline provides the core slicing pipeline for svgslice.
//
// This package implements the complete extract → cluster → crop →
// assemble pipeline shared by the CLI and the preview server. By
// centralizing this logic, both entry points behave identically and
// results can be cached once.
//
// # Architecture
//
// The pipeline consists of two stages:
//
//  1. Analyze: read the document, interpret candidate path bounds, and
//     cluster them
//  2. Render: rank clusters against the profile's outputs and assemble
//     one cropped document per output
//
// Analyze can be run on its own when a caller wants to choose clusters
// interactively instead of accepting the top-row ranking.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Source:     svgBytes,
//	    SourceName: "t1.svg",
//	    Profile:    profile.Default(),
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, s := range result.Slices {
//	    os.WriteFile(s.Name+".svg", s.SVG, 0644)
//	}
package pipeline

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/svgslice/pkg/crop"
	"github.com/matzehuels/svgslice/pkg/errors"
	"github.com/matzehuels/svgslice/pkg/geom"
	"github.com/matzehuels/svgslice/pkg/profile"
	"github.com/matzehuels/svgslice/pkg/svgdoc"
)

// DefaultCacheTTL is how long cached pipeline results stay valid.
const DefaultCacheTTL = 24 * time.Hour

// Options contains all configuration for a slicing run.
// This struct supports JSON serialization for server requests; Source
// is the raw SVG document.
type Options struct {
	// Source is the SVG document to slice.
	Source []byte `json:"source"`

	// SourceName identifies the source in logs and run history.
	SourceName string `json:"source_name,omitempty"`

	// Profile configures candidate selection, clustering, and outputs.
	// Nil selects profile.Default().
	Profile *profile.Profile `json:"profile,omitempty"`

	// NoCache bypasses the result cache for this run.
	NoCache bool `json:"no_cache,omitempty"`

	// CacheTTL overrides DefaultCacheTTL when positive.
	CacheTTL time.Duration `json:"cache_ttl,omitempty"`

	// Logger for structured progress output (not serialized).
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent - calling it multiple times has the same
// effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if len(o.Source) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "source document is empty")
	}
	if o.SourceName == "" {
		o.SourceName = "source.svg"
	}
	if o.Profile == nil {
		o.Profile = profile.Default()
	}
	if err := o.Profile.Validate(); err != nil {
		return err
	}
	if o.CacheTTL <= 0 {
		o.CacheTTL = DefaultCacheTTL
	}
	o.validated = true
	return nil
}

// Slice is one assembled output document.
type Slice struct {
	// Name is the output name from the profile.
	Name string `json:"name"`

	// Viewport is the crop rectangle and canvas size the document uses.
	Viewport crop.Viewport `json:"viewport"`

	// SVG is the assembled document.
	SVG []byte `json:"svg"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID uniquely identifies this run.
	RunID string `json:"run_id"`

	// SourceName echoes the input's name.
	SourceName string `json:"source_name"`

	// Slices are the assembled outputs, in profile order.
	Slices []Slice `json:"slices"`

	// Clusters are all group boxes found before ranking, for
	// diagnostics.
	Clusters []geom.BBox `json:"clusters"`

	// Stats contains timing and size information.
	Stats Stats `json:"stats"`

	// CacheHit reports whether the whole result came from cache.
	CacheHit bool `json:"cache_hit"`
}

// Stats contains pipeline execution statistics.
type Stats struct {
	PathCount    int           `json:"path_count"`    // candidate paths with the profile fill
	BoxCount     int           `json:"box_count"`     // paths that produced a bounding box
	ClusterCount int           `json:"cluster_count"` // clusters after merging
	AnalyzeTime  time.Duration `json:"analyze_time"`
	RenderTime   time.Duration `json:"render_time"`
}

// Analysis holds the intermediate state between the analyze and render
// stages: everything needed to build slices once target clusters are
// chosen.
type Analysis struct {
	// Doc is the split source document.
	Doc svgdoc.Document

	// Paths are all paths in the document, in order.
	Paths []svgdoc.Path

	// Boxes are the interpreted bounds of the candidate paths.
	Boxes []geom.BBox

	// Clusters are the merged group boxes.
	Clusters []geom.BBox

	// Stats covers the analyze stage.
	Stats Stats
}
