package cluster

import (
	"cmp"
	"slices"

	"github.com/matzehuels/svgslice/pkg/errors"
	"github.com/matzehuels/svgslice/pkg/geom"
)

// RankOptions controls cluster selection in TopRow.
type RankOptions struct {
	// MinWidth and MinHeight reject clusters too small to plausibly be
	// a target shape. The comparison is strict: a cluster must be
	// larger than both minimums to survive.
	MinWidth  float64
	MinHeight float64

	// Count is the number of clusters the caller needs. Fewer surviving
	// clusters is a hard failure, not a short result.
	Count int
}

// TopRow selects the topmost Count clusters, ordered left to right.
//
// Clusters are first filtered by minimum size, then sorted by ascending
// vertical center; the topmost Count are kept and re-sorted by ascending
// horizontal center. Both sorts are stable, encoding a "read the top
// row, left to right" policy. Ties on both centers keep input order.
//
// If fewer than Count clusters survive the size filter, TopRow fails
// with an INSUFFICIENT_CLUSTERS error so callers that need a fixed
// number of targets never silently under-deliver.
func TopRow(clusters []geom.BBox, opts RankOptions) ([]geom.BBox, error) {
	keep := make([]geom.BBox, 0, len(clusters))
	for _, c := range clusters {
		if c.W() > opts.MinWidth && c.H() > opts.MinHeight {
			keep = append(keep, c)
		}
	}

	if len(keep) < opts.Count {
		return nil, errors.New(errors.ErrCodeInsufficientClusters,
			"need %d clusters, found %d after size filter (min %gx%g)",
			opts.Count, len(keep), opts.MinWidth, opts.MinHeight)
	}

	slices.SortStableFunc(keep, func(a, b geom.BBox) int {
		return cmp.Compare(a.CY(), b.CY())
	})
	top := keep[:opts.Count]
	slices.SortStableFunc(top, func(a, b geom.BBox) int {
		return cmp.Compare(a.CX(), b.CX())
	})
	return top, nil
}
