// Package cluster groups bounding boxes into spatial clusters and ranks
// the resulting group boxes for slicing.
//
// Two boxes belong to the same cluster when a chain of input boxes
// connects them, each adjacent pair in the chain separated by at most
// the proximity distance (an axis-aligned gap, not a diagonal one). A
// cluster is represented only by the union box of its members.
package cluster

import "github.com/matzehuels/svgslice/pkg/geom"

// Merge unions boxes that overlap or sit within proximity of each
// other, transitively, and returns one box per resulting cluster.
//
// The first pass merges greedily: each box joins the first cluster it
// touches, or starts a new one. Greedy merging is order-dependent — a
// late-arriving box can bridge two clusters that were built separately —
// so whole passes are repeated until one completes without a merge.
// The fixed point makes the final partition independent of input order.
func Merge(boxes []geom.BBox, proximity float64) []geom.BBox {
	clusters := make([]geom.BBox, 0, len(boxes))
	for _, b := range boxes {
		clusters = mergeOne(clusters, b, proximity, nil)
	}

	for {
		changed := false
		out := make([]geom.BBox, 0, len(clusters))
		for _, b := range clusters {
			out = mergeOne(out, b, proximity, &changed)
		}
		clusters = out
		if !changed {
			return clusters
		}
	}
}

// mergeOne folds b into the first cluster it touches, or appends it as a
// new cluster. When changed is non-nil it is set on a merge.
func mergeOne(clusters []geom.BBox, b geom.BBox, proximity float64, changed *bool) []geom.BBox {
	for i, c := range clusters {
		if c.Overlaps(b, proximity) {
			clusters[i] = c.Union(b)
			if changed != nil {
				*changed = true
			}
			return clusters
		}
	}
	return append(clusters, b)
}
