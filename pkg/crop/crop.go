// Package crop derives output viewports from cluster bounding boxes.
//
// A viewport is the rectangle, in source coordinates, shown by a cropped
// output image, together with the pixel canvas it renders onto.
package crop

import (
	"math"

	"github.com/matzehuels/svgslice/pkg/geom"
)

// Canvas height bounds in pixels. After the aspect-derived height is
// clamped the width is not re-derived, so the aspect ratio is only
// approximately preserved once the clamp triggers.
const (
	MinCanvasHeight = 220
	MaxCanvasHeight = 640
)

// Padding holds independent per-side expansion amounts for a rect crop.
type Padding struct {
	Left   float64
	Right  float64
	Top    float64
	Bottom float64
}

// Viewport is a crop rectangle plus the pixel canvas size assigned to
// render it.
type Viewport struct {
	Box    geom.BBox `json:"box" bson:"box"`
	Width  int       `json:"width" bson:"width"`
	Height int       `json:"height" bson:"height"`
}

// Rect expands b by exactly the given amount on each side. Negative
// paddings shrink that side; the caller is responsible for not producing
// an inverted box.
func Rect(b geom.BBox, p Padding) geom.BBox {
	return geom.BBox{
		MinX: b.MinX - p.Left,
		MinY: b.MinY - p.Top,
		MaxX: b.MaxX + p.Right,
		MaxY: b.MaxY + p.Bottom,
	}
}

// Square pads b uniformly, then expands the shorter dimension about the
// padded center until width equals height. The result is always square
// and shares b's center.
func Square(b geom.BBox, pad float64) geom.BBox {
	minx := b.MinX - pad
	miny := b.MinY - pad
	maxx := b.MaxX + pad
	maxy := b.MaxY + pad

	side := math.Max(maxx-minx, maxy-miny)
	cx := (minx + maxx) / 2
	cy := (miny + maxy) / 2
	return geom.BBox{
		MinX: cx - side/2,
		MinY: cy - side/2,
		MaxX: cx + side/2,
		MaxY: cy + side/2,
	}
}

// Canvas picks a pixel canvas size for the viewport box, capping the
// width at maxWidth and deriving the height from the aspect ratio. The
// height is clamped to [MinCanvasHeight, MaxCanvasHeight]. Degenerate
// box dimensions are floored to 1 before the ratio computation.
func Canvas(view geom.BBox, maxWidth int) (width, height int) {
	w := math.Max(view.W(), 1)
	h := math.Max(view.H(), 1)

	width = maxWidth
	height = int(math.Round(float64(maxWidth) * h / w))
	if height < MinCanvasHeight {
		height = MinCanvasHeight
	}
	if height > MaxCanvasHeight {
		height = MaxCanvasHeight
	}
	return width, height
}

// NewViewport bundles a crop box with its canvas size.
func NewViewport(box geom.BBox, maxWidth int) Viewport {
	w, h := Canvas(box, maxWidth)
	return Viewport{Box: box, Width: w, Height: h}
}
