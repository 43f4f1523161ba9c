// Package geom provides the axis-aligned bounding box value type used
// throughout the slicing pipeline.
//
// A BBox is a plain value: all derived attributes (center, width, height)
// are computed on demand, and operations like Union return new values
// rather than mutating in place.
package geom

import (
	"fmt"
	"math"

	"github.com/matzehuels/svgslice/pkg/errors"
)

// BBox is an axis-aligned rectangle in source document coordinates.
// Invariant: MinX <= MaxX and MinY <= MaxY once constructed from at
// least one point.
type BBox struct {
	MinX float64 `json:"minx" bson:"minx"`
	MinY float64 `json:"miny" bson:"miny"`
	MaxX float64 `json:"maxx" bson:"maxx"`
	MaxY float64 `json:"maxy" bson:"maxy"`
}

// New constructs a BBox, rejecting non-finite coordinates and inverted
// extents. This is the validation boundary for caller-supplied geometry.
func New(minx, miny, maxx, maxy float64) (BBox, error) {
	for _, v := range [4]float64{minx, miny, maxx, maxy} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return BBox{}, errors.New(errors.ErrCodeMalformedGeometry, "non-finite coordinate %v", v)
		}
	}
	if minx > maxx || miny > maxy {
		return BBox{}, errors.New(errors.ErrCodeMalformedGeometry,
			"inverted extents: min (%g, %g) exceeds max (%g, %g)", minx, miny, maxx, maxy)
	}
	return BBox{MinX: minx, MinY: miny, MaxX: maxx, MaxY: maxy}, nil
}

// Union returns the smallest box containing both b and other.
func (b BBox) Union(other BBox) BBox {
	return BBox{
		MinX: math.Min(b.MinX, other.MinX),
		MinY: math.Min(b.MinY, other.MinY),
		MaxX: math.Max(b.MaxX, other.MaxX),
		MaxY: math.Max(b.MaxY, other.MaxY),
	}
}

// CX returns the horizontal center.
func (b BBox) CX() float64 { return (b.MinX + b.MaxX) / 2 }

// CY returns the vertical center.
func (b BBox) CY() float64 { return (b.MinY + b.MaxY) / 2 }

// W returns the width.
func (b BBox) W() float64 { return b.MaxX - b.MinX }

// H returns the height.
func (b BBox) H() float64 { return b.MaxY - b.MinY }

// Overlaps reports whether b and other interpenetrate once each is
// notionally grown by pad. The test is independent per axis, so the
// separation is an axis-aligned gap, not a diagonal distance. Boxes
// whose pad-grown edges merely touch do not overlap: with pad 0, two
// boxes sharing only an edge are separate.
func (b BBox) Overlaps(other BBox, pad float64) bool {
	if b.MaxX+pad <= other.MinX || other.MaxX+pad <= b.MinX {
		return false
	}
	if b.MaxY+pad <= other.MinY || other.MaxY+pad <= b.MinY {
		return false
	}
	return true
}

// String formats the box for log output.
func (b BBox) String() string {
	return fmt.Sprintf("[%g %g %g %g]", b.MinX, b.MinY, b.MaxX, b.MaxY)
}

// Extent accumulates visited points into a bounding box. The zero value
// is empty; the box is undefined until the first point is added.
type Extent struct {
	box BBox
	any bool
}

// Add grows the extent to include the point (x, y).
func (e *Extent) Add(x, y float64) {
	if !e.any {
		e.box = BBox{MinX: x, MinY: y, MaxX: x, MaxY: y}
		e.any = true
		return
	}
	e.box.MinX = math.Min(e.box.MinX, x)
	e.box.MinY = math.Min(e.box.MinY, y)
	e.box.MaxX = math.Max(e.box.MaxX, x)
	e.box.MaxY = math.Max(e.box.MaxY, y)
}

// BBox returns the accumulated box and whether any point was added.
func (e *Extent) BBox() (BBox, bool) {
	return e.box, e.any
}
