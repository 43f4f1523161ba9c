// Package svgdoc reads and writes the SVG documents surrounding the
// slicing core.
//
// The package deliberately treats SVG as text, not as a DOM: slice
// output embeds the original document body verbatim, and a parse/
// serialize round trip through an XML tree could not guarantee the
// byte-for-byte fidelity that requires. Extraction is limited to the
// few attributes slicing needs (path data and fill).
package svgdoc

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/matzehuels/svgslice/pkg/crop"
	"github.com/matzehuels/svgslice/pkg/errors"
	"github.com/matzehuels/svgslice/pkg/geom"
	"github.com/matzehuels/svgslice/pkg/pathdata"
)

var (
	svgWrapperRe = regexp.MustCompile(`(?is)(<svg[^>]*>)(.*)(</svg>)`)
	pathTagRe    = regexp.MustCompile(`(?i)<path\b[^>]*>`)
	dAttrRe      = regexp.MustCompile(`(?i)\bd\s*=\s*"([^"]*)"`)
	fillAttrRe   = regexp.MustCompile(`(?i)\bfill\s*=\s*"([^"]*)"`)
)

// Document is a source SVG split into its wrapper tags and inner body.
type Document struct {
	Open  string // the opening <svg ...> tag
	Body  string // everything between the wrapper tags, verbatim
	Close string // the closing </svg> tag
}

// Path is one <path> element: its full tag plus the two attributes the
// slicer cares about. Fill is an opaque classification tag; the slicer
// matches it but never interprets it.
type Path struct {
	Tag  string
	D    string
	Fill string
}

// Split divides an SVG document into wrapper and body.
func Split(svg string) (Document, error) {
	m := svgWrapperRe.FindStringSubmatch(svg)
	if m == nil {
		return Document{}, errors.New(errors.ErrCodeInvalidDocument, "could not locate <svg> wrapper")
	}
	return Document{Open: m[1], Body: m[2], Close: m[3]}, nil
}

// ExtractPaths returns every <path> element in the document, in order.
// Attribute order within a tag does not matter; missing attributes come
// back empty.
func ExtractPaths(svg string) []Path {
	tags := pathTagRe.FindAllString(svg, -1)
	paths := make([]Path, 0, len(tags))
	for _, tag := range tags {
		p := Path{Tag: tag}
		if m := dAttrRe.FindStringSubmatch(tag); m != nil {
			p.D = m[1]
		}
		if m := fillAttrRe.FindStringSubmatch(tag); m != nil {
			p.Fill = m[1]
		}
		paths = append(paths, p)
	}
	return paths
}

// WithFill filters paths to those whose fill matches the given tag,
// ignoring case and surrounding whitespace. Paths without path data are
// dropped.
func WithFill(paths []Path, fill string) []Path {
	want := strings.TrimSpace(fill)
	out := make([]Path, 0, len(paths))
	for _, p := range paths {
		if p.D == "" {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(p.Fill), want) {
			out = append(out, p)
		}
	}
	return out
}

// FilterByViewport keeps paths whose interpreted bounding box overlaps
// the viewport box grown by margin. Paths that produce no box are
// dropped. This is used to re-emit only the geometry relevant to a
// crop instead of the entire original body.
func FilterByViewport(paths []Path, view geom.BBox, margin float64) []Path {
	crop := geom.BBox{
		MinX: view.MinX - margin,
		MinY: view.MinY - margin,
		MaxX: view.MaxX + margin,
		MaxY: view.MaxY + margin,
	}
	var keep []Path
	for _, p := range paths {
		if p.D == "" {
			continue
		}
		if b, ok := pathdata.Bounds(p.D); ok && b.Overlaps(crop, 0) {
			keep = append(keep, p)
		}
	}
	return keep
}

// Assemble builds a cropped output document: the viewport becomes the
// viewBox, the canvas size becomes the pixel dimensions, and inner is
// embedded verbatim. When background is a non-empty fill, a rect
// covering the viewport is painted behind the body.
func Assemble(v crop.Viewport, inner, background string) string {
	var b strings.Builder
	fmt.Fprintf(&b,
		`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="%.2f %.2f %.2f %.2f" preserveAspectRatio="xMidYMid meet">`,
		v.Width, v.Height, v.Box.MinX, v.Box.MinY, v.Box.W(), v.Box.H())
	if background != "" {
		fmt.Fprintf(&b, `<rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s"/>`,
			v.Box.MinX, v.Box.MinY, v.Box.W(), v.Box.H(), background)
	}
	b.WriteString(inner)
	b.WriteString("</svg>")
	return b.String()
}

// Tags concatenates the raw tags of the given paths, preserving order.
func Tags(paths []Path) string {
	var b strings.Builder
	for _, p := range paths {
		b.WriteString(p.Tag)
	}
	return b.String()
}
