package svgdoc

import (
	"strings"
	"testing"

	"github.com/matzehuels/svgslice/pkg/crop"
	"github.com/matzehuels/svgslice/pkg/errors"
	"github.com/matzehuels/svgslice/pkg/geom"
)

const sample = `<?xml version="1.0"?>
<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 1000 500">
<path d="M0 0 L100 0 L100 50 L0 50 Z" fill="#E7C9A9"/>
<path fill="#e7c9a9" d="M0 40 L90 40 L90 90 L0 90 Z"/>
<path d="M500 0 L600 0 L600 60 L500 60 Z" fill="#4D5F70"/>
<path fill="#E7C9A9"/>
</svg>`

func TestSplit(t *testing.T) {
	doc, err := Split(sample)
	if err != nil {
		t.Fatalf("Split error: %v", err)
	}
	if !strings.HasPrefix(doc.Open, "<svg") || !strings.HasSuffix(doc.Open, ">") {
		t.Errorf("Open = %q, want an <svg ...> tag", doc.Open)
	}
	if doc.Close != "</svg>" {
		t.Errorf("Close = %q, want </svg>", doc.Close)
	}
	if got, want := strings.Count(doc.Body, "<path"), 4; got != want {
		t.Errorf("Body contains %d paths, want %d", got, want)
	}

	// Round trip: wrapper + body reassemble the document tail.
	if !strings.HasSuffix(sample, doc.Open+doc.Body+doc.Close) {
		t.Error("Open+Body+Close should reproduce the document after the prolog")
	}
}

func TestSplit_Invalid(t *testing.T) {
	_, err := Split("<html><body>not svg</body></html>")
	if !errors.Is(err, errors.ErrCodeInvalidDocument) {
		t.Errorf("Split error = %v, want INVALID_DOCUMENT", err)
	}
}

func TestExtractPaths(t *testing.T) {
	paths := ExtractPaths(sample)
	if len(paths) != 4 {
		t.Fatalf("ExtractPaths returned %d paths, want 4", len(paths))
	}

	// Attribute order must not matter.
	if paths[0].D == "" || paths[1].D == "" {
		t.Error("d attribute missing from extracted paths")
	}
	if paths[0].Fill != "#E7C9A9" || paths[1].Fill != "#e7c9a9" {
		t.Errorf("fills = %q, %q", paths[0].Fill, paths[1].Fill)
	}

	// Missing d comes back empty, not dropped.
	if paths[3].D != "" || paths[3].Fill != "#E7C9A9" {
		t.Errorf("path without d = %+v", paths[3])
	}
}

func TestWithFill(t *testing.T) {
	paths := ExtractPaths(sample)

	// Case-insensitive match; the d-less path is dropped.
	got := WithFill(paths, "#e7c9a9")
	if len(got) != 2 {
		t.Fatalf("WithFill returned %d paths, want 2", len(got))
	}

	if got := WithFill(paths, "#4D5F70"); len(got) != 1 {
		t.Errorf("WithFill(#4D5F70) returned %d paths, want 1", len(got))
	}
	if got := WithFill(paths, "#ffffff"); len(got) != 0 {
		t.Errorf("WithFill(#ffffff) returned %d paths, want 0", len(got))
	}
}

func TestFilterByViewport(t *testing.T) {
	paths := ExtractPaths(sample)
	view := geom.BBox{MinX: -10, MinY: -10, MaxX: 120, MaxY: 100}

	got := FilterByViewport(paths, view, 12)
	if len(got) != 2 {
		t.Fatalf("FilterByViewport returned %d paths, want the 2 left rectangles", len(got))
	}
	for _, p := range got {
		if strings.Contains(p.D, "M500") {
			t.Errorf("far-away path kept: %q", p.D)
		}
	}

	// A generous margin pulls in the distant path too.
	if got := FilterByViewport(paths, view, 400); len(got) != 3 {
		t.Errorf("wide margin kept %d paths, want 3", len(got))
	}
}

func TestAssemble(t *testing.T) {
	v := crop.Viewport{
		Box:    geom.BBox{MinX: -8, MinY: -100, MaxX: 128, MaxY: 124},
		Width:  640,
		Height: 620,
	}
	out := Assemble(v, `<path d="M0 0"/>`, "#4D5F70")

	for _, want := range []string{
		`width="640"`,
		`height="620"`,
		`viewBox="-8.00 -100.00 136.00 224.00"`,
		`preserveAspectRatio="xMidYMid meet"`,
		`<rect x="-8.00" y="-100.00" width="136.00" height="224.00" fill="#4D5F70"/>`,
		`<path d="M0 0"/>`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Assemble output missing %q:\n%s", want, out)
		}
	}
	if !strings.HasSuffix(out, "</svg>") {
		t.Error("Assemble output should end with </svg>")
	}
}

func TestAssemble_NoBackground(t *testing.T) {
	v := crop.Viewport{Box: geom.BBox{MaxX: 10, MaxY: 10}, Width: 640, Height: 640}
	out := Assemble(v, "", "")
	if strings.Contains(out, "<rect") {
		t.Error("Assemble without background should not paint a rect")
	}
}

func TestTags(t *testing.T) {
	paths := []Path{{Tag: "<path a/>"}, {Tag: "<path b/>"}}
	if got, want := Tags(paths), "<path a/><path b/>"; got != want {
		t.Errorf("Tags = %q, want %q", got, want)
	}
}
