package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/svgslice/pkg/cache"
	"github.com/matzehuels/svgslice/pkg/errors"
	"github.com/matzehuels/svgslice/pkg/profile"
)

// testSource has three container faces on a top row plus one noise
// blob too small to pass the size filter.
const testSource = `<?xml version="1.0"?>
<svg xmlns="http://www.w3.org/2000/svg" width="800" height="400">
<path d="M40 100 H240 V220 H40 Z" fill="#E7C9A9"/>
<path d="M60 90 H120 V110 H60 Z" fill="#E7C9A9"/>
<path d="M300 100 H500 V220 H300 Z" fill="#e7c9a9"/>
<path d="M560 100 H760 V220 H560 Z" fill="#E7C9A9"/>
<path d="M10 300 H30 V320 H10 Z" fill="#E7C9A9"/>
<path d="M0 0 H800 V400 H0 Z" fill="#222222"/>
</svg>`

func testProfile() *profile.Profile {
	p := profile.Default()
	p.Outputs = []profile.Output{
		{Name: "AKE", Crop: profile.CropRect, PadLeft: 18, PadRight: 18, PadTop: 40, PadBottom: 20, FullBody: true},
		{Name: "AKH", Crop: profile.CropRect, PadLeft: 18, PadRight: 18, PadTop: 40, PadBottom: 20},
		{Name: "LD9", Crop: profile.CropSquare, Pad: 30},
	}
	return p
}

func TestRunner_Execute(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	result, err := runner.Execute(context.Background(), Options{
		Source:     []byte(testSource),
		SourceName: "hold.svg",
		Profile:    testProfile(),
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if result.RunID == "" {
		t.Error("Execute() returned empty RunID")
	}
	if got, want := result.SourceName, "hold.svg"; got != want {
		t.Errorf("SourceName = %q, want %q", got, want)
	}
	if got, want := len(result.Slices), 3; got != want {
		t.Fatalf("len(Slices) = %d, want %d", got, want)
	}

	// Top row ranked left to right maps onto outputs in order.
	wantNames := []string{"AKE", "AKH", "LD9"}
	for i, s := range result.Slices {
		if s.Name != wantNames[i] {
			t.Errorf("Slices[%d].Name = %q, want %q", i, s.Name, wantNames[i])
		}
		if len(s.SVG) == 0 {
			t.Errorf("Slices[%d].SVG is empty", i)
		}
		if !strings.HasPrefix(string(s.SVG), "<svg") {
			t.Errorf("Slices[%d].SVG does not start with an svg tag", i)
		}
	}

	// Full-body output carries the backdrop, filtered output does not.
	if !strings.Contains(string(result.Slices[0].SVG), "#4D5F70") {
		t.Error("full-body slice is missing the background rect")
	}
	if strings.Contains(string(result.Slices[1].SVG), "#4D5F70") {
		t.Error("filtered slice should not carry the background rect")
	}

	// The noise blob fails the size filter but still shows up as a
	// cluster in diagnostics.
	if got, want := result.Stats.ClusterCount, 4; got != want {
		t.Errorf("Stats.ClusterCount = %d, want %d", got, want)
	}
	if got, want := result.Stats.PathCount, 5; got != want {
		t.Errorf("Stats.PathCount = %d, want %d", got, want)
	}
}

func TestRunner_Analyze(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	analysis, err := runner.Analyze(context.Background(), Options{
		Source:  []byte(testSource),
		Profile: testProfile(),
	})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	// Six paths in the document, five with the candidate fill. The
	// first two overlap and merge into one cluster.
	if got, want := len(analysis.Paths), 6; got != want {
		t.Errorf("len(Paths) = %d, want %d", got, want)
	}
	if got, want := len(analysis.Boxes), 5; got != want {
		t.Errorf("len(Boxes) = %d, want %d", got, want)
	}
	if got, want := len(analysis.Clusters), 4; got != want {
		t.Errorf("len(Clusters) = %d, want %d", got, want)
	}
}

func TestRunner_ExecuteCacheHit(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}
	runner := NewRunner(fc, nil, nil)
	opts := Options{Source: []byte(testSource), Profile: testProfile()}

	first, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if first.CacheHit {
		t.Error("first run reported a cache hit")
	}

	second, err := runner.Execute(context.Background(), Options{Source: []byte(testSource), Profile: testProfile()})
	if err != nil {
		t.Fatalf("Execute() second run error = %v", err)
	}
	if !second.CacheHit {
		t.Error("second run did not hit the cache")
	}
	if got, want := second.RunID, first.RunID; got != want {
		t.Errorf("cached RunID = %q, want %q", got, want)
	}
	if got, want := len(second.Slices), len(first.Slices); got != want {
		t.Errorf("cached len(Slices) = %d, want %d", got, want)
	}
}

func TestRunner_ExecuteNoCache(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}
	runner := NewRunner(fc, nil, nil)

	for i := 0; i < 2; i++ {
		result, err := runner.Execute(context.Background(), Options{
			Source:  []byte(testSource),
			Profile: testProfile(),
			NoCache: true,
		})
		if err != nil {
			t.Fatalf("Execute() run %d error = %v", i, err)
		}
		if result.CacheHit {
			t.Errorf("run %d reported a cache hit with NoCache set", i)
		}
	}
}

func TestRunner_ExecuteInsufficientClusters(t *testing.T) {
	p := testProfile()
	p.Outputs = append(p.Outputs, profile.Output{Name: "EXTRA", Crop: profile.CropRect})

	runner := NewRunner(nil, nil, nil)
	_, err := runner.Execute(context.Background(), Options{
		Source:  []byte(testSource),
		Profile: p,
	})
	if err == nil {
		t.Fatal("Execute() expected error for four outputs against three clusters")
	}
	if !errors.Is(err, errors.ErrCodeInsufficientClusters) {
		t.Errorf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeInsufficientClusters)
	}
}

func TestRunner_ExecuteInvertedCrop(t *testing.T) {
	// A negative padding wider than the cluster itself flips the crop
	// rectangle inside out; the render stage must refuse it rather
	// than emit a negative-size viewBox.
	p := testProfile()
	p.Outputs[1].PadLeft = -10000

	runner := NewRunner(nil, nil, nil)
	_, err := runner.Execute(context.Background(), Options{
		Source:  []byte(testSource),
		Profile: p,
	})
	if !errors.Is(err, errors.ErrCodeMalformedGeometry) {
		t.Errorf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeMalformedGeometry)
	}
}

func TestRunner_ExecuteNoCandidates(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	_, err := runner.Execute(context.Background(), Options{
		Source:  []byte(`<svg><path d="M0 0 H10" fill="#123456"/></svg>`),
		Profile: testProfile(),
	})
	if !errors.Is(err, errors.ErrCodeInsufficientClusters) {
		t.Errorf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeInsufficientClusters)
	}
}

func TestRunner_ExecuteInvalidDocument(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	_, err := runner.Execute(context.Background(), Options{
		Source:  []byte("not an svg at all"),
		Profile: testProfile(),
	})
	if !errors.Is(err, errors.ErrCodeInvalidDocument) {
		t.Errorf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidDocument)
	}
}

func TestOptions_ValidateAndSetDefaults(t *testing.T) {
	opts := Options{Source: []byte(testSource)}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error = %v", err)
	}
	if got, want := opts.SourceName, "source.svg"; got != want {
		t.Errorf("SourceName = %q, want %q", got, want)
	}
	if opts.Profile == nil {
		t.Error("Profile was not defaulted")
	}
	if got, want := opts.CacheTTL, DefaultCacheTTL; got != want {
		t.Errorf("CacheTTL = %v, want %v", got, want)
	}
}

func TestOptions_ValidateEmptySource(t *testing.T) {
	opts := Options{}
	err := opts.ValidateAndSetDefaults()
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidInput)
	}
}
