// Package profile defines slicing profiles: the configuration layer
// that turns the generic slicing core into a concrete extraction job.
//
// A profile names the fill that marks candidate paths, the clustering
// and filtering thresholds, and the set of named outputs with their
// crop parameters. Profiles are stored as TOML files; Default returns
// the built-in profile for the Aerostan lower-hold sheet the tool was
// originally written for.
package profile

import (
	"math"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/svgslice/pkg/crop"
	"github.com/matzehuels/svgslice/pkg/errors"
)

// Crop modes for an output.
const (
	CropRect   = "rect"
	CropSquare = "square"
)

// Output describes one named slice to produce.
type Output struct {
	// Name becomes the output filename stem and the slice identifier.
	Name string `toml:"name"`

	// Crop selects the viewport shape: "rect" (independent per-side
	// paddings) or "square" (uniform padding, expanded to a square).
	Crop string `toml:"crop"`

	// Pad is the uniform padding for square crops.
	Pad float64 `toml:"pad"`

	// Per-side paddings for rect crops.
	PadLeft   float64 `toml:"pad-left"`
	PadRight  float64 `toml:"pad-right"`
	PadTop    float64 `toml:"pad-top"`
	PadBottom float64 `toml:"pad-bottom"`

	// FullBody embeds the entire original document body instead of
	// filtering paths to the viewport. Filtering can drop tiny cover
	// and mask paths and introduce visual artifacts, so it is opt-out
	// per output.
	FullBody bool `toml:"full-body"`
}

// Padding bundles the per-side paddings for rect crops.
func (o Output) Padding() crop.Padding {
	return crop.Padding{Left: o.PadLeft, Right: o.PadRight, Top: o.PadTop, Bottom: o.PadBottom}
}

// Profile is a complete slicing configuration.
type Profile struct {
	// Fill marks candidate paths. It is an opaque classification tag
	// matched case-insensitively against each path's fill attribute;
	// the slicer never interprets it beyond equality.
	Fill string `toml:"fill"`

	// Background is the fill painted behind full-body outputs. Empty
	// disables the backdrop.
	Background string `toml:"background"`

	// Proximity is the clustering distance: boxes within this
	// axis-aligned gap of each other merge into one cluster.
	Proximity float64 `toml:"proximity"`

	// MinWidth and MinHeight reject noise clusters before ranking.
	MinWidth  float64 `toml:"min-width"`
	MinHeight float64 `toml:"min-height"`

	// MaxCanvasWidth caps the pixel width of every output canvas.
	MaxCanvasWidth int `toml:"max-canvas-width"`

	// Margin grows the viewport when filtering body paths for
	// non-full-body outputs.
	Margin float64 `toml:"margin"`

	// Outputs are the named slices, assigned to the ranked top-row
	// clusters left to right.
	Outputs []Output `toml:"output"`
}

// Default returns the built-in Aerostan lower-hold profile: three
// top-row container faces sliced into AKE, AKH, and LD9.
func Default() *Profile {
	return &Profile{
		Fill:           "#E7C9A9",
		Background:     "#4D5F70",
		Proximity:      22,
		MinWidth:       80,
		MinHeight:      60,
		MaxCanvasWidth: 640,
		Margin:         12,
		Outputs: []Output{
			{Name: "AKE", Crop: CropRect, PadLeft: 18, PadRight: 18, PadTop: 120, PadBottom: 44, FullBody: true},
			{Name: "AKH", Crop: CropRect, PadLeft: 18, PadRight: 18, PadTop: 120, PadBottom: 44, FullBody: true},
			{Name: "LD9", Crop: CropSquare, Pad: 90},
		},
	}
}

// Load reads a profile from a TOML file. Fields absent from the file
// keep their Default values, so a profile can override selectively.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "profile %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidProfile, err, "read profile %s", path)
	}

	p := Default()
	p.Outputs = nil // file outputs replace, never append to, the defaults
	if err := toml.Unmarshal(data, p); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidProfile, err, "parse profile %s", path)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks the profile for internal consistency. This is the
// boundary where configuration-supplied numbers enter the geometry
// code, so non-finite values are rejected here: TOML happily parses
// `nan` and `inf`, and a NaN proximity defeats every separation test
// downstream.
func (p *Profile) Validate() error {
	if p.Fill == "" {
		return errors.New(errors.ErrCodeInvalidProfile, "fill must be set")
	}
	for name, v := range map[string]float64{
		"proximity":  p.Proximity,
		"min-width":  p.MinWidth,
		"min-height": p.MinHeight,
		"margin":     p.Margin,
	} {
		if !finite(v) {
			return errors.New(errors.ErrCodeMalformedGeometry, "%s must be finite, got %g", name, v)
		}
	}
	if p.Proximity < 0 {
		return errors.New(errors.ErrCodeInvalidProfile, "proximity must be non-negative, got %g", p.Proximity)
	}
	if p.MaxCanvasWidth <= 0 {
		return errors.New(errors.ErrCodeInvalidProfile, "max-canvas-width must be positive, got %d", p.MaxCanvasWidth)
	}
	if len(p.Outputs) == 0 {
		return errors.New(errors.ErrCodeInvalidProfile, "at least one output is required")
	}

	seen := make(map[string]bool, len(p.Outputs))
	for i, o := range p.Outputs {
		if o.Name == "" {
			return errors.New(errors.ErrCodeInvalidProfile, "output %d has no name", i)
		}
		if seen[o.Name] {
			return errors.New(errors.ErrCodeInvalidProfile, "duplicate output name %q", o.Name)
		}
		seen[o.Name] = true
		switch o.Crop {
		case CropRect, CropSquare:
		default:
			return errors.New(errors.ErrCodeInvalidProfile, "output %q: unknown crop mode %q", o.Name, o.Crop)
		}
		for name, v := range map[string]float64{
			"pad":        o.Pad,
			"pad-left":   o.PadLeft,
			"pad-right":  o.PadRight,
			"pad-top":    o.PadTop,
			"pad-bottom": o.PadBottom,
		} {
			if !finite(v) {
				return errors.New(errors.ErrCodeMalformedGeometry, "output %q: %s must be finite, got %g", o.Name, name, v)
			}
		}
	}
	return nil
}

// finite reports whether v is neither NaN nor infinite.
func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
