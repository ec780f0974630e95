// Package pipeline renders a diagram to one or more output formats with
// caching. The CLI and the HTTP server both render through a [Runner] so
// option defaults and cache keys stay identical across entry points.
//
// # Layouts
//
//   - "canvas": shapes at the positions the user placed them, drawn with the
//     editor's geometry (default)
//   - "dot": graphviz hierarchical layout, positions ignored
//   - "pinned": graphviz neato with every node pinned to its position
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, logger)
//	result, err := runner.Execute(ctx, store.Snapshot(), pipeline.Options{
//	    Formats: []string{"svg", "png"},
//	})
//	if err != nil {
//	    return err
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"slices"
	"time"

	"github.com/matzehuels/flowchart/pkg/cache"
	"github.com/matzehuels/flowchart/pkg/errors"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultLayout places shapes where the user left them.
	DefaultLayout = LayoutCanvas

	// DefaultScale is the PNG scale factor.
	DefaultScale = 2.0
)

// Layout names.
const (
	LayoutCanvas = "canvas"
	LayoutDot    = "dot"
	LayoutPinned = "pinned"
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatDOT  = "dot"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatDOT:  true,
	FormatJSON: true,
}

// ValidLayouts is the set of supported layouts.
var ValidLayouts = map[string]bool{
	LayoutCanvas: true,
	LayoutDot:    true,
	LayoutPinned: true,
}

// =============================================================================
// Options
// =============================================================================

// Options configures a render. The zero value renders an SVG of the canvas.
type Options struct {
	Layout   string   `json:"layout,omitempty"`
	Formats  []string `json:"formats,omitempty"`
	Scale    float64  `json:"scale,omitempty"`
	Detailed bool     `json:"detailed,omitempty"` // Show shape ids in graphviz labels
	Handles  bool     `json:"handles,omitempty"`  // Draw connection handles on the canvas
	Refresh  bool     `json:"refresh,omitempty"`  // Bypass the artifact cache
}

// Result contains the outputs of a render.
type Result struct {
	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// DiagramHash is the content hash of the exported diagram.
	DiagramHash string

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains render statistics.
type Stats struct {
	ShapeCount int
	EdgeCount  int
	RenderTime time.Duration
}

// CacheInfo tracks which formats came from the cache.
type CacheInfo struct {
	Hits   []string
	Misses []string
}

// AllHit reports whether every artifact came from the cache.
func (c CacheInfo) AllHit() bool { return len(c.Misses) == 0 && len(c.Hits) > 0 }

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, png, pdf, dot, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateLayout checks that a layout is valid.
func ValidateLayout(layout string) error {
	if !ValidLayouts[layout] {
		return errors.New(errors.ErrCodeInvalidInput, "invalid layout: %q (must be one of: canvas, dot, pinned)", layout)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults applies defaults and validates the options.
// Calling it more than once has no further effect.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Layout == "" {
		o.Layout = DefaultLayout
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Scale <= 0 {
		o.Scale = DefaultScale
	}
	if err := ValidateLayout(o.Layout); err != nil {
		return err
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Layout == LayoutCanvas && slices.Contains(o.Formats, FormatDOT) {
		return errors.New(errors.ErrCodeInvalidInput, "dot output needs the dot or pinned layout")
	}
	return nil
}

// IsGraphviz reports whether the layout is computed by graphviz.
func (o *Options) IsGraphviz() bool {
	return o.Layout == LayoutDot || o.Layout == LayoutPinned
}

// ArtifactKeyOpts returns cache key options for one format. Options that
// do not affect the format's bytes are left zero.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactOpts {
	opts := cache.ArtifactOpts{Format: format, Layout: o.Layout}
	if format == FormatJSON {
		opts.Layout = ""
		return opts
	}
	if format == FormatPNG {
		opts.Scale = o.Scale
	}
	if o.IsGraphviz() {
		opts.Detailed = o.Detailed
	} else {
		opts.Handles = o.Handles
	}
	return opts
}
