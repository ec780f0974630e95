package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/flowchart/pkg/diagram"
	"github.com/matzehuels/flowchart/pkg/errors"
	fio "github.com/matzehuels/flowchart/pkg/io"
	"github.com/matzehuels/flowchart/pkg/render"
	"github.com/matzehuels/flowchart/pkg/render/canvas"
	"github.com/matzehuels/flowchart/pkg/render/nodelink"
)

// Render generates output artifacts in the requested formats without
// touching any cache. Options must already be validated.
func Render(ctx context.Context, d diagram.Diagram, opts Options) (map[string][]byte, error) {
	if opts.IsGraphviz() {
		return renderNodelink(ctx, d, opts)
	}
	return renderCanvas(ctx, d, opts)
}

func renderCanvas(ctx context.Context, d diagram.Diagram, opts Options) (map[string][]byte, error) {
	svg := canvas.RenderSVG(d, canvas.Options{Handles: opts.Handles})
	artifacts := make(map[string][]byte, len(opts.Formats))

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = svg
		case FormatPNG:
			data, err = render.ToPNG(ctx, svg, opts.Scale)
		case FormatPDF:
			data, err = render.ToPDF(ctx, svg)
		case FormatJSON:
			data, err = fio.Marshal(d)
		default:
			return nil, errors.New(errors.ErrCodeUnsupported, "unsupported canvas format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

func renderNodelink(ctx context.Context, d diagram.Diagram, opts Options) (map[string][]byte, error) {
	nlOpts := nodelink.Options{Detailed: opts.Detailed, Pinned: opts.Layout == LayoutPinned}
	dot := nodelink.ToDOT(d, nlOpts)
	engine := nlOpts.Engine()

	artifacts := make(map[string][]byte, len(opts.Formats))

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data, err = nodelink.RenderSVG(ctx, dot, engine)
		case FormatPNG:
			data, err = nodelink.RenderPNG(ctx, dot, engine, opts.Scale)
		case FormatPDF:
			data, err = nodelink.RenderPDF(ctx, dot, engine)
		case FormatDOT:
			data = []byte(dot)
		case FormatJSON:
			data, err = fio.Marshal(d)
		default:
			return nil, errors.New(errors.ErrCodeUnsupported, "unsupported nodelink format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}
