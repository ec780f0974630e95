package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/flowchart/pkg/diagram"
	"github.com/matzehuels/flowchart/pkg/render"
)

// Layout engines.
const (
	EngineDot   = "dot"
	EngineNeato = "neato"
)

// Options configures DOT generation.
type Options struct {
	// Detailed prefixes every label with the element id.
	Detailed bool

	// Pinned fixes nodes at their canvas positions. Render pinned output
	// with [EngineNeato].
	Pinned bool
}

// Engine returns the layout engine matching opts.
func (o Options) Engine() string {
	if o.Pinned {
		return EngineNeato
	}
	return EngineDot
}

var shapes = map[diagram.Kind]string{
	diagram.KindCircle:  "circle",
	diagram.KindSquare:  "box",
	diagram.KindDiamond: "diamond",
}

// ToDOT converts a diagram to Graphviz DOT source.
func ToDOT(d diagram.Diagram, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph flowchart {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	if opts.Pinned {
		buf.WriteString("  inputscale=72;\n")
		buf.WriteString("  splines=true;\n")
	}
	buf.WriteString("  node [style=filled, fillcolor=white, fontsize=14, margin=\"0.15,0.08\"];\n")
	buf.WriteString("  edge [fontsize=12, color=\"#b1b1b7\"];\n")
	buf.WriteString("\n")

	ids := make(map[string]bool, len(d.Shapes))
	for _, s := range d.Shapes {
		ids[s.ID] = true
		fmt.Fprintf(&buf, "  %q [%s];\n", s.ID, strings.Join(shapeAttrs(s, opts), ", "))
	}

	buf.WriteString("\n")
	for _, e := range d.Edges {
		if !ids[e.Source] || !ids[e.Target] {
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.Source, e.Target, strings.Join(edgeAttrs(e, opts), ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(id, label string, detailed bool) string {
	if !detailed {
		return label
	}
	if label == "" {
		return id
	}
	return id + "\n" + label
}

func shapeAttrs(s diagram.Shape, opts Options) []string {
	shape, ok := shapes[s.Kind]
	if !ok {
		shape = "box"
	}
	attrs := []string{
		"shape=" + shape,
		fmt.Sprintf("label=%q", fmtLabel(s.ID, s.Label(), opts.Detailed)),
	}
	if s.Style.Color != "" {
		attrs = append(attrs, fmt.Sprintf("color=%q", s.Style.Color))
	}
	if opts.Pinned {
		// Canvas y grows downwards, Graphviz y upwards.
		attrs = append(attrs, fmt.Sprintf("pos=\"%s,%s!\"", num(s.Position.X), num(-s.Position.Y)))
	}
	return attrs
}

func edgeAttrs(e diagram.Edge, opts Options) []string {
	attrs := []string{fmt.Sprintf("label=%q", fmtLabel(e.ID, e.Label(), opts.Detailed))}
	if e.MarkerEnd != nil && e.MarkerEnd.Type == diagram.MarkerArrow {
		attrs = append(attrs, "arrowhead=vee")
	} else {
		attrs = append(attrs, "arrowhead=none")
	}
	return attrs
}

func num(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

// RenderSVG renders DOT source to SVG with the given layout engine.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(ctx context.Context, dot, engine string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	if engine != "" {
		gv.SetLayout(graphviz.Layout(engine))
	}

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized root element with a plain
// pixel-sized one so the SVG scales like the canvas renderer's output.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}

// RenderPDF renders DOT source as PDF via SVG conversion.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, dot, engine string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot, engine)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders DOT source as PNG via SVG conversion.
// A scale of 2.0 produces a 2x resolution image suitable for high-DPI displays.
func RenderPNG(ctx context.Context, dot, engine string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot, engine)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}
