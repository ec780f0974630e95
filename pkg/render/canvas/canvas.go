// Package canvas renders a diagram as SVG at the positions the user chose,
// using the editor's geometry: kind sizes, top/bottom handles, straight
// edges and background-filled edge labels.
package canvas

import (
	"bytes"
	"fmt"
	"html"
	"math"
	"strconv"

	"github.com/matzehuels/flowchart/pkg/diagram"
	"github.com/matzehuels/flowchart/pkg/view"
)

const (
	margin       = 20.0
	fontSize     = 12.0
	charWidth    = 7.0 // average glyph advance at fontSize
	edgeColor    = "#b1b1b7"
	handleRadius = 3.0
)

// Options configures SVG output.
type Options struct {
	// Handles draws the connection handles of every shape.
	Handles bool
}

// RenderSVG draws d. Edges whose ends no longer exist are not drawn.
func RenderSVG(d diagram.Diagram, opts Options) []byte {
	shapes := make(map[string]diagram.Shape, len(d.Shapes))
	for _, s := range d.Shapes {
		shapes[s.ID] = s
	}

	var edges []placedEdge
	for _, e := range d.Edges {
		src, ok1 := shapes[e.Source]
		dst, ok2 := shapes[e.Target]
		if !ok1 || !ok2 {
			continue
		}
		sx, sy, tx, ty := view.EdgeEnds(src, dst)
		edges = append(edges, placedEdge{edge: e, path: view.StraightPath(sx, sy, tx, ty)})
	}

	b := bounds(d.Shapes, edges)
	w, h := b.maxX-b.minX+2*margin, b.maxY-b.minY+2*margin
	ox, oy := margin-b.minX, margin-b.minY

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n", w, h, w, h)
	renderDefs(&buf)
	fmt.Fprintf(&buf, `  <g transform="translate(%s,%s)" font-family="sans-serif" font-size="%s">`+"\n", num(ox), num(oy), num(fontSize))

	for _, pe := range edges {
		renderEdge(&buf, pe)
	}
	for _, s := range d.Shapes {
		renderShape(&buf, s, opts)
	}

	buf.WriteString("  </g>\n</svg>\n")
	return buf.Bytes()
}

type placedEdge struct {
	edge diagram.Edge
	path view.Path
}

type box struct{ minX, minY, maxX, maxY float64 }

func bounds(shapes []diagram.Shape, edges []placedEdge) box {
	if len(shapes) == 0 {
		return box{}
	}
	b := box{math.Inf(1), math.Inf(1), math.Inf(-1), math.Inf(-1)}
	grow := func(x0, y0, x1, y1 float64) {
		b.minX, b.minY = min(b.minX, x0), min(b.minY, y0)
		b.maxX, b.maxY = max(b.maxX, x1), max(b.maxY, y1)
	}
	for _, s := range shapes {
		g := view.Size(s)
		grow(s.Position.X, s.Position.Y, s.Position.X+g.Width, s.Position.Y+g.Height)
	}
	for _, pe := range edges {
		if l := pe.edge.Label(); l != "" {
			x, y, lw, lh := labelBox(pe.path.LabelX, pe.path.LabelY, l)
			grow(x, y, x+lw, y+lh)
		}
	}
	return b
}

func renderDefs(buf *bytes.Buffer) {
	fmt.Fprintf(buf, `  <defs>
    <marker id="arrow" viewBox="-10 -10 20 20" markerWidth="12.5" markerHeight="12.5" orient="auto-start-reverse" refX="0" refY="0">
      <polyline points="-5,-4 0,0 -5,4" fill="none" stroke="%s" stroke-width="1" stroke-linecap="round" stroke-linejoin="round"/>
    </marker>
  </defs>
`, edgeColor)
}

func renderEdge(buf *bytes.Buffer, pe placedEdge) {
	marker := ""
	if pe.edge.MarkerEnd != nil && pe.edge.MarkerEnd.Type == diagram.MarkerArrow {
		marker = ` marker-end="url(#arrow)"`
	}
	fmt.Fprintf(buf, `    <path id="edge-%s" class="edge" d="%s" fill="none" stroke="%s" stroke-width="1"%s/>`+"\n",
		esc(pe.edge.ID), pe.path.D, edgeColor, marker)

	label := pe.edge.Label()
	if label == "" {
		return
	}
	x, y, w, h := labelBox(pe.path.LabelX, pe.path.LabelY, label)
	fmt.Fprintf(buf, `    <rect class="edge-label-bg" x="%s" y="%s" width="%s" height="%s" rx="%s" ry="%s" fill="white"/>`+"\n",
		num(x), num(y), num(w), num(h), num(view.LabelRadius), num(view.LabelRadius))
	fmt.Fprintf(buf, `    <text class="edge-label" x="%s" y="%s" text-anchor="middle" dominant-baseline="central" fill="black">%s</text>`+"\n",
		num(pe.path.LabelX), num(pe.path.LabelY), esc(label))
}

// labelBox returns the background rectangle of an edge label centered on
// (cx, cy).
func labelBox(cx, cy float64, label string) (x, y, w, h float64) {
	w = float64(len([]rune(label)))*charWidth + 2*view.LabelPadX
	h = fontSize + 2*view.LabelPadY
	return cx - w/2, cy - h/2, w, h
}

func renderShape(buf *bytes.Buffer, s diagram.Shape, opts Options) {
	g := view.Size(s)
	x, y := s.Position.X, s.Position.Y
	cx, cy := g.Center(s.Position)
	color := s.Style.Color
	if color == "" {
		color = diagram.DefaultColor
	}

	fmt.Fprintf(buf, `    <g id="shape-%s" class="shape %s">`+"\n", esc(s.ID), esc(string(s.Kind)))
	switch s.Kind {
	case diagram.KindCircle:
		fmt.Fprintf(buf, `      <circle cx="%s" cy="%s" r="%s" fill="white" stroke="%s"/>`+"\n",
			num(cx), num(cy), num(min(g.Width, g.Height)/2), esc(color))
	case diagram.KindDiamond:
		fmt.Fprintf(buf, `      <polygon points="%s,%s %s,%s %s,%s %s,%s" fill="white" stroke="%s"/>`+"\n",
			num(cx), num(y), num(x+g.Width), num(cy), num(cx), num(y+g.Height), num(x), num(cy), esc(color))
	default:
		fmt.Fprintf(buf, `      <rect x="%s" y="%s" width="%s" height="%s" fill="white" stroke="%s"/>`+"\n",
			num(x), num(y), num(g.Width), num(g.Height), esc(color))
	}
	if label := s.Label(); label != "" {
		fmt.Fprintf(buf, `      <text x="%s" y="%s" text-anchor="middle" dominant-baseline="central" fill="%s">%s</text>`+"\n",
			num(cx), num(cy), esc(color), esc(label))
	}
	if opts.Handles {
		for _, h := range []view.Side{view.SideTop, view.SideBottom} {
			hx, hy := g.Anchor(s.Position, h)
			fmt.Fprintf(buf, `      <circle class="handle %s" cx="%s" cy="%s" r="%s" fill="#1a192b"/>`+"\n",
				h, num(hx), num(hy), num(handleRadius))
		}
	}
	buf.WriteString("    </g>\n")
}

func num(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

func esc(s string) string { return html.EscapeString(s) }
