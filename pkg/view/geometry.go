package view

import "github.com/matzehuels/flowchart/pkg/diagram"

// Side is the edge of a shape a handle sits on.
type Side string

const (
	SideTop    Side = "top"
	SideBottom Side = "bottom"
)

// HandleType tells whether a handle starts or ends connections.
type HandleType string

const (
	HandleSource HandleType = "source"
	HandleTarget HandleType = "target"
)

// Handle is a connection anchor on a shape.
type Handle struct {
	Type HandleType `json:"type"`
	Side Side       `json:"side"`
}

// handles is shared by every kind: incoming on top, outgoing on the bottom.
var handles = []Handle{
	{Type: HandleTarget, Side: SideTop},
	{Type: HandleSource, Side: SideBottom},
}

// Geometry is the drawn size of a shape kind.
type Geometry struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

var geometries = map[diagram.Kind]Geometry{
	diagram.KindCircle:  {Width: 80, Height: 80},
	diagram.KindSquare:  {Width: 120, Height: 80},
	diagram.KindDiamond: {Width: 100, Height: 100},
}

// GeometryOf returns the size drawn for kind k. Unknown kinds get the square
// size.
func GeometryOf(k diagram.Kind) Geometry {
	if g, ok := geometries[k]; ok {
		return g
	}
	return geometries[diagram.KindSquare]
}

// Size returns the shape's measured dimensions when the renderer reported
// them, and the kind geometry otherwise.
func Size(s diagram.Shape) Geometry {
	if s.Measured != nil && s.Measured.Width > 0 && s.Measured.Height > 0 {
		return Geometry{Width: s.Measured.Width, Height: s.Measured.Height}
	}
	return GeometryOf(s.Kind)
}

// Anchor returns the canvas point of the handle on side for a shape whose
// top-left corner is at pos.
func (g Geometry) Anchor(pos diagram.Position, side Side) (x, y float64) {
	x = pos.X + g.Width/2
	switch side {
	case SideTop:
		return x, pos.Y
	default:
		return x, pos.Y + g.Height
	}
}

// Center returns the middle of a shape at pos.
func (g Geometry) Center(pos diagram.Position) (x, y float64) {
	return pos.X + g.Width/2, pos.Y + g.Height/2
}

// EdgeEnds returns the source and target anchors of an edge between two
// shapes: the source's bottom handle and the target's top handle.
func EdgeEnds(src, dst diagram.Shape) (sx, sy, tx, ty float64) {
	sx, sy = Size(src).Anchor(src.Position, SideBottom)
	tx, ty = Size(dst).Anchor(dst.Position, SideTop)
	return sx, sy, tx, ty
}
