package diagram

import (
	"maps"
	"slices"

	"github.com/matzehuels/flowchart/pkg/errors"
)

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// Kind is the shape-kind tag. It selects the renderer and the default data.
type Kind string

// Shape kinds.
const (
	KindCircle  Kind = "circle"
	KindSquare  Kind = "square"
	KindDiamond Kind = "diamond"
)

// Kinds lists every shape kind in palette order.
var Kinds = []Kind{KindCircle, KindSquare, KindDiamond}

// EdgeTypeText is the renderer tag stamped on every edge.
const EdgeTypeText = "text"

// MarkerArrow is the arrowhead marker type stamped on every edge.
const MarkerArrow = "arrow"

// LabelKey is the data field holding a shape or edge label.
const LabelKey = "label"

// DefaultColor is the style color given to new shapes.
const DefaultColor = "#000"

// ParseKind validates s as a shape kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !slices.Contains(Kinds, k) {
		return "", errors.New(errors.ErrCodeInvalidKind, "unknown shape kind: %q (must be circle, square or diamond)", s)
	}
	return k, nil
}

// =============================================================================
// Shape
// =============================================================================

// Position is a canvas coordinate in pixels.
type Position struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Dimensions is the measured size of a shape as reported by the renderer.
type Dimensions struct {
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`
}

// Style holds presentation hints fixed at creation.
type Style struct {
	Color string `json:"color,omitempty" bson:"color,omitempty"`
}

// Data is the free-form payload of a shape or edge. Updates merge into it.
type Data map[string]any

// Label returns the "label" field, or "" when unset or not a string.
func (d Data) Label() string {
	s, _ := d[LabelKey].(string)
	return s
}

// Merge returns a copy of d with patch applied on top.
func (d Data) Merge(patch Data) Data {
	out := make(Data, len(d)+len(patch))
	maps.Copy(out, d)
	maps.Copy(out, patch)
	return out
}

func (d Data) clone() Data {
	if d == nil {
		return Data{}
	}
	return maps.Clone(d)
}

// Shape is a placed diagram node.
type Shape struct {
	ID       string      `json:"id" bson:"id"`
	Kind     Kind        `json:"type" bson:"type"`
	Position Position    `json:"position" bson:"position"`
	Data     Data        `json:"data" bson:"data"`
	Style    Style       `json:"style" bson:"style"`
	Measured *Dimensions `json:"measured,omitempty" bson:"measured,omitempty"`
	Selected bool        `json:"selected,omitempty" bson:"selected,omitempty"`
	Dragging bool        `json:"dragging,omitempty" bson:"dragging,omitempty"`
}

// Label returns the committed label of the shape.
func (s Shape) Label() string { return s.Data.Label() }

func (s Shape) clone() Shape {
	s.Data = s.Data.clone()
	if s.Measured != nil {
		m := *s.Measured
		s.Measured = &m
	}
	return s
}

// defaultData returns the kind-specific data of a freshly appended shape.
// Only circles start with a label.
func defaultData(k Kind) Data {
	if k == KindCircle {
		return Data{LabelKey: string(KindCircle)}
	}
	return Data{}
}

// =============================================================================
// Edge
// =============================================================================

// Marker is an arrowhead presentation hint.
type Marker struct {
	Type string `json:"type" bson:"type"`
}

// Edge is a labeled directed connection between two shapes.
type Edge struct {
	ID           string  `json:"id" bson:"id"`
	Source       string  `json:"source" bson:"source"`
	Target       string  `json:"target" bson:"target"`
	SourceHandle string  `json:"sourceHandle,omitempty" bson:"source_handle,omitempty"`
	TargetHandle string  `json:"targetHandle,omitempty" bson:"target_handle,omitempty"`
	Type         string  `json:"type,omitempty" bson:"type,omitempty"`
	MarkerEnd    *Marker `json:"markerEnd,omitempty" bson:"marker_end,omitempty"`
	Data         Data    `json:"data,omitempty" bson:"data,omitempty"`
	Selected     bool    `json:"selected,omitempty" bson:"selected,omitempty"`
}

// Label returns the committed label of the edge.
func (e Edge) Label() string { return e.Data.Label() }

// Touches reports whether the edge references shape id at either end.
func (e Edge) Touches(id string) bool { return e.Source == id || e.Target == id }

func (e Edge) clone() Edge {
	if e.Data != nil {
		e.Data = maps.Clone(e.Data)
	}
	if e.MarkerEnd != nil {
		m := *e.MarkerEnd
		e.MarkerEnd = &m
	}
	return e
}

// Connection is a proposed edge emitted by a connect gesture.
type Connection struct {
	Source       string `json:"source"`
	Target       string `json:"target"`
	SourceHandle string `json:"sourceHandle,omitempty"`
	TargetHandle string `json:"targetHandle,omitempty"`
}

// EdgeID returns the identifier given to the edge created from c.
func (c Connection) EdgeID() string {
	return "xy-edge__" + c.Source + c.SourceHandle + "-" + c.Target + c.TargetHandle
}

// =============================================================================
// Diagram
// =============================================================================

// Diagram is the pair of shape and edge lists. It is the exported artifact.
type Diagram struct {
	Shapes []Shape `json:"shapes" bson:"shapes"`
	Edges  []Edge  `json:"edges" bson:"edges"`
}

// Clone returns a deep copy of d. Nil lists become empty lists.
func (d Diagram) Clone() Diagram {
	out := Diagram{
		Shapes: make([]Shape, len(d.Shapes)),
		Edges:  make([]Edge, len(d.Edges)),
	}
	for i, s := range d.Shapes {
		out.Shapes[i] = s.clone()
	}
	for i, e := range d.Edges {
		out.Edges[i] = e.clone()
	}
	return out
}

// Shape returns the shape with the given id.
func (d Diagram) Shape(id string) (Shape, bool) {
	for _, s := range d.Shapes {
		if s.ID == id {
			return s, true
		}
	}
	return Shape{}, false
}

// Edge returns the edge with the given id.
func (d Diagram) Edge(id string) (Edge, bool) {
	for _, e := range d.Edges {
		if e.ID == id {
			return e, true
		}
	}
	return Edge{}, false
}

// Dangling returns edges whose source or target no longer exists.
// Nothing removes them automatically.
func (d Diagram) Dangling() []Edge {
	ids := make(map[string]bool, len(d.Shapes))
	for _, s := range d.Shapes {
		ids[s.ID] = true
	}
	var out []Edge
	for _, e := range d.Edges {
		if !ids[e.Source] || !ids[e.Target] {
			out = append(out, e)
		}
	}
	return out
}
