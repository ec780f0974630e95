package view

import (
	"maps"
	"slices"

	"github.com/matzehuels/flowchart/pkg/diagram"
	"github.com/matzehuels/flowchart/pkg/errors"
)

// ShapeFactory builds the view for a shape.
type ShapeFactory func(s diagram.Shape, c ShapeCommitter, opts ...Option) *ShapeView

// EdgeFactory builds the view for an edge.
type EdgeFactory func(e diagram.Edge, c EdgeCommitter, opts ...Option) *EdgeView

// Registry maps shape kinds and edge type tags to renderers.
type Registry struct {
	shapes map[diagram.Kind]ShapeFactory
	edges  map[string]EdgeFactory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		shapes: make(map[diagram.Kind]ShapeFactory),
		edges:  make(map[string]EdgeFactory),
	}
}

// DefaultRegistry renders every shape kind with [NewShapeView] and the
// "text" edge type with [NewEdgeView].
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, k := range diagram.Kinds {
		r.RegisterShape(k, NewShapeView)
	}
	r.RegisterEdge(diagram.EdgeTypeText, NewEdgeView)
	return r
}

// RegisterShape sets the renderer for kind k.
func (r *Registry) RegisterShape(k diagram.Kind, f ShapeFactory) { r.shapes[k] = f }

// RegisterEdge sets the renderer for edge type t.
func (r *Registry) RegisterEdge(t string, f EdgeFactory) { r.edges[t] = f }

// Shape returns the renderer for kind k.
func (r *Registry) Shape(k diagram.Kind) (ShapeFactory, error) {
	f, ok := r.shapes[k]
	if !ok {
		return nil, errors.New(errors.ErrCodeUnsupported, "no renderer for shape kind %q", k)
	}
	return f, nil
}

// Edge returns the renderer for edge type t. Edges without a registered
// type are drawn as plain lines and have no view.
func (r *Registry) Edge(t string) (EdgeFactory, bool) {
	f, ok := r.edges[t]
	return f, ok
}

// ShapeKinds lists the registered kinds in sorted order.
func (r *Registry) ShapeKinds() []diagram.Kind {
	return slices.Sorted(maps.Keys(r.shapes))
}
