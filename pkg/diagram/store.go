package diagram

import (
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowchart/pkg/errors"
	"github.com/matzehuels/flowchart/pkg/observability"
)

// EdgeStyle selects what applying an edge change batch does to existing edges.
type EdgeStyle int

const (
	// EdgeStyleStamp gives every edge the text renderer and an arrow marker.
	// Labels are left alone.
	EdgeStyleStamp EdgeStyle = iota

	// EdgeStyleLegacyReset also overwrites every edge label with
	// [LegacyEdgeLabel]. It reproduces the behavior of the browser editor
	// this data format comes from and exists for compatibility only.
	EdgeStyleLegacyReset
)

// LegacyEdgeLabel is the label written by [EdgeStyleLegacyReset].
const LegacyEdgeLabel = "test"

// Option configures a [Store].
type Option func(*Store)

// WithIDPolicy selects how new shape ids are derived. Default [IDMonotonic].
func WithIDPolicy(p IDPolicy) Option {
	return func(s *Store) { s.ids = newIDGenerator(p) }
}

// WithEdgeStyle selects the edge batch side effect. Default [EdgeStyleStamp].
func WithEdgeStyle(es EdgeStyle) Option {
	return func(s *Store) { s.edgeStyle = es }
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithDiagram seeds the store with d.
func WithDiagram(d Diagram) Option {
	return func(s *Store) { s.seed = &d }
}

// Store owns the canonical shape and edge lists.
//
// All mutations go through its methods. Store is safe for concurrent use:
// debounced label commits arrive from timer goroutines while the front end
// applies change batches.
type Store struct {
	mu        sync.RWMutex
	shapes    []Shape
	edges     []Edge
	ids       idGenerator
	edgeStyle EdgeStyle
	logger    *log.Logger
	seed      *Diagram
	version   uint64
}

// NewStore creates an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		shapes: []Shape{},
		edges:  []Edge{},
		ids:    newIDGenerator(IDMonotonic),
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.seed != nil {
		s.load(*s.seed)
		s.seed = nil
	}
	return s
}

// =============================================================================
// Reads
// =============================================================================

// Snapshot returns a deep copy of the current diagram.
func (s *Store) Snapshot() Diagram {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Diagram{Shapes: s.shapes, Edges: s.edges}.Clone()
}

// Shapes returns a copy of the shape list.
func (s *Store) Shapes() []Shape { return s.Snapshot().Shapes }

// Edges returns a copy of the edge list.
func (s *Store) Edges() []Edge { return s.Snapshot().Edges }

// Shape returns a copy of the shape with the given id.
func (s *Store) Shape(id string) (Shape, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sh := range s.shapes {
		if sh.ID == id {
			return sh.clone(), true
		}
	}
	return Shape{}, false
}

// Edge returns a copy of the edge with the given id.
func (s *Store) Edge(id string) (Edge, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.edges {
		if e.ID == id {
			return e.clone(), true
		}
	}
	return Edge{}, false
}

// Version increases on every successful mutation. Front ends compare it to
// decide whether to redraw.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// =============================================================================
// Mutations
// =============================================================================

// AppendShape creates a shape of the given kind at (0,0) and appends it.
// Existing shapes are neither modified nor reordered.
func (s *Store) AppendShape(kind Kind) (Shape, error) {
	if _, err := ParseKind(string(kind)); err != nil {
		return Shape{}, err
	}

	s.mu.Lock()
	shape := Shape{
		ID:       s.ids.next(s.shapes),
		Kind:     kind,
		Position: Position{},
		Data:     defaultData(kind),
		Style:    Style{Color: DefaultColor},
	}
	s.shapes = append(s.shapes, shape)
	s.version++
	s.mu.Unlock()

	s.logger.Debug("shape appended", "id", shape.ID, "kind", kind)
	observability.Store().OnShapeAppended(shape.ID, string(kind))
	return shape.clone(), nil
}

// ApplyShapeChanges applies a change batch to the shape list. This is the
// only path for drag moves, selection and deletion.
//
// Removing a shape does not remove its edges.
func (s *Store) ApplyShapeChanges(changes []ShapeChange) error {
	start := time.Now()

	s.mu.Lock()
	next, err := ApplyShapeChanges(changes, s.shapes)
	if err == nil {
		s.shapes = next
		s.version++
	}
	s.mu.Unlock()

	s.logger.Debug("shape changes", "count", len(changes), "err", err)
	observability.Store().OnChangesApplied("shapes", len(changes), time.Since(start), err)
	return err
}

// ApplyEdgeChanges applies a change batch to the edge list.
//
// Before the batch is applied every existing edge is restyled according to the
// store's [EdgeStyle].
func (s *Store) ApplyEdgeChanges(changes []EdgeChange) error {
	start := time.Now()

	s.mu.Lock()
	styled := make([]Edge, len(s.edges))
	for i, e := range s.edges {
		styled[i] = s.styleEdge(e.clone())
	}
	next, err := ApplyEdgeChanges(changes, styled)
	if err == nil {
		s.edges = next
		s.version++
	}
	s.mu.Unlock()

	s.logger.Debug("edge changes", "count", len(changes), "err", err)
	observability.Store().OnChangesApplied("edges", len(changes), time.Since(start), err)
	return err
}

// Connect appends an edge for a proposed connection. Both ends must exist.
//
// A connection identical to an existing edge (same ends and handles) creates
// nothing; the existing edge is returned with created == false.
func (s *Store) Connect(c Connection) (edge Edge, created bool, err error) {
	s.mu.Lock()
	for _, id := range []string{c.Source, c.Target} {
		if !slices.ContainsFunc(s.shapes, func(sh Shape) bool { return sh.ID == id }) {
			s.mu.Unlock()
			return Edge{}, false, errors.New(errors.ErrCodeShapeNotFound, "connect: shape %q does not exist", id)
		}
	}

	if i := slices.IndexFunc(s.edges, func(e Edge) bool { return sameConnection(e, c) }); i >= 0 {
		edge = s.edges[i].clone()
	} else {
		edge = Edge{
			ID:           c.EdgeID(),
			Source:       c.Source,
			Target:       c.Target,
			SourceHandle: c.SourceHandle,
			TargetHandle: c.TargetHandle,
		}
		// Labels are only reset by change batches.
		edge.Type = EdgeTypeText
		edge.MarkerEnd = &Marker{Type: MarkerArrow}
		s.edges = append(s.edges, edge)
		s.version++
		created = true
	}
	s.mu.Unlock()

	s.logger.Debug("connect", "edge", edge.ID, "source", c.Source, "target", c.Target, "created", created)
	observability.Store().OnConnect(edge.ID, c.Source, c.Target, created)
	return edge.clone(), created, nil
}

// UpdateShapeData merges patch into the data of shape id.
func (s *Store) UpdateShapeData(id string, patch Data) error {
	s.mu.Lock()
	i := slices.IndexFunc(s.shapes, func(sh Shape) bool { return sh.ID == id })
	if i < 0 {
		s.mu.Unlock()
		return errors.New(errors.ErrCodeShapeNotFound, "shape %q does not exist", id)
	}
	s.shapes[i].Data = s.shapes[i].Data.Merge(patch)
	s.version++
	s.mu.Unlock()

	s.logger.Debug("shape data", "id", id, "fields", len(patch))
	observability.Store().OnDataCommitted("shapes", id, len(patch))
	return nil
}

// UpdateEdgeData merges patch into the data of edge id.
func (s *Store) UpdateEdgeData(id string, patch Data) error {
	s.mu.Lock()
	i := slices.IndexFunc(s.edges, func(e Edge) bool { return e.ID == id })
	if i < 0 {
		s.mu.Unlock()
		return errors.New(errors.ErrCodeEdgeNotFound, "edge %q does not exist", id)
	}
	s.edges[i].Data = s.edges[i].Data.Merge(patch)
	s.version++
	s.mu.Unlock()

	s.logger.Debug("edge data", "id", id, "fields", len(patch))
	observability.Store().OnDataCommitted("edges", id, len(patch))
	return nil
}

// Load replaces the whole diagram, for example after an import, and reseeds
// the id generator from the loaded shapes.
func (s *Store) Load(d Diagram) {
	s.mu.Lock()
	s.load(d)
	s.version++
	s.mu.Unlock()
	s.logger.Debug("diagram loaded", "shapes", len(d.Shapes), "edges", len(d.Edges))
}

func (s *Store) load(d Diagram) {
	c := d.Clone()
	s.shapes, s.edges = c.Shapes, c.Edges
	s.ids.reset(s.shapes)
}

func (s *Store) styleEdge(e Edge) Edge {
	e.Type = EdgeTypeText
	e.MarkerEnd = &Marker{Type: MarkerArrow}
	if s.edgeStyle == EdgeStyleLegacyReset {
		e.Data = Data{LabelKey: LegacyEdgeLabel}
	}
	return e
}

func sameConnection(e Edge, c Connection) bool {
	return e.Source == c.Source && e.Target == c.Target &&
		e.SourceHandle == c.SourceHandle && e.TargetHandle == c.TargetHandle
}
