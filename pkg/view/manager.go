package view

import (
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowchart/pkg/diagram"
)

// Manager keeps one view per rendered element of a diagram.
type Manager struct {
	registry *Registry
	commit   Committer
	opts     []Option
	logger   *log.Logger

	mu     sync.Mutex
	shapes map[string]*ShapeView
	edges  map[string]*EdgeView
}

// NewManager creates a manager that builds views from r and commits labels
// through c. opts are passed to every view.
func NewManager(r *Registry, c Committer, opts ...Option) *Manager {
	if r == nil {
		r = DefaultRegistry()
	}
	return &Manager{
		registry: r,
		commit:   c,
		opts:     opts,
		logger:   newOptions(opts).logger,
		shapes:   make(map[string]*ShapeView),
		edges:    make(map[string]*EdgeView),
	}
}

// Sync creates views for elements new in d and discards views whose element
// is gone. Existing views keep their buffers.
func (m *Manager) Sync(d diagram.Diagram) {
	m.mu.Lock()
	defer m.mu.Unlock()

	seen := make(map[string]bool, len(d.Shapes))
	for _, s := range d.Shapes {
		seen[s.ID] = true
		if v, ok := m.shapes[s.ID]; ok && v.Kind() == s.Kind {
			continue
		}
		f, err := m.registry.Shape(s.Kind)
		if err != nil {
			m.logger.Warn("shape not rendered", "id", s.ID, "err", err)
			continue
		}
		if old, ok := m.shapes[s.ID]; ok {
			old.Discard()
		}
		m.shapes[s.ID] = f(s, m.commit, m.opts...)
	}
	for id, v := range m.shapes {
		if !seen[id] {
			v.Discard()
			delete(m.shapes, id)
		}
	}

	clear(seen)
	for _, e := range d.Edges {
		f, ok := m.registry.Edge(e.Type)
		if !ok {
			continue
		}
		seen[e.ID] = true
		if _, ok := m.edges[e.ID]; !ok {
			m.edges[e.ID] = f(e, m.commit, m.opts...)
		}
	}
	for id, v := range m.edges {
		if !seen[id] {
			v.Discard()
			delete(m.edges, id)
		}
	}
}

// Reset discards every view and builds fresh ones from d. Pending edits are
// dropped and every buffer starts from the label committed in d.
func (m *Manager) Reset(d diagram.Diagram) {
	m.mu.Lock()
	for id, v := range m.shapes {
		v.Discard()
		delete(m.shapes, id)
	}
	for id, v := range m.edges {
		v.Discard()
		delete(m.edges, id)
	}
	m.mu.Unlock()
	m.Sync(d)
}

// Shape returns the view of shape id.
func (m *Manager) Shape(id string) (*ShapeView, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.shapes[id]
	return v, ok
}

// Edge returns the view of edge id.
func (m *Manager) Edge(id string) (*EdgeView, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.edges[id]
	return v, ok
}

// Pending reports whether any view has an uncommitted edit.
func (m *Manager) Pending() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.shapes {
		if v.Pending() {
			return true
		}
	}
	for _, v := range m.edges {
		if v.Pending() {
			return true
		}
	}
	return false
}

// Flush commits every pending edit and returns how many were committed.
func (m *Manager) Flush() int {
	m.mu.Lock()
	shapes := make([]*ShapeView, 0, len(m.shapes))
	for _, v := range m.shapes {
		shapes = append(shapes, v)
	}
	edges := make([]*EdgeView, 0, len(m.edges))
	for _, v := range m.edges {
		edges = append(edges, v)
	}
	m.mu.Unlock()

	n := 0
	for _, v := range shapes {
		if v.Flush() {
			n++
		}
	}
	for _, v := range edges {
		if v.Flush() {
			n++
		}
	}
	return n
}

// Len returns the number of shape and edge views.
func (m *Manager) Len() (shapes, edges int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.shapes), len(m.edges)
}
