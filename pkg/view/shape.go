package view

import (
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowchart/pkg/debounce"
	"github.com/matzehuels/flowchart/pkg/diagram"
)

// ShapeView is the renderer state of one shape: its editable label buffer
// and the debounced commit behind it.
type ShapeView struct {
	id     string
	kind   diagram.Kind
	geom   Geometry
	logger *log.Logger

	mu     sync.Mutex
	text   string
	commit *debounce.Debouncer[string]
}

// NewShapeView creates the view for s. The buffer starts as the committed
// label.
func NewShapeView(s diagram.Shape, c ShapeCommitter, opts ...Option) *ShapeView {
	o := newOptions(opts)
	v := &ShapeView{
		id:     s.ID,
		kind:   s.Kind,
		geom:   GeometryOf(s.Kind),
		logger: o.logger,
		text:   s.Label(),
	}
	v.commit = debounce.New(o.wait, func(text string) {
		if err := c.UpdateShapeData(v.id, diagram.Data{diagram.LabelKey: text}); err != nil {
			v.logger.Debug("shape label dropped", "id", v.id, "err", err)
		}
	}, debounce.WithClock(o.clock))
	return v
}

// ID returns the shape id.
func (v *ShapeView) ID() string { return v.id }

// Kind returns the shape kind.
func (v *ShapeView) Kind() diagram.Kind { return v.kind }

// Geometry returns the drawn size of the shape.
func (v *ShapeView) Geometry() Geometry { return v.geom }

// Handles returns the shape's connection handles.
func (v *ShapeView) Handles() []Handle {
	out := make([]Handle, len(handles))
	copy(out, handles)
	return out
}

// Text returns the current buffer, which may be ahead of the store.
func (v *ShapeView) Text() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.text
}

// Input replaces the buffer with text and restarts the commit timer.
// Any string is accepted, including "".
func (v *ShapeView) Input(text string) {
	v.mu.Lock()
	v.text = text
	v.mu.Unlock()
	v.commit.Call(text)
}

// Pending reports whether an edit is waiting to be committed.
func (v *ShapeView) Pending() bool { return v.commit.Pending() }

// Flush commits a pending edit now.
func (v *ShapeView) Flush() bool { return v.commit.Flush() }

// Discard drops a pending edit, for a shape that no longer exists.
func (v *ShapeView) Discard() { v.commit.Cancel() }
