package diagram

import (
	"slices"

	"github.com/matzehuels/flowchart/pkg/errors"
)

// ChangeType tags a change descriptor.
type ChangeType string

// Change types emitted by the rendering collaborator.
const (
	ChangeAdd        ChangeType = "add"
	ChangeRemove     ChangeType = "remove"
	ChangePosition   ChangeType = "position"
	ChangeSelect     ChangeType = "select"
	ChangeDimensions ChangeType = "dimensions"
	ChangeReplace    ChangeType = "replace"
)

// ShapeChange describes one mutation of the shape list.
//
// Which fields are read depends on Type:
//   - add: Item, optional Index (appended when absent or out of range)
//   - remove: ID
//   - position: ID, Position (optional), Dragging (optional)
//   - select: ID, Selected
//   - dimensions: ID, Dimensions
//   - replace: ID, Item
type ShapeChange struct {
	Type       ChangeType  `json:"type"`
	ID         string      `json:"id,omitempty"`
	Item       *Shape      `json:"item,omitempty"`
	Index      *int        `json:"index,omitempty"`
	Position   *Position   `json:"position,omitempty"`
	Dragging   *bool       `json:"dragging,omitempty"`
	Selected   bool        `json:"selected,omitempty"`
	Dimensions *Dimensions `json:"dimensions,omitempty"`
}

// EdgeChange describes one mutation of the edge list. Edges support add,
// remove, select and replace.
type EdgeChange struct {
	Type     ChangeType `json:"type"`
	ID       string     `json:"id,omitempty"`
	Item     *Edge      `json:"item,omitempty"`
	Index    *int       `json:"index,omitempty"`
	Selected bool       `json:"selected,omitempty"`
}

// AddShape returns an add change for s.
func AddShape(s Shape) ShapeChange { return ShapeChange{Type: ChangeAdd, Item: &s} }

// RemoveShape returns a remove change for the shape id.
func RemoveShape(id string) ShapeChange { return ShapeChange{Type: ChangeRemove, ID: id} }

// MoveShape returns a position change, as emitted on every drag tick.
func MoveShape(id string, p Position, dragging bool) ShapeChange {
	return ShapeChange{Type: ChangePosition, ID: id, Position: &p, Dragging: &dragging}
}

// SelectShape returns a select change for the shape id.
func SelectShape(id string, selected bool) ShapeChange {
	return ShapeChange{Type: ChangeSelect, ID: id, Selected: selected}
}

// ResizeShape returns a dimensions change for the shape id.
func ResizeShape(id string, d Dimensions) ShapeChange {
	return ShapeChange{Type: ChangeDimensions, ID: id, Dimensions: &d}
}

// ReplaceShape returns a replace change for s.ID.
func ReplaceShape(s Shape) ShapeChange { return ShapeChange{Type: ChangeReplace, ID: s.ID, Item: &s} }

// AddEdge returns an add change for e.
func AddEdge(e Edge) EdgeChange { return EdgeChange{Type: ChangeAdd, Item: &e} }

// RemoveEdge returns a remove change for the edge id.
func RemoveEdge(id string) EdgeChange { return EdgeChange{Type: ChangeRemove, ID: id} }

// SelectEdge returns a select change for the edge id.
func SelectEdge(id string, selected bool) EdgeChange {
	return EdgeChange{Type: ChangeSelect, ID: id, Selected: selected}
}

// ReplaceEdge returns a replace change for e.ID.
func ReplaceEdge(e Edge) EdgeChange { return EdgeChange{Type: ChangeReplace, ID: e.ID, Item: &e} }

// EdgeRemovals returns remove changes for every edge in edges that touches a
// shape removed by changes. Front ends apply them after the shape batch.
func EdgeRemovals(edges []Edge, changes []ShapeChange) []EdgeChange {
	removed := make(map[string]bool)
	for _, c := range changes {
		if c.Type == ChangeRemove {
			removed[c.ID] = true
		}
	}
	if len(removed) == 0 {
		return nil
	}
	var out []EdgeChange
	for _, e := range edges {
		if removed[e.Source] || removed[e.Target] {
			out = append(out, RemoveEdge(e.ID))
		}
	}
	return out
}

// =============================================================================
// Validation
// =============================================================================

// Validate checks that c carries the fields its type needs.
func (c ShapeChange) Validate() error {
	switch c.Type {
	case ChangeAdd:
		if c.Item == nil || c.Item.ID == "" {
			return errors.New(errors.ErrCodeInvalidChange, "add change needs an item with an id")
		}
		if _, err := ParseKind(string(c.Item.Kind)); err != nil {
			return err
		}
	case ChangeReplace:
		if c.Item == nil || c.ID == "" {
			return errors.New(errors.ErrCodeInvalidChange, "replace change needs an id and an item")
		}
	case ChangeRemove, ChangePosition, ChangeSelect:
		if c.ID == "" {
			return errors.New(errors.ErrCodeInvalidChange, "%s change needs an id", c.Type)
		}
	case ChangeDimensions:
		if c.ID == "" || c.Dimensions == nil {
			return errors.New(errors.ErrCodeInvalidChange, "dimensions change needs an id and dimensions")
		}
	default:
		return errors.New(errors.ErrCodeInvalidChange, "unknown shape change type: %q", c.Type)
	}
	return nil
}

// Validate checks that c carries the fields its type needs.
func (c EdgeChange) Validate() error {
	switch c.Type {
	case ChangeAdd:
		if c.Item == nil || c.Item.ID == "" {
			return errors.New(errors.ErrCodeInvalidChange, "add change needs an item with an id")
		}
	case ChangeReplace:
		if c.Item == nil || c.ID == "" {
			return errors.New(errors.ErrCodeInvalidChange, "replace change needs an id and an item")
		}
	case ChangeRemove, ChangeSelect:
		if c.ID == "" {
			return errors.New(errors.ErrCodeInvalidChange, "%s change needs an id", c.Type)
		}
	default:
		return errors.New(errors.ErrCodeInvalidChange, "unknown edge change type: %q", c.Type)
	}
	return nil
}

// =============================================================================
// Application
// =============================================================================

// ApplyShapeChanges applies changes in order and returns the next shape list.
// The input slice is not modified. Changes naming an unknown id are skipped.
// The batch is validated up front: either every change applies or none does.
func ApplyShapeChanges(changes []ShapeChange, shapes []Shape) ([]Shape, error) {
	for i, c := range changes {
		if err := c.Validate(); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidChange, err, "shape change %d", i)
		}
	}

	out := make([]Shape, len(shapes))
	for i, s := range shapes {
		out[i] = s.clone()
	}

	for i, c := range changes {
		idx := slices.IndexFunc(out, func(s Shape) bool { return s.ID == c.ID })
		switch c.Type {
		case ChangeAdd:
			if slices.ContainsFunc(out, func(s Shape) bool { return s.ID == c.Item.ID }) {
				return nil, errors.New(errors.ErrCodeInvalidChange, "shape change %d: duplicate shape id %q", i, c.Item.ID)
			}
			item := c.Item.clone()
			out = insertAt(out, item, c.Index)
		case ChangeRemove:
			if idx >= 0 {
				out = slices.Delete(out, idx, idx+1)
			}
		case ChangePosition:
			if idx >= 0 {
				if c.Position != nil {
					out[idx].Position = *c.Position
				}
				if c.Dragging != nil {
					out[idx].Dragging = *c.Dragging
				}
			}
		case ChangeSelect:
			if idx >= 0 {
				out[idx].Selected = c.Selected
			}
		case ChangeDimensions:
			if idx >= 0 {
				d := *c.Dimensions
				out[idx].Measured = &d
			}
		case ChangeReplace:
			if idx >= 0 {
				item := c.Item.clone()
				item.ID = c.ID
				out[idx] = item
			}
		}
	}
	return out, nil
}

// ApplyEdgeChanges applies changes in order and returns the next edge list.
// It follows the same rules as [ApplyShapeChanges].
func ApplyEdgeChanges(changes []EdgeChange, edges []Edge) ([]Edge, error) {
	for i, c := range changes {
		if err := c.Validate(); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidChange, err, "edge change %d", i)
		}
	}

	out := make([]Edge, len(edges))
	for i, e := range edges {
		out[i] = e.clone()
	}

	for i, c := range changes {
		idx := slices.IndexFunc(out, func(e Edge) bool { return e.ID == c.ID })
		switch c.Type {
		case ChangeAdd:
			if slices.ContainsFunc(out, func(e Edge) bool { return e.ID == c.Item.ID }) {
				return nil, errors.New(errors.ErrCodeInvalidChange, "edge change %d: duplicate edge id %q", i, c.Item.ID)
			}
			out = insertAt(out, c.Item.clone(), c.Index)
		case ChangeRemove:
			if idx >= 0 {
				out = slices.Delete(out, idx, idx+1)
			}
		case ChangeSelect:
			if idx >= 0 {
				out[idx].Selected = c.Selected
			}
		case ChangeReplace:
			if idx >= 0 {
				item := c.Item.clone()
				item.ID = c.ID
				out[idx] = item
			}
		}
	}
	return out, nil
}

func insertAt[T any](list []T, item T, index *int) []T {
	if index == nil || *index < 0 || *index >= len(list) {
		return append(list, item)
	}
	return slices.Insert(list, *index, item)
}
