package diagram

import (
	"testing"

	"github.com/matzehuels/flowchart/pkg/errors"
)

func TestApplyShapeChanges(t *testing.T) {
	base := func() []Shape {
		return []Shape{
			{ID: "1", Kind: KindCircle, Data: Data{LabelKey: "circle"}},
			{ID: "2", Kind: KindSquare, Data: Data{}},
		}
	}
	first := 0

	tests := []struct {
		name    string
		changes []ShapeChange
		check   func(t *testing.T, got []Shape)
	}{
		{
			name:    "move",
			changes: []ShapeChange{MoveShape("2", Position{X: 10, Y: 20}, true)},
			check: func(t *testing.T, got []Shape) {
				if got[1].Position != (Position{X: 10, Y: 20}) || !got[1].Dragging {
					t.Errorf("shape 2 = %+v", got[1])
				}
			},
		},
		{
			name:    "position without coordinates only updates dragging",
			changes: []ShapeChange{{Type: ChangePosition, ID: "1", Dragging: new(bool)}},
			check: func(t *testing.T, got []Shape) {
				if got[0].Position != (Position{}) || got[0].Dragging {
					t.Errorf("shape 1 = %+v", got[0])
				}
			},
		},
		{
			name:    "remove",
			changes: []ShapeChange{RemoveShape("1")},
			check: func(t *testing.T, got []Shape) {
				if len(got) != 1 || got[0].ID != "2" {
					t.Errorf("got = %+v", got)
				}
			},
		},
		{
			name:    "select",
			changes: []ShapeChange{SelectShape("1", true)},
			check: func(t *testing.T, got []Shape) {
				if !got[0].Selected || got[1].Selected {
					t.Errorf("selection = %v,%v", got[0].Selected, got[1].Selected)
				}
			},
		},
		{
			name:    "dimensions",
			changes: []ShapeChange{ResizeShape("2", Dimensions{Width: 100, Height: 50})},
			check: func(t *testing.T, got []Shape) {
				if got[1].Measured == nil || got[1].Measured.Width != 100 {
					t.Errorf("measured = %+v", got[1].Measured)
				}
			},
		},
		{
			name:    "add appends",
			changes: []ShapeChange{AddShape(Shape{ID: "3", Kind: KindDiamond})},
			check: func(t *testing.T, got []Shape) {
				if len(got) != 3 || got[2].ID != "3" || got[2].Data == nil {
					t.Errorf("got = %+v", got)
				}
			},
		},
		{
			name:    "add at index",
			changes: []ShapeChange{{Type: ChangeAdd, Item: &Shape{ID: "3", Kind: KindDiamond}, Index: &first}},
			check: func(t *testing.T, got []Shape) {
				if got[0].ID != "3" {
					t.Errorf("order = %s,%s,%s", got[0].ID, got[1].ID, got[2].ID)
				}
			},
		},
		{
			name:    "replace keeps id",
			changes: []ShapeChange{{Type: ChangeReplace, ID: "2", Item: &Shape{ID: "other", Kind: KindDiamond}}},
			check: func(t *testing.T, got []Shape) {
				if got[1].ID != "2" || got[1].Kind != KindDiamond {
					t.Errorf("shape 2 = %+v", got[1])
				}
			},
		},
		{
			name:    "replace whole shape",
			changes: []ShapeChange{ReplaceShape(Shape{ID: "1", Kind: KindSquare, Position: Position{X: 5, Y: 6}, Data: Data{LabelKey: "swapped"}})},
			check: func(t *testing.T, got []Shape) {
				if got[0].ID != "1" || got[0].Kind != KindSquare || got[0].Position != (Position{X: 5, Y: 6}) || got[0].Label() != "swapped" {
					t.Errorf("shape 1 = %+v", got[0])
				}
				if len(got) != 2 || got[1].ID != "2" {
					t.Errorf("got = %+v", got)
				}
			},
		},
		{
			name:    "unknown id skipped",
			changes: []ShapeChange{RemoveShape("42"), MoveShape("42", Position{X: 1}, false)},
			check: func(t *testing.T, got []Shape) {
				if len(got) != 2 {
					t.Errorf("len = %d, want 2", len(got))
				}
			},
		},
		{
			name: "applied in order",
			changes: []ShapeChange{
				MoveShape("1", Position{X: 1}, true),
				MoveShape("1", Position{X: 2}, true),
				MoveShape("1", Position{X: 3}, false),
			},
			check: func(t *testing.T, got []Shape) {
				if got[0].Position.X != 3 || got[0].Dragging {
					t.Errorf("shape 1 = %+v", got[0])
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := base()
			got, err := ApplyShapeChanges(tt.changes, in)
			if err != nil {
				t.Fatalf("ApplyShapeChanges: %v", err)
			}
			tt.check(t, got)
			if len(in) != 2 || in[0].Position != (Position{}) || in[0].Selected {
				t.Error("input slice was modified")
			}
		})
	}
}

func TestApplyShapeChangesRejectsBatch(t *testing.T) {
	in := []Shape{{ID: "1", Kind: KindCircle}}

	tests := []struct {
		name    string
		changes []ShapeChange
	}{
		{"unknown type", []ShapeChange{{Type: "teleport", ID: "1"}}},
		{"add without item", []ShapeChange{{Type: ChangeAdd}}},
		{"add bad kind", []ShapeChange{AddShape(Shape{ID: "2", Kind: "star"})}},
		{"add duplicate", []ShapeChange{AddShape(Shape{ID: "1", Kind: KindSquare})}},
		{"remove without id", []ShapeChange{{Type: ChangeRemove}}},
		{"dimensions without size", []ShapeChange{{Type: ChangeDimensions, ID: "1"}}},
		{"bad change after good one", []ShapeChange{RemoveShape("1"), {Type: "teleport"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ApplyShapeChanges(tt.changes, in)
			if !errors.Is(err, errors.ErrCodeInvalidChange) && !errors.Is(err, errors.ErrCodeInvalidKind) {
				t.Fatalf("err = %v, want INVALID_CHANGE", err)
			}
		})
	}
}

func TestStoreRejectedBatchLeavesState(t *testing.T) {
	s := NewStore()
	s.AppendShape(KindCircle)

	err := s.ApplyShapeChanges([]ShapeChange{RemoveShape("1"), {Type: "teleport"}})
	if err == nil {
		t.Fatal("expected error")
	}
	if n := len(s.Shapes()); n != 1 {
		t.Errorf("shapes = %d, want 1 (batch must not partially apply)", n)
	}
}

func TestApplyEdgeChanges(t *testing.T) {
	in := []Edge{
		{ID: "a", Source: "1", Target: "2"},
		{ID: "b", Source: "2", Target: "3"},
	}

	got, err := ApplyEdgeChanges([]EdgeChange{
		SelectEdge("a", true),
		RemoveEdge("b"),
		AddEdge(Edge{ID: "c", Source: "3", Target: "1"}),
		ReplaceEdge(Edge{ID: "a", Source: "1", Target: "3"}),
	}, in)
	if err != nil {
		t.Fatalf("ApplyEdgeChanges: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].ID != "a" || got[0].Target != "3" || got[0].Selected {
		t.Errorf("edge a = %+v (replace drops selection)", got[0])
	}
	if got[1].ID != "c" {
		t.Errorf("edge c = %+v", got[1])
	}
	if in[0].Selected || len(in) != 2 {
		t.Error("input slice was modified")
	}

	if _, err := ApplyEdgeChanges([]EdgeChange{{Type: ChangePosition, ID: "a"}}, in); !errors.Is(err, errors.ErrCodeInvalidChange) {
		t.Errorf("position on edge: err = %v, want INVALID_CHANGE", err)
	}
}

func TestEdgeRemovals(t *testing.T) {
	edges := []Edge{
		{ID: "a", Source: "1", Target: "2"},
		{ID: "b", Source: "2", Target: "3"},
		{ID: "c", Source: "3", Target: "1"},
	}

	tests := []struct {
		name    string
		changes []ShapeChange
		want    []string
	}{
		{"no removals", []ShapeChange{SelectShape("1", true)}, nil},
		{"one shape", []ShapeChange{RemoveShape("2")}, []string{"a", "b"}},
		{"two shapes", []ShapeChange{RemoveShape("1"), RemoveShape("3")}, []string{"a", "b", "c"}},
		{"unconnected", []ShapeChange{RemoveShape("9")}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EdgeRemovals(edges, tt.changes)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d removals, want %d", len(got), len(tt.want))
			}
			for i, c := range got {
				if c.Type != ChangeRemove || c.ID != tt.want[i] {
					t.Errorf("removal %d = %+v, want remove %s", i, c, tt.want[i])
				}
			}
		})
	}
}
