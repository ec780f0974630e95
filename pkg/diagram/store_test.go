package diagram

import (
	"sync"
	"testing"

	"github.com/matzehuels/flowchart/pkg/errors"
)

func TestAppendShapeDefaults(t *testing.T) {
	tests := []struct {
		kind      Kind
		wantLabel string
		wantData  int
	}{
		{KindCircle, "circle", 1},
		{KindSquare, "", 0},
		{KindDiamond, "", 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			s := NewStore()
			sh, err := s.AppendShape(tt.kind)
			if err != nil {
				t.Fatalf("AppendShape: %v", err)
			}
			if sh.ID != "1" {
				t.Errorf("ID = %q, want %q", sh.ID, "1")
			}
			if sh.Kind != tt.kind {
				t.Errorf("Kind = %q, want %q", sh.Kind, tt.kind)
			}
			if sh.Position != (Position{}) {
				t.Errorf("Position = %+v, want origin", sh.Position)
			}
			if sh.Style.Color != DefaultColor {
				t.Errorf("Color = %q, want %q", sh.Style.Color, DefaultColor)
			}
			if sh.Label() != tt.wantLabel {
				t.Errorf("Label = %q, want %q", sh.Label(), tt.wantLabel)
			}
			if len(sh.Data) != tt.wantData {
				t.Errorf("Data = %v, want %d fields", sh.Data, tt.wantData)
			}
		})
	}
}

func TestAppendShapeInvalidKind(t *testing.T) {
	s := NewStore()
	if _, err := s.AppendShape("hexagon"); !errors.Is(err, errors.ErrCodeInvalidKind) {
		t.Fatalf("err = %v, want INVALID_KIND", err)
	}
	if len(s.Shapes()) != 0 {
		t.Error("invalid append should not add a shape")
	}
}

func TestAppendNeverMutatesExisting(t *testing.T) {
	s := NewStore()
	first, _ := s.AppendShape(KindCircle)
	if err := s.ApplyShapeChanges([]ShapeChange{MoveShape(first.ID, Position{X: 40, Y: 60}, false)}); err != nil {
		t.Fatal(err)
	}
	if err := s.UpdateShapeData(first.ID, Data{LabelKey: "start"}); err != nil {
		t.Fatal(err)
	}
	before := s.Shapes()

	s.AppendShape(KindSquare)
	s.AppendShape(KindDiamond)

	after := s.Shapes()
	if len(after) != 3 {
		t.Fatalf("len = %d, want 3", len(after))
	}
	if after[0].ID != before[0].ID || after[0].Position != before[0].Position || after[0].Label() != "start" {
		t.Errorf("existing shape changed: %+v -> %+v", before[0], after[0])
	}
	if after[1].Kind != KindSquare || after[2].Kind != KindDiamond {
		t.Errorf("order = %s,%s, want square,diamond", after[1].Kind, after[2].Kind)
	}
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	s := NewStore()
	s.AppendShape(KindCircle)

	snap := s.Snapshot()
	snap.Shapes[0].Data[LabelKey] = "mutated"
	snap.Shapes[0].Position.X = 99

	sh, _ := s.Shape("1")
	if sh.Label() != "circle" || sh.Position.X != 0 {
		t.Errorf("snapshot mutation leaked into store: %+v", sh)
	}
}

func TestConnect(t *testing.T) {
	s := NewStore()
	s.AppendShape(KindCircle)
	s.AppendShape(KindSquare)

	e, created, err := s.Connect(Connection{Source: "1", Target: "2"})
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if !created {
		t.Error("created = false, want true")
	}

	edges := s.Edges()
	if len(edges) != 1 {
		t.Fatalf("edges = %d, want 1", len(edges))
	}
	if edges[0].Source != "1" || edges[0].Target != "2" {
		t.Errorf("edge = %s->%s, want 1->2", edges[0].Source, edges[0].Target)
	}
	if edges[0].ID != e.ID || e.ID != "xy-edge__1-2" {
		t.Errorf("edge id = %q, want %q", edges[0].ID, "xy-edge__1-2")
	}
	if edges[0].Type != EdgeTypeText || edges[0].MarkerEnd == nil || edges[0].MarkerEnd.Type != MarkerArrow {
		t.Errorf("edge not stamped: %+v", edges[0])
	}
}

func TestConnectDuplicateIsNoop(t *testing.T) {
	s := NewStore()
	s.AppendShape(KindCircle)
	s.AppendShape(KindSquare)

	s.Connect(Connection{Source: "1", Target: "2"})
	_, created, err := s.Connect(Connection{Source: "1", Target: "2"})
	if err != nil {
		t.Fatal(err)
	}
	if created {
		t.Error("second identical connect should not create an edge")
	}
	if n := len(s.Edges()); n != 1 {
		t.Errorf("edges = %d, want 1", n)
	}

	// Reverse direction is a different edge.
	if _, created, _ := s.Connect(Connection{Source: "2", Target: "1"}); !created {
		t.Error("reverse connection should create an edge")
	}
}

func TestConnectSelfLoop(t *testing.T) {
	s := NewStore()
	s.AppendShape(KindDiamond)
	if _, created, err := s.Connect(Connection{Source: "1", Target: "1"}); err != nil || !created {
		t.Fatalf("self loop: created=%v err=%v", created, err)
	}
}

func TestConnectUnknownShape(t *testing.T) {
	s := NewStore()
	s.AppendShape(KindCircle)
	_, _, err := s.Connect(Connection{Source: "1", Target: "9"})
	if !errors.Is(err, errors.ErrCodeShapeNotFound) {
		t.Fatalf("err = %v, want SHAPE_NOT_FOUND", err)
	}
}

func TestEdgeBatchStampsAndKeepsLabels(t *testing.T) {
	s := NewStore()
	s.AppendShape(KindCircle)
	s.AppendShape(KindSquare)
	s.AppendShape(KindDiamond)
	a, _, _ := s.Connect(Connection{Source: "1", Target: "2"})
	b, _, _ := s.Connect(Connection{Source: "2", Target: "3"})
	s.UpdateEdgeData(a.ID, Data{LabelKey: "yes"})

	if err := s.ApplyEdgeChanges([]EdgeChange{SelectEdge(b.ID, true)}); err != nil {
		t.Fatal(err)
	}

	for _, e := range s.Edges() {
		if e.Type != EdgeTypeText || e.MarkerEnd == nil || e.MarkerEnd.Type != MarkerArrow {
			t.Errorf("edge %s not stamped: %+v", e.ID, e)
		}
	}
	got, _ := s.Edge(a.ID)
	if got.Label() != "yes" {
		t.Errorf("label = %q, want %q", got.Label(), "yes")
	}
	sel, _ := s.Edge(b.ID)
	if !sel.Selected {
		t.Error("select change not applied")
	}
}

func TestEdgeBatchLegacyResetsLabels(t *testing.T) {
	s := NewStore(WithEdgeStyle(EdgeStyleLegacyReset))
	s.AppendShape(KindCircle)
	s.AppendShape(KindSquare)
	s.AppendShape(KindDiamond)
	a, _, _ := s.Connect(Connection{Source: "1", Target: "2"})
	b, _, _ := s.Connect(Connection{Source: "2", Target: "3"})
	s.UpdateEdgeData(a.ID, Data{LabelKey: "yes"})
	s.UpdateEdgeData(b.ID, Data{LabelKey: "no"})

	// Any batch, even one touching a single edge, rewrites every edge.
	if err := s.ApplyEdgeChanges([]EdgeChange{SelectEdge(a.ID, true)}); err != nil {
		t.Fatal(err)
	}

	for _, e := range s.Edges() {
		if e.Label() != LegacyEdgeLabel {
			t.Errorf("edge %s label = %q, want %q", e.ID, e.Label(), LegacyEdgeLabel)
		}
	}
}

func TestEdgeBatchRemove(t *testing.T) {
	s := NewStore()
	s.AppendShape(KindCircle)
	s.AppendShape(KindSquare)
	e, _, _ := s.Connect(Connection{Source: "1", Target: "2"})

	if err := s.ApplyEdgeChanges([]EdgeChange{RemoveEdge(e.ID)}); err != nil {
		t.Fatal(err)
	}
	if n := len(s.Edges()); n != 0 {
		t.Errorf("edges = %d, want 0", n)
	}
}

func TestRemoveShapeLeavesEdges(t *testing.T) {
	s := NewStore()
	s.AppendShape(KindCircle)
	s.AppendShape(KindSquare)
	s.Connect(Connection{Source: "1", Target: "2"})

	if err := s.ApplyShapeChanges([]ShapeChange{RemoveShape("2")}); err != nil {
		t.Fatal(err)
	}
	d := s.Snapshot()
	if len(d.Edges) != 1 {
		t.Fatalf("edges = %d, want 1", len(d.Edges))
	}
	if dangling := d.Dangling(); len(dangling) != 1 {
		t.Errorf("dangling = %d, want 1", len(dangling))
	}
}

func TestUpdateDataMerges(t *testing.T) {
	s := NewStore()
	s.AppendShape(KindCircle)
	if err := s.UpdateShapeData("1", Data{"note": "keep"}); err != nil {
		t.Fatal(err)
	}
	if err := s.UpdateShapeData("1", Data{LabelKey: "start"}); err != nil {
		t.Fatal(err)
	}
	sh, _ := s.Shape("1")
	if sh.Label() != "start" || sh.Data["note"] != "keep" {
		t.Errorf("data = %v, want label=start note=keep", sh.Data)
	}

	if err := s.UpdateShapeData("9", Data{LabelKey: "x"}); !errors.Is(err, errors.ErrCodeShapeNotFound) {
		t.Errorf("err = %v, want SHAPE_NOT_FOUND", err)
	}
	if err := s.UpdateEdgeData("nope", Data{LabelKey: "x"}); !errors.Is(err, errors.ErrCodeEdgeNotFound) {
		t.Errorf("err = %v, want EDGE_NOT_FOUND", err)
	}
}

func TestVersionAdvances(t *testing.T) {
	s := NewStore()
	v0 := s.Version()
	s.AppendShape(KindCircle)
	v1 := s.Version()
	if v1 <= v0 {
		t.Errorf("version did not advance: %d -> %d", v0, v1)
	}
	// Failed batches leave the version alone.
	s.ApplyShapeChanges([]ShapeChange{{Type: "explode"}})
	if s.Version() != v1 {
		t.Errorf("failed batch advanced version")
	}
}

func TestStoreConcurrentUse(t *testing.T) {
	s := NewStore()
	for i := 0; i < 10; i++ {
		s.AppendShape(KindSquare)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			s.UpdateShapeData("1", Data{LabelKey: "x"})
			s.ApplyShapeChanges([]ShapeChange{MoveShape("2", Position{X: float64(i)}, true)})
		}(i)
		go func() {
			defer wg.Done()
			_ = s.Snapshot()
			s.AppendShape(KindCircle)
		}()
	}
	wg.Wait()

	if n := len(s.Shapes()); n != 18 {
		t.Errorf("shapes = %d, want 18", n)
	}
}
