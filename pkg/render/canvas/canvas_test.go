package canvas

import (
	"strings"
	"testing"

	"github.com/matzehuels/flowchart/pkg/diagram"
)

func TestRenderSVGEmpty(t *testing.T) {
	svg := string(RenderSVG(diagram.Diagram{}, Options{}))
	if !strings.HasPrefix(svg, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 40.0 40.0"`) {
		t.Errorf("empty diagram svg = %s", svg)
	}
}

func TestRenderSVGShapes(t *testing.T) {
	s := diagram.NewStore()
	s.AppendShape(diagram.KindCircle)
	s.AppendShape(diagram.KindSquare)
	s.AppendShape(diagram.KindDiamond)
	s.ApplyShapeChanges([]diagram.ShapeChange{
		diagram.MoveShape("2", diagram.Position{X: 0, Y: 200}, false),
		diagram.MoveShape("3", diagram.Position{X: 200, Y: 200}, false),
	})
	s.UpdateShapeData("2", diagram.Data{diagram.LabelKey: "a < b & c"})

	svg := string(RenderSVG(s.Snapshot(), Options{Handles: true}))
	for _, want := range []string{
		`<circle cx="40" cy="40" r="40"`,
		`<rect x="0" y="200" width="120" height="80"`,
		`<polygon points="250,200 300,250 250,300 200,250"`,
		`>circle</text>`,
		`>a &lt; b &amp; c</text>`,
		`class="handle top"`,
	} {
		if !strings.Contains(svg, want) {
			t.Errorf("svg missing %s\n%s", want, svg)
		}
	}
}

func TestRenderSVGEdges(t *testing.T) {
	s := diagram.NewStore()
	s.AppendShape(diagram.KindSquare)
	s.AppendShape(diagram.KindSquare)
	s.ApplyShapeChanges([]diagram.ShapeChange{diagram.MoveShape("2", diagram.Position{X: 0, Y: 200}, false)})
	e, _, _ := s.Connect(diagram.Connection{Source: "1", Target: "2"})
	s.UpdateEdgeData(e.ID, diagram.Data{diagram.LabelKey: "yes"})

	svg := string(RenderSVG(s.Snapshot(), Options{}))
	// Square is 120x80: bottom handle of 1 at (60,80), top handle of 2 at (60,200).
	for _, want := range []string{
		`d="M 60,80L 60,200"`,
		`marker-end="url(#arrow)"`,
		`class="edge-label-bg"`,
		`x="60" y="140" text-anchor="middle" dominant-baseline="central" fill="black">yes</text>`,
	} {
		if !strings.Contains(svg, want) {
			t.Errorf("svg missing %s\n%s", want, svg)
		}
	}
}

func TestRenderSVGSkipsDanglingEdges(t *testing.T) {
	d := diagram.Diagram{
		Shapes: []diagram.Shape{{ID: "1", Kind: diagram.KindSquare}},
		Edges:  []diagram.Edge{{ID: "orphan", Source: "1", Target: "2"}},
	}
	if svg := string(RenderSVG(d, Options{})); strings.Contains(svg, "orphan") {
		t.Errorf("dangling edge drawn:\n%s", svg)
	}
}
