package cli

import (
	"strings"
	"testing"

	"github.com/matzehuels/flowchart/pkg/diagram"
)

func gridLines(g *grid) []string {
	return strings.Split(g.String(), "\n")
}

func TestGridBlank(t *testing.T) {
	g := newGrid(4, 2)
	if got := g.String(); got != "    \n    " {
		t.Errorf("String() = %q", got)
	}
	// Out of bounds writes are dropped.
	g.set(-1, 0, 'x', classShape)
	g.set(4, 1, 'x', classShape)
	g.set(0, 2, 'x', classShape)
	if strings.ContainsRune(g.String(), 'x') {
		t.Error("out of bounds write landed on the grid")
	}
}

func TestDrawShape(t *testing.T) {
	tests := []struct {
		kind       diagram.Kind
		wantTop    string
		wantBottom string
	}{
		{diagram.KindSquare, "┌──────────┐", "└──────────┘"},
		{diagram.KindCircle, "╭──────╮", "╰──────╯"},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			g := newGrid(20, 6)
			g.drawShape(diagram.Shape{ID: "1", Kind: tt.kind}, "go", classShape)
			lines := gridLines(g)
			if !strings.HasPrefix(lines[0], tt.wantTop) {
				t.Errorf("top = %q, want prefix %q", lines[0], tt.wantTop)
			}
			if !strings.HasPrefix(lines[3], tt.wantBottom) {
				t.Errorf("bottom = %q, want prefix %q", lines[3], tt.wantBottom)
			}
			if !strings.Contains(lines[2], "go") {
				t.Errorf("label row = %q, want it to contain %q", lines[2], "go")
			}
		})
	}
}

func TestDrawShapeDiamond(t *testing.T) {
	g := newGrid(12, 6)
	g.drawShape(diagram.Shape{ID: "1", Kind: diagram.KindDiamond}, "", classShape)
	lines := gridLines(g)
	// 100x100 pixels is 10x5 cells; the middle row carries the points.
	if !strings.HasPrefix(lines[2], "<") || []rune(lines[2])[9] != '>' {
		t.Errorf("middle row = %q", lines[2])
	}
	if !strings.ContainsRune(lines[0], '/') || !strings.ContainsRune(lines[4], '\\') {
		t.Errorf("slants missing:\n%s", g.String())
	}
}

func TestDrawShapeOffset(t *testing.T) {
	g := newGrid(30, 8)
	g.drawShape(diagram.Shape{ID: "1", Kind: diagram.KindSquare, Position: diagram.Position{X: 50, Y: 40}}, "", classShape)
	lines := gridLines(g)
	if r := []rune(lines[2])[5]; r != '┌' {
		t.Errorf("corner at (5,2) = %q, want '┌'", r)
	}
}

func TestDrawEdge(t *testing.T) {
	tests := []struct {
		name           string
		sx, sy, tx, ty float64
		want           []string
	}{
		{"down", 0, 0, 0, 60, []string{"│", "│", "│", "▼"}},
		{"up", 0, 60, 0, 0, []string{"▲", "│", "│", "│"}},
		{"right", 0, 0, 30, 0, []string{"───▶"}},
		{"left", 30, 0, 0, 0, []string{"◀───"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newGrid(4, len(tt.want))
			g.drawEdge(tt.sx, tt.sy, tt.tx, tt.ty, classEdge)
			for i, line := range gridLines(g) {
				if got := strings.TrimRight(line, " "); got != tt.want[i] {
					t.Errorf("row %d = %q, want %q", i, got, tt.want[i])
				}
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"hello", 3, "he…"},
		{"hello", 1, "…"},
		{"hello", 0, ""},
		{"héllo", 2, "h…"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

func TestGridRenderKeepsText(t *testing.T) {
	g := newGrid(20, 6)
	g.drawShape(diagram.Shape{ID: "1", Kind: diagram.KindSquare}, "start", classShapeSelected)
	out := g.Render()
	if strings.Count(out, "\n") != 5 {
		t.Errorf("Render() rows = %d, want 6", strings.Count(out, "\n")+1)
	}
	if !strings.Contains(out, "start") {
		t.Error("Render() lost the label")
	}
}
