package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/flowchart/pkg/diagram"
	"github.com/matzehuels/flowchart/pkg/view"
)

// Canvas pixels per terminal cell. A cell is roughly twice as tall as wide.
const (
	cellW = 10.0
	cellH = 20.0
)

// cellClass selects the style of one grid cell.
type cellClass uint8

const (
	classNone cellClass = iota
	classEdge
	classEdgeSelected
	classShape
	classShapeSelected
	classTarget
	classLabel
	classInput
)

var classStyles = map[cellClass]lipgloss.Style{
	classNone:          lipgloss.NewStyle(),
	classEdge:          lipgloss.NewStyle().Foreground(colorGray),
	classEdgeSelected:  lipgloss.NewStyle().Foreground(colorCyan).Bold(true),
	classShape:         lipgloss.NewStyle().Foreground(colorWhite),
	classShapeSelected: lipgloss.NewStyle().Foreground(colorCyan).Bold(true),
	classTarget:        lipgloss.NewStyle().Foreground(colorGreen).Bold(true),
	classLabel:         lipgloss.NewStyle().Foreground(colorWhite).Background(lipgloss.Color("236")),
	classInput:         lipgloss.NewStyle().Foreground(colorYellow).Underline(true),
}

// grid is a fixed-size character canvas.
type grid struct {
	w, h  int
	cells [][]rune
	class [][]cellClass
}

func newGrid(w, h int) *grid {
	w, h = max(w, 1), max(h, 1)
	g := &grid{w: w, h: h, cells: make([][]rune, h), class: make([][]cellClass, h)}
	for y := range g.cells {
		g.cells[y] = []rune(strings.Repeat(" ", w))
		g.class[y] = make([]cellClass, w)
	}
	return g
}

func (g *grid) set(x, y int, r rune, c cellClass) {
	if x < 0 || y < 0 || x >= g.w || y >= g.h {
		return
	}
	g.cells[y][x] = r
	g.class[y][x] = c
}

func (g *grid) text(x, y int, s string, c cellClass) {
	for i, r := range []rune(s) {
		g.set(x+i, y, r, c)
	}
}

// centered writes s centered on column cx.
func (g *grid) centered(cx, y int, s string, c cellClass) {
	g.text(cx-len([]rune(s))/2, y, s, c)
}

// String returns the plain text of the grid, one line per row.
func (g *grid) String() string {
	lines := make([]string, g.h)
	for y, row := range g.cells {
		lines[y] = string(row)
	}
	return strings.Join(lines, "\n")
}

// Render returns the grid with styles applied to runs of equal class.
func (g *grid) Render() string {
	var b strings.Builder
	for y, row := range g.cells {
		if y > 0 {
			b.WriteByte('\n')
		}
		start := 0
		for x := 1; x <= g.w; x++ {
			if x < g.w && g.class[y][x] == g.class[y][start] {
				continue
			}
			b.WriteString(classStyles[g.class[y][start]].Render(string(row[start:x])))
			start = x
		}
	}
	return b.String()
}

// =============================================================================
// Drawing
// =============================================================================

func toCell(x, y float64) (int, int) {
	return int(x / cellW), int(y / cellH)
}

// cellBox returns the cell rectangle covered by s.
func cellBox(s diagram.Shape) (x, y, w, h int) {
	g := view.Size(s)
	x, y = toCell(s.Position.X, s.Position.Y)
	return x, y, max(int(g.Width/cellW), 3), max(int(g.Height/cellH), 3)
}

// drawShape draws s with its label. A diamond is drawn with slanted sides.
func (g *grid) drawShape(s diagram.Shape, label string, c cellClass) {
	x, y, w, h := cellBox(s)
	for dy := range h {
		for dx := range w {
			g.set(x+dx, y+dy, ' ', c)
		}
	}

	switch s.Kind {
	case diagram.KindDiamond:
		mid := h / 2
		for dy := range h {
			inset := abs(dy-mid) * (w / 2) / max(mid+1, 1)
			left, right := x+inset, x+w-1-inset
			switch {
			case dy == mid:
				g.set(left, y+dy, '<', c)
				g.set(right, y+dy, '>', c)
			case dy < mid:
				g.set(left, y+dy, '/', c)
				g.set(right, y+dy, '\\', c)
			default:
				g.set(left, y+dy, '\\', c)
				g.set(right, y+dy, '/', c)
			}
		}
	default:
		tl, tr, bl, br := '┌', '┐', '└', '┘'
		if s.Kind == diagram.KindCircle {
			tl, tr, bl, br = '╭', '╮', '╰', '╯'
		}
		for dx := 1; dx < w-1; dx++ {
			g.set(x+dx, y, '─', c)
			g.set(x+dx, y+h-1, '─', c)
		}
		for dy := 1; dy < h-1; dy++ {
			g.set(x, y+dy, '│', c)
			g.set(x+w-1, y+dy, '│', c)
		}
		g.set(x, y, tl, c)
		g.set(x+w-1, y, tr, c)
		g.set(x, y+h-1, bl, c)
		g.set(x+w-1, y+h-1, br, c)
	}

	if label != "" {
		g.centered(x+w/2, y+h/2, truncate(label, w-2), c)
	}
}

// drawEdge draws a straight line between the cells of the two anchors and
// an arrowhead on the target end.
func (g *grid) drawEdge(sx, sy, tx, ty float64, c cellClass) {
	x0, y0 := toCell(sx, sy)
	x1, y1 := toCell(tx, ty)

	dx, dy := abs(x1-x0), -abs(y1-y0)
	stepX, stepY := sign(x1-x0), sign(y1-y0)
	line := '│'
	if dx > -dy {
		line = '─'
	}
	e := dx + dy
	x, y := x0, y0
	for x != x1 || y != y1 {
		g.set(x, y, line, c)
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x += stepX
		}
		if e2 <= dx {
			e += dx
			y += stepY
		}
	}

	head := '▼'
	switch {
	case dx > -dy && stepX > 0:
		head = '▶'
	case dx > -dy:
		head = '◀'
	case stepY < 0:
		head = '▲'
	}
	g.set(x1, y1, head, c)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 {
		return ""
	}
	if len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	}
	return 0
}
