package view

import (
	"math"
	"strconv"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowchart/pkg/debounce"
	"github.com/matzehuels/flowchart/pkg/diagram"
)

// InputLift is how far the edge label input sits above the label anchor,
// in multiples of the input's own height.
const InputLift = 2.0

// Background label box styling.
const (
	LabelPadX   = 2.0
	LabelPadY   = 4.0
	LabelRadius = 2.0
)

// Path is a straight edge path with its label anchor.
type Path struct {
	D       string  `json:"d"`
	LabelX  float64 `json:"labelX"`
	LabelY  float64 `json:"labelY"`
	OffsetX float64 `json:"offsetX"`
	OffsetY float64 `json:"offsetY"`
}

// StraightPath returns the SVG path from (sx,sy) to (tx,ty). The label
// anchor is the midpoint; the offsets are half the absolute deltas.
func StraightPath(sx, sy, tx, ty float64) Path {
	return Path{
		D:       "M " + num(sx) + "," + num(sy) + "L " + num(tx) + "," + num(ty),
		LabelX:  (sx + tx) / 2,
		LabelY:  (sy + ty) / 2,
		OffsetX: math.Abs(tx-sx) / 2,
		OffsetY: math.Abs(ty-sy) / 2,
	}
}

func num(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

// Label is a piece of text placed on the canvas.
type Label struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Text    string  `json:"text"`
	Visible bool    `json:"visible"`
}

// EdgeLayout is everything needed to draw one edge.
type EdgeLayout struct {
	Path Path `json:"path"`
	// Input is anchored at the label point. Draw it centered horizontally
	// and lifted by InputLift heights; see [EdgeLayout.InputBox].
	Input Label `json:"input"`
	// Background is the static label. It is always visible.
	Background Label `json:"background"`
}

// InputBox returns the top-left corner of an input box of size w x h.
func (l EdgeLayout) InputBox(w, h float64) (x, y float64) {
	return l.Input.X - w/2, l.Input.Y - InputLift*h
}

// EdgeView is the renderer state of one text edge.
type EdgeView struct {
	id     string
	logger *log.Logger

	mu     sync.Mutex
	text   string
	commit *debounce.Debouncer[string]
}

// NewEdgeView creates the view for e. The buffer starts as the committed
// label.
func NewEdgeView(e diagram.Edge, c EdgeCommitter, opts ...Option) *EdgeView {
	o := newOptions(opts)
	v := &EdgeView{id: e.ID, logger: o.logger, text: e.Label()}
	v.commit = debounce.New(o.wait, func(text string) {
		if err := c.UpdateEdgeData(v.id, diagram.Data{diagram.LabelKey: text}); err != nil {
			v.logger.Debug("edge label dropped", "id", v.id, "err", err)
		}
	}, debounce.WithClock(o.clock))
	return v
}

// ID returns the edge id.
func (v *EdgeView) ID() string { return v.id }

// Text returns the current buffer.
func (v *EdgeView) Text() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.text
}

// Input replaces the buffer with text and restarts the commit timer.
func (v *EdgeView) Input(text string) {
	v.mu.Lock()
	v.text = text
	v.mu.Unlock()
	v.commit.Call(text)
}

// Layout places the edge between the given endpoints. The input is shown
// only for a selected edge; the background label always is.
func (v *EdgeView) Layout(sx, sy, tx, ty float64, selected bool) EdgeLayout {
	p := StraightPath(sx, sy, tx, ty)
	text := v.Text()
	return EdgeLayout{
		Path:       p,
		Input:      Label{X: p.LabelX, Y: p.LabelY, Text: text, Visible: selected},
		Background: Label{X: p.LabelX, Y: p.LabelY, Text: text, Visible: true},
	}
}

// Pending reports whether an edit is waiting to be committed.
func (v *EdgeView) Pending() bool { return v.commit.Pending() }

// Flush commits a pending edit now.
func (v *EdgeView) Flush() bool { return v.commit.Flush() }

// Discard drops a pending edit.
func (v *EdgeView) Discard() { v.commit.Cancel() }
