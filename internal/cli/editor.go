package cli

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/flowchart/pkg/diagram"
	"github.com/matzehuels/flowchart/pkg/errors"
	fio "github.com/matzehuels/flowchart/pkg/io"
	"github.com/matzehuels/flowchart/pkg/palette"
	"github.com/matzehuels/flowchart/pkg/session"
	"github.com/matzehuels/flowchart/pkg/view"
)

// refreshInterval is how often the editor re-reads the store, so debounced
// label commits show up without a key press.
const refreshInterval = 200 * time.Millisecond

// editorMode is what key presses currently act on.
type editorMode int

const (
	modeNormal editorMode = iota
	modeLabel
	modeConnect
)

func (m editorMode) String() string {
	switch m {
	case modeLabel:
		return "LABEL"
	case modeConnect:
		return "CONNECT"
	}
	return "NORMAL"
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// editorConfig wires an editor to its collaborators.
type editorConfig struct {
	ctx       context.Context
	store     *diagram.Store
	viewOpts  []view.Option
	autosave  *session.Autosaver // nil disables autosave
	exportDir string
	filename  string
}

// editorModel is the bubbletea model of the terminal editor. The store is
// the single source of truth: selection lives in the shapes' and edges'
// Selected flags, and every gesture is sent to the store as a change batch.
type editorModel struct {
	ctx       context.Context
	store     *diagram.Store
	views     *view.Manager
	autosave  *session.Autosaver
	exportDir string
	filename  string

	d       diagram.Diagram
	version uint64
	dirty   bool // the store changed since the editor opened

	mode     editorMode
	editing  string // id of the shape or edge whose label is being typed
	isEdge   bool   // editing refers to an edge
	source   string // connect mode: shape the edge starts from
	target   string // connect mode: proposed target
	status   string
	isErr    bool
	width    int
	height   int
	showHelp bool
}

func newEditor(cfg editorConfig) editorModel {
	if cfg.ctx == nil {
		cfg.ctx = context.Background()
	}
	m := editorModel{
		ctx:       cfg.ctx,
		store:     cfg.store,
		views:     view.NewManager(nil, cfg.store, cfg.viewOpts...),
		autosave:  cfg.autosave,
		exportDir: cfg.exportDir,
		filename:  cfg.filename,
		width:     100,
		height:    30,
	}
	m.d = cfg.store.Snapshot()
	m.version = cfg.store.Version()
	m.views.Sync(m.d)
	return m
}

func (m editorModel) Init() tea.Cmd {
	return tick()
}

func (m editorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.refresh()
		return m, tick()
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch m.mode {
		case modeLabel:
			return m.updateLabel(msg)
		case modeConnect:
			return m.updateConnect(msg)
		default:
			return m.updateNormal(msg)
		}
	}
	return m, nil
}

// refresh re-reads the store if it changed since the last read.
func (m *editorModel) refresh() {
	v := m.store.Version()
	if v == m.version {
		return
	}
	m.d = m.store.Snapshot()
	m.version = v
	m.dirty = true
	m.views.Sync(m.d)
	if m.autosave != nil {
		m.autosave.Changed(m.d)
	}
}

// finish commits pending label edits and writes the last autosave.
func (m *editorModel) finish() error {
	m.views.Flush()
	m.refresh()
	if m.autosave == nil {
		return nil
	}
	m.autosave.Flush()
	return m.autosave.Err()
}

func (m *editorModel) fail(err error) {
	m.status, m.isErr = errors.UserMessage(err), true
}

func (m *editorModel) info(format string, args ...any) {
	m.status, m.isErr = fmt.Sprintf(format, args...), false
}

// =============================================================================
// Normal mode
// =============================================================================

func (m editorModel) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if e, ok := palette.ByKey(key); ok {
		s, err := e.Add(m.store)
		if err != nil {
			m.fail(err)
			return m, nil
		}
		m.refresh()
		m.selectShape(s.ID)
		m.info("added %s %s", s.Kind, s.ID)
		return m, nil
	}

	switch key {
	case "q":
		return m, tea.Quit
	case "?":
		m.showHelp = !m.showHelp
	case "tab":
		m.cycleShape(1)
	case "shift+tab":
		m.cycleShape(-1)
	case "]":
		m.cycleEdge(1)
	case "[":
		m.cycleEdge(-1)
	case "esc":
		m.clearSelection()
	case "up", "k":
		m.move(0, -1)
	case "down", "j":
		m.move(0, 1)
	case "left", "h":
		m.move(-1, 0)
	case "right", "l":
		m.move(1, 0)
	case "shift+up", "K":
		m.move(0, -5)
	case "shift+down", "J":
		m.move(0, 5)
	case "shift+left", "H":
		m.move(-5, 0)
	case "shift+right", "L":
		m.move(5, 0)
	case "x", "delete", "backspace":
		m.deleteSelected()
	case "e", "enter":
		m.startLabel()
	case "a":
		m.startConnect()
	case "w":
		m.export()
	}
	return m, nil
}

func (m editorModel) selectedShape() (diagram.Shape, bool) {
	i := slices.IndexFunc(m.d.Shapes, func(s diagram.Shape) bool { return s.Selected })
	if i < 0 {
		return diagram.Shape{}, false
	}
	return m.d.Shapes[i], true
}

func (m editorModel) selectedEdge() (diagram.Edge, bool) {
	i := slices.IndexFunc(m.d.Edges, func(e diagram.Edge) bool { return e.Selected })
	if i < 0 {
		return diagram.Edge{}, false
	}
	return m.d.Edges[i], true
}

// selectShape makes id the only selected element.
func (m *editorModel) selectShape(id string) {
	var shapeChanges []diagram.ShapeChange
	for _, s := range m.d.Shapes {
		if s.Selected != (s.ID == id) {
			shapeChanges = append(shapeChanges, diagram.SelectShape(s.ID, s.ID == id))
		}
	}
	m.apply(shapeChanges, m.deselectEdges(""))
}

// selectEdge makes id the only selected element.
func (m *editorModel) selectEdge(id string) {
	var shapeChanges []diagram.ShapeChange
	for _, s := range m.d.Shapes {
		if s.Selected {
			shapeChanges = append(shapeChanges, diagram.SelectShape(s.ID, false))
		}
	}
	m.apply(shapeChanges, m.deselectEdges(id))
}

// deselectEdges returns the changes that leave only keep selected.
func (m editorModel) deselectEdges(keep string) []diagram.EdgeChange {
	var changes []diagram.EdgeChange
	for _, e := range m.d.Edges {
		if e.Selected != (e.ID == keep) {
			changes = append(changes, diagram.SelectEdge(e.ID, e.ID == keep))
		}
	}
	return changes
}

func (m *editorModel) clearSelection() {
	var shapeChanges []diagram.ShapeChange
	for _, s := range m.d.Shapes {
		if s.Selected {
			shapeChanges = append(shapeChanges, diagram.SelectShape(s.ID, false))
		}
	}
	m.apply(shapeChanges, m.deselectEdges(""))
}

// apply sends non-empty batches to the store and refreshes.
func (m *editorModel) apply(shapes []diagram.ShapeChange, edges []diagram.EdgeChange) {
	if len(shapes) > 0 {
		if err := m.store.ApplyShapeChanges(shapes); err != nil {
			m.fail(err)
			return
		}
	}
	if len(edges) > 0 {
		if err := m.store.ApplyEdgeChanges(edges); err != nil {
			m.fail(err)
			return
		}
	}
	m.refresh()
}

func (m *editorModel) cycleShape(step int) {
	if id, ok := m.cycle(m.shapeIDs(), step); ok {
		m.selectShape(id)
	}
}

func (m *editorModel) cycleEdge(step int) {
	ids := make([]string, len(m.d.Edges))
	for i, e := range m.d.Edges {
		ids[i] = e.ID
	}
	if id, ok := m.cycle(ids, step); ok {
		m.selectEdge(id)
	}
}

func (m editorModel) shapeIDs() []string {
	ids := make([]string, len(m.d.Shapes))
	for i, s := range m.d.Shapes {
		ids[i] = s.ID
	}
	return ids
}

// cycle returns the id step positions after the current selection in ids.
func (m editorModel) cycle(ids []string, step int) (string, bool) {
	if len(ids) == 0 {
		return "", false
	}
	cur := -1
	if s, ok := m.selectedShape(); ok {
		cur = slices.Index(ids, s.ID)
	}
	if cur < 0 {
		if e, ok := m.selectedEdge(); ok {
			cur = slices.Index(ids, e.ID)
		}
	}
	if cur < 0 {
		if step > 0 {
			return ids[0], true
		}
		return ids[len(ids)-1], true
	}
	return ids[(cur+step+len(ids))%len(ids)], true
}

// move drags the selected shape by whole cells.
func (m *editorModel) move(dx, dy int) {
	s, ok := m.selectedShape()
	if !ok {
		return
	}
	p := diagram.Position{
		X: max(s.Position.X+float64(dx)*cellW, 0),
		Y: max(s.Position.Y+float64(dy)*cellH, 0),
	}
	m.apply([]diagram.ShapeChange{diagram.MoveShape(s.ID, p, false)}, nil)
}

// deleteSelected removes the selected shape together with its edges, or
// the selected edge.
func (m *editorModel) deleteSelected() {
	if s, ok := m.selectedShape(); ok {
		changes := []diagram.ShapeChange{diagram.RemoveShape(s.ID)}
		m.apply(changes, diagram.EdgeRemovals(m.d.Edges, changes))
		m.info("deleted %s %s", s.Kind, s.ID)
		return
	}
	if e, ok := m.selectedEdge(); ok {
		m.apply(nil, []diagram.EdgeChange{diagram.RemoveEdge(e.ID)})
		m.info("deleted edge %s", e.ID)
	}
}

func (m *editorModel) export() {
	if n := m.views.Flush(); n > 0 {
		m.refresh()
	}
	path, err := fio.ExportAs(m.ctx, m.store.Snapshot(), m.exportDir, m.filename)
	if err != nil {
		m.fail(err)
		return
	}
	m.info("exported %s", path)
}

// =============================================================================
// Label mode
// =============================================================================

// labelView is the part of a shape or edge view the label editor uses.
type labelView interface {
	Text() string
	Input(text string)
}

func (m *editorModel) startLabel() {
	if s, ok := m.selectedShape(); ok {
		m.mode, m.editing, m.isEdge = modeLabel, s.ID, false
		return
	}
	if e, ok := m.selectedEdge(); ok {
		m.mode, m.editing, m.isEdge = modeLabel, e.ID, true
	}
}

func (m editorModel) labelView() (labelView, bool) {
	if m.isEdge {
		v, ok := m.views.Edge(m.editing)
		return v, ok
	}
	v, ok := m.views.Shape(m.editing)
	return v, ok
}

func (m editorModel) updateLabel(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	v, ok := m.labelView()
	if !ok {
		m.mode = modeNormal
		return m, nil
	}
	text := v.Text()
	switch msg.Type {
	case tea.KeyEsc, tea.KeyEnter:
		m.mode = modeNormal
		return m, nil
	case tea.KeyBackspace:
		if r := []rune(text); len(r) > 0 {
			v.Input(string(r[:len(r)-1]))
		}
	case tea.KeyCtrlU:
		v.Input("")
	case tea.KeySpace:
		v.Input(text + " ")
	case tea.KeyRunes:
		v.Input(text + string(msg.Runes))
	}
	return m, nil
}

// =============================================================================
// Connect mode
// =============================================================================

func (m *editorModel) startConnect() {
	s, ok := m.selectedShape()
	if !ok {
		m.info("select a shape to connect from")
		return
	}
	m.mode, m.source, m.target = modeConnect, s.ID, ""
	ids := m.shapeIDs()
	if len(ids) > 1 {
		i := slices.Index(ids, s.ID)
		m.target = ids[(i+1)%len(ids)]
	} else {
		m.target = s.ID
	}
}

func (m editorModel) updateConnect(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ids := m.shapeIDs()
	switch msg.String() {
	case "esc", "q":
		m.mode = modeNormal
	case "tab", "right", "l", "down", "j":
		if i := slices.Index(ids, m.target); i >= 0 {
			m.target = ids[(i+1)%len(ids)]
		}
	case "shift+tab", "left", "h", "up", "k":
		if i := slices.Index(ids, m.target); i >= 0 {
			m.target = ids[(i-1+len(ids))%len(ids)]
		}
	case "enter", "a":
		m.mode = modeNormal
		// Handles are the shape's only source and target; no handle ids.
		e, created, err := m.store.Connect(diagram.Connection{Source: m.source, Target: m.target})
		if err != nil {
			m.fail(err)
			return m, nil
		}
		m.refresh()
		if created {
			m.info("connected %s → %s", m.source, m.target)
		} else {
			m.info("edge %s already exists", e.ID)
		}
	}
	return m, nil
}

// =============================================================================
// View
// =============================================================================

func (m editorModel) View() string {
	var b strings.Builder

	b.WriteString(m.header())
	b.WriteString("\n")

	canvasH := max(m.height-3, 3)
	if m.showHelp {
		canvasH = max(canvasH-len(helpLines), 3)
	}
	b.WriteString(m.drawCanvas(m.width, canvasH).Render())
	b.WriteString("\n")

	if m.showHelp {
		for _, line := range helpLines {
			b.WriteString(StyleDim.Render(line))
			b.WriteString("\n")
		}
	}
	b.WriteString(m.footer())
	return b.String()
}

var helpLines = []string{
	"tab/shift+tab select shape   [ ] select edge   arrows/hjkl move (shift: ×5)",
	"e edit label   a connect   x delete   w export   esc deselect   q quit",
}

func (m editorModel) header() string {
	var parts []string
	for _, e := range palette.Entries() {
		parts = append(parts, StyleHighlight.Render(e.Key)+" "+e.Glyph+" "+string(e.Kind))
	}
	title := StyleTitle.Render(appName)
	mode := lipgloss.NewStyle().Bold(true).Foreground(colorYellow).Render(m.mode.String())
	return title + "  " + strings.Join(parts, "  ") + "  " + StyleDim.Render("?") + " help  " + mode
}

func (m editorModel) footer() string {
	stats := StyleDim.Render(fmt.Sprintf("%d shapes · %d edges", len(m.d.Shapes), len(m.d.Edges)))
	if m.views.Pending() {
		stats += StyleDim.Render(" · ") + StyleWarning.Render("unsaved label")
	}
	if m.status == "" {
		return stats
	}
	if m.isErr {
		return stats + "  " + styleIconError.Render(iconError) + " " + m.status
	}
	return stats + "  " + styleIconSuccess.Render(iconSuccess) + " " + m.status
}

// drawCanvas draws edges first and shapes over them.
func (m editorModel) drawCanvas(w, h int) *grid {
	g := newGrid(w, h)

	for _, e := range m.d.Edges {
		src, ok1 := m.d.Shape(e.Source)
		dst, ok2 := m.d.Shape(e.Target)
		if !ok1 || !ok2 {
			continue
		}
		sx, sy, tx, ty := view.EdgeEnds(src, dst)
		class := classEdge
		if e.Selected {
			class = classEdgeSelected
		}
		g.drawEdge(sx, sy, tx, ty, class)

		v, ok := m.views.Edge(e.ID)
		if !ok {
			continue
		}
		editing := m.mode == modeLabel && m.isEdge && m.editing == e.ID
		layout := v.Layout(sx, sy, tx, ty, e.Selected && editing)
		if bg := layout.Background; bg.Visible && bg.Text != "" {
			lx, ly := toCell(bg.X, bg.Y)
			g.centered(lx, ly, " "+bg.Text+" ", classLabel)
		}
		if layout.Input.Visible {
			text := layout.Input.Text + "▏"
			ix, iy := layout.InputBox(float64(len([]rune(text)))*cellW, cellH)
			cx, cy := toCell(ix, iy)
			g.text(cx, cy, text, classInput)
		}
	}

	for _, s := range m.d.Shapes {
		class := classShape
		switch {
		case m.mode == modeConnect && s.ID == m.target:
			class = classTarget
		case s.Selected:
			class = classShapeSelected
		}
		label := s.Label()
		if v, ok := m.views.Shape(s.ID); ok {
			label = v.Text()
		}
		if m.mode == modeLabel && !m.isEdge && m.editing == s.ID {
			label += "▏"
		}
		g.drawShape(s, label, class)
	}
	return g
}
