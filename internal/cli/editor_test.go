package cli

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/flowchart/pkg/debounce"
	"github.com/matzehuels/flowchart/pkg/diagram"
	fio "github.com/matzehuels/flowchart/pkg/io"
	"github.com/matzehuels/flowchart/pkg/session"
	"github.com/matzehuels/flowchart/pkg/view"
)

type editorFixture struct {
	store *diagram.Store
	clock *debounce.ManualClock
	dir   string
}

func newEditorFixture(t *testing.T) (editorModel, *editorFixture) {
	t.Helper()
	f := &editorFixture{
		store: diagram.NewStore(),
		clock: debounce.NewManualClock(),
		dir:   t.TempDir(),
	}
	m := newEditor(editorConfig{
		ctx:       context.Background(),
		store:     f.store,
		viewOpts:  []view.Option{view.WithClock(f.clock), view.WithWait(time.Second)},
		exportDir: f.dir,
		filename:  fio.Filename,
	})
	return m, f
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func key(k tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: k} }

func press(m editorModel, keys ...tea.KeyMsg) editorModel {
	for _, k := range keys {
		next, _ := m.Update(k)
		m = next.(editorModel)
	}
	return m
}

func selectedIDs(d diagram.Diagram) []string {
	var ids []string
	for _, s := range d.Shapes {
		if s.Selected {
			ids = append(ids, s.ID)
		}
	}
	for _, e := range d.Edges {
		if e.Selected {
			ids = append(ids, e.ID)
		}
	}
	return ids
}

func TestEditorPaletteKeys(t *testing.T) {
	m, f := newEditorFixture(t)
	m = press(m, runes("c"), runes("s"), runes("d"))

	shapes := f.store.Shapes()
	if len(shapes) != 3 {
		t.Fatalf("shapes = %d, want 3", len(shapes))
	}
	want := []diagram.Kind{diagram.KindCircle, diagram.KindSquare, diagram.KindDiamond}
	for i, s := range shapes {
		if s.Kind != want[i] {
			t.Errorf("shape %d kind = %s, want %s", i, s.Kind, want[i])
		}
	}
	if got := selectedIDs(m.d); len(got) != 1 || got[0] != "3" {
		t.Errorf("selected = %v, want [3]", got)
	}
}

func TestEditorCycleSelection(t *testing.T) {
	m, _ := newEditorFixture(t)
	m = press(m, runes("c"), runes("s"), runes("d"))

	tests := []struct {
		key  tea.KeyMsg
		want string
	}{
		{key(tea.KeyTab), "1"},
		{key(tea.KeyTab), "2"},
		{key(tea.KeyShiftTab), "1"},
		{key(tea.KeyShiftTab), "3"},
	}
	for i, tt := range tests {
		m = press(m, tt.key)
		if got := selectedIDs(m.d); len(got) != 1 || got[0] != tt.want {
			t.Errorf("step %d: selected = %v, want [%s]", i, got, tt.want)
		}
	}

	m = press(m, key(tea.KeyEsc))
	if got := selectedIDs(m.d); len(got) != 0 {
		t.Errorf("after esc selected = %v, want none", got)
	}
}

func TestEditorMove(t *testing.T) {
	m, f := newEditorFixture(t)
	m = press(m, runes("s"), key(tea.KeyRight), key(tea.KeyDown), runes("L"), runes("h"))

	s, _ := f.store.Shape("1")
	if want := (diagram.Position{X: 50, Y: 20}); s.Position != want {
		t.Errorf("position = %+v, want %+v", s.Position, want)
	}
	if s.Dragging {
		t.Error("keyboard moves should not leave the shape dragging")
	}

	// Moves stop at the origin.
	m = press(m, runes("K"))
	s, _ = f.store.Shape("1")
	if s.Position.Y != 0 {
		t.Errorf("y = %v, want 0", s.Position.Y)
	}
	_ = m
}

func TestEditorShapeLabelDebounced(t *testing.T) {
	m, f := newEditorFixture(t)
	m = press(m, runes("s"), runes("e"), runes("h"), runes("i"), key(tea.KeySpace), runes("x"), key(tea.KeyBackspace))

	if m.mode != modeLabel {
		t.Fatalf("mode = %s, want LABEL", m.mode)
	}
	v, ok := m.views.Shape("1")
	if !ok {
		t.Fatal("no view for shape 1")
	}
	if got := v.Text(); got != "hi " {
		t.Errorf("buffer = %q, want %q", got, "hi ")
	}
	if s, _ := f.store.Shape("1"); s.Label() != "" {
		t.Errorf("label committed early: %q", s.Label())
	}

	f.clock.Advance(time.Second)
	if s, _ := f.store.Shape("1"); s.Label() != "hi " {
		t.Errorf("label = %q, want %q", s.Label(), "hi ")
	}

	m = press(m, key(tea.KeyEnter))
	if m.mode != modeNormal {
		t.Errorf("mode = %s, want NORMAL", m.mode)
	}
}

func TestEditorEdgeLabel(t *testing.T) {
	m, f := newEditorFixture(t)
	m = press(m, runes("c"), runes("s"), runes("a"), key(tea.KeyEnter))
	m = press(m, runes("]"), runes("e"), runes("y"), runes("e"), runes("s"))

	edges := f.store.Edges()
	if len(edges) != 1 {
		t.Fatalf("edges = %d, want 1", len(edges))
	}
	m = press(m, key(tea.KeyCtrlU), runes("no"))
	f.clock.Advance(time.Second)

	if e, _ := f.store.Edge(edges[0].ID); e.Label() != "no" {
		t.Errorf("edge label = %q, want %q", e.Label(), "no")
	}
	if m.mode != modeLabel || !m.isEdge {
		t.Errorf("mode = %s edge=%v, want LABEL on edge", m.mode, m.isEdge)
	}
}

func TestEditorConnect(t *testing.T) {
	m, f := newEditorFixture(t)
	m = press(m, runes("c"), runes("s"), runes("a"))

	if m.mode != modeConnect || m.source != "2" || m.target != "1" {
		t.Fatalf("connect state = %s %s->%s", m.mode, m.source, m.target)
	}
	m = press(m, key(tea.KeyEnter))

	edges := f.store.Edges()
	if len(edges) != 1 || edges[0].ID != "xy-edge__2-1" {
		t.Fatalf("edges = %+v", edges)
	}
	if !strings.Contains(m.status, "connected") {
		t.Errorf("status = %q", m.status)
	}

	m = press(m, runes("a"), key(tea.KeyEnter))
	if n := len(f.store.Edges()); n != 1 {
		t.Errorf("duplicate connect created an edge: %d", n)
	}
	if !strings.Contains(m.status, "already exists") {
		t.Errorf("status = %q", m.status)
	}

	m = press(m, runes("a"), key(tea.KeyEsc))
	if m.mode != modeNormal {
		t.Errorf("esc left mode %s", m.mode)
	}
}

func TestEditorConnectNeedsSelection(t *testing.T) {
	m, _ := newEditorFixture(t)
	m = press(m, runes("a"))
	if m.mode != modeNormal {
		t.Errorf("mode = %s, want NORMAL", m.mode)
	}
}

func TestEditorDeleteShapeRemovesEdges(t *testing.T) {
	m, f := newEditorFixture(t)
	m = press(m, runes("c"), runes("s"), runes("a"), key(tea.KeyEnter))
	m = press(m, runes("x"))

	d := f.store.Snapshot()
	if len(d.Shapes) != 1 || d.Shapes[0].ID != "1" {
		t.Errorf("shapes = %+v", d.Shapes)
	}
	if len(d.Edges) != 0 {
		t.Errorf("edges = %d, want 0", len(d.Edges))
	}
	_ = m
}

func TestEditorDeleteEdge(t *testing.T) {
	m, f := newEditorFixture(t)
	m = press(m, runes("c"), runes("s"), runes("a"), key(tea.KeyEnter), runes("]"))

	if got := selectedIDs(m.d); len(got) != 1 || got[0] != "xy-edge__2-1" {
		t.Fatalf("selected = %v", got)
	}
	m = press(m, key(tea.KeyDelete))

	d := f.store.Snapshot()
	if len(d.Edges) != 0 || len(d.Shapes) != 2 {
		t.Errorf("after delete: %d shapes, %d edges", len(d.Shapes), len(d.Edges))
	}
	_ = m
}

func TestEditorExportFlushesLabels(t *testing.T) {
	m, f := newEditorFixture(t)
	m = press(m, runes("c"), runes("e"), runes("!"), key(tea.KeyEnter), runes("w"))

	path := filepath.Join(f.dir, fio.Filename)
	if !strings.Contains(m.status, path) {
		t.Errorf("status = %q, want path %s", m.status, path)
	}
	d, err := fio.ImportJSON(path)
	if err != nil {
		t.Fatalf("ImportJSON: %v", err)
	}
	if len(d.Shapes) != 1 || d.Shapes[0].Label() != "circle!" {
		t.Errorf("exported shapes = %+v", d.Shapes)
	}
}

func TestEditorAutosave(t *testing.T) {
	m, f := newEditorFixture(t)
	drafts := session.NewMemoryStore()
	draft := session.NewDraft(diagram.Diagram{}, 0)
	m.autosave = session.NewAutosaver(drafts, draft, 0,
		session.WithAutosaveClock(f.clock),
		session.WithAutosaveWait(2*time.Second))

	m = press(m, runes("d"))
	f.clock.Advance(2 * time.Second)

	ctx := context.Background()
	got, err := drafts.Get(ctx, draft.ID)
	if err != nil || got == nil {
		t.Fatalf("Get: %v %v", got, err)
	}
	if len(got.Diagram.Shapes) != 1 {
		t.Errorf("saved shapes = %d, want 1", len(got.Diagram.Shapes))
	}

	// A debounced label commit reaches the draft on the next tick.
	m = press(m, runes("e"), runes("x"), key(tea.KeyEnter))
	f.clock.Advance(time.Second)
	next, _ := m.Update(tickMsg(time.Now()))
	m = next.(editorModel)
	if err := m.finish(); err != nil {
		t.Fatalf("finish: %v", err)
	}
	got, _ = drafts.Get(ctx, draft.ID)
	if got.Diagram.Shapes[0].Label() != "x" {
		t.Errorf("saved label = %q, want %q", got.Diagram.Shapes[0].Label(), "x")
	}
	if !m.dirty {
		t.Error("dirty = false after edits")
	}
}

func TestEditorFinishCommitsPendingLabel(t *testing.T) {
	m, f := newEditorFixture(t)
	m = press(m, runes("s"), runes("e"), runes("o"), runes("k"))
	if err := m.finish(); err != nil {
		t.Fatal(err)
	}
	if s, _ := f.store.Shape("1"); s.Label() != "ok" {
		t.Errorf("label = %q, want %q", s.Label(), "ok")
	}
}

func TestEditorView(t *testing.T) {
	m, _ := newEditorFixture(t)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 60, Height: 20})
	m = next.(editorModel)
	m = press(m, runes("s"), runes("e"), runes("g"), runes("o"))

	out := m.View()
	for _, want := range []string{"flowchart", "1 shapes", "unsaved label", "go", "LABEL"} {
		if !strings.Contains(out, want) {
			t.Errorf("View() missing %q", want)
		}
	}
	if n := strings.Count(out, "\n"); n > 20 {
		t.Errorf("View() has %d lines for a 20 row terminal", n+1)
	}
}

func TestEditorQuit(t *testing.T) {
	m, _ := newEditorFixture(t)
	_, cmd := m.Update(runes("q"))
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}

	// q is text while typing a label.
	m = press(m, runes("s"), runes("e"))
	_, cmd = m.Update(runes("q"))
	if cmd != nil {
		t.Error("q quit from label mode")
	}
}
