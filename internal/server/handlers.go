package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/flowchart/pkg/diagram"
	"github.com/matzehuels/flowchart/pkg/errors"
	fio "github.com/matzehuels/flowchart/pkg/io"
	"github.com/matzehuels/flowchart/pkg/palette"
	"github.com/matzehuels/flowchart/pkg/pipeline"
	"github.com/matzehuels/flowchart/pkg/view"
)

// maxBody caps request bodies.
const maxBody = 8 << 20

var contentTypes = map[string]string{
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatPDF:  "application/pdf",
	pipeline.FormatDOT:  "text/vnd.graphviz",
	pipeline.FormatJSON: "application/json",
}

// =============================================================================
// Diagram
// =============================================================================

func (s *Server) getDiagram(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Snapshot())
}

func (s *Server) loadDiagram(w http.ResponseWriter, r *http.Request) {
	d, err := fio.ReadJSON(io.LimitReader(r.Body, maxBody))
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.store.Load(d)
	s.views.Reset(s.store.Snapshot())
	s.changed()
	writeJSON(w, http.StatusOK, s.store.Snapshot())
}

// =============================================================================
// Palette
// =============================================================================

func (s *Server) getPalette(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, palette.Entries())
}

func (s *Server) appendShape(w http.ResponseWriter, r *http.Request) {
	kind, err := diagram.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	entry, _ := palette.ByKind(kind)
	shape, err := entry.Add(s.store)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.changed()
	writeJSON(w, http.StatusCreated, shape)
}

// =============================================================================
// Change batches
// =============================================================================

func (s *Server) shapeChanges(w http.ResponseWriter, r *http.Request) {
	var changes []diagram.ShapeChange
	if err := decode(r, &changes); err != nil {
		writeError(w, r, err)
		return
	}
	edges := s.store.Edges()
	if err := s.store.ApplyShapeChanges(changes); err != nil {
		writeError(w, r, err)
		return
	}
	// Deleting a shape also deletes its edges, as the canvas does.
	if removals := diagram.EdgeRemovals(edges, changes); len(removals) > 0 {
		if err := s.store.ApplyEdgeChanges(removals); err != nil {
			writeError(w, r, err)
			return
		}
	}
	s.changed()
	writeJSON(w, http.StatusOK, s.store.Snapshot())
}

func (s *Server) edgeChanges(w http.ResponseWriter, r *http.Request) {
	var changes []diagram.EdgeChange
	if err := decode(r, &changes); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.store.ApplyEdgeChanges(changes); err != nil {
		writeError(w, r, err)
		return
	}
	s.changed()
	writeJSON(w, http.StatusOK, s.store.Snapshot())
}

func (s *Server) connect(w http.ResponseWriter, r *http.Request) {
	var c diagram.Connection
	if err := decode(r, &c); err != nil {
		writeError(w, r, err)
		return
	}
	edge, created, err := s.store.Connect(c)
	if err != nil {
		writeError(w, r, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
		s.changed()
	}
	writeJSON(w, status, edge)
}

// =============================================================================
// Labels
// =============================================================================

type labelRequest struct {
	Text string `json:"text"`
}

type labelResponse struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	Pending bool   `json:"pending"`
}

func (s *Server) shapeLabel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req labelRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	v, ok := s.views.Shape(id)
	if !ok {
		writeError(w, r, errors.New(errors.ErrCodeShapeNotFound, "shape %q does not exist", id))
		return
	}
	v.Input(req.Text)
	writeJSON(w, http.StatusAccepted, labelResponse{ID: id, Text: v.Text(), Pending: v.Pending()})
}

func (s *Server) edgeLabel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req labelRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	v, ok := s.views.Edge(id)
	if !ok {
		writeError(w, r, errors.New(errors.ErrCodeEdgeNotFound, "edge %q does not exist", id))
		return
	}
	v.Input(req.Text)
	writeJSON(w, http.StatusAccepted, labelResponse{ID: id, Text: v.Text(), Pending: v.Pending()})
}

func (s *Server) edgeLayout(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	d := s.store.Snapshot()
	e, ok := d.Edge(id)
	v, hasView := s.views.Edge(id)
	if !ok || !hasView {
		writeError(w, r, errors.New(errors.ErrCodeEdgeNotFound, "edge %q does not exist", id))
		return
	}
	src, ok1 := d.Shape(e.Source)
	dst, ok2 := d.Shape(e.Target)
	if !ok1 || !ok2 {
		writeError(w, r, errors.New(errors.ErrCodeShapeNotFound, "edge %q has a missing end", id))
		return
	}
	sx, sy, tx, ty := view.EdgeEnds(src, dst)
	writeJSON(w, http.StatusOK, v.Layout(sx, sy, tx, ty, e.Selected))
}

func (s *Server) flush(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]int{"flushed": s.views.Flush()})
}

// =============================================================================
// Export and render
// =============================================================================

func (s *Server) export(w http.ResponseWriter, r *http.Request) {
	s.views.Flush()
	body, err := fio.Marshal(s.store.Snapshot())
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", fio.ContentType)
	w.Header().Set("Content-Disposition", fio.Disposition(s.filename))
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

func (s *Server) render(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	format := q.Get("format")
	if format == "" {
		format = pipeline.FormatSVG
	}
	opts := pipeline.Options{
		Layout:   q.Get("layout"),
		Formats:  []string{format},
		Detailed: q.Get("detailed") == "true",
		Handles:  q.Get("handles") == "true",
	}
	if v := q.Get("scale"); v != "" {
		scale, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "invalid scale: %q", v))
			return
		}
		opts.Scale = scale
	}

	s.views.Flush()
	res, err := s.runner.Execute(r.Context(), s.store.Snapshot(), opts)
	if err != nil {
		writeError(w, r, err)
		return
	}

	cacheStatus := "MISS"
	if res.CacheInfo.AllHit() {
		cacheStatus = "HIT"
	}
	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set("X-Cache", cacheStatus)
	w.WriteHeader(http.StatusOK)
	w.Write(res.Artifacts[format])
}

// =============================================================================
// Helpers
// =============================================================================

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body")
	}
	return nil
}
