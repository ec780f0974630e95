// Package server exposes the diagram store over a JSON HTTP API so a
// browser canvas can drive it.
//
// The browser owns rendering and hit-testing. It sends the same change
// batches and connect proposals a graph-rendering library emits, and label
// keystrokes go through debounced views exactly as in the terminal editor.
//
// # Routes
//
//	GET  /api/diagram              current {shapes, edges}
//	POST /api/diagram              replace the diagram (import), dropping unsaved label edits
//	GET  /api/palette              palette entries
//	POST /api/palette/{kind}       append a shape
//	POST /api/shapes/changes       apply a shape change batch
//	PUT  /api/shapes/{id}/label    label keystroke (debounced)
//	POST /api/edges/changes        apply an edge change batch
//	PUT  /api/edges/{id}/label     label keystroke (debounced)
//	GET  /api/edges/{id}/layout    straight path and label anchors
//	POST /api/connect              connect two shapes
//	POST /api/flush                commit pending label edits now
//	GET  /api/export               download aira.drawio
//	GET  /api/render               render as svg, png, pdf, dot or json
//	GET  /api/version              build information
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/flowchart/pkg/buildinfo"
	"github.com/matzehuels/flowchart/pkg/diagram"
	fio "github.com/matzehuels/flowchart/pkg/io"
	"github.com/matzehuels/flowchart/pkg/pipeline"
	"github.com/matzehuels/flowchart/pkg/view"
)

const shutdownTimeout = 5 * time.Second

// Option configures a [Server].
type Option func(*Server)

// WithLogger sets the request and debug logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithRunner sets the render runner. The default renders without a cache.
func WithRunner(r *pipeline.Runner) Option {
	return func(s *Server) { s.runner = r }
}

// WithFilename overrides the export download name.
func WithFilename(name string) Option {
	return func(s *Server) { s.filename = name }
}

// WithViewOptions passes options (debounce wait, clock) to every label view.
func WithViewOptions(opts ...view.Option) Option {
	return func(s *Server) { s.viewOpts = append(s.viewOpts, opts...) }
}

// WithChangeHook registers fn to receive a snapshot after every mutation,
// for example an autosaver.
func WithChangeHook(fn func(diagram.Diagram)) Option {
	return func(s *Server) { s.onChange = fn }
}

// Server serves one diagram store.
type Server struct {
	store    *diagram.Store
	views    *view.Manager
	runner   *pipeline.Runner
	logger   *log.Logger
	filename string
	viewOpts []view.Option
	onChange func(diagram.Diagram)
	router   chi.Router
}

// New creates a server for store.
func New(store *diagram.Store, opts ...Option) *Server {
	s := &Server{
		store:    store,
		logger:   log.Default(),
		filename: fio.Filename,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.runner == nil {
		s.runner = pipeline.NewRunner(nil, s.logger)
	}
	viewOpts := append([]view.Option{view.WithLogger(s.logger)}, s.viewOpts...)
	// Label commits from the views go through the server so the change hook
	// sees them.
	s.views = view.NewManager(nil, committer{s}, viewOpts...)
	s.views.Sync(store.Snapshot())
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(s.logger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/version", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, buildinfo.Get())
		})
		r.Get("/diagram", s.getDiagram)
		r.Post("/diagram", s.loadDiagram)
		r.Get("/palette", s.getPalette)
		r.Post("/palette/{kind}", s.appendShape)
		r.Post("/shapes/changes", s.shapeChanges)
		r.Put("/shapes/{id}/label", s.shapeLabel)
		r.Post("/edges/changes", s.edgeChanges)
		r.Put("/edges/{id}/label", s.edgeLabel)
		r.Get("/edges/{id}/layout", s.edgeLayout)
		r.Post("/connect", s.connect)
		r.Post("/flush", s.flush)
		r.Get("/export", s.export)
		r.Get("/render", s.render)
	})
	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Flush commits every pending label edit.
func (s *Server) Flush() int { return s.views.Flush() }

// ListenAndServe serves on addr until ctx is cancelled, then flushes pending
// label edits and shuts down.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	if n := s.views.Flush(); n > 0 {
		s.logger.Debug("flushed pending labels", "count", n)
	}
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// changed resyncs the views and notifies the change hook.
func (s *Server) changed() {
	d := s.store.Snapshot()
	s.views.Sync(d)
	if s.onChange != nil {
		s.onChange(d)
	}
}

// committer routes debounced label commits into the store and then fires
// the change hook.
type committer struct{ s *Server }

func (c committer) UpdateShapeData(id string, patch diagram.Data) error {
	if err := c.s.store.UpdateShapeData(id, patch); err != nil {
		return err
	}
	if c.s.onChange != nil {
		c.s.onChange(c.s.store.Snapshot())
	}
	return nil
}

func (c committer) UpdateEdgeData(id string, patch diagram.Data) error {
	if err := c.s.store.UpdateEdgeData(id, patch); err != nil {
		return err
	}
	if c.s.onChange != nil {
		c.s.onChange(c.s.store.Snapshot())
	}
	return nil
}
