// Package cli implements the flowchart command-line interface.
//
// # Commands
//
// The main commands are:
//   - edit: Interactive terminal editor with autosaved drafts
//   - export: Write a diagram as aira.drawio
//   - render: Generate SVG, PNG, PDF or DOT output
//   - serve: JSON HTTP API for a browser canvas
//   - drafts: List and delete saved drafts
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Every store
// mutation, export and draft write is logged at debug level through the
// observability hooks registered in [registerLogHooks].
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowchart/pkg/observability"
)

// newLogger creates a new logger with timestamp formatting.
// The logger writes to w and filters messages at the specified level.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
// It is safe for sequential use by a single goroutine; concurrent calls to done will race.
type progress struct {
	logger *log.Logger
	start  time.Time
}

// newProgress creates a progress tracker that captures the current time as start.
// The returned progress should call done when the operation completes.
func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// The duration is rounded to the nearest millisecond.
// Example output: "Resolved 42 packages (1.234s)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

// ctxKey is the type for context keys used in this package.
// Using a distinct type prevents collisions with other packages.
type ctxKey int

// loggerKey is the context key for storing a logger.
const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
// The logger can be retrieved later with loggerFromContext.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx.
// If no logger is attached, it returns log.Default().
// This ensures commands always have a valid logger even if context setup fails.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// =============================================================================
// Observability Hooks
// =============================================================================

// logHooks forwards observability events to a logger at debug level.
type logHooks struct {
	logger *log.Logger
}

var (
	_ observability.StoreHooks  = logHooks{}
	_ observability.ExportHooks = logHooks{}
	_ observability.DraftHooks  = logHooks{}
)

// registerLogHooks installs logHooks for every hook category.
func registerLogHooks(l *log.Logger) {
	h := logHooks{logger: l}
	observability.SetStoreHooks(h)
	observability.SetExportHooks(h)
	observability.SetDraftHooks(h)
}

func (h logHooks) OnShapeAppended(id, kind string) {
	h.logger.Debug("shape appended", "id", id, "kind", kind)
}

func (h logHooks) OnChangesApplied(list string, changes int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("change batch rejected", "list", list, "changes", changes, "err", err)
		return
	}
	h.logger.Debug("change batch applied", "list", list, "changes", changes, "duration", d)
}

func (h logHooks) OnConnect(edgeID, source, target string, created bool) {
	h.logger.Debug("connect", "edge", edgeID, "source", source, "target", target, "created", created)
}

func (h logHooks) OnDataCommitted(list, id string, fields int) {
	h.logger.Debug("data committed", "list", list, "id", id, "fields", fields)
}

func (h logHooks) OnExport(_ context.Context, format string, size int, d time.Duration, err error) {
	if err != nil {
		h.logger.Warn("export failed", "format", format, "err", err)
		return
	}
	h.logger.Debug("exported", "format", format, "bytes", size, "duration", d.Round(time.Millisecond))
}

func (h logHooks) OnDraftSaved(_ context.Context, backend, id string, err error) {
	if err != nil {
		h.logger.Warn("draft save failed", "backend", backend, "id", id, "err", err)
		return
	}
	h.logger.Debug("draft saved", "backend", backend, "id", id)
}

func (h logHooks) OnDraftLoaded(_ context.Context, backend, id string, found bool) {
	h.logger.Debug("draft loaded", "backend", backend, "id", id, "found", found)
}
