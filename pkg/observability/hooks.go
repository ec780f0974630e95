// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about diagram mutations, exports and draft persistence.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach:
//   - Avoids import cycles (hooks are registered by main, not by libraries)
//   - Keeps the core library dependency-free from observability frameworks
//   - Allows different backends (logging, Prometheus, OpenTelemetry, etc.)
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetStoreHooks(&myStoreHooks{})
//	    observability.SetExportHooks(&myExportHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Store().OnShapeAppended(shape.ID, string(shape.Kind))
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Store Hooks
// =============================================================================

// StoreHooks receives events from the diagram state store.
// Hooks are called after the store lock is released.
type StoreHooks interface {
	// OnShapeAppended records a palette append.
	OnShapeAppended(id, kind string)

	// OnChangesApplied records a change batch applied to "shapes" or "edges".
	OnChangesApplied(list string, changes int, duration time.Duration, err error)

	// OnConnect records an edge created from a connect gesture.
	OnConnect(edgeID, source, target string, created bool)

	// OnDataCommitted records a data merge into a shape or edge.
	OnDataCommitted(list, id string, fields int)
}

// =============================================================================
// Export Hooks
// =============================================================================

// ExportHooks receives events from exporters and renderers.
type ExportHooks interface {
	// OnExport records a completed export or render to the given format.
	OnExport(ctx context.Context, format string, size int, duration time.Duration, err error)
}

// =============================================================================
// Draft Hooks
// =============================================================================

// DraftHooks receives events from draft stores.
type DraftHooks interface {
	// OnDraftSaved records a draft write.
	OnDraftSaved(ctx context.Context, backend, id string, err error)

	// OnDraftLoaded records a draft read.
	OnDraftLoaded(ctx context.Context, backend, id string, found bool)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopStoreHooks is a no-op implementation of StoreHooks.
type NoopStoreHooks struct{}

func (NoopStoreHooks) OnShapeAppended(string, string)                     {}
func (NoopStoreHooks) OnChangesApplied(string, int, time.Duration, error) {}
func (NoopStoreHooks) OnConnect(string, string, string, bool)             {}
func (NoopStoreHooks) OnDataCommitted(string, string, int)                {}

// NoopExportHooks is a no-op implementation of ExportHooks.
type NoopExportHooks struct{}

func (NoopExportHooks) OnExport(context.Context, string, int, time.Duration, error) {}

// NoopDraftHooks is a no-op implementation of DraftHooks.
type NoopDraftHooks struct{}

func (NoopDraftHooks) OnDraftSaved(context.Context, string, string, error) {}
func (NoopDraftHooks) OnDraftLoaded(context.Context, string, string, bool) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	storeHooks  StoreHooks  = NoopStoreHooks{}
	exportHooks ExportHooks = NoopExportHooks{}
	draftHooks  DraftHooks  = NoopDraftHooks{}
	hooksMu     sync.RWMutex
)

// SetStoreHooks registers custom store hooks.
// This should be called once at application startup before any store is used.
func SetStoreHooks(h StoreHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		storeHooks = h
	}
}

// SetExportHooks registers custom export hooks.
func SetExportHooks(h ExportHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		exportHooks = h
	}
}

// SetDraftHooks registers custom draft hooks.
func SetDraftHooks(h DraftHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		draftHooks = h
	}
}

// Store returns the registered store hooks.
func Store() StoreHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return storeHooks
}

// Export returns the registered export hooks.
func Export() ExportHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return exportHooks
}

// Draft returns the registered draft hooks.
func Draft() DraftHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return draftHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	storeHooks = NoopStoreHooks{}
	exportHooks = NoopExportHooks{}
	draftHooks = NoopDraftHooks{}
}
