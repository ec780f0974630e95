// Package pkg provides the libraries behind the flowchart editor.
//
// # Overview
//
// A flowchart is a list of shapes (circle, square, diamond) and a list of
// directed edges between them. The editor keeps both in one store, turns
// every user gesture into a change batch, and exports the result as a JSON
// document named aira.drawio.
//
// # Architecture
//
// The typical data flow:
//
//	palette button / key press / HTTP request
//	         ↓
//	    [diagram] store (append, change batches, connect)
//	         ↓
//	    [view] shape and edge views (debounced label commits)
//	         ↓
//	    [io] export, [pipeline] render, [session] draft autosave
//
// # Main Packages
//
// [diagram] - Shapes, edges, change batches and the store that owns them.
// The store is the single source of truth; readers get deep copies.
//
// [debounce] - Generic debouncer with an injectable clock. Label edits and
// draft autosaves both go through it.
//
// [view] - Renderer state per shape and edge: geometry, handles, the edge
// label layout and the label buffer that commits after a quiet second.
//
// [palette] - The add-shape panel: one append action per shape kind.
//
// [io] - JSON import and the aira.drawio export.
//
// [pipeline] - Render a diagram to SVG, PNG, PDF, DOT or JSON with artifact
// caching. Used by the CLI and the HTTP server.
//
// [render] - SVG renderers (canvas, graphviz node-link) and PDF/PNG
// conversion.
//
// [session] - Draft persistence with file, Redis, MongoDB and memory
// backends.
//
// [cache] - Artifact cache (file, null).
//
// [config] - TOML configuration file.
//
// [errors] - Coded errors shared by every package.
//
// [observability] - Hooks for store, export and draft events.
//
// # Quick Start
//
//	store := diagram.NewStore()
//	start, _ := palette.AddCircle(store)
//	check, _ := palette.AddDiamond(store)
//	store.Connect(diagram.Connection{Source: start.ID, Target: check.ID})
//
//	path, err := io.Export(ctx, store.Snapshot(), ".") // ./aira.drawio
//
// # Testing
//
//	go test ./pkg/...
//
// [diagram]: https://pkg.go.dev/github.com/matzehuels/flowchart/pkg/diagram
// [debounce]: https://pkg.go.dev/github.com/matzehuels/flowchart/pkg/debounce
// [view]: https://pkg.go.dev/github.com/matzehuels/flowchart/pkg/view
// [palette]: https://pkg.go.dev/github.com/matzehuels/flowchart/pkg/palette
// [io]: https://pkg.go.dev/github.com/matzehuels/flowchart/pkg/io
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/flowchart/pkg/pipeline
// [render]: https://pkg.go.dev/github.com/matzehuels/flowchart/pkg/render
// [session]: https://pkg.go.dev/github.com/matzehuels/flowchart/pkg/session
// [cache]: https://pkg.go.dev/github.com/matzehuels/flowchart/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/flowchart/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/flowchart/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/flowchart/pkg/observability
package pkg
