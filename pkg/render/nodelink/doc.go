// Package nodelink renders diagrams through Graphviz.
//
// # Overview
//
// Shapes become Graphviz nodes of the matching shape (circle, box,
// diamond), edges become arrows carrying their labels. By default Graphviz
// chooses the layout (engine "dot", top to bottom). With [Options.Pinned]
// the user's canvas positions are kept and the "neato" engine only routes
// the edges.
//
// # Usage
//
//	dot := nodelink.ToDOT(d, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot, nodelink.EngineDot)
//
// For PDF or PNG output, use the render functions:
//
//	pdf, err := nodelink.RenderPDF(ctx, dot, nodelink.EngineDot)
//	png, err := nodelink.RenderPNG(ctx, dot, nodelink.EngineDot, 2.0)
//
// Edges whose source or target no longer exists are left out; Graphviz
// would otherwise invent nodes for them.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
