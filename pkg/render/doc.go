// Package render turns a diagram into pictures.
//
// Two renderers produce SVG:
//
//   - [canvas] draws shapes where the user placed them, with the same
//     geometry, handles and straight edges the editor uses.
//   - [nodelink] ignores positions and lets Graphviz lay the diagram out.
//
// This package converts either SVG to PDF or PNG with the external
// rsvg-convert tool (from librsvg):
//
//	svg := canvas.RenderSVG(d, canvas.Options{})
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0) // 2x scale
//
// [canvas]: github.com/matzehuels/flowchart/pkg/render/canvas
// [nodelink]: github.com/matzehuels/flowchart/pkg/render/nodelink
package render
