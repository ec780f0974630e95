// Package io reads and writes the diagram export file.
//
// # Format
//
// The file is a single JSON object with two arrays and nothing else: no
// schema tag, no version field.
//
//	{
//	  "shapes": [
//	    {"id": "1", "type": "circle", "position": {"x": 0, "y": 0},
//	     "data": {"label": "circle"}, "style": {"color": "#000"}}
//	  ],
//	  "edges": [
//	    {"id": "xy-edge__1-2", "source": "1", "target": "2",
//	     "type": "text", "markerEnd": {"type": "arrow"}, "data": {"label": "yes"}}
//	  ]
//	}
//
// Field names follow the node/edge objects of browser graph libraries, so a
// canvas can load the file directly. An empty diagram is exported as
// {"shapes":[],"edges":[]}, never with null arrays.
//
// # Export
//
// [Export] writes the file under the fixed name [Filename] into a directory.
// [WriteJSON] writes the same body to any io.Writer, which is what the HTTP
// download handler uses together with [ContentType] and [Disposition].
//
//	path, err := io.Export(ctx, store.Snapshot(), ".")
//
// # Import
//
// [ReadJSON] and [ImportJSON] read an export back so the editor can resume
// it. Shape kinds and duplicate ids are checked; edges pointing at missing
// shapes are accepted because removing a shape never removes its edges.
package io
