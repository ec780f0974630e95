// Package view holds the per-element renderer state of the editor: one
// [ShapeView] per shape and one [EdgeView] per text edge.
//
// A view owns a local text buffer. Keystrokes update the buffer at once and
// schedule a debounced commit that merges {label: text} into the element's
// data through the store's update surface. Views never read the store back;
// the buffer starts from the committed label and diverges from it only
// while a commit is pending.
//
// Geometry (shape sizes, handle anchors, straight edge paths and label
// placement) lives here too so every front end draws the same diagram.
//
// Views are created and discarded by a [Manager], which keeps them in step
// with store snapshots through a [Registry] of renderers keyed by the
// shape kind and edge type tags.
package view
