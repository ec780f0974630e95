// Package diagram holds the flowchart data model and the state store that
// owns it.
//
// # Data Model
//
// A [Diagram] is an ordered list of [Shape] values (circle, square, diamond)
// and an ordered list of [Edge] values connecting them. Both serialize with
// the field names used by node/edge canvas libraries (id, type, position,
// data, style, source, target, markerEnd), so an exported diagram can be fed
// back to such a canvas unchanged.
//
// # Store
//
// [Store] is the single owner of the lists. Front ends mutate it through:
//
//   - [Store.AppendShape]: palette clicks
//   - [Store.ApplyShapeChanges] / [Store.ApplyEdgeChanges]: change batches
//     emitted by the canvas (drag, select, delete)
//   - [Store.Connect]: connect gestures
//   - [Store.UpdateShapeData] / [Store.UpdateEdgeData]: label commits
//
// Readers take deep copies with [Store.Snapshot].
//
// # Shape Ids
//
// Ids are numeric strings. [NextID] implements the last-element-plus-one
// rule; the store defaults to [IDMonotonic], which never hands out an id
// twice even after deletions:
//
//	s := diagram.NewStore()
//	a, _ := s.AppendShape(diagram.KindCircle) // "1"
//	b, _ := s.AppendShape(diagram.KindSquare) // "2"
//	s.ApplyShapeChanges([]diagram.ShapeChange{diagram.RemoveShape(b.ID)})
//	c, _ := s.AppendShape(diagram.KindDiamond) // "3", not "2"
//
// # Concurrency
//
// Store methods are safe for concurrent use. The package-level
// [ApplyShapeChanges] and [ApplyEdgeChanges] functions are pure.
package diagram
