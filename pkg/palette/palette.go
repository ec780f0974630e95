// Package palette is the add-shape panel: one action per shape kind, each
// appending a new shape to the store. It has no state of its own.
package palette

import "github.com/matzehuels/flowchart/pkg/diagram"

// Appender is the store operation the palette drives.
type Appender interface {
	AppendShape(kind diagram.Kind) (diagram.Shape, error)
}

// AddCircle appends a circle.
func AddCircle(a Appender) (diagram.Shape, error) { return a.AppendShape(diagram.KindCircle) }

// AddSquare appends a square.
func AddSquare(a Appender) (diagram.Shape, error) { return a.AppendShape(diagram.KindSquare) }

// AddDiamond appends a diamond.
func AddDiamond(a Appender) (diagram.Shape, error) { return a.AppendShape(diagram.KindDiamond) }

// Entry describes one palette button.
type Entry struct {
	Kind  diagram.Kind `json:"kind"`
	Key   string       `json:"key"`   // terminal key binding
	Glyph string       `json:"glyph"` // terminal glyph
	Icon  string       `json:"icon"`  // 16x16 SVG path data

	// Add appends a shape of Kind.
	Add func(Appender) (diagram.Shape, error) `json:"-"`
}

var entries = []Entry{
	{
		Kind:  diagram.KindDiamond,
		Key:   "d",
		Glyph: "◇",
		Icon:  "M6.95 0.435c0.58 -0.58 1.52 -0.58 2.1 0l6.515 6.516c0.58 0.58 0.58 1.519 0 2.098L9.05 15.565c-0.58 0.58 -1.519 0.58 -2.098 0L0.435 9.05a1.48 1.48 0 0 1 0 -2.098zm1.4 0.7a0.495 0.495 0 0 0 -0.7 0L1.134 7.65a0.495 0.495 0 0 0 0 0.7l6.516 6.516a0.495 0.495 0 0 0 0.7 0l6.516 -6.516a0.495 0.495 0 0 0 0 -0.7L8.35 1.134z",
		Add:   AddDiamond,
	},
	{
		Kind:  diagram.KindSquare,
		Key:   "s",
		Glyph: "□",
		Icon:  "M14 1a1 1 0 0 1 1 1v12a1 1 0 0 1 -1 1H2a1 1 0 0 1 -1 -1V2a1 1 0 0 1 1 -1zM2 0a2 2 0 0 0 -2 2v12a2 2 0 0 0 2 2h12a2 2 0 0 0 2 -2V2a2 2 0 0 0 -2 -2z",
		Add:   AddSquare,
	},
	{
		Kind:  diagram.KindCircle,
		Key:   "c",
		Glyph: "○",
		Icon:  "M8 15A7 7 0 1 1 8 1a7 7 0 0 1 0 14m0 1A8 8 0 1 0 8 0a8 8 0 0 0 0 16",
		Add:   AddCircle,
	},
}

// Entries returns the palette buttons in display order.
func Entries() []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out
}

// ByKey returns the entry bound to key.
func ByKey(key string) (Entry, bool) {
	for _, e := range entries {
		if e.Key == key {
			return e, true
		}
	}
	return Entry{}, false
}

// ByKind returns the entry for kind k.
func ByKind(k diagram.Kind) (Entry, bool) {
	for _, e := range entries {
		if e.Kind == k {
			return e, true
		}
	}
	return Entry{}, false
}
