package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/flowchart/pkg/diagram"
	"github.com/matzehuels/flowchart/pkg/errors"
)

// ReadJSON decodes an export body from r.
//
// Every shape must have a non-empty id, a known kind and an id not used by
// another shape; edge ids must be unique and non-empty. Missing arrays
// decode as empty lists. ReadJSON does not close r.
func ReadJSON(r io.Reader) (diagram.Diagram, error) {
	var d diagram.Diagram
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return diagram.Diagram{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode diagram")
	}
	if err := validate(d); err != nil {
		return diagram.Diagram{}, err
	}
	return d.Clone(), nil
}

// ImportJSON reads the export file at path.
func ImportJSON(path string) (diagram.Diagram, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return diagram.Diagram{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return diagram.Diagram{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}

func validate(d diagram.Diagram) error {
	shapes := make(map[string]bool, len(d.Shapes))
	for i, s := range d.Shapes {
		if s.ID == "" {
			return errors.New(errors.ErrCodeInvalidFormat, "shape %d: missing id", i)
		}
		if shapes[s.ID] {
			return errors.New(errors.ErrCodeInvalidFormat, "shape %s: duplicate id", s.ID)
		}
		shapes[s.ID] = true
		if _, err := diagram.ParseKind(string(s.Kind)); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidFormat, err, "shape %s", s.ID)
		}
	}

	edges := make(map[string]bool, len(d.Edges))
	for i, e := range d.Edges {
		if e.ID == "" {
			return errors.New(errors.ErrCodeInvalidFormat, "edge %d: missing id", i)
		}
		if edges[e.ID] {
			return errors.New(errors.ErrCodeInvalidFormat, "edge %s: duplicate id", e.ID)
		}
		edges[e.ID] = true
	}
	return nil
}
