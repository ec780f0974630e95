package io

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/matzehuels/flowchart/pkg/diagram"
	"github.com/matzehuels/flowchart/pkg/errors"
	"github.com/matzehuels/flowchart/pkg/observability"
)

// Filename is the fixed name of the export file.
const Filename = "aira.drawio"

// ContentType is the media type the export is served with.
const ContentType = "text/plain"

// FormatJSON names the export format in observability events.
const FormatJSON = "json"

// Disposition returns the Content-Disposition header for downloading the
// export as name.
func Disposition(name string) string {
	return fmt.Sprintf("attachment; filename=%q", name)
}

// Marshal encodes d as a compact JSON body. Nil lists are written as [].
func Marshal(d diagram.Diagram) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(d.Clone()); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// WriteJSON encodes d and writes it to w.
func WriteJSON(d diagram.Diagram, w io.Writer) error {
	data, err := Marshal(d)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// ExportJSON writes d to the file at path.
func ExportJSON(d diagram.Diagram, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteJSON(d, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Export writes d to dir/[Filename] and returns the path written.
func Export(ctx context.Context, d diagram.Diagram, dir string) (string, error) {
	return ExportAs(ctx, d, dir, Filename)
}

// ExportAs writes d to dir/name. name must be a plain file name.
func ExportAs(ctx context.Context, d diagram.Diagram, dir, name string) (path string, err error) {
	start := time.Now()
	size := 0
	defer func() {
		observability.Export().OnExport(ctx, FormatJSON, size, time.Since(start), err)
	}()

	if err := errors.ValidateFilename(name); err != nil {
		return "", err
	}
	data, err := Marshal(d)
	if err != nil {
		return "", err
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create dir %s: %w", dir, err)
	}
	path = filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	size = len(data)
	return path, nil
}
