package export

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"mercator-hq/templatewatch/pkg/registry"
)

// Supported formats.
const (
	FormatJSONL = "jsonl"
	FormatCSV   = "csv"
)

// Exporter writes records to a writer.
type Exporter interface {
	Export(ctx context.Context, records []*registry.Record, w io.Writer) error
}

// New returns the exporter for format. An empty format means jsonl.
func New(format string) (Exporter, error) {
	switch strings.ToLower(format) {
	case "", FormatJSONL, "ndjson":
		return NewJSONLExporter(), nil
	case FormatCSV:
		return NewCSVExporter(true), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// WriteFile creates (or truncates) path and exports records into it.
func WriteFile(ctx context.Context, path string, exporter Exporter, records []*registry.Record) (err error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close output file: %w", cerr)
		}
	}()

	return exporter.Export(ctx, records, f)
}
