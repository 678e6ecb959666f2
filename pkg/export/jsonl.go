package export

import (
	"context"
	"encoding/json"
	"io"

	"mercator-hq/templatewatch/pkg/registry"
)

// JSONLExporter writes newline-delimited JSON.
type JSONLExporter struct{}

// NewJSONLExporter creates a new JSON Lines exporter.
func NewJSONLExporter() *JSONLExporter {
	return &JSONLExporter{}
}

// Export writes one JSON object per record, each terminated by a newline.
// No records produce no output.
func (e *JSONLExporter) Export(ctx context.Context, records []*registry.Record, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	for i, record := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := enc.Encode(record); err != nil {
			return newExportError(FormatJSONL, i, err)
		}
	}
	return nil
}
