package export

import (
	"context"
	"encoding/csv"
	"io"
	"strings"
	"time"

	"mercator-hq/templatewatch/pkg/registry"
)

// CSVExporter writes records as CSV.
type CSVExporter struct {
	// IncludeHeader includes a header row with column names.
	IncludeHeader bool
}

// NewCSVExporter creates a new CSV exporter.
func NewCSVExporter(includeHeader bool) *CSVExporter {
	return &CSVExporter{
		IncludeHeader: includeHeader,
	}
}

// Export writes records to w in CSV format.
func (e *CSVExporter) Export(ctx context.Context, records []*registry.Record, w io.Writer) error {
	writer := csv.NewWriter(w)

	if e.IncludeHeader {
		if err := writer.Write(e.headerRow()); err != nil {
			return newExportError(FormatCSV, 0, err)
		}
	}

	for i, record := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := writer.Write(e.recordToRow(record)); err != nil {
			return newExportError(FormatCSV, i, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return newExportError(FormatCSV, len(records), err)
	}
	return nil
}

func (e *CSVExporter) headerRow() []string {
	return []string{
		"identifier", "path", "category", "severity", "description",
		"sourceUrl", "createdAt", "status", "committedAt",
		"name", "authors", "tags",
	}
}

func (e *CSVExporter) recordToRow(record *registry.Record) []string {
	createdAt := ""
	if record.CreatedAt != nil {
		createdAt = record.CreatedAt.UTC().Format(time.RFC3339)
	}
	committedAt := ""
	if !record.CommittedAt.IsZero() {
		committedAt = record.CommittedAt.UTC().Format(time.RFC3339)
	}

	return []string{
		record.ID,
		record.Path,
		record.Category,
		record.Severity,
		record.Description,
		record.SourceURL,
		createdAt,
		string(record.Status),
		committedAt,
		record.Name,
		strings.Join(record.Authors, ";"),
		strings.Join(record.Tags, ";"),
	}
}
