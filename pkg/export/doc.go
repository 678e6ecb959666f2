// Package export writes template records to output files.
//
// # Formats
//
//   - jsonl: one JSON object per record per line (the default)
//   - csv: header row plus one row per record
//
// JSON Lines output is append-friendly and can be consumed line by line:
//
//	exporter, _ := export.New(export.FormatJSONL)
//	err := export.WriteFile(ctx, "new-templates.jsonl", exporter, records)
package export
