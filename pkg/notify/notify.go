package notify

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"mercator-hq/templatewatch/pkg/registry"
)

// MaxMessageLength is the longest text a single Telegram message may carry.
const MaxMessageLength = 4096

// Sink sends a text message to a destination.
type Sink interface {
	Send(ctx context.Context, destination, text string) error
}

// SendError reports a failed delivery.
type SendError struct {
	Sink        string
	Destination string
	StatusCode  int
	Message     string
	Cause       error
}

// Error implements the error interface.
func (e *SendError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s delivery to %q failed (status %d): %s", e.Sink, e.Destination, e.StatusCode, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s delivery to %q failed: %v", e.Sink, e.Destination, e.Cause)
	}
	return fmt.Sprintf("%s delivery to %q failed: %s", e.Sink, e.Destination, e.Message)
}

// Unwrap returns the underlying cause error.
func (e *SendError) Unwrap() error {
	return e.Cause
}

// FormatRecords renders one line per record and splits the result into
// messages of at most limit characters. A single line longer than limit is
// truncated. Lengths are counted in runes, never splitting a character.
func FormatRecords(records []*registry.Record, limit int) []string {
	if len(records) == 0 {
		return nil
	}
	if limit <= 0 {
		limit = MaxMessageLength
	}

	var messages []string
	var b strings.Builder
	size := 0

	add := func(line string) {
		line = truncate(line, limit)
		n := utf8.RuneCountInString(line)
		if size > 0 && size+1+n > limit {
			messages = append(messages, b.String())
			b.Reset()
			size = 0
		}
		if size > 0 {
			b.WriteByte('\n')
			size++
		}
		b.WriteString(line)
		size += n
	}

	add(fmt.Sprintf("%d new template(s):", len(records)))
	for _, rec := range records {
		line := fmt.Sprintf("[%s] %s (%s)", strings.ToUpper(rec.Severity), rec.ID, rec.Category)
		if rec.Name != "" {
			line += " " + rec.Name
		}
		add(line + " " + rec.SourceURL)
	}

	if size > 0 {
		messages = append(messages, b.String())
	}
	return messages
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// SendRecords formats records and sends every resulting message. It stops
// at the first failed send.
func SendRecords(ctx context.Context, sink Sink, destination string, records []*registry.Record) (int, error) {
	sent := 0
	for _, msg := range FormatRecords(records, MaxMessageLength) {
		if err := sink.Send(ctx, destination, msg); err != nil {
			return sent, err
		}
		sent++
	}
	return sent, nil
}
