package registry

import (
	"strings"
	"time"
)

// Predicate selects records.
type Predicate func(*Record) bool

// Criteria is the standard output filter. Empty sets mean no restriction.
type Criteria struct {
	// Categories to include, compared case-insensitively.
	Categories []string

	// Severities to include, compared case-insensitively.
	Severities []string

	// MaxAge keeps records created less than MaxAge before Now. Records
	// without a creation time fail a non-zero MaxAge.
	MaxAge time.Duration

	// Now is the reference time for MaxAge; zero means time.Now.
	Now time.Time
}

// Predicate builds the filter function. The reference time is fixed when
// Predicate is called.
func (c Criteria) Predicate() Predicate {
	categories := toSet(c.Categories)
	severities := toSet(c.Severities)

	now := c.Now
	if now.IsZero() {
		now = time.Now()
	}

	return func(rec *Record) bool {
		if len(categories) > 0 && !categories[strings.ToLower(rec.Category)] {
			return false
		}
		if len(severities) > 0 && !severities[strings.ToLower(rec.Severity)] {
			return false
		}
		if c.MaxAge > 0 {
			if rec.CreatedAt == nil || now.Sub(*rec.CreatedAt) >= c.MaxAge {
				return false
			}
		}
		return true
	}
}

// ParseList splits a comma-separated flag value into lower-cased, trimmed,
// non-empty items.
func ParseList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.ToLower(strings.TrimSpace(item)); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		if item = strings.ToLower(strings.TrimSpace(item)); item != "" {
			set[item] = true
		}
	}
	return set
}
