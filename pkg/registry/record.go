package registry

import (
	"time"

	"mercator-hq/templatewatch/pkg/history"
)

// Record describes one rule file.
type Record struct {
	// ID is the unique identifier: the embedded id or the file base name.
	ID string `json:"identifier"`

	// Path is slash-separated and relative to the repository root.
	Path string `json:"path"`

	Category    string `json:"category"`
	Severity    string `json:"severity"`
	Description string `json:"description"`

	// Name, Authors and Tags come from the info block and may be empty.
	Name    string   `json:"name,omitempty"`
	Authors []string `json:"authors,omitempty"`
	Tags    []string `json:"tags,omitempty"`

	// SourceURL is the raw-content URL of the file.
	SourceURL string `json:"sourceUrl"`

	// CreatedAt is the time of the file's first commit, nil when the
	// history lookup failed or found nothing.
	CreatedAt *time.Time `json:"createdAt"`

	// Status is the classification at discovery time.
	Status history.Status `json:"status"`

	// CommittedAt is the time of the newest scanned commit that touched the
	// file. It decides which record wins a merge.
	CommittedAt time.Time `json:"committedAt"`
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	c := *r
	if r.CreatedAt != nil {
		created := *r.CreatedAt
		c.CreatedAt = &created
	}
	c.Authors = cloneStrings(r.Authors)
	c.Tags = cloneStrings(r.Tags)
	return &c
}

// normalize converts timestamps to UTC.
func (r *Record) normalize() {
	if r.CreatedAt != nil {
		created := r.CreatedAt.UTC()
		r.CreatedAt = &created
	}
	r.CommittedAt = r.CommittedAt.UTC()
	r.Authors = cloneStrings(r.Authors)
	r.Tags = cloneStrings(r.Tags)
}

// cloneStrings copies s, mapping empty slices to nil.
func cloneStrings(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	return append([]string(nil), s...)
}
