package registry

import (
	"context"
	"log/slog"
	"sort"
)

// MergeResult tells what Merge did with a record.
type MergeResult int

const (
	// Inserted means the identifier was new.
	Inserted MergeResult = iota

	// Replaced means the record had a strictly newer commit time.
	Replaced

	// Discarded means an existing record was kept.
	Discarded
)

// String returns the lower-case name of the result.
func (m MergeResult) String() string {
	switch m {
	case Inserted:
		return "inserted"
	case Replaced:
		return "replaced"
	case Discarded:
		return "discarded"
	default:
		return "unknown"
	}
}

// Registry is the in-memory identifier to record map. It is not safe for
// concurrent use; a run merges records from a single goroutine.
type Registry struct {
	records map[string]*Record
	logger  *slog.Logger
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		records: make(map[string]*Record),
		logger:  slog.Default().With("component", "registry"),
	}
}

// Len returns the number of records.
func (r *Registry) Len() int {
	return len(r.records)
}

// Get returns a copy of the record with the given identifier.
func (r *Registry) Get(id string) (*Record, bool) {
	rec, ok := r.records[id]
	if !ok {
		return nil, false
	}
	return rec.Clone(), true
}

// Merge adds rec under the most-recent-commit-wins rule. The registry keeps
// its own copy of rec.
func (r *Registry) Merge(rec *Record) MergeResult {
	existing, ok := r.records[rec.ID]
	if ok && !rec.CommittedAt.After(existing.CommittedAt) {
		return Discarded
	}

	c := rec.Clone()
	c.normalize()
	r.records[rec.ID] = c

	if ok {
		return Replaced
	}
	return Inserted
}

// Records returns copies of all records sorted by identifier.
func (r *Registry) Records() []*Record {
	return r.Filter(nil)
}

// Filter returns copies of the records matching pred, sorted by identifier.
// A nil predicate matches everything. The registry is not modified.
func (r *Registry) Filter(pred Predicate) []*Record {
	out := make([]*Record, 0, len(r.records))
	for _, rec := range r.records {
		if pred == nil || pred(rec) {
			out = append(out, rec.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})
	return out
}

// Load replaces the registry contents with the records held by store. A
// missing or empty store yields an empty registry. On failure the registry
// is left empty and a *PersistenceError is returned; callers may continue.
func (r *Registry) Load(ctx context.Context, store Store) error {
	r.records = make(map[string]*Record)

	records, err := store.Load(ctx)
	if err != nil {
		return newPersistenceError(store, "load", err)
	}

	for _, rec := range records {
		if rec == nil || rec.ID == "" {
			continue
		}
		r.Merge(rec)
	}

	r.logger.Debug("registry loaded",
		"backend", store.Backend(),
		"location", store.Location(),
		"records", len(r.records),
	)
	return nil
}

// Save writes every record to store. An empty registry is never written so
// that a failed scan cannot wipe a populated cache.
func (r *Registry) Save(ctx context.Context, store Store) error {
	if len(r.records) == 0 {
		r.logger.Info("nothing to save", "location", store.Location())
		return nil
	}

	if err := store.Save(ctx, r.Records()); err != nil {
		return newPersistenceError(store, "save", err)
	}

	r.logger.Debug("registry saved",
		"backend", store.Backend(),
		"location", store.Location(),
		"records", len(r.records),
	)
	return nil
}
