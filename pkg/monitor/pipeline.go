package monitor

import (
	"context"
	"errors"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"mercator-hq/templatewatch/pkg/history"
	"mercator-hq/templatewatch/pkg/registry"
	"mercator-hq/templatewatch/pkg/scanner"
	"mercator-hq/templatewatch/pkg/template"
)

// candidate is one changed path with the newest in-window commit touching it.
type candidate struct {
	path        string
	committedAt time.Time
}

// outcome is the extraction result for one candidate.
type outcome struct {
	candidate
	record *registry.Record
	err    error
}

// collectCandidates collapses the window's changes to one candidate per
// path, ordered by commit time and then path.
func collectCandidates(changes []scanner.CommitChanges) []candidate {
	newest := make(map[string]time.Time)
	for _, c := range changes {
		ts := c.Commit.Timestamp.UTC()
		for _, path := range c.Files {
			if prev, ok := newest[path]; !ok || ts.After(prev) {
				newest[path] = ts
			}
		}
	}

	cands := make([]candidate, 0, len(newest))
	for path, ts := range newest {
		cands = append(cands, candidate{path: path, committedAt: ts})
	}
	sort.Slice(cands, func(i, j int) bool {
		if !cands[i].committedAt.Equal(cands[j].committedAt) {
			return cands[i].committedAt.Before(cands[j].committedAt)
		}
		return cands[i].path < cands[j].path
	})
	return cands
}

// extractAll builds a record for every candidate on a bounded worker pool.
// Per-file failures are carried in the outcome; only cancellation fails the
// whole batch.
func (m *Monitor) extractAll(ctx context.Context, cands []candidate) ([]outcome, error) {
	outcomes := make([]outcome, len(cands))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.cfg.Workers)

	for i, c := range cands {
		i, c := i, c
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rec, err := m.buildRecord(gctx, c)
			outcomes[i] = outcome{candidate: c, record: rec, err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

// buildRecord reads, parses and classifies one file. A history lookup
// failure is not an error: the record gets no creation time and MODIFIED.
func (m *Monitor) buildRecord(ctx context.Context, c candidate) (*registry.Record, error) {
	content, err := m.source.ReadFile(c.path)
	if err != nil {
		return nil, err
	}

	meta, err := template.Extract(c.path, content)
	if err != nil {
		return nil, err
	}

	createdAt, status, err := m.resolver.Resolve(ctx, c.path)
	if err != nil {
		var lookupErr *history.LookupError
		if !errors.As(err, &lookupErr) {
			return nil, err
		}
		m.cfg.Metrics.RecordHistoryFailure()
		m.logger.WarnContext(ctx, "creation time unavailable", "path", c.path, "error", err)
	}

	return &registry.Record{
		ID:          meta.ID,
		Path:        c.path,
		Category:    template.Category(c.path),
		Severity:    meta.Severity,
		Description: meta.Description,
		Name:        meta.Name,
		Authors:     meta.Authors,
		Tags:        meta.Tags,
		SourceURL:   template.RawURL(m.cfg.RawURLBase, c.path),
		CreatedAt:   createdAt,
		Status:      status,
		CommittedAt: c.committedAt,
	}, nil
}

// mergeAll applies outcomes to reg in candidate order.
func (m *Monitor) mergeAll(ctx context.Context, reg *registry.Registry, outcomes []outcome, result *Result) {
	added := make(map[string]bool)
	updated := make(map[string]bool)

	for _, o := range outcomes {
		if o.err != nil {
			result.Skipped = append(result.Skipped, SkippedFile{Path: o.path, Err: o.err})
			m.cfg.Metrics.RecordFile("skipped")
			m.logger.WarnContext(ctx, "skipping file", "path", o.path, "error", o.err)
			continue
		}

		res := reg.Merge(o.record)
		m.cfg.Metrics.RecordFile(res.String())
		m.logger.DebugContext(ctx, "record merged",
			"identifier", o.record.ID,
			"path", o.path,
			"result", res.String(),
		)

		switch res {
		case registry.Inserted:
			added[o.record.ID] = true
		case registry.Replaced:
			if !added[o.record.ID] {
				updated[o.record.ID] = true
			}
		}
	}

	result.Added = sortedKeys(added)
	result.Updated = sortedKeys(updated)
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
