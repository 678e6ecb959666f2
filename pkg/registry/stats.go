package registry

import "time"

// Stats summarizes the registry contents.
type Stats struct {
	Total        int
	ByCategory   map[string]int
	BySeverity   map[string]int
	ByStatus     map[string]int
	NoCreatedAt  int
	LatestCommit time.Time
}

// Stats computes counts over all records.
func (r *Registry) Stats() Stats {
	s := Stats{
		Total:      len(r.records),
		ByCategory: make(map[string]int),
		BySeverity: make(map[string]int),
		ByStatus:   make(map[string]int),
	}
	for _, rec := range r.records {
		s.ByCategory[rec.Category]++
		s.BySeverity[rec.Severity]++
		s.ByStatus[string(rec.Status)]++
		if rec.CreatedAt == nil {
			s.NoCreatedAt++
		}
		if rec.CommittedAt.After(s.LatestCommit) {
			s.LatestCommit = rec.CommittedAt
		}
	}
	return s
}
