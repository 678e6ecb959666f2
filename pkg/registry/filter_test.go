package registry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func filterFixture() *Registry {
	reg := New()
	for _, tpl := range []struct{ id, category, severity string }{
		{"h-low", "http", "low"},
		{"h-crit", "http", "critical"},
		{"d-low", "dns", "low"},
		{"d-crit", "dns", "Critical"},
	} {
		rec := newRecord(tpl.id, baseTime)
		rec.Category = tpl.category
		rec.Severity = tpl.severity
		reg.Merge(rec)
	}
	return reg
}

func ids(records []*Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.ID)
	}
	return out
}

func TestCriteria_CategoryAndSeverity(t *testing.T) {
	reg := filterFixture()

	tests := []struct {
		name     string
		criteria Criteria
		want     []string
	}{
		{
			name:     "no restriction",
			criteria: Criteria{},
			want:     []string{"d-crit", "d-low", "h-crit", "h-low"},
		},
		{
			name:     "category and severity",
			criteria: Criteria{Categories: []string{"http"}, Severities: []string{"critical"}},
			want:     []string{"h-crit"},
		},
		{
			name:     "case-insensitive",
			criteria: Criteria{Categories: []string{"DNS"}, Severities: []string{"critical"}},
			want:     []string{"d-crit"},
		},
		{
			name:     "severity only",
			criteria: Criteria{Severities: []string{"low"}},
			want:     []string{"d-low", "h-low"},
		},
		{
			name:     "several categories",
			criteria: Criteria{Categories: []string{"http", "dns"}},
			want:     []string{"d-crit", "d-low", "h-crit", "h-low"},
		},
		{
			name:     "no match",
			criteria: Criteria{Categories: []string{"network"}},
			want:     []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(reg.Filter(tt.criteria.Predicate())))
		})
	}
}

func TestCriteria_MaxAge(t *testing.T) {
	now := baseTime
	reg := New()

	fresh := newRecord("fresh", now)
	freshCreated := now.Add(-2 * time.Hour)
	fresh.CreatedAt = &freshCreated
	reg.Merge(fresh)

	stale := newRecord("stale", now)
	staleCreated := now.Add(-10 * time.Hour)
	stale.CreatedAt = &staleCreated
	reg.Merge(stale)

	edge := newRecord("edge", now)
	edgeCreated := now.Add(-8 * time.Hour)
	edge.CreatedAt = &edgeCreated
	reg.Merge(edge)

	unknown := newRecord("unknown", now)
	unknown.CreatedAt = nil
	reg.Merge(unknown)

	got := reg.Filter(Criteria{MaxAge: 8 * time.Hour, Now: now}.Predicate())
	assert.Equal(t, []string{"fresh"}, ids(got))

	got = reg.Filter(Criteria{Now: now}.Predicate())
	assert.Len(t, got, 4)
}

func TestParseList(t *testing.T) {
	assert.Equal(t, []string{"http", "dns"}, ParseList(" HTTP, dns ,,"))
	assert.Nil(t, ParseList(""))
}
