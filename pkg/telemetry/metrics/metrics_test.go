package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"mercator-hq/templatewatch/pkg/config"
)

// TestCollector_Records tests that each recorder updates its metric.
func TestCollector_Records(t *testing.T) {
	c := NewCollector(&config.MetricsConfig{Enabled: true, Namespace: "tw"}, nil)

	c.RecordRun(ResultSuccess, 3*time.Second)
	c.RecordRun(ResultSyncError, time.Second)
	c.RecordSync(1500 * time.Millisecond)
	c.RecordCommits(4)
	c.RecordFile("inserted")
	c.RecordFile("inserted")
	c.RecordFile("skipped")
	c.RecordHistoryFailure()
	c.SetRegistrySize(42)

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{name: "success runs", got: testutil.ToFloat64(c.runsTotal.WithLabelValues(ResultSuccess)), want: 1},
		{name: "sync error runs", got: testutil.ToFloat64(c.runsTotal.WithLabelValues(ResultSyncError)), want: 1},
		{name: "last run duration", got: testutil.ToFloat64(c.lastRunDuration), want: 1},
		{name: "sync duration", got: testutil.ToFloat64(c.syncDuration), want: 1.5},
		{name: "commits", got: testutil.ToFloat64(c.commitsScanned), want: 4},
		{name: "inserted files", got: testutil.ToFloat64(c.filesTotal.WithLabelValues("inserted")), want: 2},
		{name: "skipped files", got: testutil.ToFloat64(c.filesTotal.WithLabelValues("skipped")), want: 1},
		{name: "history failures", got: testutil.ToFloat64(c.historyLookupFailures), want: 1},
		{name: "registry size", got: testutil.ToFloat64(c.registryRecords), want: 42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}

	if testutil.ToFloat64(c.lastSuccessTimestamp) == 0 {
		t.Error("last success timestamp not set")
	}
}

// TestCollector_Disabled tests that a disabled collector records nothing.
func TestCollector_Disabled(t *testing.T) {
	c := NewCollector(&config.MetricsConfig{Enabled: false}, nil)

	c.RecordRun(ResultSuccess, time.Second)
	c.RecordCommits(3)
	c.SetRegistrySize(7)

	if got := testutil.ToFloat64(c.commitsScanned); got != 0 {
		t.Errorf("commits = %v, want 0", got)
	}
	if got := testutil.ToFloat64(c.registryRecords); got != 0 {
		t.Errorf("registry records = %v, want 0", got)
	}

	path := filepath.Join(t.TempDir(), "tw.prom")
	if err := c.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile() error = %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("disabled collector should not write a textfile")
	}
}

// TestCollector_WriteTextfile tests the node-exporter output.
func TestCollector_WriteTextfile(t *testing.T) {
	c := NewCollector(&config.MetricsConfig{Enabled: true}, nil)
	c.RecordRun(ResultSuccess, 2*time.Second)
	c.SetRegistrySize(10)

	path := filepath.Join(t.TempDir(), "textfile", "templatewatch.prom")
	if err := c.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read textfile: %v", err)
	}

	for _, want := range []string{
		`templatewatch_runs_total{result="success"} 1`,
		`templatewatch_registry_records 10`,
		`templatewatch_last_run_duration_seconds 2`,
	} {
		if !strings.Contains(string(data), want) {
			t.Errorf("textfile missing %q:\n%s", want, data)
		}
	}
}

// TestCollector_NilConfig tests construction without configuration.
func TestCollector_NilConfig(t *testing.T) {
	c := NewCollector(nil, nil)
	if c.Registry() == nil {
		t.Fatal("Registry() returned nil")
	}
	c.RecordRun(ResultError, time.Second)
}
