package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/spf13/cobra"

	"mercator-hq/templatewatch/pkg/cli"
	"mercator-hq/templatewatch/pkg/config"
	"mercator-hq/templatewatch/pkg/git"
	"mercator-hq/templatewatch/pkg/registry"
	"mercator-hq/templatewatch/pkg/telemetry/metrics"
)

// initUpstream creates a repository with one commit per entry of commits.
func initUpstream(t *testing.T, commits []map[string]string, when []time.Time) string {
	t.Helper()

	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("PlainInit() error = %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree() error = %v", err)
	}

	for i, files := range commits {
		for name, content := range files {
			path := filepath.Join(dir, filepath.FromSlash(name))
			if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
				t.Fatal(err)
			}
			if err := os.WriteFile(path, []byte(content), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := wt.Add(name); err != nil {
				t.Fatalf("Add(%q) error = %v", name, err)
			}
		}
		sig := &object.Signature{Name: "Template Bot", Email: "bot@example.com", When: when[i]}
		if _, err := wt.Commit(fmt.Sprintf("commit %d", i), &gogit.CommitOptions{Author: sig, Committer: sig}); err != nil {
			t.Fatalf("Commit() error = %v", err)
		}
	}
	return dir
}

func writeSettings(t *testing.T, upstream string) (settings, workDir string) {
	t.Helper()

	workDir = t.TempDir()
	settings = filepath.Join(workDir, "settings.yml")
	content := fmt.Sprintf(`repository:
  url: %s
  local_path: %s
  branch: master
  timeout: 30s
cache_file: %s
telemetry:
  logging:
    level: error
  metrics:
    enabled: true
    textfile_path: %s
`, upstream, filepath.Join(workDir, "mirror"), filepath.Join(workDir, "cache.json"), filepath.Join(workDir, "metrics.prom"))

	if err := os.WriteFile(settings, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write settings: %v", err)
	}
	return settings, workDir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return buf.String(), err
}

func TestScanCommand(t *testing.T) {
	now := time.Now().UTC()
	upstream := initUpstream(t,
		[]map[string]string{
			{"dns/old-takeover.yaml": "id: old-takeover\ninfo:\n  severity: low\n"},
			{
				"http/cves/2024/CVE-2024-0001.yaml": "id: CVE-2024-0001\ninfo:\n  name: Example RCE\n  severity: critical\n  description: Remote code execution.\n",
				"dns/fresh-takeover.yaml":           "id: fresh-takeover\ninfo:\n  severity: high\n",
			},
		},
		[]time.Time{now.Add(-48 * time.Hour), now.Add(-1 * time.Hour)},
	)
	settings, workDir := writeSettings(t, upstream)
	outFile := filepath.Join(workDir, "out.jsonl")

	output, err := execute(t, "scan", "--config", settings, "--no-color",
		"--hours", "8", "--severity", "Critical,high", "--category", "http", "--output", outFile)
	if err != nil {
		t.Fatalf("scan failed: %v\n%s", err, output)
	}
	if !strings.Contains(output, "CVE-2024-0001") {
		t.Errorf("summary does not list the matching template:\n%s", output)
	}
	for _, want := range []string{"Mirror head:", "Clone time:"} {
		if !strings.Contains(output, want) {
			t.Errorf("summary missing %q:\n%s", want, output)
		}
	}
	if strings.Contains(output, "fresh-takeover") {
		t.Errorf("summary lists a template outside the category filter:\n%s", output)
	}

	f, err := os.Open(outFile)
	if err != nil {
		t.Fatalf("output file not written: %v", err)
	}
	defer f.Close()

	var records []registry.Record
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var rec registry.Record
		if err := json.Unmarshal(sc.Bytes(), &rec); err != nil {
			t.Fatalf("invalid JSON line %q: %v", sc.Text(), err)
		}
		records = append(records, rec)
	}
	if len(records) != 1 {
		t.Fatalf("got %d output records, want 1", len(records))
	}
	rec := records[0]
	if rec.ID != "CVE-2024-0001" || rec.Category != "http" || rec.Severity != "critical" {
		t.Errorf("unexpected record %+v", rec)
	}
	if rec.SourceURL != config.DefaultRawURLBase+"/http/cves/2024/CVE-2024-0001.yaml" {
		t.Errorf("SourceURL = %q", rec.SourceURL)
	}

	cache, err := os.ReadFile(filepath.Join(workDir, "cache.json"))
	if err != nil {
		t.Fatalf("cache not written: %v", err)
	}
	if !strings.Contains(string(cache), "fresh-takeover") {
		t.Error("cache should hold every template found in the window")
	}
	if strings.Contains(string(cache), "old-takeover") {
		t.Error("cache should not hold templates outside the window")
	}

	prom, err := os.ReadFile(filepath.Join(workDir, "metrics.prom"))
	if err != nil {
		t.Fatalf("metrics textfile not written: %v", err)
	}
	if !strings.Contains(string(prom), `templatewatch_runs_total{result="success"} 1`) {
		t.Errorf("metrics textfile missing successful run:\n%s", prom)
	}

	output, err = execute(t, "cache", "--config", settings, "--no-color")
	if err != nil {
		t.Fatalf("cache failed: %v\n%s", err, output)
	}
	for _, want := range []string{"Templates:", "2", "dns", "http", "NEW"} {
		if !strings.Contains(output, want) {
			t.Errorf("cache output missing %q:\n%s", want, output)
		}
	}
}

func TestScanCommand_SyncFailure(t *testing.T) {
	settings, workDir := writeSettings(t, filepath.Join(t.TempDir(), "missing"))

	_, err := execute(t, "scan", "--config", settings, "--no-color", "--hours", "8", "--output", "")
	if err == nil {
		t.Fatal("expected error for unreachable repository")
	}

	var syncErr *git.SyncError
	if !errors.As(err, &syncErr) {
		t.Errorf("error = %v, want *git.SyncError", err)
	}
	if cli.ExitCode(err) != 1 {
		t.Errorf("ExitCode() = %d, want 1", cli.ExitCode(err))
	}
	if _, statErr := os.Stat(filepath.Join(workDir, "cache.json")); !os.IsNotExist(statErr) {
		t.Error("cache must not be written when synchronization fails")
	}
}

func TestScanCommand_InvalidHours(t *testing.T) {
	settings, _ := writeSettings(t, t.TempDir())

	_, err := execute(t, "scan", "--config", settings, "--hours", "0", "--output", "")
	var cfgErr *cli.ConfigError
	if !errors.As(err, &cfgErr) || cfgErr.Field != "hours" {
		t.Errorf("error = %v, want ConfigError for hours", err)
	}
}

func TestLoadSettings(t *testing.T) {
	origCfgFile := cfgFile
	t.Cleanup(func() { cfgFile = origCfgFile })

	newCmd := func() *cobra.Command {
		cmd := &cobra.Command{}
		cmd.Flags().StringVarP(&cfgFile, "config", "c", filepath.Join(t.TempDir(), config.DefaultSettingsFile), "")
		return cmd
	}

	t.Run("missing default file uses defaults", func(t *testing.T) {
		cfg, err := loadSettings(newCmd())
		if err != nil {
			t.Fatalf("loadSettings() error = %v", err)
		}
		if cfg.Repository.URL != config.DefaultRepositoryURL {
			t.Errorf("Repository.URL = %q, want default", cfg.Repository.URL)
		}
	})

	t.Run("missing explicit file fails", func(t *testing.T) {
		cmd := newCmd()
		if err := cmd.Flags().Set("config", filepath.Join(t.TempDir(), "nope.yml")); err != nil {
			t.Fatal(err)
		}
		_, err := loadSettings(cmd)
		var cfgErr *cli.ConfigError
		if !errors.As(err, &cfgErr) {
			t.Errorf("error = %v, want *cli.ConfigError", err)
		}
	})
}

func TestRunResult(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"sync", fmt.Errorf("wrapped: %w", &git.SyncError{Operation: "fetch", Cause: errors.New("x")}), metrics.ResultSyncError},
		{"persistence", &registry.PersistenceError{Operation: "save", Cause: errors.New("x")}, metrics.ResultPersistenceError},
		{"other", errors.New("boom"), metrics.ResultError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := runResult(tt.err); got != tt.want {
				t.Errorf("runResult() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLockPath(t *testing.T) {
	dir := t.TempDir()
	mirror := filepath.Join(dir, "mirror")
	want := mirror + ".lock"

	tests := []struct {
		name      string
		localPath string
	}{
		{"plain", mirror},
		{"trailing slash", mirror + string(filepath.Separator)},
		{"dot segment", filepath.Join(dir, ".", "mirror") + string(filepath.Separator) + "."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := lockPath(tt.localPath); got != want {
				t.Errorf("lockPath(%q) = %q, want %q", tt.localPath, got, want)
			}
		})
	}
}

func TestScanCommand_LockOutsideMirror(t *testing.T) {
	now := time.Now().UTC()
	upstream := initUpstream(t,
		[]map[string]string{{"http/a.yaml": "id: a\n"}},
		[]time.Time{now.Add(-time.Hour)},
	)

	workDir := t.TempDir()
	mirror := filepath.Join(workDir, "mirror")
	settings := filepath.Join(workDir, "settings.yml")
	content := fmt.Sprintf("repository:\n  url: %s\n  local_path: %s/\n  branch: master\ncache_file: %s\ntelemetry:\n  logging:\n    level: error\n",
		upstream, mirror, filepath.Join(workDir, "cache.json"))
	if err := os.WriteFile(settings, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	if output, err := execute(t, "scan", "--config", settings, "--no-color", "--hours", "8", "--output", ""); err != nil {
		t.Fatalf("scan failed: %v\n%s", err, output)
	}

	if _, err := os.Stat(filepath.Join(mirror, ".lock")); !os.IsNotExist(err) {
		t.Error("lock file left inside the mirror worktree")
	}
	if _, err := os.Stat(filepath.Join(workDir, "mirror.lock")); !os.IsNotExist(err) {
		t.Error("lock file not released after scan")
	}
}

func TestSortedByCount(t *testing.T) {
	got := sortedByCount(map[string]int{"http": 3, "dns": 1, "network": 3, "ssl": 2})
	want := []string{"http", "network", "ssl", "dns"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("sortedByCount() = %v, want %v", got, want)
	}
}
