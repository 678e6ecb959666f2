// Package scanner lists the rule files changed by commits inside a trailing
// time window.
package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"mercator-hq/templatewatch/pkg/git"
)

// DefaultExtensions are the rule-file extensions scanned when none are given.
var DefaultExtensions = []string{".yaml"}

// Source is the part of the repository the scanner needs.
type Source interface {
	CommitsBetween(ctx context.Context, start, end time.Time) ([]git.CommitInfo, error)
	ChangedFiles(ctx context.Context, sha string) ([]string, error)
}

// CommitChanges is one commit and the rule files it added or modified.
type CommitChanges struct {
	Commit git.CommitInfo
	Files  []string
}

// Scanner enumerates commit-window changes.
type Scanner struct {
	source     Source
	extensions []string
	now        func() time.Time
	logger     *slog.Logger
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithExtensions restricts scanned files to the given extensions.
func WithExtensions(exts ...string) Option {
	return func(s *Scanner) {
		if len(exts) > 0 {
			s.extensions = exts
		}
	}
}

// WithClock replaces the wall clock used to compute the window end.
func WithClock(now func() time.Time) Option {
	return func(s *Scanner) {
		s.now = now
	}
}

// New creates a scanner over source.
func New(source Source, opts ...Option) *Scanner {
	s := &Scanner{
		source:     source,
		extensions: DefaultExtensions,
		now:        time.Now,
		logger:     slog.Default().With("component", "scanner"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Window returns the inclusive [now-window, now] bounds in UTC.
func (s *Scanner) Window(window time.Duration) (time.Time, time.Time) {
	end := s.now().UTC()
	return end.Add(-window), end
}

// Scan returns the commits inside the trailing window together with their
// changed rule files. Commits that change no rule file are omitted. Commit
// order is whatever the source returns.
func (s *Scanner) Scan(ctx context.Context, window time.Duration) ([]CommitChanges, error) {
	if window <= 0 {
		return nil, fmt.Errorf("window must be positive, got %s", window)
	}

	start, end := s.Window(window)

	commits, err := s.source.CommitsBetween(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list commits: %w", err)
	}

	s.logger.Debug("commits in window",
		"start", start.Format(time.RFC3339),
		"end", end.Format(time.RFC3339),
		"count", len(commits),
	)

	var changes []CommitChanges
	for _, commit := range commits {
		files, err := s.source.ChangedFiles(ctx, commit.SHA)
		if err != nil {
			return nil, fmt.Errorf("failed to list changes of %s: %w", commit.SHA, err)
		}

		var rules []string
		for _, f := range files {
			if s.IsRuleFile(f) {
				rules = append(rules, f)
			}
		}
		if len(rules) == 0 {
			continue
		}
		changes = append(changes, CommitChanges{Commit: commit, Files: rules})
	}

	return changes, nil
}

// IsRuleFile reports whether path carries one of the scanned extensions.
func (s *Scanner) IsRuleFile(path string) bool {
	for _, ext := range s.extensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}
