package history

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"mercator-hq/templatewatch/pkg/git"
)

// Status classifies a rule file at discovery time.
type Status string

const (
	// StatusNew marks a file introduced by its only commit.
	StatusNew Status = "NEW"

	// StatusModified marks a file with more than one commit, or whose
	// history could not be determined.
	StatusModified Status = "MODIFIED"
)

// Source lists the commits touching a path, newest first.
type Source interface {
	FileHistory(ctx context.Context, path string) ([]git.CommitInfo, error)
}

// LookupError reports a failed history query for one path.
type LookupError struct {
	Path  string
	Cause error
}

// Error implements the error interface.
func (e *LookupError) Error() string {
	return fmt.Sprintf("history lookup failed for %q: %v", e.Path, e.Cause)
}

// Unwrap implements the errors.Unwrap interface for error chain support.
func (e *LookupError) Unwrap() error {
	return e.Cause
}

// Resolver answers creation-time and classification queries.
type Resolver struct {
	source Source
	logger *slog.Logger
}

// NewResolver creates a resolver over source.
func NewResolver(source Source) *Resolver {
	return &Resolver{
		source: source,
		logger: slog.Default().With("component", "history.resolver"),
	}
}

// FirstAppearance returns the commit time of the oldest commit touching
// path, or nil when no commit does.
func (r *Resolver) FirstAppearance(ctx context.Context, path string) (*time.Time, error) {
	commits, err := r.lookup(ctx, path)
	if err != nil {
		return nil, err
	}
	return firstAppearance(commits), nil
}

// Classify returns StatusNew iff exactly one commit touches path. A failed
// lookup returns StatusModified together with the error.
func (r *Resolver) Classify(ctx context.Context, path string) (Status, error) {
	commits, err := r.lookup(ctx, path)
	if err != nil {
		return StatusModified, err
	}
	return classify(commits), nil
}

// Resolve answers both queries with a single history lookup. On failure it
// returns a nil time, StatusModified and a *LookupError.
func (r *Resolver) Resolve(ctx context.Context, path string) (*time.Time, Status, error) {
	commits, err := r.lookup(ctx, path)
	if err != nil {
		r.logger.Debug("history lookup failed", "path", path, "error", err)
		return nil, StatusModified, err
	}
	return firstAppearance(commits), classify(commits), nil
}

func (r *Resolver) lookup(ctx context.Context, path string) ([]git.CommitInfo, error) {
	commits, err := r.source.FileHistory(ctx, path)
	if err != nil {
		return nil, &LookupError{Path: path, Cause: err}
	}
	return commits, nil
}

func firstAppearance(commits []git.CommitInfo) *time.Time {
	if len(commits) == 0 {
		return nil
	}
	created := commits[len(commits)-1].Timestamp.UTC()
	return &created
}

func classify(commits []git.CommitInfo) Status {
	if len(commits) == 1 {
		return StatusNew
	}
	return StatusModified
}
