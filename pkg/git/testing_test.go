package git

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"mercator-hq/templatewatch/pkg/config"
)

// sourceRepo is a local repository used as the remote in tests.
type sourceRepo struct {
	t    *testing.T
	dir  string
	repo *gogit.Repository
}

// newSourceRepo initializes an empty repository on the "master" branch.
func newSourceRepo(t *testing.T) *sourceRepo {
	t.Helper()

	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("failed to init repo: %v", err)
	}
	return &sourceRepo{t: t, dir: dir, repo: repo}
}

// commit writes files, removes paths, and commits at the given time.
func (s *sourceRepo) commit(message string, when time.Time, files map[string]string, remove ...string) string {
	s.t.Helper()

	worktree, err := s.repo.Worktree()
	if err != nil {
		s.t.Fatalf("failed to get worktree: %v", err)
	}

	for name, content := range files {
		path := filepath.Join(s.dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			s.t.Fatalf("failed to create dir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			s.t.Fatalf("failed to write file: %v", err)
		}
		if _, err := worktree.Add(name); err != nil {
			s.t.Fatalf("failed to add file: %v", err)
		}
	}
	for _, name := range remove {
		if _, err := worktree.Remove(name); err != nil {
			s.t.Fatalf("failed to remove file: %v", err)
		}
	}

	sig := &object.Signature{Name: "Test User", Email: "test@example.com", When: when}
	hash, err := worktree.Commit(message, &gogit.CommitOptions{Author: sig, Committer: sig})
	if err != nil {
		s.t.Fatalf("failed to commit: %v", err)
	}
	return hash.String()
}

// checkout switches to branch, creating it at the commit from when create is set.
func (s *sourceRepo) checkout(branch, from string, create bool) {
	s.t.Helper()

	worktree, err := s.repo.Worktree()
	if err != nil {
		s.t.Fatalf("failed to get worktree: %v", err)
	}

	opts := &gogit.CheckoutOptions{Branch: plumbing.NewBranchReferenceName(branch)}
	if create {
		opts.Hash = plumbing.NewHash(from)
		opts.Create = true
	}
	if err := worktree.Checkout(opts); err != nil {
		s.t.Fatalf("failed to checkout %s: %v", branch, err)
	}
}

// merge records a merge commit of second into first on the current branch.
// files must bring the worktree to the merged tree.
func (s *sourceRepo) merge(message string, when time.Time, first, second string, files map[string]string) string {
	s.t.Helper()

	worktree, err := s.repo.Worktree()
	if err != nil {
		s.t.Fatalf("failed to get worktree: %v", err)
	}

	for name, content := range files {
		path := filepath.Join(s.dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			s.t.Fatalf("failed to create dir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			s.t.Fatalf("failed to write file: %v", err)
		}
		if _, err := worktree.Add(name); err != nil {
			s.t.Fatalf("failed to add file: %v", err)
		}
	}

	sig := &object.Signature{Name: "Test User", Email: "test@example.com", When: when}
	hash, err := worktree.Commit(message, &gogit.CommitOptions{
		Author:            sig,
		Committer:         sig,
		Parents:           []plumbing.Hash{plumbing.NewHash(first), plumbing.NewHash(second)},
		AllowEmptyCommits: true,
	})
	if err != nil {
		s.t.Fatalf("failed to commit merge: %v", err)
	}
	return hash.String()
}

// headOf returns the commit a branch points at.
func headOf(t *testing.T, s *sourceRepo, branch string) string {
	t.Helper()

	ref, err := s.repo.Reference(plumbing.NewBranchReferenceName(branch), true)
	if err != nil {
		t.Fatalf("failed to resolve %s: %v", branch, err)
	}
	return ref.Hash().String()
}

// mirrorConfig returns a repository config cloning src into a fresh directory.
func mirrorConfig(t *testing.T, src string) *config.RepositoryConfig {
	t.Helper()

	return &config.RepositoryConfig{
		URL:       src,
		Branch:    "master",
		LocalPath: filepath.Join(t.TempDir(), "mirror"),
		Timeout:   30 * time.Second,
	}
}

// syncedMirror clones src and returns the synchronized repository.
func syncedMirror(t *testing.T, src string) *Repository {
	t.Helper()

	repo, err := NewRepository(mirrorConfig(t, src))
	if err != nil {
		t.Fatalf("NewRepository() error = %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if err := repo.Sync(ctx); err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	return repo
}
