package git

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
	"github.com/go-git/go-git/v5/plumbing/transport"

	"mercator-hq/templatewatch/pkg/config"
)

// Repository manages the local mirror of the template repository.
// Object access through go-git is serialized by mu.
type Repository struct {
	config  *config.RepositoryConfig
	auth    transport.AuthMethod
	repo    *gogit.Repository
	mu      sync.Mutex
	metrics *RepositoryMetrics
	logger  *slog.Logger
}

// NewRepository creates a new mirror manager.
// The config parameter must be non-nil and name a URL, branch and local path.
// Returns an error if authentication cannot be set up.
func NewRepository(cfg *config.RepositoryConfig) (*Repository, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	if cfg.URL == "" {
		return nil, fmt.Errorf("repository URL cannot be empty")
	}

	if cfg.Branch == "" {
		return nil, fmt.Errorf("branch cannot be empty")
	}

	if cfg.LocalPath == "" {
		return nil, fmt.Errorf("local path cannot be empty")
	}

	auth, err := NewAuthMethod(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth method: %w", err)
	}

	return &Repository{
		config:  cfg,
		auth:    auth,
		metrics: &RepositoryMetrics{},
		logger:  slog.Default().With("component", "git.repository"),
	}, nil
}

// Sync brings the mirror up to date: it clones the repository when the local
// path holds no repository yet, otherwise it fetches and fast-forwards the
// tracked branch. Any failure is returned as a *SyncError.
func (r *Repository) Sync(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	gitDir := filepath.Join(r.config.LocalPath, ".git")
	if _, err := os.Stat(gitDir); errors.Is(err, os.ErrNotExist) {
		return r.clone(ctx)
	}
	return r.fetch(ctx)
}

func (r *Repository) clone(ctx context.Context) error {
	start := time.Now()

	if err := os.MkdirAll(r.config.LocalPath, 0755); err != nil {
		return r.syncError("clone", fmt.Errorf("failed to create mirror directory: %w", err))
	}

	cloneCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	r.logger.Info("cloning repository", "url", r.config.URL, "path", r.config.LocalPath)

	// Full history is required for creation-time lookups, so never shallow.
	repo, err := gogit.PlainCloneContext(cloneCtx, r.config.LocalPath, false, &gogit.CloneOptions{
		URL:           r.config.URL,
		ReferenceName: plumbing.NewBranchReferenceName(r.config.Branch),
		SingleBranch:  true,
		Auth:          r.auth,
	})
	if err != nil {
		return r.syncError("clone", err)
	}

	r.repo = repo
	r.metrics.Cloned = true
	r.metrics.CloneDuration = time.Since(start)
	return r.recordHead()
}

func (r *Repository) fetch(ctx context.Context) error {
	start := time.Now()

	repo, err := gogit.PlainOpen(r.config.LocalPath)
	if err != nil {
		return r.syncError("open", err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return r.syncError("open", err)
	}

	fetchCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	r.logger.Info("fetching repository", "url", r.config.URL, "branch", r.config.Branch)

	err = worktree.PullContext(fetchCtx, &gogit.PullOptions{
		RemoteName:    "origin",
		ReferenceName: plumbing.NewBranchReferenceName(r.config.Branch),
		SingleBranch:  true,
		Auth:          r.auth,
	})
	if err != nil && !errors.Is(err, gogit.NoErrAlreadyUpToDate) {
		return r.syncError("fetch", err)
	}

	r.repo = repo
	r.metrics.FetchDuration = time.Since(start)
	return r.recordHead()
}

func (r *Repository) recordHead() error {
	ref, err := r.repo.Head()
	if err != nil {
		return r.syncError("head", err)
	}
	r.metrics.LastCommitSHA = ref.Hash().String()
	r.metrics.LastSyncTime = time.Now()
	r.logger.Debug("mirror synchronized", "head", r.metrics.LastCommitSHA)
	return nil
}

func (r *Repository) syncError(operation string, cause error) error {
	r.metrics.FailedSyncs++
	return &SyncError{
		Operation:  operation,
		Repository: r.config.URL,
		LocalPath:  r.config.LocalPath,
		Cause:      cause,
	}
}

func (r *Repository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.config.Timeout > 0 {
		return context.WithTimeout(ctx, r.config.Timeout)
	}
	return context.WithCancel(ctx)
}

// CommitsBetween returns the commits reachable from HEAD whose committer
// time lies in [start, end], in go-git log order.
func (r *Repository) CommitsBetween(ctx context.Context, start, end time.Time) ([]CommitInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.log(ctx, &gogit.LogOptions{Since: &start, Until: &end})
}

// FileHistory returns the commits reachable from HEAD that changed path,
// newest first. A commit changed path when the file's blob (or its absence)
// differs from every parent's; a root commit changed path when it contains
// it. Merge commits that took the file unchanged from one side are not
// counted, matching git's default history simplification. Renames are not
// followed.
func (r *Repository) FileHistory(ctx context.Context, path string) ([]CommitInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.repo == nil {
		return nil, ErrNotSynced
	}

	ref, err := r.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to get HEAD: %w", err)
	}

	iter, err := r.repo.Log(&gogit.LogOptions{From: ref.Hash()})
	if err != nil {
		return nil, fmt.Errorf("failed to get commit log: %w", err)
	}
	defer iter.Close()

	blobs := &blobIndex{path: path, seen: make(map[plumbing.Hash]plumbing.Hash)}

	var commits []CommitInfo
	err = iter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		changed, err := blobs.changed(c)
		if err != nil {
			return err
		}
		if changed {
			commits = append(commits, newCommitInfo(c))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk history of %s: %w", path, err)
	}

	sort.SliceStable(commits, func(i, j int) bool {
		return commits[i].Timestamp.After(commits[j].Timestamp)
	})
	return commits, nil
}

// blobIndex memoizes the blob hash of one path per commit. A zero hash means
// the path is absent.
type blobIndex struct {
	path string
	seen map[plumbing.Hash]plumbing.Hash
}

func (b *blobIndex) blob(c *object.Commit) (plumbing.Hash, error) {
	if h, ok := b.seen[c.Hash]; ok {
		return h, nil
	}

	tree, err := c.Tree()
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("failed to get tree of %s: %w", c.Hash, err)
	}

	h := plumbing.ZeroHash
	entry, err := tree.FindEntry(b.path)
	switch {
	case err == nil:
		if entry.Mode.IsFile() {
			h = entry.Hash
		}
	case errors.Is(err, object.ErrEntryNotFound), errors.Is(err, object.ErrDirectoryNotFound):
	default:
		return plumbing.ZeroHash, fmt.Errorf("failed to look up %s in %s: %w", b.path, c.Hash, err)
	}

	b.seen[c.Hash] = h
	return h, nil
}

// changed reports whether c differs from all of its parents at path.
func (b *blobIndex) changed(c *object.Commit) (bool, error) {
	own, err := b.blob(c)
	if err != nil {
		return false, err
	}
	if c.NumParents() == 0 {
		return own != plumbing.ZeroHash, nil
	}

	changed := true
	err = c.Parents().ForEach(func(p *object.Commit) error {
		parent, err := b.blob(p)
		if err != nil {
			return err
		}
		if parent == own {
			changed = false
			return storer.ErrStop
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return changed, nil
}

// log runs a commit log from HEAD. Callers must hold mu.
func (r *Repository) log(ctx context.Context, opts *gogit.LogOptions) ([]CommitInfo, error) {
	if r.repo == nil {
		return nil, ErrNotSynced
	}

	ref, err := r.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to get HEAD: %w", err)
	}
	opts.From = ref.Hash()

	iter, err := r.repo.Log(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to get commit log: %w", err)
	}
	defer iter.Close()

	var commits []CommitInfo
	err = iter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		commits = append(commits, newCommitInfo(c))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate commits: %w", err)
	}

	return commits, nil
}

// ChangedFiles returns the paths added or modified by the commit, relative
// to the repository root. The commit is compared with its first parent, or
// with an empty tree for a root commit. Deleted paths are omitted.
func (r *Repository) ChangedFiles(ctx context.Context, sha string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.repo == nil {
		return nil, ErrNotSynced
	}

	commit, err := r.repo.CommitObject(plumbing.NewHash(sha))
	if err != nil {
		return nil, fmt.Errorf("failed to get commit %s: %w", sha, err)
	}

	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to get tree: %w", err)
	}

	parentTree := &object.Tree{}
	if commit.NumParents() > 0 {
		parent, err := commit.Parent(0)
		if err != nil {
			return nil, fmt.Errorf("failed to get parent commit: %w", err)
		}
		if parentTree, err = parent.Tree(); err != nil {
			return nil, fmt.Errorf("failed to get parent tree: %w", err)
		}
	}

	changes, err := parentTree.DiffContext(ctx, tree)
	if err != nil {
		return nil, fmt.Errorf("failed to diff trees: %w", err)
	}

	files := make([]string, 0, len(changes))
	for _, change := range changes {
		if change.To.Name == "" {
			continue
		}
		files = append(files, change.To.Name)
	}

	return files, nil
}

// CommitTime returns the committer timestamp of a commit in UTC.
func (r *Repository) CommitTime(ctx context.Context, sha string) (time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.repo == nil {
		return time.Time{}, ErrNotSynced
	}
	if err := ctx.Err(); err != nil {
		return time.Time{}, err
	}

	commit, err := r.repo.CommitObject(plumbing.NewHash(sha))
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get commit %s: %w", sha, err)
	}
	return commit.Committer.When.UTC(), nil
}

// ReadFile reads a file from the mirror's working tree. The path is
// slash-separated and relative to the repository root.
func (r *Repository) ReadFile(path string) ([]byte, error) {
	root := r.config.LocalPath
	full := filepath.Join(root, filepath.FromSlash(path))

	rel, err := filepath.Rel(root, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil, fmt.Errorf("path %q escapes the repository", path)
	}

	return os.ReadFile(full)
}

// Metrics returns a copy of the current repository metrics.
func (r *Repository) Metrics() RepositoryMetrics {
	r.mu.Lock()
	defer r.mu.Unlock()

	return *r.metrics
}

func newCommitInfo(c *object.Commit) CommitInfo {
	return CommitInfo{
		SHA:       c.Hash.String(),
		Author:    c.Author.Name,
		Email:     c.Author.Email,
		Timestamp: c.Committer.When.UTC(),
		Message:   c.Message,
	}
}
