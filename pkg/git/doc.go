// Package git maintains the local mirror of the template repository and
// answers the history questions the scan needs.
//
// A Repository clones the remote on first use and afterwards fetches and
// fast-forwards it. Once synchronized it can list the commits inside a time
// window, the files each commit changed, and the full history of a single
// path.
//
// # Basic Usage
//
//	repo, err := git.NewRepository(&cfg.Repository)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	if err := repo.Sync(ctx); err != nil {
//		log.Fatal(err) // *git.SyncError
//	}
//
//	commits, err := repo.CommitsBetween(ctx, time.Now().Add(-8*time.Hour), time.Now())
//
// # Authentication
//
// Supports multiple authentication methods:
//   - Token-based (HTTPS): GitHub, GitLab, Bitbucket tokens
//   - SSH key-based: Public key authentication
//   - None: Public repositories
//
// # Locking
//
// Overlapping fetch and checkout operations on one mirror are unsafe.
// AcquireLock creates an exclusive lock file next to the mirror that callers
// hold for the duration of a run.
package git
