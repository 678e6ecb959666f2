package git

import (
	"time"
)

// CommitInfo contains metadata about a Git commit.
type CommitInfo struct {
	SHA       string    `json:"sha"`
	Author    string    `json:"author"`
	Email     string    `json:"email"`
	Timestamp time.Time `json:"timestamp"` // committer time, UTC
	Message   string    `json:"message"`
}

// RepositoryMetrics tracks Git operation metrics.
type RepositoryMetrics struct {
	CloneDuration time.Duration
	FetchDuration time.Duration
	LastCommitSHA string
	LastSyncTime  time.Time
	FailedSyncs   int64
	Cloned        bool
}
