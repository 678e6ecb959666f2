package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"mercator-hq/templatewatch/pkg/config"
	"mercator-hq/templatewatch/pkg/git"
	"mercator-hq/templatewatch/pkg/history"
	"mercator-hq/templatewatch/pkg/registry"
	"mercator-hq/templatewatch/pkg/scanner"
	"mercator-hq/templatewatch/pkg/telemetry/logging"
)

// Source is the version-control collaborator.
type Source interface {
	scanner.Source
	history.Source

	// Sync clones the mirror if absent, otherwise fetches and fast-forwards.
	Sync(ctx context.Context) error

	// ReadFile reads a repository-relative file from the working tree.
	ReadFile(path string) ([]byte, error)
}

// Recorder receives run metrics. *metrics.Collector implements it.
type Recorder interface {
	RecordSync(duration time.Duration)
	RecordCommits(n int)
	RecordFile(outcome string)
	RecordHistoryFailure()
	SetRegistrySize(n int)
}

// Config configures a Monitor.
type Config struct {
	// RawURLBase prefixes template paths to build source URLs.
	// Default: config.DefaultRawURLBase
	RawURLBase string

	// Extensions lists rule-file extensions. Default: [".yaml"]
	Extensions []string

	// Workers bounds concurrent extraction. Default: config.DefaultScanWorkers
	Workers int

	// LockPath, when set, is locked for the duration of a run.
	LockPath string

	// LockStaleAfter is passed to git.AcquireLock.
	LockStaleAfter time.Duration

	// Metrics receives run metrics. Optional.
	Metrics Recorder

	// Now replaces the wall clock. Optional.
	Now func() time.Time
}

// Options are the per-run parameters.
type Options struct {
	// Window is the trailing commit window to scan.
	Window time.Duration

	// Criteria filters the returned records.
	Criteria registry.Criteria
}

// SkippedFile is a rule file left out of the run.
type SkippedFile struct {
	Path string
	Err  error
}

// Result describes a completed run.
type Result struct {
	// RunID identifies the run in logs.
	RunID string

	// Records are the registry records matching Options.Criteria.
	Records []*registry.Record

	// Added lists identifiers inserted by this run, sorted.
	Added []string

	// Updated lists identifiers replaced by this run, sorted.
	Updated []string

	// Skipped lists files that could not be read or parsed.
	Skipped []SkippedFile

	// LoadWarning is the cache load failure, if any. The run continued with
	// an empty registry.
	LoadWarning error

	CommitsScanned int
	FilesScanned   int
	RegistrySize   int
	Duration       time.Duration
}

// Monitor runs discovery passes.
type Monitor struct {
	source   Source
	store    registry.Store
	cfg      Config
	scanner  *scanner.Scanner
	resolver *history.Resolver
	logger   *slog.Logger
}

// New creates a monitor over source persisting into store.
func New(source Source, store registry.Store, cfg Config) *Monitor {
	if cfg.RawURLBase == "" {
		cfg.RawURLBase = config.DefaultRawURLBase
	}
	if cfg.Workers <= 0 {
		cfg.Workers = config.DefaultScanWorkers
	}
	if cfg.Metrics == nil {
		cfg.Metrics = nopRecorder{}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Monitor{
		source:   source,
		store:    store,
		cfg:      cfg,
		scanner:  scanner.New(source, scanner.WithExtensions(cfg.Extensions...), scanner.WithClock(cfg.Now)),
		resolver: history.NewResolver(source),
		logger:   slog.Default().With("component", "monitor"),
	}
}

// Run performs one discovery pass.
func (m *Monitor) Run(ctx context.Context, opts Options) (*Result, error) {
	start := time.Now()

	runID := logging.GetRunID(ctx)
	if runID == "" {
		runID = uuid.NewString()
		ctx = logging.WithRunID(ctx, runID)
	}
	result := &Result{RunID: runID}

	if opts.Window <= 0 {
		return nil, fmt.Errorf("window must be positive, got %s", opts.Window)
	}

	if m.cfg.LockPath != "" {
		lock, err := git.AcquireLock(m.cfg.LockPath, m.cfg.LockStaleAfter)
		if err != nil {
			return nil, err
		}
		defer func() {
			if err := lock.Release(); err != nil {
				m.logger.WarnContext(ctx, "failed to release lock", "path", lock.Path(), "error", err)
			}
		}()
	}

	m.logger.InfoContext(ctx, "run started", "window", opts.Window.String())

	syncStart := time.Now()
	if err := m.source.Sync(ctx); err != nil {
		m.logger.ErrorContext(ctx, "mirror synchronization failed", "error", err)
		return nil, err
	}
	m.cfg.Metrics.RecordSync(time.Since(syncStart))

	reg := registry.New()
	if err := reg.Load(ctx, m.store); err != nil {
		m.logger.WarnContext(ctx, "cache unreadable, starting with an empty registry",
			"location", m.store.Location(),
			"error", err,
		)
		result.LoadWarning = err
	}
	loaded := reg.Len()

	changes, err := m.scanner.Scan(ctx, opts.Window)
	if err != nil {
		return nil, fmt.Errorf("commit window scan failed: %w", err)
	}
	result.CommitsScanned = len(changes)
	m.cfg.Metrics.RecordCommits(len(changes))

	cands := collectCandidates(changes)
	result.FilesScanned = len(cands)

	outcomes, err := m.extractAll(ctx, cands)
	if err != nil {
		return nil, err
	}

	m.mergeAll(ctx, reg, outcomes, result)

	if err := reg.Save(ctx, m.store); err != nil {
		var persistErr *registry.PersistenceError
		if errors.As(err, &persistErr) {
			m.logger.ErrorContext(ctx, "failed to save registry", "location", persistErr.Location, "error", err)
		}
		return nil, err
	}

	result.RegistrySize = reg.Len()
	m.cfg.Metrics.SetRegistrySize(reg.Len())

	result.Records = reg.Filter(opts.Criteria.Predicate())
	result.Duration = time.Since(start)

	m.logger.InfoContext(ctx, "run completed",
		"commits", result.CommitsScanned,
		"files", result.FilesScanned,
		"loaded", loaded,
		"added", len(result.Added),
		"updated", len(result.Updated),
		"skipped", len(result.Skipped),
		"matched", len(result.Records),
		"duration", result.Duration.String(),
	)

	return result, nil
}

type nopRecorder struct{}

func (nopRecorder) RecordSync(time.Duration) {}
func (nopRecorder) RecordCommits(int)        {}
func (nopRecorder) RecordFile(string)        {}
func (nopRecorder) RecordHistoryFailure()    {}
func (nopRecorder) SetRegistrySize(int)      {}
