package git

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestAcquireLock tests exclusive lock acquisition and release.
func TestAcquireLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mirror.lock")

	lock, err := AcquireLock(path, time.Hour)
	if err != nil {
		t.Fatalf("AcquireLock() error = %v", err)
	}
	if lock.Path() != path {
		t.Errorf("Path() = %q, want %q", lock.Path(), path)
	}

	if _, err := AcquireLock(path, time.Hour); !errors.Is(err, ErrLocked) {
		t.Errorf("second AcquireLock() error = %v, want ErrLocked", err)
	}

	if err := lock.Release(); err != nil {
		t.Fatalf("Release() error = %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("Release() should remove the lock file")
	}

	// Releasing twice is harmless.
	if err := lock.Release(); err != nil {
		t.Errorf("second Release() error = %v", err)
	}

	again, err := AcquireLock(path, time.Hour)
	if err != nil {
		t.Fatalf("AcquireLock() after release error = %v", err)
	}
	_ = again.Release()
}

// TestAcquireLock_Stale tests replacement of abandoned lock files.
func TestAcquireLock_Stale(t *testing.T) {
	tests := []struct {
		name       string
		age        time.Duration
		staleAfter time.Duration
		wantErr    bool
	}{
		{name: "fresh lock is respected", age: time.Minute, staleAfter: time.Hour, wantErr: true},
		{name: "old lock is replaced", age: 2 * time.Hour, staleAfter: time.Hour, wantErr: false},
		{name: "zero threshold never breaks", age: 48 * time.Hour, staleAfter: 0, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "mirror.lock")
			if err := os.WriteFile(path, []byte("pid=1\n"), 0644); err != nil {
				t.Fatalf("failed to write lock: %v", err)
			}
			old := time.Now().Add(-tt.age)
			if err := os.Chtimes(path, old, old); err != nil {
				t.Fatalf("failed to age lock: %v", err)
			}

			lock, err := AcquireLock(path, tt.staleAfter)
			if (err != nil) != tt.wantErr {
				t.Fatalf("AcquireLock() error = %v, wantErr %v", err, tt.wantErr)
			}
			if lock != nil {
				_ = lock.Release()
			}
		})
	}
}
