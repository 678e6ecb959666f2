package history

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mercator-hq/templatewatch/pkg/git"
)

type fakeSource struct {
	histories map[string][]git.CommitInfo
	err       error
	calls     int
}

func (f *fakeSource) FileHistory(_ context.Context, path string) ([]git.CommitInfo, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.histories[path], nil
}

func commitsAt(times ...time.Time) []git.CommitInfo {
	out := make([]git.CommitInfo, 0, len(times))
	for i, ts := range times {
		out = append(out, git.CommitInfo{SHA: string(rune('a' + i)), Timestamp: ts})
	}
	return out
}

func TestResolver(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		commits     []git.CommitInfo
		wantCreated *time.Time
		wantStatus  Status
	}{
		{
			name:       "no commits",
			commits:    nil,
			wantStatus: StatusModified,
		},
		{
			name:        "single commit is new",
			commits:     commitsAt(base),
			wantCreated: &base,
			wantStatus:  StatusNew,
		},
		{
			name:        "two commits is modified",
			commits:     commitsAt(base.Add(time.Hour), base),
			wantCreated: &base,
			wantStatus:  StatusModified,
		},
		{
			name:        "oldest is last",
			commits:     commitsAt(base.Add(48*time.Hour), base.Add(24*time.Hour), base),
			wantCreated: &base,
			wantStatus:  StatusModified,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := &fakeSource{histories: map[string][]git.CommitInfo{"http/a.yaml": tt.commits}}
			resolver := NewResolver(source)
			ctx := context.Background()

			created, err := resolver.FirstAppearance(ctx, "http/a.yaml")
			require.NoError(t, err)
			assert.Equal(t, tt.wantCreated, created)

			status, err := resolver.Classify(ctx, "http/a.yaml")
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, status)

			created, status, err = resolver.Resolve(ctx, "http/a.yaml")
			require.NoError(t, err)
			assert.Equal(t, tt.wantCreated, created)
			assert.Equal(t, tt.wantStatus, status)
		})
	}
}

func TestResolver_ResolveSingleLookup(t *testing.T) {
	source := &fakeSource{histories: map[string][]git.CommitInfo{}}
	resolver := NewResolver(source)

	_, _, err := resolver.Resolve(context.Background(), "x.yaml")
	require.NoError(t, err)
	assert.Equal(t, 1, source.calls)
}

func TestResolver_LookupError(t *testing.T) {
	cause := errors.New("object not found")
	resolver := NewResolver(&fakeSource{err: cause})
	ctx := context.Background()

	created, status, err := resolver.Resolve(ctx, "http/a.yaml")
	assert.Nil(t, created)
	assert.Equal(t, StatusModified, status)

	var lookupErr *LookupError
	require.True(t, errors.As(err, &lookupErr))
	assert.Equal(t, "http/a.yaml", lookupErr.Path)
	assert.ErrorIs(t, err, cause)

	status, err = resolver.Classify(ctx, "http/a.yaml")
	assert.Error(t, err)
	assert.Equal(t, StatusModified, status)

	created, err = resolver.FirstAppearance(ctx, "http/a.yaml")
	assert.Error(t, err)
	assert.Nil(t, created)
}
