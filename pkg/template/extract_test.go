package template

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		path string
		src  string
		want Metadata
	}{
		{
			name: "full template",
			path: "http/cves/2024/CVE-2024-1234.yaml",
			src: `id: CVE-2024-1234
info:
  name: Example RCE
  author: alice, bob
  severity: critical
  description: |
    Remote code execution in Example.
  tags: cve,rce
http:
  - method: GET
`,
			want: Metadata{
				ID:          "CVE-2024-1234",
				Name:        "Example RCE",
				Severity:    "critical",
				Description: "Remote code execution in Example.",
				Authors:     []string{"alice", "bob"},
				Tags:        []string{"cve", "rce"},
			},
		},
		{
			name: "missing id falls back to file name",
			path: "dns/azure-takeover.yaml",
			src:  "info:\n  severity: high\n  description: takeover\n",
			want: Metadata{
				ID:          "azure-takeover",
				Severity:    "high",
				Description: "takeover",
			},
		},
		{
			name: "missing info uses defaults",
			path: "network/x.yaml",
			src:  "id: x\n",
			want: Metadata{
				ID:          "x",
				Severity:    DefaultSeverity,
				Description: DefaultDescription,
			},
		},
		{
			name: "mistyped fields use defaults",
			path: "http/y.yaml",
			src:  "id: y\ninfo:\n  severity: [a, b]\n  description: {k: v}\n",
			want: Metadata{
				ID:          "y",
				Severity:    DefaultSeverity,
				Description: DefaultDescription,
			},
		},
		{
			name: "info not a mapping",
			path: "http/z.yaml",
			src:  "id: z\ninfo: just text\n",
			want: Metadata{
				ID:          "z",
				Severity:    DefaultSeverity,
				Description: DefaultDescription,
			},
		},
		{
			name: "null values use defaults",
			path: "http/n.yaml",
			src:  "id: n\ninfo:\n  severity: null\n  description: ~\n",
			want: Metadata{
				ID:          "n",
				Severity:    DefaultSeverity,
				Description: DefaultDescription,
			},
		},
		{
			name: "author and tags as sequences",
			path: "http/s.yaml",
			src:  "id: s\ninfo:\n  author: [alice, '', bob]\n  tags:\n    - xss\n",
			want: Metadata{
				ID:          "s",
				Severity:    DefaultSeverity,
				Description: DefaultDescription,
				Authors:     []string{"alice", "bob"},
				Tags:        []string{"xss"},
			},
		},
		{
			name: "numeric id is kept as text",
			path: "http/num.yaml",
			src:  "id: 12345\n",
			want: Metadata{
				ID:          "12345",
				Severity:    DefaultSeverity,
				Description: DefaultDescription,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Extract(tt.path, []byte(tt.src))
			require.NoError(t, err)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestExtract_ParseError(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		wantLine bool
	}{
		{name: "invalid yaml", src: "id: a\ninfo:\n  severity: [unclosed\n", wantLine: true},
		{name: "tab indentation", src: "id: a\n\tinfo: x\n", wantLine: true},
		{name: "empty document", src: ""},
		{name: "top level sequence", src: "- a\n- b\n", wantLine: true},
		{name: "top level scalar", src: "hello\n", wantLine: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Extract("http/bad.yaml", []byte(tt.src))
			require.Error(t, err)

			var parseErr *ParseError
			require.True(t, errors.As(err, &parseErr), "expected *ParseError, got %T", err)
			assert.Equal(t, "http/bad.yaml", parseErr.Path)
			if tt.wantLine {
				assert.Positive(t, parseErr.Line)
			}
			assert.Contains(t, err.Error(), "http/bad.yaml")
		})
	}
}

func TestIdentifierFromPath(t *testing.T) {
	assert.Equal(t, "CVE-2024-1234", IdentifierFromPath("http/cves/CVE-2024-1234.yaml"))
	assert.Equal(t, "root", IdentifierFromPath("root.yaml"))
	assert.Equal(t, "multi", IdentifierFromPath("a/multi.part.yaml"))
	assert.Equal(t, "noext", IdentifierFromPath("a/noext"))
}
