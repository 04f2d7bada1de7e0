package executor

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tinker/internal/protocol"
)

func seedScanTree(t *testing.T, root string) {
	t.Helper()
	files := []string{
		"main.go",
		"sub/util.go",
		"sub/notes.md",
		"node_modules/pkg/index.js",
		".git/HEAD",
		".hidden/secret.go",
		".github/workflows/ci.yml",
	}
	for _, f := range files {
		p := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
	}
}

func scanPaths(result *protocol.Result) []string {
	paths := make([]string, 0, len(result.DirectoryList))
	for _, entry := range result.DirectoryList {
		paths = append(paths, entry.Path)
	}
	return paths
}

func TestScanProjectExcludesBoilerplate(t *testing.T) {
	e := newTestExecutor(t)
	seedScanTree(t, e.Root())

	result := e.scanProject(context.Background(), "")
	require.True(t, result.Success, result.Error)

	want := []string{
		".github",
		".github/workflows",
		".github/workflows/ci.yml",
		"main.go",
		"sub",
		"sub/notes.md",
		"sub/util.go",
	}
	if diff := cmp.Diff(want, scanPaths(result)); diff != "" {
		t.Errorf("scan listing mismatch (-want +got):\n%s", diff)
	}
}

func TestScanProjectGlobMatchesBaseName(t *testing.T) {
	e := newTestExecutor(t)
	seedScanTree(t, e.Root())

	result := e.scanProject(context.Background(), "*.go")
	require.True(t, result.Success, result.Error)

	want := []string{"main.go", "sub/util.go"}
	if diff := cmp.Diff(want, scanPaths(result)); diff != "" {
		t.Errorf("scan listing mismatch (-want +got):\n%s", diff)
	}
}

func TestScanProjectConfiguredExclusions(t *testing.T) {
	e := newTestExecutor(t)
	e.scan.ExcludeDirs = []string{"sub"}
	seedScanTree(t, e.Root())

	result := e.scanProject(context.Background(), "*.go")
	require.True(t, result.Success, result.Error)
	assert.Equal(t, []string{"main.go"}, scanPaths(result))
}

func TestScanProjectCapsEntries(t *testing.T) {
	e := newTestExecutor(t)
	e.scan.MaxEntries = 3
	seedScanTree(t, e.Root())

	result := e.scanProject(context.Background(), "")
	require.True(t, result.Success, result.Error)
	assert.Len(t, result.DirectoryList, 3)
	assert.Contains(t, result.Error, "truncated")
}

func TestScanProjectCancelled(t *testing.T) {
	e := newTestExecutor(t)
	seedScanTree(t, e.Root())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := e.scanProject(ctx, "")
	require.False(t, result.Success)
	assert.Contains(t, result.Error, "cancelled")
}

func TestMatchPattern(t *testing.T) {
	cases := []struct {
		pattern string
		rel     string
		name    string
		want    bool
	}{
		{"", "a/b.go", "b.go", true},
		{"*", "a/b.go", "b.go", true},
		{"*.go", "a/b.go", "b.go", true},
		{"*.go", "a/b.md", "b.md", false},
		{"a/*.go", "a/b.go", "b.go", true},
		{"a/*.go", "c/b.go", "b.go", false},
	}
	for _, tc := range cases {
		got := matchPattern(tc.pattern, tc.rel, tc.name)
		assert.Equal(t, tc.want, got, "pattern=%q rel=%q", tc.pattern, tc.rel)
	}
}
