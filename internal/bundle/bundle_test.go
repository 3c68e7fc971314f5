package bundle

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdflow-ai/mdflow/pkg/types"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestTagSlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"main.go", "main"},
		{"My File.TXT", "my-file"},
		{"2fast.md", "_2fast"},
		{"__.md", "file"},
		{"utils.spec.ts", "utils-spec"},
		{"...", "file"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TagSlug(tt.in), "input %q", tt.in)
	}
}

func TestExpand_Basic(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "src", "b.ts"), "export const b = 2;")
	writeFile(t, filepath.Join(dir, "src", "a.ts"), "export const a = 1;")
	writeFile(t, filepath.Join(dir, "src", "skip.txt"), "not matched")

	out, err := Expand("src/*.ts", dir, Options{})
	require.NoError(t, err)

	// Sorted by relative path, blocks separated by a blank line.
	aIdx := strings.Index(out, `<a path="src/a.ts">`)
	bIdx := strings.Index(out, `<b path="src/b.ts">`)
	require.GreaterOrEqual(t, aIdx, 0)
	require.Greater(t, bIdx, aIdx)
	assert.Contains(t, out, "export const a = 1;\n</a>")
	assert.Contains(t, out, "\n\n<b")
	assert.NotContains(t, out, "skip.txt")
}

func TestExpand_NoMatches(t *testing.T) {
	out, err := Expand("*.nothing", t.TempDir(), Options{})
	require.NoError(t, err)
	assert.Equal(t, "", out)
}

func TestExpand_GitignoreFiltering(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".git"), 0o755))
	writeFile(t, filepath.Join(dir, ".gitignore"), "generated\n*.tmp\n")
	writeFile(t, filepath.Join(dir, "keep.go"), "package x")
	writeFile(t, filepath.Join(dir, "scratch.tmp"), "ignored")
	writeFile(t, filepath.Join(dir, "generated", "out.go"), "package gen")

	out, err := Expand("**/*", dir, Options{})
	require.NoError(t, err)
	assert.Contains(t, out, "keep.go")
	assert.NotContains(t, out, "scratch.tmp")
	assert.NotContains(t, out, "out.go")
}

func TestExpand_AlwaysIgnoresSeeds(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "node_modules", "dep", "index.js"), "x")
	writeFile(t, filepath.Join(dir, "app.js"), "y")

	out, err := Expand("**/*.js", dir, Options{})
	require.NoError(t, err)
	assert.Contains(t, out, "app.js")
	assert.NotContains(t, out, "node_modules")
}

func TestExpand_SkipsBinaries(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "text.txt"), "hello")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "blob.txt"), []byte("ab\x00cd"), 0o644))

	out, err := Expand("*.txt", dir, Options{})
	require.NoError(t, err)
	assert.Contains(t, out, "text.txt")
	assert.NotContains(t, out, "blob.txt")
}

func TestExpand_FileSizeLimit(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "big.txt"), strings.Repeat("x", 100))

	_, err := Expand("*.txt", dir, Options{MaxInputSize: 10})
	require.Error(t, err)
	assert.Equal(t, types.KindFileSizeLimit, types.KindOf(err))
}

func TestExpand_ContextLimit(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), strings.Repeat("word ", 100))

	_, err := Expand("*.txt", dir, Options{ContextWindow: 10})
	require.Error(t, err)
	assert.Equal(t, types.KindFileSizeLimit, types.KindOf(err))
	assert.Contains(t, err.Error(), "*.txt")

	out, err := Expand("*.txt", dir, Options{ContextWindow: 10, Force: true})
	require.NoError(t, err)
	assert.Contains(t, out, "a.txt")
}

func TestExpand_WarnsOverHalfLimit(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), strings.Repeat("x", 300))

	var warned string
	_, err := Expand("*.txt", dir, Options{ContextWindow: 100, Warn: func(m string) { warned = m }})
	require.NoError(t, err)
	assert.Contains(t, warned, "*.txt")
}

func TestIsBinaryContent(t *testing.T) {
	assert.False(t, IsBinaryContent([]byte("plain text")))
	assert.True(t, IsBinaryContent([]byte{1, 2, 0, 4}))
}
