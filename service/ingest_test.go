package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ludo-technologies/minhashlsh/internal/config"
	"github.com/ludo-technologies/minhashlsh/lsh"
)

func TestShingle_SlidingWindow(t *testing.T) {
	got := Shingle("the quick brown fox jumps", 2)
	assert.Equal(t, []string{"the quick", "quick brown", "brown fox", "fox jumps"}, got)
}

func TestShingle_ShortTextYieldsOneShingle(t *testing.T) {
	got := Shingle("hi there", 5)
	assert.Equal(t, []string{"hi there"}, got)
}

func TestShingle_Empty(t *testing.T) {
	assert.Nil(t, Shingle("   ", 3))
}

func TestExpandGlobs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("b"), 0o644))

	paths, err := ExpandGlobs([]string{filepath.Join(dir, "*.txt")})
	require.NoError(t, err)
	assert.Len(t, paths, 2)
}

func TestIngestFiles_BuildsOneSketchPerFile(t *testing.T) {
	dir := t.TempDir()
	p1 := filepath.Join(dir, "one.txt")
	p2 := filepath.Join(dir, "two.txt")
	require.NoError(t, os.WriteFile(p1, []byte("the quick brown fox jumps over the lazy dog"), 0o644))
	require.NoError(t, os.WriteFile(p2, []byte("completely unrelated content about something else entirely"), 0o644))

	cfg := config.DefaultIndexConfig()
	seed := uint64(7)
	cfg.Seed = &seed

	results, err := IngestFiles([]string{p1, p2}, cfg, DefaultShingleSize, nil)
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Equal(t, cfg.NumPerm, r.Sketch.NumPerm())
		assert.NotEmpty(t, r.Key)
	}
}

func TestIngestFiles_AggregatesErrorsWithoutAbortingBatch(t *testing.T) {
	dir := t.TempDir()
	ok := filepath.Join(dir, "ok.txt")
	require.NoError(t, os.WriteFile(ok, []byte("hello world"), 0o644))
	missing := filepath.Join(dir, "does-not-exist.txt")

	cfg := config.DefaultIndexConfig()
	results, err := IngestFiles([]string{ok, missing}, cfg, DefaultShingleSize, nil)
	require.Error(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, ok, results[0].Path)
}

func TestIndexFiles_InsertsIntoIndex(t *testing.T) {
	dir := t.TempDir()
	p1 := filepath.Join(dir, "one.txt")
	require.NoError(t, os.WriteFile(p1, []byte("the quick brown fox jumps over the lazy dog"), 0o644))

	cfg := config.DefaultIndexConfig()
	cfg.NumPerm = 16
	idx, err := lsh.New[string](cfg.NumPerm)
	require.NoError(t, err)

	results, err := IndexFiles(idx, func(fs FileSketch) string { return fs.Path }, []string{p1}, cfg, DefaultShingleSize, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, idx.ContainsKey(p1))
}
