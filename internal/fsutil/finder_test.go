package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func TestFindFilesByExtension_WalksDirectories(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "b.hcl"))
	touch(t, filepath.Join(dir, "a.hcl"))
	touch(t, filepath.Join(dir, "nested", "c.hcl"))
	touch(t, filepath.Join(dir, "ignored.txt"))

	files, err := FindFilesByExtension(".hcl", dir)
	require.NoError(t, err)

	want := []string{
		filepath.Join(dir, "a.hcl"),
		filepath.Join(dir, "b.hcl"),
		filepath.Join(dir, "nested", "c.hcl"),
	}
	assert.Equal(t, want, files, "results are sorted and filtered")
}

func TestFindFilesByExtension_FilePathTakenAsIs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "defs.config")
	touch(t, path)

	files, err := FindFilesByExtension(".hcl", path)
	require.NoError(t, err)
	assert.Equal(t, []string{path}, files)
}

func TestFindFilesByExtension_MissingPath(t *testing.T) {
	_, err := FindFilesByExtension(".hcl", filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
}
