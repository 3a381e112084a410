package infra

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFileAtomicCreatesAndReplaces(t *testing.T) {
	ctx := context.Background()
	repo := NewOSFilesystemRepository()
	path := filepath.Join(t.TempDir(), "note.md")

	require.NoError(t, repo.WriteFileAtomic(ctx, path, []byte("first"), 0o600))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	require.NoError(t, os.Chmod(path, 0o640))
	require.NoError(t, repo.WriteFileAtomic(ctx, path, []byte("second"), 0o600))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	info, err = os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), info.Mode().Perm(), "existing mode should be kept")

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestWriteFileAtomicFollowsSymlink(t *testing.T) {
	ctx := context.Background()
	repo := NewOSFilesystemRepository()
	dir := t.TempDir()
	target := filepath.Join(dir, "target.txt")
	link := filepath.Join(dir, "link.txt")

	require.NoError(t, os.WriteFile(target, []byte("old"), 0o644))
	if err := os.Symlink("target.txt", link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	require.NoError(t, repo.WriteFileAtomic(ctx, link, []byte("new"), 0o644))

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))

	info, err := os.Lstat(link)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&os.ModeSymlink, "link should still be a symlink")

	data, err = os.ReadFile(link)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "no temp files left behind")
}

func TestWriteFileAtomicMissingParent(t *testing.T) {
	repo := NewOSFilesystemRepository()
	path := filepath.Join(t.TempDir(), "missing", "note.md")
	err := repo.WriteFileAtomic(context.Background(), path, []byte("x"), 0o644)
	assert.True(t, os.IsNotExist(err), "expected not-exist error, got %v", err)
}

func TestWriteFileAtomicOnDirectory(t *testing.T) {
	repo := NewOSFilesystemRepository()
	assert.Error(t, repo.WriteFileAtomic(context.Background(), t.TempDir(), []byte("x"), 0o644))
}

func TestCreateFileKeepsContent(t *testing.T) {
	ctx := context.Background()
	repo := NewOSFilesystemRepository()
	path := filepath.Join(t.TempDir(), "keep.txt")
	require.NoError(t, os.WriteFile(path, []byte("keep me"), 0o644))
	require.NoError(t, repo.CreateFile(ctx, path, 0o644))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "keep me", string(data))
}

func TestDefaultAccessConfig(t *testing.T) {
	cfg := DefaultAccessConfig()
	assert.False(t, cfg.RestrictToRoots)
	assert.Empty(t, cfg.BlacklistedFiles)
}
