package infra

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fpt/folio/internal/repository"
	"github.com/pkg/errors"
)

// DefaultAccessConfig returns the access rules used when settings name none.
// Nothing is blacklisted until the user lists patterns in settings.
func DefaultAccessConfig() repository.AccessConfig {
	return repository.AccessConfig{
		RestrictToRoots:  false,
		BlacklistedFiles: []string{},
	}
}

// OSFilesystemRepository implements repository.FilesystemRepository using os package
type OSFilesystemRepository struct{}

// NewOSFilesystemRepository creates a new OS-based filesystem repository
func NewOSFilesystemRepository() repository.FilesystemRepository {
	return &OSFilesystemRepository{}
}

// ReadFile reads the contents of a file
func (r *OSFilesystemRepository) ReadFile(ctx context.Context, path string) ([]byte, error) {
	return os.ReadFile(path)
}

// WriteFileAtomic writes data to a temp file beside path and renames it into
// place. An existing file keeps its mode; a new file gets perm. A symlink is
// followed so the rename lands on its target and the link survives.
func (r *OSFilesystemRepository) WriteFileAtomic(ctx context.Context, path string, data []byte, perm fs.FileMode) error {
	target, err := filepath.EvalSymlinks(path)
	if errors.Is(err, fs.ErrNotExist) {
		target = path
	} else if err != nil {
		return err
	}

	if info, err := os.Stat(target); err == nil {
		if info.IsDir() {
			return &fs.PathError{Op: "write", Path: path, Err: errors.New("is a directory")}
		}
		perm = info.Mode().Perm()
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), "."+filepath.Base(target)+".folio-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return errors.Wrap(err, "write temp file")
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return errors.Wrap(err, "sync temp file")
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return errors.Wrap(err, "close temp file")
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		cleanup()
		return err
	}
	if err := os.Rename(tmpName, target); err != nil {
		cleanup()
		return err
	}
	return nil
}

// CreateFile creates an empty file without truncating an existing one
func (r *OSFilesystemRepository) CreateFile(ctx context.Context, path string, perm fs.FileMode) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, perm)
	if err != nil {
		return err
	}
	return f.Close()
}

// Stat returns file information, following symlinks
func (r *OSFilesystemRepository) Stat(ctx context.Context, path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// Lstat returns file information without following a final symlink
func (r *OSFilesystemRepository) Lstat(ctx context.Context, path string) (fs.FileInfo, error) {
	return os.Lstat(path)
}

// EvalSymlinks resolves every symlink in path
func (r *OSFilesystemRepository) EvalSymlinks(ctx context.Context, path string) (string, error) {
	return filepath.EvalSymlinks(path)
}

// ReadDir reads directory contents
func (r *OSFilesystemRepository) ReadDir(ctx context.Context, path string) ([]fs.DirEntry, error) {
	return os.ReadDir(path)
}

// MkdirAll creates path and any missing parents
func (r *OSFilesystemRepository) MkdirAll(ctx context.Context, path string, perm fs.FileMode) error {
	return os.MkdirAll(path, perm)
}

func (r *OSFilesystemRepository) Rename(ctx context.Context, oldPath, newPath string) error {
	return os.Rename(oldPath, newPath)
}

func (r *OSFilesystemRepository) Remove(ctx context.Context, path string) error {
	return os.Remove(path)
}

func (r *OSFilesystemRepository) RemoveAll(ctx context.Context, path string) error {
	return os.RemoveAll(path)
}
