package repository

import (
	"context"
	"io/fs"
)

// AccessConfig holds the path restrictions the agent enforces
type AccessConfig struct {
	RestrictToRoots  bool     `json:"restrict_to_roots" yaml:"restrict_to_roots"` // Only touch paths under opened or listed folders
	BlacklistedFiles []string `json:"blacklisted_files" yaml:"blacklisted_files"` // Files that cannot be read or written
}

// FilesystemRepository abstracts filesystem operations for the agent
type FilesystemRepository interface {
	// File operations
	ReadFile(ctx context.Context, path string) ([]byte, error)
	// WriteFileAtomic replaces path with data via a temp file in the same directory
	WriteFileAtomic(ctx context.Context, path string, data []byte, perm fs.FileMode) error
	// CreateFile creates path if missing; existing content is left alone
	CreateFile(ctx context.Context, path string, perm fs.FileMode) error

	// Metadata
	Stat(ctx context.Context, path string) (fs.FileInfo, error)
	Lstat(ctx context.Context, path string) (fs.FileInfo, error)
	EvalSymlinks(ctx context.Context, path string) (string, error)

	// Directory operations
	ReadDir(ctx context.Context, path string) ([]fs.DirEntry, error)
	MkdirAll(ctx context.Context, path string, perm fs.FileMode) error

	// Mutations
	Rename(ctx context.Context, oldPath, newPath string) error
	Remove(ctx context.Context, path string) error
	RemoveAll(ctx context.Context, path string) error
}
