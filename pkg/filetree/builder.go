package filetree

import (
	"context"
	"io/fs"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
)

// ErrNotDir is returned, inside a *fs.PathError, when Build is pointed at a file.
var ErrNotDir = errors.New("not a directory")

// DefaultMaxConcurrency bounds how many directories are read at once.
const DefaultMaxConcurrency = 16

// DirReader is the slice of filesystem access the builder needs.
type DirReader interface {
	ReadDir(ctx context.Context, path string) ([]fs.DirEntry, error)
	Stat(ctx context.Context, path string) (fs.FileInfo, error)
	EvalSymlinks(ctx context.Context, path string) (string, error)
}

// Builder walks a directory and returns its contents as an ordered tree.
// Subdirectories are listed concurrently; maxConcurrency caps the number of
// ReadDir calls in flight. The first error aborts the whole build.
type Builder struct {
	fs             DirReader
	order          *Order
	maxConcurrency int
}

// NewBuilder creates a Builder. A nil order uses root collation and a
// non-positive maxConcurrency uses DefaultMaxConcurrency.
func NewBuilder(fsys DirReader, order *Order, maxConcurrency int) *Builder {
	if order == nil {
		order, _ = ParseOrder("")
	}
	if maxConcurrency <= 0 {
		maxConcurrency = DefaultMaxConcurrency
	}
	return &Builder{fs: fsys, order: order, maxConcurrency: maxConcurrency}
}

// Order returns the ordering the builder sorts with.
func (b *Builder) Order() *Order {
	return b.order
}

// ancestry is the chain of resolved directory paths from the root down to
// the directory being listed. Symlinks that lead back into it are not followed.
type ancestry struct {
	path   string
	parent *ancestry
}

func (a *ancestry) contains(path string) bool {
	for ; a != nil; a = a.parent {
		if a.path == path {
			return true
		}
	}
	return false
}

// Build lists dir recursively and returns its children.
func (b *Builder) Build(ctx context.Context, dir string) ([]*Node, error) {
	real, err := b.fs.EvalSymlinks(ctx, dir)
	if err != nil {
		return nil, err
	}
	info, err := b.fs.Stat(ctx, dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, &fs.PathError{Op: "readdir", Path: dir, Err: ErrNotDir}
	}

	sem := make(chan struct{}, b.maxConcurrency)
	return b.children(ctx, sem, dir, &ancestry{path: real})
}

func (b *Builder) readDir(ctx context.Context, sem chan struct{}, dir string) ([]fs.DirEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	select {
	case sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-sem }()
	return b.fs.ReadDir(ctx, dir)
}

func (b *Builder) children(ctx context.Context, sem chan struct{}, dir string, anc *ancestry) ([]*Node, error) {
	entries, err := b.readDir(ctx, sem, dir)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)
	fail := func(err error) {
		once.Do(func() {
			firstErr = err
			cancel()
		})
	}

	nodes := make([]*Node, len(entries))
	for i, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		real, isDir := b.classify(ctx, path, filepath.Join(anc.path, entry.Name()), entry)
		if !isDir {
			nodes[i] = NewFile(path)
			continue
		}
		if anc.contains(real) {
			nodes[i] = NewFolder(path, nil)
			continue
		}

		wg.Add(1)
		go func(i int, path string, anc *ancestry) {
			defer wg.Done()
			kids, err := b.children(ctx, sem, path, anc)
			if err != nil {
				fail(err)
				return
			}
			nodes[i] = NewFolder(path, kids)
		}(i, path, &ancestry{path: real, parent: anc})
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	b.order.Sort(nodes)
	return nodes, nil
}

// classify decides whether an entry is listed as a folder. Plain directories
// are folders; a symlink is a folder only if it resolves to a directory.
// Everything else, including broken links and special files, is a file.
func (b *Builder) classify(ctx context.Context, path, realGuess string, entry fs.DirEntry) (string, bool) {
	mode := entry.Type()
	switch {
	case mode.IsDir():
		return realGuess, true
	case mode&fs.ModeSymlink != 0:
		info, err := b.fs.Stat(ctx, path)
		if err != nil || !info.IsDir() {
			return "", false
		}
		real, err := b.fs.EvalSymlinks(ctx, path)
		if err != nil {
			return "", false
		}
		return real, true
	default:
		return "", false
	}
}
