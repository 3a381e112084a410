package filetree

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type osReader struct{}

func (osReader) ReadDir(_ context.Context, path string) ([]fs.DirEntry, error) {
	return os.ReadDir(path)
}

func (osReader) Stat(_ context.Context, path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

func (osReader) EvalSymlinks(_ context.Context, path string) (string, error) {
	return filepath.EvalSymlinks(path)
}

// countingReader records the peak number of concurrent ReadDir calls.
type countingReader struct {
	osReader
	inflight atomic.Int32
	peak     atomic.Int32
}

func (c *countingReader) ReadDir(ctx context.Context, path string) ([]fs.DirEntry, error) {
	n := c.inflight.Add(1)
	defer c.inflight.Add(-1)
	for {
		p := c.peak.Load()
		if n <= p || c.peak.CompareAndSwap(p, n) {
			break
		}
	}
	return c.osReader.ReadDir(ctx, path)
}

func mkTree(t *testing.T, root string, paths ...string) {
	t.Helper()
	for _, p := range paths {
		full := filepath.Join(root, filepath.FromSlash(p))
		if p[len(p)-1] == '/' {
			require.NoError(t, os.MkdirAll(full, 0o755))
			continue
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(p), 0o644))
	}
}

func names(nodes []*Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Name
	}
	return out
}

func TestBuildFoldersFirst(t *testing.T) {
	root := t.TempDir()
	mkTree(t, root, "src/", "notes.txt")

	nodes, err := NewBuilder(osReader{}, nil, 0).Build(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, nodes, 2)

	assert.Equal(t, "src", nodes[0].Name)
	assert.Equal(t, KindFolder, nodes[0].Type)
	assert.NotNil(t, nodes[0].Children)
	assert.Empty(t, nodes[0].Children)

	assert.Equal(t, "notes.txt", nodes[1].Name)
	assert.Equal(t, KindFile, nodes[1].Type)
	require.NotNil(t, nodes[1].Extension)
	assert.Equal(t, "txt", *nodes[1].Extension)
	assert.Equal(t, filepath.Join(root, "notes.txt"), nodes[1].ID)
	assert.Equal(t, nodes[1].ID, nodes[1].Path)
}

func TestBuildOrdersEveryLevel(t *testing.T) {
	root := t.TempDir()
	mkTree(t, root,
		"b.md", "A.md", "a.md", "zeta/", "Alpha/", "alpha2/",
		"zeta/c.txt", "zeta/B/", "zeta/b.txt", "zeta/B/z", "zeta/B/Y/",
		"Alpha/readme", "Alpha/Readme.md", "Alpha/_draft/", "Alpha/10.txt", "Alpha/9.txt",
	)

	b := NewBuilder(osReader{}, nil, 2)
	nodes, err := b.Build(context.Background(), root)
	require.NoError(t, err)
	assert.True(t, b.Order().IsSorted(nodes))

	Walk(nodes, func(n *Node, _ int) bool {
		if !n.IsFolder() {
			return true
		}
		seenFile := false
		for _, c := range n.Children {
			if c.IsFolder() {
				assert.False(t, seenFile, "folder %s after a file in %s", c.Name, n.Path)
			} else {
				seenFile = true
			}
		}
		return true
	})

	assert.Equal(t, []string{"Alpha", "alpha2", "zeta", "a.md", "A.md", "b.md"}, names(nodes))
	zeta := Find(nodes, filepath.Join(root, "zeta"))
	require.NotNil(t, zeta)
	assert.Equal(t, []string{"B", "b.txt", "c.txt"}, names(zeta.Children))
	assert.Equal(t, 16, Count(nodes))
}

func TestBuildMissingDirectory(t *testing.T) {
	_, err := NewBuilder(osReader{}, nil, 0).Build(context.Background(), filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestBuildOnFile(t *testing.T) {
	root := t.TempDir()
	mkTree(t, root, "file.txt")
	_, err := NewBuilder(osReader{}, nil, 0).Build(context.Background(), filepath.Join(root, "file.txt"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotDir)
}

func TestBuildUnreadableSubdirectoryFailsWholeTree(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for root")
	}
	root := t.TempDir()
	mkTree(t, root, "ok/", "ok/file", "locked/", "locked/secret")
	locked := filepath.Join(root, "locked")
	require.NoError(t, os.Chmod(locked, 0o000))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	nodes, err := NewBuilder(osReader{}, nil, 0).Build(context.Background(), root)
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrPermission)
	assert.Nil(t, nodes)
}

func TestBuildSymlinks(t *testing.T) {
	root := t.TempDir()
	mkTree(t, root, "real/", "real/inner.txt", "target.txt")
	require.NoError(t, os.Symlink(filepath.Join(root, "real"), filepath.Join(root, "linkdir")))
	require.NoError(t, os.Symlink(filepath.Join(root, "target.txt"), filepath.Join(root, "linkfile")))
	require.NoError(t, os.Symlink(filepath.Join(root, "gone"), filepath.Join(root, "broken")))
	require.NoError(t, os.Symlink(root, filepath.Join(root, "real", "loop")))

	nodes, err := NewBuilder(osReader{}, nil, 0).Build(context.Background(), root)
	require.NoError(t, err)

	linkdir := Find(nodes, filepath.Join(root, "linkdir"))
	require.NotNil(t, linkdir)
	assert.True(t, linkdir.IsFolder())
	assert.NotNil(t, Find(linkdir.Children, filepath.Join(root, "linkdir", "inner.txt")))

	for _, name := range []string{"linkfile", "broken"} {
		n := Find(nodes, filepath.Join(root, name))
		require.NotNil(t, n, name)
		assert.Equal(t, KindFile, n.Type, name)
	}

	loop := Find(nodes, filepath.Join(root, "real", "loop"))
	require.NotNil(t, loop)
	assert.True(t, loop.IsFolder())
	assert.Empty(t, loop.Children)
}

func TestBuildBoundsConcurrency(t *testing.T) {
	root := t.TempDir()
	for i := 0; i < 40; i++ {
		mkTree(t, root, fmt.Sprintf("d%02d/sub/", i), fmt.Sprintf("d%02d/f.txt", i))
	}

	reader := &countingReader{}
	nodes, err := NewBuilder(reader, nil, 3).Build(context.Background(), root)
	require.NoError(t, err)
	assert.Len(t, nodes, 40)
	assert.LessOrEqual(t, reader.peak.Load(), int32(3))
}

func TestBuildCancelledContext(t *testing.T) {
	root := t.TempDir()
	mkTree(t, root, "a/", "a/b/", "c")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewBuilder(osReader{}, nil, 1).Build(ctx, root)
	assert.ErrorIs(t, err, context.Canceled)
}
