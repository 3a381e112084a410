package filetree

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtension(t *testing.T) {
	cases := []struct {
		name string
		ext  string
		ok   bool
	}{
		{"report.final.txt", "txt", true},
		{"README", "", false},
		{"notes.md", "md", true},
		{".gitignore", "gitignore", true},
		{"draft.", "", false},
		{"archive.tar.gz", "gz", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ext, ok := Extension(tc.name)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.ext, ext)
		})
	}
}

func TestNewFileAndFolder(t *testing.T) {
	f := NewFile("/proj/report.final.txt")
	assert.Equal(t, "/proj/report.final.txt", f.ID)
	assert.Equal(t, f.ID, f.Path)
	assert.Equal(t, "report.final.txt", f.Name)
	assert.Equal(t, KindFile, f.Type)
	require.NotNil(t, f.Extension)
	assert.Equal(t, "txt", *f.Extension)
	assert.Nil(t, f.Children)

	readme := NewFile("/proj/README")
	assert.Nil(t, readme.Extension)

	d := NewFolder("/proj/src", nil)
	assert.True(t, d.IsFolder())
	assert.NotNil(t, d.Children)
	assert.Empty(t, d.Children)
	assert.Nil(t, d.Extension)
}

func TestNodeJSONShape(t *testing.T) {
	nodes := []*Node{
		NewFolder("/proj/empty", nil),
		NewFile("/proj/README"),
		NewFile("/proj/notes.txt"),
	}
	data, err := json.Marshal(nodes)
	require.NoError(t, err)

	var raw []map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Len(t, raw, 3)

	children, ok := raw[0]["children"]
	assert.True(t, ok, "empty folder must carry children")
	assert.Equal(t, []any{}, children)
	assert.Equal(t, "folder", raw[0]["type"])

	_, hasChildren := raw[1]["children"]
	assert.False(t, hasChildren, "file must not carry children")
	_, hasExt := raw[1]["extension"]
	assert.False(t, hasExt, "README has no extension")

	assert.Equal(t, "txt", raw[2]["extension"])
	assert.Equal(t, "/proj/notes.txt", raw[2]["id"])
}

func TestNodeJSONDecode(t *testing.T) {
	src := `[{"id":"/p/a","name":"a","path":"/p/a","type":"folder","children":[{"id":"/p/a/b.md","name":"b.md","path":"/p/a/b.md","type":"file","extension":"md"}]}]`
	var nodes []*Node
	require.NoError(t, json.Unmarshal([]byte(src), &nodes))
	require.Len(t, nodes, 1)
	assert.True(t, nodes[0].IsFolder())
	require.Len(t, nodes[0].Children, 1)
	assert.Equal(t, "md", *nodes[0].Children[0].Extension)
}

func TestWalkCountFind(t *testing.T) {
	nodes := []*Node{
		NewFolder("/p/a", []*Node{NewFile("/p/a/x.txt"), NewFolder("/p/a/b", []*Node{NewFile("/p/a/b/y")})}),
		NewFile("/p/z"),
	}
	assert.Equal(t, 5, Count(nodes))
	require.NotNil(t, Find(nodes, "/p/a/b/y"))
	assert.Nil(t, Find(nodes, "/p/missing"))

	var depths []int
	Walk(nodes, func(n *Node, depth int) bool {
		depths = append(depths, depth)
		return true
	})
	assert.Equal(t, []int{0, 1, 1, 2, 0}, depths)
}
