// Package filetree models a directory listing as an ordered tree of nodes
// and builds it from a live directory.
package filetree

import (
	"encoding/json"
	"path/filepath"
	"strings"
)

// Kind distinguishes files from folders.
type Kind string

const (
	KindFile   Kind = "file"
	KindFolder Kind = "folder"
)

// Node is one filesystem entry as the UI sees it. ID and Path are always
// the same absolute path. Extension is only set on files, Children only on
// folders.
type Node struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Path      string  `json:"path"`
	Type      Kind    `json:"type"`
	Extension *string `json:"extension,omitempty"`
	Children  []*Node `json:"children,omitempty"`
}

// NewFile creates a file node for path.
func NewFile(path string) *Node {
	name := filepath.Base(path)
	n := &Node{ID: path, Name: name, Path: path, Type: KindFile}
	if ext, ok := Extension(name); ok {
		n.Extension = &ext
	}
	return n
}

// NewFolder creates a folder node for path. A nil children slice is stored
// as an empty one so the folder always reports its (possibly empty) contents.
func NewFolder(path string, children []*Node) *Node {
	if children == nil {
		children = []*Node{}
	}
	return &Node{ID: path, Name: filepath.Base(path), Path: path, Type: KindFolder, Children: children}
}

// IsFolder reports whether n is a folder node.
func (n *Node) IsFolder() bool {
	return n.Type == KindFolder
}

// Extension returns the part of name after its last dot. Names without a
// dot, or ending in one, have no extension.
func Extension(name string) (string, bool) {
	i := strings.LastIndexByte(name, '.')
	if i < 0 || i == len(name)-1 {
		return "", false
	}
	return name[i+1:], true
}

// MarshalJSON keeps "children" present (possibly []) on folders and absent on files.
func (n Node) MarshalJSON() ([]byte, error) {
	type wire struct {
		ID        string   `json:"id"`
		Name      string   `json:"name"`
		Path      string   `json:"path"`
		Type      Kind     `json:"type"`
		Extension *string  `json:"extension,omitempty"`
		Children  *[]*Node `json:"children,omitempty"`
	}
	w := wire{ID: n.ID, Name: n.Name, Path: n.Path, Type: n.Type}
	if n.Type == KindFolder {
		children := n.Children
		if children == nil {
			children = []*Node{}
		}
		w.Children = &children
	} else {
		w.Extension = n.Extension
	}
	return json.Marshal(w)
}

// Walk visits every node depth-first in listing order. Returning false from
// fn stops the walk.
func Walk(nodes []*Node, fn func(n *Node, depth int) bool) {
	walk(nodes, 0, fn)
}

func walk(nodes []*Node, depth int, fn func(*Node, int) bool) bool {
	for _, n := range nodes {
		if !fn(n, depth) {
			return false
		}
		if n.IsFolder() && !walk(n.Children, depth+1, fn) {
			return false
		}
	}
	return true
}

// Count returns the number of nodes in the forest.
func Count(nodes []*Node) int {
	total := 0
	Walk(nodes, func(*Node, int) bool {
		total++
		return true
	})
	return total
}

// Find returns the node with the given path, or nil.
func Find(nodes []*Node, path string) *Node {
	var found *Node
	Walk(nodes, func(n *Node, _ int) bool {
		if n.Path == path {
			found = n
			return false
		}
		return true
	})
	return found
}
