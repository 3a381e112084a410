package app

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/term"

	"github.com/fpt/folio/pkg/bridge"
	"github.com/fpt/folio/pkg/filetree"
)

const (
	colorFolder = "\x1b[34m"
	colorError  = "\x1b[31m"
	colorFaint  = "\x1b[90m"
	colorReset  = "\x1b[0m"
)

// IsColorTerminal reports whether w is a terminal that can take ANSI colors.
func IsColorTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// WriteTree draws nodes as an indented tree. depth limits how many levels
// are drawn; zero or less draws everything. Folders end with a slash.
func WriteTree(w io.Writer, nodes []*filetree.Node, depth int, colored bool) {
	writeTree(w, nodes, "", 1, depth, colored)
}

func writeTree(w io.Writer, nodes []*filetree.Node, indent string, level, depth int, colored bool) {
	for i, n := range nodes {
		branch, next := "├── ", "│   "
		if i == len(nodes)-1 {
			branch, next = "└── ", "    "
		}

		name := n.Name
		if n.IsFolder() {
			name += "/"
			if colored {
				name = colorFolder + name + colorReset
			}
		}
		fmt.Fprintf(w, "%s%s%s\n", indent, branch, name)

		if n.IsFolder() && (depth <= 0 || level < depth) {
			writeTree(w, n.Children, indent+next, level+1, depth, colored)
		}
	}
}

// WriteError prints a failed bridge call as "kind: message". Local errors
// are prefixed with "error".
func WriteError(w io.Writer, err error, colored bool) {
	prefix := "error"
	var be *bridge.Error
	if errors.As(err, &be) {
		prefix = string(be.Kind)
	}
	line := fmt.Sprintf("%s: %v", prefix, err)
	if colored {
		line = colorError + line + colorReset
	}
	fmt.Fprintln(w, line)
}

// WriteHeader prints the shell banner with the agent address.
func WriteHeader(w io.Writer, addr string, colored bool) {
	title := fmt.Sprintf("folio shell (%s)", addr)
	hint := "Type 'help' for commands, '/' to pick one, 'quit' to leave."
	if colored {
		hint = colorFaint + hint + colorReset
	}
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, hint)
	fmt.Fprintln(w, strings.Repeat("=", 60))
}
