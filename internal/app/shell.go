// Package app is the interactive front end of the bridge: a small shell
// that drives a running agent through the client facade.
package app

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/fpt/folio/pkg/client"
)

// errQuit ends the shell loop.
var errQuit = errors.New("quit")

// Command is one shell command.
type Command struct {
	Name        string
	Usage       string
	Description string
	Run         func(ctx context.Context, s *Shell, args []string) error
}

// Commands returns every shell command, sorted by name.
func Commands() []Command {
	cmds := []Command{
		{"open", "open", "Show the agent's folder picker and make the chosen folder current", cmdOpen},
		{"cd", "cd <folder>", "Make a folder current", cmdCd},
		{"pwd", "pwd", "Print the current folder", cmdPwd},
		{"ls", "ls [folder]", "List a folder, one level deep", cmdLs},
		{"tree", "tree [folder]", "List a folder recursively", cmdTree},
		{"cat", "cat <file>", "Print a file", cmdCat},
		{"write", "write <file> <text...>", "Replace a file's content", cmdWrite},
		{"touch", "touch <file>", "Create an empty file", cmdTouch},
		{"mkdir", "mkdir <folder>", "Create a folder", cmdMkdir},
		{"mv", "mv <path> <new-name>", "Rename within the same folder", cmdMv},
		{"rm", "rm <path>", "Delete a file or folder", cmdRm},
		{"help", "help", "Show available commands", cmdHelp},
		{"quit", "quit", "Leave the shell", cmdQuit},
		{"exit", "exit", "Leave the shell (alias for quit)", cmdQuit},
	}
	sort.Slice(cmds, func(i, j int) bool { return cmds[i].Name < cmds[j].Name })
	return cmds
}

func findCommand(name string) (Command, bool) {
	for _, c := range Commands() {
		if c.Name == name {
			return c, true
		}
	}
	return Command{}, false
}

// Shell keeps the current folder between commands.
type Shell struct {
	client  *client.Client
	out     io.Writer
	colored bool
	folder  string
	line    string // input line of the running command
}

// NewShell creates a shell writing to out. folder may be empty until the
// user opens one.
func NewShell(c *client.Client, out io.Writer, folder string) *Shell {
	return &Shell{client: c, out: out, colored: IsColorTerminal(out), folder: folder}
}

// Folder returns the current folder.
func (s *Shell) Folder() string { return s.folder }

// Execute runs one input line. It reports whether the shell should exit.
// Failed calls are printed, not returned.
func (s *Shell) Execute(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	name := strings.TrimPrefix(fields[0], "/")
	cmd, ok := findCommand(name)
	if !ok {
		fmt.Fprintf(s.out, "Unknown command: %s (try 'help')\n", name)
		return false
	}

	s.line = line
	err := cmd.Run(ctx, s, fields[1:])
	switch {
	case err == nil:
		return false
	case errors.Is(err, errQuit):
		return true
	default:
		WriteError(s.out, err, s.colored)
		return false
	}
}

// resolve turns a command argument into an absolute path. Relative paths
// are taken from the current folder.
func (s *Shell) resolve(arg string) (string, error) {
	if filepath.IsAbs(arg) {
		return filepath.Clean(arg), nil
	}
	if s.folder == "" {
		return "", errors.New("no folder is open; use 'open' or 'cd' with an absolute path")
	}
	return filepath.Join(s.folder, arg), nil
}

func (s *Shell) target(args []string) (string, error) {
	if len(args) == 0 {
		if s.folder == "" {
			return "", errors.New("no folder is open")
		}
		return s.folder, nil
	}
	return s.resolve(args[0])
}

// afterFields drops the first n whitespace-separated fields of line and the
// single whitespace character after them. The remainder is kept as typed.
func afterFields(line string, n int) string {
	rest := line
	for range n {
		rest = strings.TrimLeftFunc(rest, unicode.IsSpace)
		end := strings.IndexFunc(rest, unicode.IsSpace)
		if end < 0 {
			return ""
		}
		rest = rest[end:]
	}
	_, size := utf8.DecodeRuneInString(rest)
	return rest[size:]
}

func usage(name string) error {
	c, _ := findCommand(name)
	return errors.Errorf("usage: %s", c.Usage)
}

func cmdOpen(ctx context.Context, s *Shell, _ []string) error {
	path, err := s.client.OpenFolder(ctx)
	if err != nil {
		return err
	}
	if path == nil {
		fmt.Fprintln(s.out, "Cancelled.")
		return nil
	}
	s.folder = *path
	fmt.Fprintln(s.out, s.folder)
	return nil
}

func cmdCd(ctx context.Context, s *Shell, args []string) error {
	if len(args) != 1 {
		return usage("cd")
	}
	path, err := s.resolve(args[0])
	if err != nil {
		return err
	}
	// Listing the folder both checks it and registers it as a root.
	if _, err := s.client.ReadFolder(ctx, path); err != nil {
		return err
	}
	s.folder = path
	return nil
}

func cmdPwd(_ context.Context, s *Shell, _ []string) error {
	if s.folder == "" {
		return errors.New("no folder is open")
	}
	fmt.Fprintln(s.out, s.folder)
	return nil
}

func list(ctx context.Context, s *Shell, args []string, depth int) error {
	path, err := s.target(args)
	if err != nil {
		return err
	}
	nodes, err := s.client.ReadFolder(ctx, path)
	if err != nil {
		return err
	}
	if len(nodes) == 0 {
		fmt.Fprintln(s.out, "(empty)")
		return nil
	}
	WriteTree(s.out, nodes, depth, s.colored)
	return nil
}

func cmdLs(ctx context.Context, s *Shell, args []string) error   { return list(ctx, s, args, 1) }
func cmdTree(ctx context.Context, s *Shell, args []string) error { return list(ctx, s, args, 0) }

func cmdCat(ctx context.Context, s *Shell, args []string) error {
	if len(args) != 1 {
		return usage("cat")
	}
	path, err := s.resolve(args[0])
	if err != nil {
		return err
	}
	res, err := s.client.ReadFile(ctx, path)
	if err != nil {
		return err
	}
	fmt.Fprint(s.out, res.Content)
	if res.Content != "" && !strings.HasSuffix(res.Content, "\n") {
		fmt.Fprintln(s.out)
	}
	return nil
}

func cmdWrite(ctx context.Context, s *Shell, args []string) error {
	if len(args) < 1 {
		return usage("write")
	}
	path, err := s.resolve(args[0])
	if err != nil {
		return err
	}
	// Text is taken verbatim from the line, after the path and one separator.
	content := afterFields(s.line, 2)
	if _, err := s.client.WriteFile(ctx, path, content); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Wrote %d bytes to %s\n", len(content), path)
	return nil
}

func cmdTouch(ctx context.Context, s *Shell, args []string) error {
	if len(args) != 1 {
		return usage("touch")
	}
	path, err := s.resolve(args[0])
	if err != nil {
		return err
	}
	res, err := s.client.CreateFile(ctx, filepath.Dir(path), filepath.Base(path))
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, res.Path)
	return nil
}

func cmdMkdir(ctx context.Context, s *Shell, args []string) error {
	if len(args) != 1 {
		return usage("mkdir")
	}
	path, err := s.resolve(args[0])
	if err != nil {
		return err
	}
	res, err := s.client.CreateFolder(ctx, filepath.Dir(path), filepath.Base(path))
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, res.Path)
	return nil
}

func cmdMv(ctx context.Context, s *Shell, args []string) error {
	if len(args) != 2 {
		return usage("mv")
	}
	path, err := s.resolve(args[0])
	if err != nil {
		return err
	}
	res, err := s.client.Rename(ctx, path, args[1])
	if err != nil {
		return err
	}
	if s.folder == path {
		s.folder = res.Path
	}
	fmt.Fprintln(s.out, res.Path)
	return nil
}

func cmdRm(ctx context.Context, s *Shell, args []string) error {
	if len(args) != 1 {
		return usage("rm")
	}
	path, err := s.resolve(args[0])
	if err != nil {
		return err
	}
	if _, err := s.client.Delete(ctx, path); err != nil {
		return err
	}
	if s.folder == path {
		s.folder = filepath.Dir(path)
	}
	return nil
}

func cmdHelp(_ context.Context, s *Shell, _ []string) error {
	fmt.Fprintln(s.out, "Commands:")
	for _, c := range Commands() {
		fmt.Fprintf(s.out, "  %-24s %s\n", c.Usage, c.Description)
	}
	fmt.Fprintln(s.out, "Relative paths are taken from the current folder.")
	return nil
}

func cmdQuit(context.Context, *Shell, []string) error {
	return errQuit
}
