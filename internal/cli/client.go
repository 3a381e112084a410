package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/fpt/folio/internal/app"
	"github.com/fpt/folio/internal/picker"
	"github.com/fpt/folio/pkg/client"
	"github.com/fpt/folio/pkg/filetree"
)

type clientFlags struct {
	root   *rootFlags
	asJSON bool
	h2c    bool
}

func (f *clientFlags) dial(cmd *cobra.Command) *client.Client {
	var opts []client.Option
	if f.h2c {
		opts = append(opts, client.WithH2C())
	}
	return client.New(f.root.baseURL(cmd.ErrOrStderr()), opts...)
}

// print writes v as JSON when --json is set, otherwise calls human.
func (f *clientFlags) print(w io.Writer, v any, human func()) error {
	if !f.asJSON {
		human()
		return nil
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// absArg resolves a command-line path against the working directory.
func absArg(arg string) (string, error) {
	return picker.ResolveFolder(arg)
}

func newClientCommands(root *rootFlags) []*cobra.Command {
	flags := &clientFlags{root: root}

	cmds := []*cobra.Command{
		{
			Use:   "open",
			Short: "Ask the agent to show its folder picker",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				path, err := flags.dial(cmd).OpenFolder(cmd.Context())
				if err != nil {
					return err
				}
				return flags.print(cmd.OutOrStdout(), path, func() {
					if path == nil {
						fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
						return
					}
					fmt.Fprintln(cmd.OutOrStdout(), *path)
				})
			},
		},
		newLsCommand(flags),
		{
			Use:   "cat <file>",
			Short: "Print a file",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				path, err := absArg(args[0])
				if err != nil {
					return err
				}
				res, err := flags.dial(cmd).ReadFile(cmd.Context(), path)
				if err != nil {
					return err
				}
				return flags.print(cmd.OutOrStdout(), res, func() {
					fmt.Fprint(cmd.OutOrStdout(), res.Content)
				})
			},
		},
		{
			Use:   "write <file> [content]",
			Short: "Replace a file's content",
			Long:  "Replace a file's content. Without a content argument the content is read from stdin.",
			Args:  cobra.RangeArgs(1, 2),
			RunE: func(cmd *cobra.Command, args []string) error {
				path, err := absArg(args[0])
				if err != nil {
					return err
				}
				var content string
				if len(args) == 2 {
					content = args[1]
				} else {
					data, err := io.ReadAll(cmd.InOrStdin())
					if err != nil {
						return errors.Wrap(err, "read stdin")
					}
					content = string(data)
				}
				res, err := flags.dial(cmd).WriteFile(cmd.Context(), path, content)
				if err != nil {
					return err
				}
				return flags.print(cmd.OutOrStdout(), res, func() {})
			},
		},
		{
			Use:   "touch <parent> <name>",
			Short: "Create an empty file",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				parent, err := absArg(args[0])
				if err != nil {
					return err
				}
				res, err := flags.dial(cmd).CreateFile(cmd.Context(), parent, args[1])
				if err != nil {
					return err
				}
				return flags.print(cmd.OutOrStdout(), res, func() {
					fmt.Fprintln(cmd.OutOrStdout(), res.Path)
				})
			},
		},
		{
			Use:   "mkdir <parent> <name>",
			Short: "Create a folder; succeeds if it already exists",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				parent, err := absArg(args[0])
				if err != nil {
					return err
				}
				res, err := flags.dial(cmd).CreateFolder(cmd.Context(), parent, args[1])
				if err != nil {
					return err
				}
				return flags.print(cmd.OutOrStdout(), res, func() {
					fmt.Fprintln(cmd.OutOrStdout(), res.Path)
				})
			},
		},
		{
			Use:   "mv <path> <new-name>",
			Short: "Rename a file or folder within its folder",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				path, err := absArg(args[0])
				if err != nil {
					return err
				}
				res, err := flags.dial(cmd).Rename(cmd.Context(), path, args[1])
				if err != nil {
					return err
				}
				return flags.print(cmd.OutOrStdout(), res, func() {
					fmt.Fprintln(cmd.OutOrStdout(), res.Path)
				})
			},
		},
		{
			Use:   "rm <path>",
			Short: "Delete a file, or a folder and everything under it",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				path, err := absArg(args[0])
				if err != nil {
					return err
				}
				res, err := flags.dial(cmd).Delete(cmd.Context(), path)
				if err != nil {
					return err
				}
				return flags.print(cmd.OutOrStdout(), res, func() {})
			},
		},
	}

	for _, c := range cmds {
		c.Flags().BoolVar(&flags.asJSON, "json", false, "Print the raw result as JSON")
		c.Flags().BoolVar(&flags.h2c, "h2c", false, "Talk cleartext HTTP/2 to the agent")
	}
	return cmds
}

func newLsCommand(flags *clientFlags) *cobra.Command {
	var depth int

	cmd := &cobra.Command{
		Use:   "ls <folder>...",
		Short: "List folders as trees",
		Long:  "List one or more folders. Several folders are read concurrently and printed in argument order.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := flags.dial(cmd)
			pending := make([]<-chan client.Outcome[[]*filetree.Node], len(args))
			for i, arg := range args {
				path, err := absArg(arg)
				if err != nil {
					return err
				}
				pending[i] = client.Go(func() ([]*filetree.Node, error) {
					return c.ReadFolder(cmd.Context(), path)
				})
			}

			out := cmd.OutOrStdout()
			colored := app.IsColorTerminal(out)
			var firstErr error
			for i, ch := range pending {
				res := <-ch
				if res.Err != nil {
					app.WriteError(cmd.ErrOrStderr(), errors.Wrap(res.Err, args[i]), false)
					if firstErr == nil {
						firstErr = res.Err
					}
					continue
				}
				err := flags.print(out, res.Value, func() {
					if len(args) > 1 {
						fmt.Fprintf(out, "%s:\n", args[i])
					}
					app.WriteTree(out, res.Value, depth, colored)
				})
				if err != nil {
					return err
				}
			}
			return firstErr
		},
	}
	cmd.Flags().IntVarP(&depth, "depth", "d", 0, "Levels to draw; 0 draws the whole tree")
	return cmd
}
