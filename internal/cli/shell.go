package cli

import (
	"github.com/spf13/cobra"

	"github.com/fpt/folio/internal/app"
	"github.com/fpt/folio/internal/picker"
	"github.com/fpt/folio/pkg/client"
)

func newShellCommand(root *rootFlags) *cobra.Command {
	var folder string

	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Browse and edit files through the agent interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			base := root.baseURL(cmd.ErrOrStderr())
			if folder != "" {
				var err error
				if folder, err = picker.ResolveFolder(folder); err != nil {
					return err
				}
			}
			s := app.NewShell(client.New(base), cmd.OutOrStdout(), folder)
			return app.StartInteractiveMode(cmd.Context(), s, base)
		},
	}
	cmd.Flags().StringVar(&folder, "folder", "", "Folder to start in")
	return cmd
}
