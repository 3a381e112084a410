package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/fpt/folio/pkg/bridge"
)

func newSchemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the bridge wire contract as JSON Schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(bridge.Schema())
		},
	}
}
