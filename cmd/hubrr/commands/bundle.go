package commands

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"hubrr/internal/directory"
)

func bundleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bundle",
		Short: "Print the public bundle this device publishes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := wire.Keys.LocalBundle(cmd.Context())
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(directory.FromBundle(b))
		},
	}
}
