package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func fingerprintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fingerprint",
		Short: "Print your identity fingerprint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fp, err := wire.Keys.Fingerprint(cmd.Context())
			if err != nil {
				return err
			}
			ready, err := wire.Keys.Ready(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), fp)
			if !ready {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning: bundle not published yet; run init")
			}
			return nil
		},
	}
}
