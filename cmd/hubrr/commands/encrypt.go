package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"hubrr/internal/domain"
)

// encrypt <peer> <message>: print the packed blob for <peer>.
func encryptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "encrypt <peer> <message>",
		Short: "Seal a message for a peer and print the base64 blob",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			blob, err := wire.Messages.Encrypt(cmd.Context(), domain.PeerID(args[0]), args[1])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), blob)
			return nil
		},
	}
}
