package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"hubrr/internal/crypto"
	"hubrr/internal/services/message"
)

func decryptCmd() *cobra.Command {
	var withSecret string
	cmd := &cobra.Command{
		Use:   "decrypt <blob>",
		Short: "Open a blob addressed to this device",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				pt string
				ok bool
			)
			if withSecret != "" {
				sec, err := crypto.X25519PrivateFromB64(withSecret)
				if err != nil {
					return fmt.Errorf("--with-secret: %w", err)
				}
				pt, ok = message.Open(args[0], sec)
			} else {
				pt, ok = wire.Messages.Decrypt(cmd.Context(), args[0])
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "cannot decrypt")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), pt)
			return nil
		},
	}
	cmd.Flags().StringVar(&withSecret, "with-secret", "", "base64 signed-prekey secret to use instead of the local store")
	return cmd
}
