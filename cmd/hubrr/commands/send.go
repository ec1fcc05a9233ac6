package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"hubrr/internal/domain"
)

// send <peer> <message>: encrypt and deliver a message to <peer>.
func sendCmd() *cobra.Command {
	var as string
	cmd := &cobra.Command{
		Use:   "send <peer> <message>",
		Short: "Encrypt and send a message to a peer over the relay",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			peer := domain.PeerID(args[0])

			blob, err := wire.Messages.Encrypt(ctx, peer, args[1])
			if err != nil {
				return err
			}

			conn, err := wire.DialRelay(ctx, domain.PeerID(as))
			if err != nil {
				return err
			}
			defer conn.Close()

			if err := conn.Send(ctx, domain.Envelope{To: peer, Payload: blob}); err != nil {
				return err
			}
			log.With(ctx).Debug("sent", zap.String("to", string(peer)), zap.Int("len", len(blob)))
			fmt.Fprintln(cmd.OutOrStdout(), "sent")
			return nil
		},
	}
	cmd.Flags().StringVar(&as, "as", "", "relay identity (default: this device id)")
	return cmd
}
