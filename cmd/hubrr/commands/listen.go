package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"hubrr/internal/domain"
	"hubrr/internal/transport"
)

// listen: print relayed messages until interrupted.
func listenCmd() *cobra.Command {
	var as string
	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Receive relayed messages and decrypt those addressed to this device",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			conn, err := wire.DialRelay(ctx, domain.PeerID(as))
			if err != nil {
				return err
			}
			defer conn.Close()

			out := cmd.OutOrStdout()
			for {
				env, err := conn.Receive(ctx)
				if err != nil {
					if ctx.Err() != nil || errors.Is(err, transport.ErrClosed) {
						return nil
					}
					return err
				}
				msg := domain.DecryptedMessage{From: env.From, Timestamp: env.Timestamp}
				pt, ok := wire.Messages.Decrypt(ctx, env.Payload)
				if !ok {
					log.With(ctx).Debug("undecryptable envelope", zap.String("from", string(env.From)))
					fmt.Fprintf(out, "[%s] %s: <cannot decrypt>\n", ts(msg.Timestamp), msg.From)
					continue
				}
				msg.Plaintext = pt
				fmt.Fprintf(out, "[%s] %s: %s\n", ts(msg.Timestamp), msg.From, msg.Plaintext)
			}
		},
	}
	cmd.Flags().StringVar(&as, "as", "", "relay identity (default: this device id)")
	return cmd
}

func ts(unix int64) string {
	return time.Unix(unix, 0).Format(time.TimeOnly)
}
