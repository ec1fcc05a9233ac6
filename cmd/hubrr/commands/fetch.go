package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"hubrr/internal/crypto"
	"hubrr/internal/domain"
)

// fetch <peer>: show a peer's published bundle.
func fetchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch <peer>",
		Short: "Fetch a peer's bundle and check its signature",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := wire.Directory.Fetch(cmd.Context(), domain.PeerID(args[0]))
			if err != nil {
				return err
			}
			sig := "valid"
			if !crypto.VerifySignedPreKey(b) {
				sig = "INVALID"
			}
			out := cmd.OutOrStdout()
			if b.DeviceID != "" {
				fmt.Fprintf(out, "Device:           %s\n", b.DeviceID)
			}
			fmt.Fprintf(out, "Fingerprint:      %s\n", crypto.Fingerprint(b.IdentityPub))
			fmt.Fprintf(out, "Signed prekey:    %s (signature %s)\n", crypto.B64(b.SignedPreKeyPub.Slice()), sig)
			fmt.Fprintf(out, "One-time prekeys: %d\n", len(b.OneTimePreKeys))
			return nil
		},
	}
}
