package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"hubrr/internal/crypto"
	"hubrr/internal/domain"
	"hubrr/pkg/logger"
)

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create local keys if missing and publish the public bundle",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			keys, err := wire.Keys.EnsureKeys(cmd.Context())
			if err != nil && !errors.Is(err, domain.ErrPublish) {
				return err
			}
			ctx := logger.WithDeviceID(cmd.Context(), keys.DeviceID.String())
			log.With(ctx).Debug("keys ready", zap.Bool("published", err == nil))
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Device:      %s\n", keys.DeviceID)
			fmt.Fprintf(out, "Fingerprint: %s\n", crypto.Fingerprint(keys.IdentityPub))
			if err != nil {
				fmt.Fprintln(out, "Keys are stored locally but the bundle was not published.")
				return err
			}
			fmt.Fprintln(out, "Bundle published.")
			return nil
		},
	}
}
