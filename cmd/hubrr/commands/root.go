package commands

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/spf13/cobra"

	"hubrr/internal/app"
	"hubrr/pkg/logger"
)

var (
	flags   app.Config
	timeout int
	wire    *app.Wire
	log     *logger.Logger
)

// Execute runs the CLI with the process arguments.
func Execute(ctx context.Context) error {
	return Run(ctx, os.Args[1:])
}

// Run executes the CLI with args. The key store is closed and logs are
// flushed however the command ends.
func Run(ctx context.Context, args []string) (err error) {
	flags, timeout = app.Config{}, 0
	wire, log = nil, nil
	defer func() {
		if log != nil {
			log.Sync()
		}
		if wire != nil {
			err = errors.Join(err, wire.Close())
		}
	}()

	root := &cobra.Command{
		Use:          "hubrr",
		Short:        "End-to-end key management and message sealing for hubrr",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig()
			if err != nil {
				return err
			}
			applyFlags(cmd, &cfg)

			level := "warn"
			if cfg.Verbose {
				level = "debug"
			}
			if log, err = logger.New(logger.DevelopmentMode, level); err != nil {
				return err
			}

			if wire, err = app.NewWire(cfg, log.Logger); err != nil {
				return err
			}
			if id, ok := wire.Keys.DeviceID(cmd.Context()); ok {
				cmd.SetContext(logger.WithDeviceID(cmd.Context(), id.String()))
			}
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.Home, "home", "", "key directory (default ~/.hubrr, env HUBRR_HOME)")
	pf.StringVar(&flags.APIBase, "api", "", "directory base URL (env HUBRR_API_BASE)")
	pf.StringVar(&flags.Token, "token", "", "bearer token (env HUBRR_TOKEN)")
	pf.StringVar(&flags.Store, "store", "", "key store: file, sqlite or memory (env HUBRR_STORE)")
	pf.StringVarP(&flags.Passphrase, "passphrase", "p", "", "seal the file key store (env HUBRR_PASSPHRASE)")
	pf.StringVar(&flags.WSURL, "ws", "", "relay websocket URL (env HUBRR_WS_URL)")
	pf.IntVar(&timeout, "timeout", 0, "directory request timeout in seconds (env HUBRR_HTTP_TIMEOUT)")
	pf.BoolVarP(&flags.Verbose, "verbose", "v", false, "debug logging to stderr")

	root.AddCommand(
		initCmd(),
		fingerprintCmd(),
		bundleCmd(),
		fetchCmd(),
		encryptCmd(),
		decryptCmd(),
		sendCmd(),
		listenCmd(),
	)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// applyFlags overrides environment values with flags the user actually set.
func applyFlags(cmd *cobra.Command, cfg *app.Config) {
	pf := cmd.Flags()
	if pf.Changed("home") {
		cfg.Home = flags.Home
	}
	if pf.Changed("api") {
		cfg.APIBase = flags.APIBase
	}
	if pf.Changed("token") {
		cfg.Token = flags.Token
	}
	if pf.Changed("store") {
		cfg.Store = flags.Store
	}
	if pf.Changed("passphrase") {
		cfg.Passphrase = flags.Passphrase
	}
	if pf.Changed("ws") {
		cfg.WSURL = flags.WSURL
	}
	if pf.Changed("timeout") {
		cfg.HTTPTimeout = time.Duration(timeout) * time.Second
	}
	cfg.Verbose = flags.Verbose
}
