package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"hubrr/internal/registry"
	"hubrr/internal/server"
	"hubrr/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string

	serve := func(cmd *cobra.Command, args []string) error {
		cfg, err := server.LoadConfig(configPath)
		if err != nil {
			return err
		}
		l, err := logger.New(cfg.Mode, "")
		if err != nil {
			return err
		}
		defer l.Sync()

		reg, closeReg, err := openRegistry(cmd.Context(), cfg)
		if err != nil {
			l.Logger.Error("open registry", zap.String("backend", cfg.Backend), zap.Error(err))
			return err
		}
		defer closeReg()

		return server.New(cfg, reg, l).Run(cmd.Context())
	}

	root := &cobra.Command{
		Use:          "directory",
		Short:        "Key directory and ciphertext relay for hubrr",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE:         serve,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "optional YAML config file")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the directory (default)",
		Args:  cobra.NoArgs,
		RunE:  serve,
	})

	root.AddCommand(&cobra.Command{
		Use:   "token <subject>",
		Short: "Mint a bearer token for subject with the configured JWT secret",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := server.LoadConfig(configPath)
			if err != nil {
				return err
			}
			auth := server.NewAuthenticator(cfg.JWTSecret, cfg.TokenTTL)
			if auth == nil {
				return fmt.Errorf("JWT_SECRET is not set")
			}
			tok, err := auth.Issue(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	})
	return root
}

func openRegistry(ctx context.Context, cfg server.Config) (registry.Registry, func(), error) {
	switch cfg.Backend {
	case server.BackendRedis:
		client := registry.NewRedisClient(cfg.Redis)
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("redis ping: %w", err)
		}
		return registry.NewRedis(client), func() { _ = client.Close() }, nil
	case server.BackendPostgres:
		pg, err := registry.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return pg, pg.Close, nil
	default:
		return registry.NewMemory(), func() {}, nil
	}
}
