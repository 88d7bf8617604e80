package cli

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cleoai/cleo/internal/assets"
	"github.com/cleoai/cleo/internal/config"
	"github.com/cleoai/cleo/internal/gateway"
	"github.com/cleoai/cleo/internal/logging"
	"github.com/cleoai/cleo/internal/provider"
	"github.com/cleoai/cleo/internal/telemetry"
)

func newGatewayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gateway",
		Short: "Manage the Cleo gateway server",
	}

	cmd.AddCommand(newGatewayRunCmd())
	return cmd
}

func newGatewayRunCmd() *cobra.Command {
	var (
		port int
		bind string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the gateway server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(paths.Config)
			if err != nil {
				return err
			}

			if port != 0 {
				cfg.Gateway.Port = port
			}
			if bind != "" {
				cfg.Gateway.Bind = bind
			}

			issues := config.Validate(&cfg)
			if len(issues) > 0 {
				for _, issue := range issues {
					log.Error().Str("path", issue.Path).Msg(issue.Message)
				}
				return fmt.Errorf("config validation failed with %d issue(s)", len(issues))
			}

			if err := paths.EnsureDirs(); err != nil {
				return fmt.Errorf("creating data directories: %w", err)
			}

			if cfg.Logging.File != "" {
				log = logging.NewWithFile(cfg.Logging.File, cfg.Logging.Level)
			}

			// Block until SIGINT/SIGTERM
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			gen, err := provider.New(ctx, cfg.Provider, log)
			if err != nil {
				return fmt.Errorf("initializing provider: %w", err)
			}
			if closer, ok := gen.(io.Closer); ok {
				defer closer.Close()
			}

			uploadDir := cfg.Uploads.Dir
			if uploadDir == "" {
				uploadDir = paths.Uploads
			}
			store, err := assets.Open(uploadDir, log)
			if err != nil {
				return fmt.Errorf("opening asset store: %w", err)
			}
			defer store.Close()

			opts := []gateway.ServerOption{
				gateway.WithAssets(store),
			}

			if cfg.Telemetry.Enabled {
				metricsFile := cfg.Telemetry.File
				if metricsFile == "" {
					metricsFile = filepath.Join(paths.Logs, "cleo_metrics.log")
				}
				metrics, err := telemetry.Init(ctx, metricsFile, paths.Logs)
				if err != nil {
					return fmt.Errorf("initializing telemetry: %w", err)
				}
				defer metrics.Shutdown(context.Background())
				opts = append(opts, gateway.WithTelemetry(metrics))
			}

			srv := gateway.New(cfg, log, gen, opts...)
			return srv.Start(ctx)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "override gateway port")
	cmd.Flags().StringVar(&bind, "bind", "", "override bind mode (loopback, lan, custom)")

	return cmd
}
