package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/iwvelando/calcmaster/internal/server"
	"github.com/iwvelando/calcmaster/pkg/constants"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	var (
		configLocation string
		address        string
		maxUploadSize  string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the calculators over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := server.LoadConfig(configLocation)
			if err != nil {
				return err
			}
			if address != "" {
				cfg.Address = address
			}
			if maxUploadSize != "" {
				size, err := server.ParseSize(maxUploadSize)
				if err != nil {
					return err
				}
				cfg.SetUploadSizeBytes(size)
			}

			logger, err := initializeLogger(cfg.Logging, opts.logLevel, opts.logFormat)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer func() {
				_ = logger.Sync()
			}()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger.Info("starting server",
				zap.String("op", "main"),
				zap.String("address", cfg.Address),
				zap.Int64("maxUploadSize", cfg.UploadSizeBytes()),
				zap.String("version", Version),
			)
			return server.Run(ctx, logger, cfg, Version)
		},
	}

	f := cmd.Flags()
	f.StringVar(&configLocation, "config", constants.DefaultServerConfigFile, "path to server configuration file")
	f.StringVar(&address, "address", "", "listen address override")
	f.StringVar(&maxUploadSize, "max-upload-size", "", "maximum calculation file upload size override (e.g. 512K)")

	return cmd
}
