package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"trader-storefront/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the storefront page and JSON API",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger()
		if err != nil {
			return err
		}
		defer logger.Sync()

		cfg, err := loadConfig(logger)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		application, err := app.Initialize(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer application.Close()

		logger.Info("storefront configured",
			zap.String("catalog_source", cfg.Catalog.Source),
			zap.String("fallback", cfg.Catalog.Fallback),
			zap.String("port", cfg.Server.Port),
		)
		return application.Serve(ctx)
	},
}
