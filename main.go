package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"trader-storefront/config"
)

var (
	configPath string
	envPath    string
)

var rootCmd = &cobra.Command{
	Use:           "storefront",
	Short:         "Trader storefront: price catalog, running totals and order submission",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveCmd.RunE(cmd, args)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&envPath, "env-file", ".env", "path to a .env file (ignored in production)")
	rootCmd.AddCommand(serveCmd, catalogCmd)
}

// newLogger builds a production logger when ENV=production, a development one otherwise
func newLogger() (*zap.Logger, error) {
	if os.Getenv("ENV") == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// loadConfig overlays the .env file (outside production) and loads the config
func loadConfig(logger *zap.Logger) (*config.Config, error) {
	if os.Getenv("ENV") != "production" {
		// Overload so .env values win over the shell during development
		if err := godotenv.Overload(envPath); err != nil {
			logger.Warn("⚠️  .env file not found, using system environment variables", zap.String("path", envPath))
		} else {
			logger.Info("✓ loaded environment variables", zap.String("path", envPath))
		}
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
