package main

import (
	"alcyxob/fitness-planner/internal/config"
	"alcyxob/fitness-planner/internal/logger"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// --- Global Command Variables ---
var (
	configPath string

	cfg config.Config
	log *logger.Logger

	rootCmd = &cobra.Command{
		Use:   "fitness-planner",
		Short: "Periodized training plans with per-day customization",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if cfg, err = config.LoadConfig(configPath); err != nil {
				return fmt.Errorf("could not load config: %w", err)
			}
			if log, err = logger.New(cfg.Log.Mode); err != nil {
				return fmt.Errorf("could not build logger: %w", err)
			}
			log.Info("configuration loaded", "driver", cfg.Database.Driver, "address", cfg.Server.Address)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if log != nil {
				log.Sync()
			}
		},
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE:  runServe, // Defined in serve.go
	}

	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Create tables (SQL) or indexes (MongoDB) and exit",
		RunE:  runMigrate, // Defined in store.go
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", ".", "directory containing config.yaml")
	rootCmd.AddCommand(serveCmd, migrateCmd)
}

// @title Fitness Planner API
// @version 1.0
// @description Macrocycle plans, day resolution and per-day set customization.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
