package main

import (
	"alcyxob/fitness-planner/internal/config"
	"alcyxob/fitness-planner/internal/logger"
	"alcyxob/fitness-planner/internal/repository"
	"alcyxob/fitness-planner/internal/repository/mongo"
	"alcyxob/fitness-planner/internal/repository/sqldb"
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// backend is an opened persistence layer.
type backend struct {
	store   *repository.Store
	migrate func(ctx context.Context) error
	close   func() error
}

// openBackend connects the store selected by database.driver.
func openBackend(cfg config.DatabaseConfig, log *logger.Logger) (*backend, error) {
	switch cfg.Driver {
	case "mongo":
		client, err := mongo.ConnectDB(cfg.URI)
		if err != nil {
			return nil, fmt.Errorf("could not connect to MongoDB: %w", err)
		}
		db := client.Database(cfg.Name)
		return &backend{
			store:   mongo.NewStore(client, db),
			migrate: func(ctx context.Context) error { return mongo.EnsureIndexes(ctx, db) },
			close:   func() error { return mongo.DisconnectDB(client) },
		}, nil
	case "postgres", "sqlite":
		db, err := sqldb.Connect(cfg.Driver, cfg.DSN)
		if err != nil {
			return nil, err
		}
		log.Info("connected to SQL database", "driver", cfg.Driver)
		return &backend{
			store:   sqldb.NewStore(db),
			migrate: func(ctx context.Context) error { return sqldb.AutoMigrate(db.WithContext(ctx)) },
			close:   func() error { return sqldb.Close(db) },
		}, nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}
}

func runMigrate(cmd *cobra.Command, args []string) error {
	be, err := openBackend(cfg.Database, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := be.close(); err != nil {
			log.Error("failed to close database", "error", err)
		}
	}()

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()
	if err := be.migrate(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	log.Info("migration completed", "driver", cfg.Database.Driver)
	return nil
}
