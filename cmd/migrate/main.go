package main

import (
	"context"
	"fmt"
	"time"

	mongoMigration "turfbook/internal/migrations/mongo"
	postgresMigration "turfbook/internal/migrations/postgres"
	"turfbook/pkg/client"
	"turfbook/pkg/config"
	"turfbook/pkg/logger"
)

const JobName = "turfbook-migration"

// The job only needs datastore settings, so it parses the environment
// without the API's token and server validation.
func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	log := logger.New(logger.Config{Service: JobName})
	cfg, err := config.Parse()
	if err != nil {
		log.Fatal("Failed to read configuration", "error", err)
	}
	cfg.Log = logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Service: JobName})
	cfg.Client = client.NewClient()

	cfg.Log.Info("Starting migration job", "storage_driver", cfg.StorageDriver)
	cfg.SetStorage()

	err = migrate(ctx, cfg)
	cfg.GracefulShutdown()
	if err != nil {
		cfg.Log.Fatal("Migration failed", "error", err)
	}
	fmt.Println("Migration completed successfully.")
}

func migrate(ctx context.Context, cfg *config.Config) error {
	switch cfg.StorageDriver {
	case config.DriverPostgres:
		return postgresMigration.RunMigration(ctx, cfg.Client.Postgres)
	case config.DriverMongo:
		return mongoMigration.RunMigration(ctx, cfg.Client.Mongo.Database(cfg.MongoDatabaseName), cfg.Log)
	case config.DriverMemory:
		cfg.Log.Info("Memory driver has no schema to migrate")
		return nil
	}
	return fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
}
