package main

import (
	"context"
	"time"

	mongoMigration "agenda/internal/migrations/mongo"
	"agenda/pkg/client"
	"agenda/pkg/config"
)

const JobName = "mongo-migration"

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	cfg := config.Load(JobName)
	clients := client.NewClient()
	clients.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)

	cfg.Log.Info("Starting Mongo migration job")
	err := mongoMigration.RunMigration(ctx, clients.Mongo.Database(cfg.MongoDatabaseName), cfg.Log)
	if closeErr := clients.Close(context.Background()); closeErr != nil {
		cfg.Log.Error("Failed to close clients", "error", closeErr)
	}
	if err != nil {
		cfg.Log.Fatal("Migration failed", "error", err)
	}
	cfg.Log.Info("Migration completed successfully")
}
