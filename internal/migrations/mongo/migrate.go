package mongo

import (
	"context"
	"fmt"

	"agenda/internal/bookings/repository"
	"agenda/internal/catalog"
	"agenda/internal/customers"
	"agenda/internal/migrations/mongo/validators"
	"agenda/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type indexFunc func(ctx context.Context, db *mongo.Database) error

// schema lists the collections whose documents are validated server-side.
var schema = map[string]bson.M{
	repository.CollectionName: validators.BookingValidator,
	customers.CollectionName:  validators.CustomerValidator,
}

var indexes = []struct {
	name   string
	ensure indexFunc
}{
	{repository.CollectionName, repository.EnsureIndexes},
	{repository.SlotLockCollectionName, repository.EnsureSlotLockIndexes},
	{customers.CollectionName, customers.EnsureIndexes},
	{"catalog", catalog.EnsureIndexes},
}

// RunMigration creates validated collections and every index the booking
// flow relies on. It is idempotent.
func RunMigration(ctx context.Context, db *mongo.Database, log *logger.Logger) error {
	log.Info("Running Mongo migrations", "database", db.Name())

	for name, validator := range schema {
		if err := ensureCollection(ctx, db, name, validator, log); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", name, err)
		}
	}

	for _, idx := range indexes {
		if err := idx.ensure(ctx, db); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", idx.name, err)
		}
		log.Debug("Ensured indexes", "collection", idx.name)
	}

	log.Info("All migrations applied successfully")
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M, log *logger.Logger) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		log.Info("Creating collection", "collection", name)
		opts := options.CreateCollection().SetValidator(validator)
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
		return nil
	}

	command := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
	}
	if err := db.RunCommand(ctx, command).Err(); err != nil {
		// collMod needs dbAdmin; a missing grant must not block startup
		log.Warn("Failed updating validator", "collection", name, "error", err)
	}
	return nil
}
