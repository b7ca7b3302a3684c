package customers

import (
	"context"
	"errors"
	"fmt"
	"time"

	customerserrors "agenda/internal/customers/errors"
	"agenda/pkg/config"
	mongotx "agenda/pkg/db/mongo"
	"agenda/pkg/model"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Customers"
)

type mongoStore struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoStore(cfg *config.Config, db *mongo.Database) Store {
	return &mongoStore{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

// EnsureIndexes creates the unique (tenant_id, phone) index the upsert relies on.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(CollectionName).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "tenant_id", Value: 1}, {Key: "phone", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("tenant_phone_unique"),
	})
	if err != nil {
		return fmt.Errorf("failed to create customer indexes: %w", err)
	}
	return nil
}

func (s *mongoStore) FindByPhone(ctx context.Context, tenantID, phone string) (*model.Customer, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()

	var customer model.Customer
	err := s.collection.FindOne(ctx, bson.M{"tenant_id": tenantID, "phone": phone}).Decode(&customer)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, customerserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find customer: %w", err)
	}
	return &customer, nil
}

func (s *mongoStore) Upsert(ctx context.Context, customer *model.Customer) (string, error) {
	id, err := s.upsert(ctx, customer)
	// Two first-time upserts can race on the unique index; the loser retries
	// and lands on the winner's document.
	if mongo.IsDuplicateKeyError(err) {
		id, err = s.upsert(ctx, customer)
	}
	return id, err
}

func (s *mongoStore) upsert(ctx context.Context, customer *model.Customer) (string, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, s.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	newID := customer.ID
	if newID == "" {
		newID = uuid.NewString()
	}

	filter := bson.M{"tenant_id": customer.TenantID, "phone": customer.Phone}
	update := bson.M{
		"$set": bson.M{
			"name":       customer.Name,
			"email":      customer.Email,
			"updated_at": now,
		},
		"$setOnInsert": bson.M{
			"_id":        newID,
			"created_at": now,
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After).
		SetProjection(bson.M{"_id": 1})

	var out struct {
		ID string `bson:"_id"`
	}
	if err := s.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to upsert customer: %w", err)
	}
	return out.ID, nil
}
