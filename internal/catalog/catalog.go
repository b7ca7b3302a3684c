package catalog

import (
	"context"
	"errors"
	"fmt"

	"agenda/pkg/config"
	mongotx "agenda/pkg/db/mongo"
	apperrors "agenda/pkg/errors"
	"agenda/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	ServicesCollection = "Services"
	StaffCollection    = "Staff"
	TenantsCollection  = "Tenants"
)

// MongoCatalog reads the tenant's services and staff. They are maintained
// by the dashboard; this side only reads them.
type MongoCatalog struct {
	cfg      *config.Config
	services *mongo.Collection
	staff    *mongo.Collection
	tenants  *mongo.Collection
}

func NewMongoCatalog(cfg *config.Config, db *mongo.Database) *MongoCatalog {
	return &MongoCatalog{
		cfg:      cfg,
		services: db.Collection(ServicesCollection),
		staff:    db.Collection(StaffCollection),
		tenants:  db.Collection(TenantsCollection),
	}
}

func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(TenantsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "slug", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("unique_slug"),
	})
	if err != nil {
		return fmt.Errorf("failed to create tenant indexes: %w", err)
	}
	for _, name := range []string{ServicesCollection, StaffCollection} {
		_, err := db.Collection(name).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: "tenant_id", Value: 1}},
			Options: options.Index().SetName("tenant"),
		})
		if err != nil {
			return fmt.Errorf("failed to create %s indexes: %w", name, err)
		}
	}
	return nil
}

func (c *MongoCatalog) Service(ctx context.Context, tenantID, serviceID string) (*model.Service, error) {
	return findOne[model.Service](ctx, c, c.services, bson.M{"_id": serviceID, "tenant_id": tenantID}, "Service", serviceID)
}

func (c *MongoCatalog) Staff(ctx context.Context, tenantID, staffID string) (*model.StaffMember, error) {
	return findOne[model.StaffMember](ctx, c, c.staff, bson.M{"_id": staffID, "tenant_id": tenantID}, "Staff", staffID)
}

func (c *MongoCatalog) TenantBySlug(ctx context.Context, slug string) (*model.Tenant, error) {
	return findOne[model.Tenant](ctx, c, c.tenants, bson.M{"slug": slug}, "Tenant", slug)
}

func findOne[T any](ctx context.Context, c *MongoCatalog, coll *mongo.Collection, filter bson.M, resource, id string) (*T, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, c.cfg.ReadTimeout)
	defer cancel()

	var out T
	if err := coll.FindOne(ctx, filter).Decode(&out); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFoundWithID(resource, id)
		}
		return nil, apperrors.UnavailableWithCause("Catalog", err)
	}
	return &out, nil
}
