package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/99minutos/client-portal/internal/core/domain"
	"github.com/99minutos/client-portal/internal/core/ports"
)

const tenantsCollection = "tenants"

type TenantRepository struct {
	coll *mongo.Collection
}

func NewTenantRepository(db *mongo.Database) *TenantRepository {
	return &TenantRepository{coll: db.Collection(tenantsCollection)}
}

type mongoTenant struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty"`
	Name                string             `bson:"name"`
	NameCI              string             `bson:"name_ci"`
	AssignedEngineerIDs []string           `bson:"assigned_engineer_ids"`
	SubscriptionID      string             `bson:"subscription_id,omitempty"`
	CreditBalance       int64              `bson:"credit_balance"`
	PipelineStage       string             `bson:"pipeline_stage"`
	CreatedAt           int64              `bson:"created_at"`
	UpdatedAt           int64              `bson:"updated_at"`
}

func (mt mongoTenant) toDomain() *domain.Tenant {
	return &domain.Tenant{
		ID:                  mt.ID.Hex(),
		Name:                mt.Name,
		AssignedEngineerIDs: mt.AssignedEngineerIDs,
		SubscriptionID:      mt.SubscriptionID,
		CreditBalance:       mt.CreditBalance,
		PipelineStage:       domain.PipelineStage(mt.PipelineStage),
		CreatedAt:           unixToTime(mt.CreatedAt),
		UpdatedAt:           unixToTime(mt.UpdatedAt),
	}
}

func (r *TenantRepository) FindByID(ctx context.Context, id string) (*domain.Tenant, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrTenantNotFound
	}

	var mt mongoTenant
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&mt); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTenantNotFound
		}
		return nil, fmt.Errorf("find tenant: %w", err)
	}
	return mt.toDomain(), nil
}

func (r *TenantRepository) List(ctx context.Context, f ports.TenantFilter) ([]*domain.Tenant, error) {
	filter := bson.M{}
	if f.IDs != nil {
		oids := make([]primitive.ObjectID, 0, len(f.IDs))
		for _, id := range f.IDs {
			if oid, err := primitive.ObjectIDFromHex(id); err == nil {
				oids = append(oids, oid)
			}
		}
		filter["_id"] = bson.M{"$in": oids}
	}

	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoTenant
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode tenants: %w", err)
	}

	tenants := make([]*domain.Tenant, 0, len(docs))
	for _, d := range docs {
		tenants = append(tenants, d.toDomain())
	}
	return tenants, nil
}

func (r *TenantRepository) Create(ctx context.Context, t *domain.Tenant) (*domain.Tenant, error) {
	engineers := t.AssignedEngineerIDs
	if engineers == nil {
		engineers = []string{}
	}
	doc := mongoTenant{
		Name:                t.Name,
		NameCI:              domain.NormalizeTenantName(t.Name),
		AssignedEngineerIDs: engineers,
		SubscriptionID:      t.SubscriptionID,
		CreditBalance:       t.CreditBalance,
		PipelineStage:       string(t.PipelineStage),
		CreatedAt:           t.CreatedAt.Unix(),
		UpdatedAt:           t.UpdatedAt.Unix(),
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrTenantExists
		}
		return nil, fmt.Errorf("insert tenant: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		doc.ID = oid
	}
	return doc.toDomain(), nil
}

func (r *TenantRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrTenantNotFound
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete tenant: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrTenantNotFound
	}
	return nil
}

func (r *TenantRepository) AddAssignedEngineer(ctx context.Context, tenantID, engineerID string) error {
	return r.update(ctx, tenantID, bson.M{"$addToSet": bson.M{"assigned_engineer_ids": engineerID}})
}

func (r *TenantRepository) RemoveAssignedEngineer(ctx context.Context, tenantID, engineerID string) error {
	return r.update(ctx, tenantID, bson.M{"$pull": bson.M{"assigned_engineer_ids": engineerID}})
}

func (r *TenantRepository) update(ctx context.Context, tenantID string, update bson.M) error {
	oid, err := primitive.ObjectIDFromHex(tenantID)
	if err != nil {
		return domain.ErrTenantNotFound
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return fmt.Errorf("update tenant engineers: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrTenantNotFound
	}
	return nil
}
