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
)

const usersCollection = "users"

type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(usersCollection)}
}

// mongoUser is the flat stored form of domain.User. Role-specific fields are
// only written for the role that owns them.
type mongoUser struct {
	ID                primitive.ObjectID `bson:"_id,omitempty"`
	Email             string             `bson:"email"`
	Name              string             `bson:"name,omitempty"`
	PasswordHash      string             `bson:"password_hash,omitempty"`
	Role              string             `bson:"role"`
	TenantID          string             `bson:"tenant_id,omitempty"`
	IsOrgAdmin        bool               `bson:"is_org_admin,omitempty"`
	HasBillingAccess  bool               `bson:"has_billing_access,omitempty"`
	AssignedTenantIDs []string           `bson:"assigned_tenant_ids,omitempty"`
	CreatedAt         int64              `bson:"created_at"`
	UpdatedAt         int64              `bson:"updated_at"`
}

func fromDomainUser(u *domain.User) mongoUser {
	doc := mongoUser{
		Email:        domain.NormalizeEmail(u.Email),
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role()),
		CreatedAt:    u.CreatedAt.Unix(),
		UpdatedAt:    u.UpdatedAt.Unix(),
	}
	switch p := u.Profile.(type) {
	case domain.SolutionsEngineerProfile:
		doc.AssignedTenantIDs = p.AssignedTenantIDs
	case domain.ClientUserProfile:
		doc.TenantID = p.TenantID
		doc.IsOrgAdmin = p.IsOrgAdmin
		doc.HasBillingAccess = p.HasBillingAccess
	}
	return doc
}

func (mu mongoUser) toDomain() (*domain.User, error) {
	role, err := domain.ParseRole(mu.Role)
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", mu.ID.Hex(), err)
	}

	var profile domain.Profile
	switch role {
	case domain.RoleAdmin:
		profile = domain.AdminProfile{}
	case domain.RoleSolutionsEngineer:
		profile = domain.SolutionsEngineerProfile{AssignedTenantIDs: mu.AssignedTenantIDs}
	case domain.RoleClientUser:
		profile = domain.ClientUserProfile{
			TenantID:         mu.TenantID,
			IsOrgAdmin:       mu.IsOrgAdmin,
			HasBillingAccess: mu.HasBillingAccess,
		}
	}

	return &domain.User{
		ID:           mu.ID.Hex(),
		Email:        mu.Email,
		Name:         mu.Name,
		PasswordHash: mu.PasswordHash,
		Profile:      profile,
		CreatedAt:    unixToTime(mu.CreatedAt),
		UpdatedAt:    unixToTime(mu.UpdatedAt),
	}, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": domain.NormalizeEmail(email)})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var mu mongoUser
	if err := r.coll.FindOne(ctx, filter).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return mu.toDomain()
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	res, err := r.coll.InsertOne(ctx, fromDomainUser(user))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	created := *user
	created.Email = domain.NormalizeEmail(user.Email)
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		created.ID = oid.Hex()
	}
	return &created, nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrUserNotFound
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) ListClientUsers(ctx context.Context, tenantID string) ([]*domain.User, error) {
	filter := bson.M{"role": string(domain.RoleClientUser), "tenant_id": tenantID}
	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "email", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list client users: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoUser
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode client users: %w", err)
	}

	users := make([]*domain.User, 0, len(docs))
	for _, d := range docs {
		u, err := d.toDomain()
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

func (r *UserRepository) AddAssignedTenant(ctx context.Context, engineerID, tenantID string) error {
	return r.updateEngineer(ctx, engineerID, bson.M{"$addToSet": bson.M{"assigned_tenant_ids": tenantID}})
}

func (r *UserRepository) RemoveAssignedTenant(ctx context.Context, engineerID, tenantID string) error {
	return r.updateEngineer(ctx, engineerID, bson.M{"$pull": bson.M{"assigned_tenant_ids": tenantID}})
}

func (r *UserRepository) updateEngineer(ctx context.Context, engineerID string, update bson.M) error {
	oid, err := primitive.ObjectIDFromHex(engineerID)
	if err != nil {
		return domain.ErrUserNotFound
	}
	filter := bson.M{"_id": oid, "role": string(domain.RoleSolutionsEngineer)}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("update engineer assignments: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
