package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/99minutos/client-portal/internal/core/domain"
)

const auditCollection = "audit_log"

type AuditRepository struct {
	coll *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{coll: db.Collection(auditCollection)}
}

type mongoAuditEntry struct {
	Action     string    `bson:"action"`
	ActorID    string    `bson:"actor_id"`
	TenantID   string    `bson:"tenant_id,omitempty"`
	SubjectID  string    `bson:"subject_id"`
	OccurredAt time.Time `bson:"occurred_at"`
}

// Record inserts the entry. Called with a session context it is part of
// the surrounding transaction.
func (r *AuditRepository) Record(ctx context.Context, e *domain.AuditEntry) error {
	_, err := r.coll.InsertOne(ctx, mongoAuditEntry{
		Action:     string(e.Action),
		ActorID:    e.ActorID,
		TenantID:   e.TenantID,
		SubjectID:  e.SubjectID,
		OccurredAt: e.OccurredAt.UTC(),
	})
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}
