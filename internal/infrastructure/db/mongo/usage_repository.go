package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/99minutos/client-portal/internal/core/domain"
)

const usageCollection = "usage_events"

type UsageRepository struct {
	coll *mongo.Collection
}

func NewUsageRepository(db *mongo.Database) *UsageRepository {
	return &UsageRepository{coll: db.Collection(usageCollection)}
}

type mongoUsageEvent struct {
	EventID   string    `bson:"event_id"`
	TenantID  string    `bson:"tenant_id"`
	Metric    string    `bson:"metric"`
	Quantity  int64     `bson:"quantity"`
	Timestamp time.Time `bson:"timestamp"`
	Source    string    `bson:"source,omitempty"`
}

// Insert stores one event. A second insert with the same event id is a no-op.
func (r *UsageRepository) Insert(ctx context.Context, e *domain.UsageEvent) error {
	_, err := r.coll.InsertOne(ctx, mongoUsageEvent{
		EventID:   e.EventID,
		TenantID:  e.TenantID,
		Metric:    e.Metric,
		Quantity:  e.Quantity,
		Timestamp: e.Timestamp.UTC(),
		Source:    e.Source,
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil
		}
		return fmt.Errorf("insert usage event: %w", err)
	}
	return nil
}

// Summarize sums quantities per metric for events in [from, to).
func (r *UsageRepository) Summarize(ctx context.Context, tenantID string, from, to time.Time) ([]domain.UsageTotal, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"tenant_id": tenantID,
			"timestamp": bson.M{"$gte": from, "$lt": to},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":      "$metric",
			"quantity": bson.M{"$sum": "$quantity"},
			"events":   bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
	}

	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate usage: %w", err)
	}
	defer cur.Close(ctx)

	var rows []struct {
		Metric   string `bson:"_id"`
		Quantity int64  `bson:"quantity"`
		Events   int64  `bson:"events"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode usage totals: %w", err)
	}

	totals := make([]domain.UsageTotal, 0, len(rows))
	for _, row := range rows {
		totals = append(totals, domain.UsageTotal{Metric: row.Metric, Quantity: row.Quantity, Events: row.Events})
	}
	return totals, nil
}
