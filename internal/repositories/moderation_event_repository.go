package repositories

import (
	"context"
	"time"

	"github.com/tanvir-rahman/class-forum/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ModerationEventRepository defines the interface for the audit log. The log
// is append-only: there is deliberately no update or delete operation.
type ModerationEventRepository interface {
	RecordEvent(ctx context.Context, event *models.ModerationEvent) error
	ListRecent(ctx context.Context, limit int64) ([]models.ModerationEvent, error)
	ListByTarget(ctx context.Context, targetType string, targetID uint) ([]models.ModerationEvent, error)
}

// MongoModerationEventRepository implements ModerationEventRepository for MongoDB
type MongoModerationEventRepository struct {
	collection *mongo.Collection
}

// NewMongoModerationEventRepository creates a new MongoModerationEventRepository
func NewMongoModerationEventRepository(db *mongo.Database) *MongoModerationEventRepository {
	return &MongoModerationEventRepository{collection: db.Collection("moderation_events")}
}

// RecordEvent appends a new audit event
func (r *MongoModerationEventRepository) RecordEvent(ctx context.Context, event *models.ModerationEvent) error {
	event.ID = primitive.NewObjectID()
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	_, err := r.collection.InsertOne(ctx, event)
	return err
}

// ListRecent retrieves the newest audit events up to limit
func (r *MongoModerationEventRepository) ListRecent(ctx context.Context, limit int64) ([]models.ModerationEvent, error) {
	var events []models.ModerationEvent
	findOptions := options.Find().SetLimit(limit).SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.D{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// ListByTarget retrieves the audit trail of a single target, newest first
func (r *MongoModerationEventRepository) ListByTarget(ctx context.Context, targetType string, targetID uint) ([]models.ModerationEvent, error) {
	var events []models.ModerationEvent
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	filter := bson.M{"target_type": targetType, "target_id": targetID}
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}
