package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// OutboxEvent is a catalog event waiting to be relayed to the broker.
type OutboxEvent struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	AggregateID string             `bson:"aggregateId"`
	EventType   string             `bson:"eventType"`
	Payload     []byte             `bson:"payload"`
	CreatedAt   time.Time          `bson:"createdAt"`
	ProcessedAt *time.Time         `bson:"processedAt,omitempty"`
}

type OutboxRepository interface {
	AddEvent(ctx context.Context, event *OutboxEvent) error
	// UnprocessedEvents returns up to limit pending events, oldest first.
	UnprocessedEvents(ctx context.Context, limit int) ([]OutboxEvent, error)
	MarkEventProcessed(ctx context.Context, id primitive.ObjectID) error
}

type mongoOutboxRepository struct {
	collection *mongo.Collection
}

func NewMongoOutboxRepository(db *mongo.Database) OutboxRepository {
	return &mongoOutboxRepository{
		collection: db.Collection("outbox"),
	}
}

func (m *mongoOutboxRepository) AddEvent(ctx context.Context, event *OutboxEvent) error {
	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}
	event.CreatedAt = time.Now().UTC()
	event.ProcessedAt = nil

	if _, err := m.collection.InsertOne(ctx, event); err != nil {
		return fmt.Errorf("failed to insert outbox event: %w", err)
	}
	return nil
}

func (m *mongoOutboxRepository) UnprocessedEvents(ctx context.Context, limit int) ([]OutboxEvent, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(limit))
	cursor, err := m.collection.Find(ctx, bson.M{"processedAt": bson.M{"$exists": false}}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find outbox events: %w", err)
	}

	events := []OutboxEvent{}
	if err := cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("failed to decode outbox events: %w", err)
	}
	return events, nil
}

func (m *mongoOutboxRepository) MarkEventProcessed(ctx context.Context, id primitive.ObjectID) error {
	_, err := m.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"processedAt": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("failed to mark outbox event %s: %w", id.Hex(), err)
	}
	return nil
}
