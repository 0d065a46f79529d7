package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/fjod/go_storefront/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoSlideRepository struct {
	collection *mongo.Collection
}

// NewMongoSlideRepository stores slider images in the "customizes"
// collection, next to other home page customisations.
func NewMongoSlideRepository(db *mongo.Database) SlideRepository {
	return &mongoSlideRepository{
		collection: db.Collection("customizes"),
	}
}

func (m *mongoSlideRepository) ListSlides(ctx context.Context) ([]domain.SlideImage, error) {
	filter := bson.M{"slideImage": bson.M{"$exists": true}}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := m.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find slide images: %w", err)
	}

	slides := []domain.SlideImage{}
	if err := cursor.All(ctx, &slides); err != nil {
		return nil, fmt.Errorf("failed to decode slide images: %w", err)
	}
	return slides, nil
}

func (m *mongoSlideRepository) CreateSlide(ctx context.Context, slide *domain.SlideImage) error {
	if slide.ID.IsZero() {
		slide.ID = primitive.NewObjectID()
	}
	slide.CreatedAt = time.Now().UTC()

	if _, err := m.collection.InsertOne(ctx, slide); err != nil {
		return fmt.Errorf("failed to insert slide image: %w", err)
	}
	return nil
}

func (m *mongoSlideRepository) DeleteSlide(ctx context.Context, id primitive.ObjectID) error {
	result, err := m.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete slide image: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrSlideNotFound
	}
	return nil
}
