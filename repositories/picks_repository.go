package repositories

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"survive-sports/models"
)

var ErrPickEntryNotFound = errors.New("pick entry not found")

// PicksRepository stores one document per pick entry. Entries for a user
// are ordered by creation time; the pick endpoints address them by that
// order's index.
type PicksRepository interface {
	ListAll(ctx context.Context) ([]*models.PickEntry, error)
	ListByUser(ctx context.Context, userID string) ([]*models.PickEntry, error)
	Create(ctx context.Context, entry *models.PickEntry) error
	Update(ctx context.Context, entry *models.PickEntry) error
	Delete(ctx context.Context, id string) error
}

type mongoPicksRepository struct {
	collection *mongo.Collection
}

func NewMongoPicksRepository(db *mongo.Database) PicksRepository {
	return &mongoPicksRepository{collection: db.Collection("marchMadnessPicks")}
}

func (r *mongoPicksRepository) ListAll(ctx context.Context) ([]*models.PickEntry, error) {
	return r.list(ctx, bson.M{})
}

func (r *mongoPicksRepository) ListByUser(ctx context.Context, userID string) ([]*models.PickEntry, error) {
	return r.list(ctx, bson.M{"userId": userID})
}

func (r *mongoPicksRepository) list(ctx context.Context, filter bson.M) ([]*models.PickEntry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pick entries: %w", err)
	}
	var entries []*models.PickEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode pick entries: %w", err)
	}
	return entries, nil
}

func (r *mongoPicksRepository) Create(ctx context.Context, entry *models.PickEntry) error {
	if _, err := r.collection.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("failed to insert pick entry: %w", err)
	}
	return nil
}

func (r *mongoPicksRepository) Update(ctx context.Context, entry *models.PickEntry) error {
	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": entry.ID}, entry)
	if err != nil {
		return fmt.Errorf("failed to update pick entry %s: %w", entry.ID, err)
	}
	if result.MatchedCount == 0 {
		return ErrPickEntryNotFound
	}
	return nil
}

func (r *mongoPicksRepository) Delete(ctx context.Context, id string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete pick entry %s: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return ErrPickEntryNotFound
	}
	return nil
}
