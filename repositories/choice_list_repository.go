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

var ErrChoiceListNotFound = errors.New("choice list not found")

// ChoiceListRepository stores the singleton tournament choice list. Only
// the operator results feed writes it; user actions never do.
type ChoiceListRepository interface {
	Get(ctx context.Context) (*models.ChoiceList, error)
	Replace(ctx context.Context, list *models.ChoiceList) error
}

type mongoChoiceListRepository struct {
	collection *mongo.Collection
}

func NewMongoChoiceListRepository(db *mongo.Database) ChoiceListRepository {
	return &mongoChoiceListRepository{collection: db.Collection("marchMadnessChoiceList")}
}

func (r *mongoChoiceListRepository) Get(ctx context.Context) (*models.ChoiceList, error) {
	var list models.ChoiceList
	err := r.collection.FindOne(ctx, bson.M{}).Decode(&list)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrChoiceListNotFound
		}
		return nil, fmt.Errorf("failed to fetch choice list: %w", err)
	}
	return &list, nil
}

func (r *mongoChoiceListRepository) Replace(ctx context.Context, list *models.ChoiceList) error {
	opts := options.Replace().SetUpsert(true)
	if _, err := r.collection.ReplaceOne(ctx, bson.M{}, list, opts); err != nil {
		return fmt.Errorf("failed to replace choice list: %w", err)
	}
	return nil
}
