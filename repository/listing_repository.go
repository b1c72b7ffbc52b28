package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/dcode-github/property_tours/config"
	"github.com/dcode-github/property_tours/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoListingStore struct {
	coll *mongo.Collection
}

func NewListingStore(db *mongo.Database) *MongoListingStore {
	return &MongoListingStore{coll: db.Collection(config.PropertiesCollection)}
}

var newestFirst = bson.D{{Key: "createdAt", Value: -1}}

func (s *MongoListingStore) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Listing, error) {
	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("finding listings: %w", err)
	}
	defer cursor.Close(ctx)

	listings := []models.Listing{}
	if err := cursor.All(ctx, &listings); err != nil {
		return nil, fmt.Errorf("decoding listings: %w", err)
	}
	return listings, nil
}

func (s *MongoListingStore) ListAvailable(ctx context.Context) ([]models.Listing, error) {
	return s.find(ctx, bson.M{"available": true}, options.Find().SetSort(newestFirst))
}

func (s *MongoListingStore) ListFeatured(ctx context.Context, limit int64) ([]models.Listing, error) {
	return s.find(ctx, bson.M{"available": true, "featured": true},
		options.Find().SetSort(newestFirst).SetLimit(limit))
}

func (s *MongoListingStore) ListSimilar(ctx context.Context, l *models.Listing, limit int64) ([]models.Listing, error) {
	return s.find(ctx, similarFilter(l), options.Find().SetSort(newestFirst).SetLimit(limit))
}

func similarFilter(l *models.Listing) bson.M {
	return bson.M{
		"available": true,
		"city":      l.City,
		"_id":       bson.M{"$ne": l.ID},
	}
}

func (s *MongoListingStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Listing, error) {
	var l models.Listing
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&l)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("finding listing %s: %w", id.Hex(), err)
	}
	return &l, nil
}

func (s *MongoListingStore) Create(ctx context.Context, l *models.Listing) error {
	if l.ID.IsZero() {
		l.ID = primitive.NewObjectID()
	}
	if _, err := s.coll.InsertOne(ctx, l); err != nil {
		return fmt.Errorf("inserting listing: %w", err)
	}
	return nil
}

func (s *MongoListingStore) Update(ctx context.Context, id primitive.ObjectID, owner string, fields map[string]interface{}) error {
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": id, "createdBy": owner}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("updating listing %s: %w", id.Hex(), err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoListingStore) Delete(ctx context.Context, id primitive.ObjectID, owner string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id, "createdBy": owner})
	if err != nil {
		return fmt.Errorf("deleting listing %s: %w", id.Hex(), err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
