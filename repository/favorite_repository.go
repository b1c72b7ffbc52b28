package repository

import (
	"context"
	"fmt"

	"github.com/dcode-github/property_tours/config"
	"github.com/dcode-github/property_tours/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoFavoriteStore struct {
	coll *mongo.Collection
}

func NewFavoriteStore(db *mongo.Database) *MongoFavoriteStore {
	return &MongoFavoriteStore{coll: db.Collection(config.FavoritesCollection)}
}

func (s *MongoFavoriteStore) Add(ctx context.Context, fav *models.SavedProperty) error {
	if fav.ID.IsZero() {
		fav.ID = primitive.NewObjectID()
	}
	doc := *fav
	doc.Property = nil
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("inserting favorite: %w", err)
	}
	return nil
}

func (s *MongoFavoriteStore) Remove(ctx context.Context, userID string, propertyID primitive.ObjectID) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"userId": userID, "propertyId": propertyID})
	if err != nil {
		return fmt.Errorf("deleting favorite: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoFavoriteStore) Exists(ctx context.Context, userID string, propertyID primitive.ObjectID) (bool, error) {
	n, err := s.coll.CountDocuments(ctx, bson.M{"userId": userID, "propertyId": propertyID},
		options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("counting favorites: %w", err)
	}
	return n > 0, nil
}

func (s *MongoFavoriteStore) ListByUser(ctx context.Context, userID string) ([]models.SavedProperty, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"userId": userID}}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         config.PropertiesCollection,
			"localField":   "propertyId",
			"foreignField": "_id",
			"as":           "property",
		}}},
		{{Key: "$unwind", Value: "$property"}},
	}

	cursor, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregating favorites: %w", err)
	}
	defer cursor.Close(ctx)

	saved := []models.SavedProperty{}
	if err := cursor.All(ctx, &saved); err != nil {
		return nil, fmt.Errorf("decoding favorites: %w", err)
	}
	return saved, nil
}

func (s *MongoFavoriteStore) PropertyIDs(ctx context.Context, userID string) ([]primitive.ObjectID, error) {
	cursor, err := s.coll.Find(ctx, bson.M{"userId": userID},
		options.Find().SetProjection(bson.M{"propertyId": 1}))
	if err != nil {
		return nil, fmt.Errorf("finding favorites: %w", err)
	}
	defer cursor.Close(ctx)

	ids := []primitive.ObjectID{}
	for cursor.Next(ctx) {
		var fav models.SavedProperty
		if err := cursor.Decode(&fav); err != nil {
			return nil, fmt.Errorf("decoding favorite: %w", err)
		}
		ids = append(ids, fav.PropertyID)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterating favorites: %w", err)
	}
	return ids, nil
}
