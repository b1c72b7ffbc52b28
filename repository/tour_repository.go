package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dcode-github/property_tours/config"
	"github.com/dcode-github/property_tours/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type MongoTourStore struct {
	coll *mongo.Collection
}

func NewTourStore(db *mongo.Database) *MongoTourStore {
	return &MongoTourStore{coll: db.Collection(config.ToursCollection)}
}

func (s *MongoTourStore) Create(ctx context.Context, tour *models.VirtualTour) error {
	if tour.ID.IsZero() {
		tour.ID = primitive.NewObjectID()
	}
	doc := *tour
	doc.Property = nil
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("inserting tour: %w", err)
	}
	return nil
}

func (s *MongoTourStore) ListByUser(ctx context.Context, userID string) ([]models.VirtualTour, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"userId": userID}}},
		{{Key: "$sort", Value: bson.D{{Key: "scheduledDate", Value: 1}, {Key: "scheduledTime", Value: 1}}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         config.PropertiesCollection,
			"localField":   "propertyId",
			"foreignField": "_id",
			"as":           "property",
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$property", "preserveNullAndEmptyArrays": true}}},
	}

	cursor, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregating tours: %w", err)
	}
	defer cursor.Close(ctx)

	tours := []models.VirtualTour{}
	if err := cursor.All(ctx, &tours); err != nil {
		return nil, fmt.Errorf("decoding tours: %w", err)
	}
	return tours, nil
}

func (s *MongoTourStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.VirtualTour, error) {
	var tour models.VirtualTour
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&tour)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("finding tour %s: %w", id.Hex(), err)
	}
	return &tour, nil
}

func (s *MongoTourStore) UpdateStatus(ctx context.Context, id primitive.ObjectID, userID string, from []models.TourStatus, to models.TourStatus) error {
	filter := bson.M{"_id": id, "userId": userID, "status": bson.M{"$in": from}}
	update := bson.M{"$set": bson.M{"status": to, "updatedAt": time.Now().UTC()}}

	res, err := s.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("updating tour %s: %w", id.Hex(), err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
