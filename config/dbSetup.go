package config

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	PropertiesCollection = "properties"
	FavoritesCollection  = "favorites"
	ToursCollection      = "virtual_tours"
	UsersCollection      = "users"
	ProfilesCollection   = "profiles"
)

func ConnectDB(ctx context.Context, cfg MongoConfig, logger *slog.Logger) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("MongoDB ping failed: %w", err)
	}

	logger.Info("Connected to MongoDB", slog.String("database", cfg.Database))
	return client, nil
}

// InitCollections creates the indexes the stores rely on. Creating an
// existing index is a no-op.
func InitCollections(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		PropertiesCollection: {
			{Keys: bson.D{{Key: "available", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "city", Value: 1}}},
		},
		FavoritesCollection: {
			{
				Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "propertyId", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		ToursCollection: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "scheduledDate", Value: 1}}},
		},
		UsersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
	}

	for name, models := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("creating indexes on %s: %w", name, err)
		}
	}
	return nil
}

func CloseDBConnection(client *mongo.Client, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Disconnect(ctx); err != nil {
		logger.Error("Error closing database connection", slog.Any("error", err))
		return
	}
	logger.Info("MongoDB connection closed")
}
