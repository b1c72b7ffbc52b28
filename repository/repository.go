// Package repository defines the persistence contracts of the service and
// their MongoDB implementations.
package repository

import (
	"context"
	"errors"

	"github.com/dcode-github/property_tours/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
)

type ListingStore interface {
	// ListAvailable returns every available listing, newest first.
	ListAvailable(ctx context.Context) ([]models.Listing, error)
	ListFeatured(ctx context.Context, limit int64) ([]models.Listing, error)
	// ListSimilar returns available listings in the same city as l, excluding l.
	ListSimilar(ctx context.Context, l *models.Listing, limit int64) ([]models.Listing, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Listing, error)
	Create(ctx context.Context, l *models.Listing) error
	// Update and Delete only touch listings created by owner.
	Update(ctx context.Context, id primitive.ObjectID, owner string, fields map[string]interface{}) error
	Delete(ctx context.Context, id primitive.ObjectID, owner string) error
}

type FavoriteStore interface {
	Add(ctx context.Context, fav *models.SavedProperty) error
	Remove(ctx context.Context, userID string, propertyID primitive.ObjectID) error
	Exists(ctx context.Context, userID string, propertyID primitive.ObjectID) (bool, error)
	// ListByUser returns saved listings joined with the listing, newest first.
	ListByUser(ctx context.Context, userID string) ([]models.SavedProperty, error)
	PropertyIDs(ctx context.Context, userID string) ([]primitive.ObjectID, error)
}

type TourStore interface {
	Create(ctx context.Context, tour *models.VirtualTour) error
	// ListByUser returns tours joined with the listing, earliest first.
	ListByUser(ctx context.Context, userID string) ([]models.VirtualTour, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.VirtualTour, error)
	// UpdateStatus moves a tour owned by userID to status if its current
	// status is one of from.
	UpdateStatus(ctx context.Context, id primitive.ObjectID, userID string, from []models.TourStatus, to models.TourStatus) error
}

type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	UpdatePassword(ctx context.Context, id string, hash string) error
	Delete(ctx context.Context, id string) error
}

type ProfileStore interface {
	Create(ctx context.Context, p *models.Profile) error
	Get(ctx context.Context, id string) (*models.Profile, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) (*models.Profile, error)
}
