package controllers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dcode-github/property_tours/contextkeys"
	"github.com/dcode-github/property_tours/models"
	"github.com/dcode-github/property_tours/repository"
	"github.com/dcode-github/property_tours/utils"
)

const (
	featuredLimit = 6
	similarLimit  = 3
)

// ListingCache stores the featured and similar listing rails. It may be nil.
type ListingCache interface {
	Featured(ctx context.Context) ([]models.Listing, bool, error)
	SetFeatured(ctx context.Context, listings []models.Listing) error
	Similar(ctx context.Context, id string) ([]models.Listing, bool, error)
	SetSimilar(ctx context.Context, id string, listings []models.Listing) error
}

func GetFeaturedProperties(listings repository.ListingStore, lc ListingCache, favorites repository.FavoriteStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := callerID(w, r)
		if !ok {
			return
		}
		logger := contextkeys.Logger(r.Context())

		var (
			featured []models.Listing
			hit      bool
			err      error
		)
		if lc != nil {
			featured, hit, err = lc.Featured(r.Context())
			if err != nil {
				logger.Warn("Redis GET error for featured listings", slog.Any("error", err))
			}
		}

		if !hit {
			logger.Debug("Cache miss for featured listings")
			featured, err = listings.ListFeatured(r.Context(), featuredLimit)
			if err != nil {
				serverError(w, r, "Failed to fetch featured properties", err)
				return
			}
			if lc != nil {
				if err := lc.SetFeatured(r.Context(), featured); err != nil {
					logger.Warn("Failed to cache featured listings", slog.Any("error", err))
				}
			}
		}

		markFavorites(r.Context(), favorites, userID, featured)
		utils.WriteSuccess(w, http.StatusOK, "Fetched featured properties", featured)
	}
}

// GetSimilarProperties recommends other available listings in the same city.
func GetSimilarProperties(listings repository.ListingStore, lc ListingCache, favorites repository.FavoriteStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := callerID(w, r)
		if !ok {
			return
		}
		id, ok := objectIDVar(w, r, "id")
		if !ok {
			return
		}
		logger := contextkeys.Logger(r.Context())

		var (
			similar []models.Listing
			hit     bool
			err     error
		)
		if lc != nil {
			similar, hit, err = lc.Similar(r.Context(), id.Hex())
			if err != nil {
				logger.Warn("Redis GET error for similar listings", slog.String("property_id", id.Hex()), slog.Any("error", err))
			}
		}

		if !hit {
			listing, err := listings.GetByID(r.Context(), id)
			if errors.Is(err, repository.ErrNotFound) {
				utils.WriteError(w, http.StatusNotFound, "Property not found")
				return
			}
			if err != nil {
				serverError(w, r, "Failed to fetch property", err)
				return
			}

			similar, err = listings.ListSimilar(r.Context(), listing, similarLimit)
			if err != nil {
				serverError(w, r, "Failed to fetch similar properties", err)
				return
			}
			if lc != nil {
				if err := lc.SetSimilar(r.Context(), id.Hex(), similar); err != nil {
					logger.Warn("Failed to cache similar listings", slog.Any("error", err))
				}
			}
		}

		markFavorites(r.Context(), favorites, userID, similar)
		utils.WriteSuccess(w, http.StatusOK, "Fetched similar properties", similar)
	}
}
