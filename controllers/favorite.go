package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/dcode-github/property_tours/contextkeys"
	"github.com/dcode-github/property_tours/contracts"
	"github.com/dcode-github/property_tours/models"
	"github.com/dcode-github/property_tours/repository"
	"github.com/dcode-github/property_tours/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type favoriteRequest struct {
	PropertyID string `json:"propertyId"`
}

func AddFavorite(favorites repository.FavoriteStore, listings repository.ListingStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := callerID(w, r)
		if !ok {
			return
		}
		body, ok := readBody(w, r, contracts.Favorite)
		if !ok {
			return
		}

		var req favoriteRequest
		if !decodeBody(w, r, body, &req) {
			return
		}
		propertyID, err := primitive.ObjectIDFromHex(req.PropertyID)
		if err != nil {
			utils.WriteError(w, http.StatusBadRequest, "Invalid propertyId format")
			return
		}

		if _, err := listings.GetByID(r.Context(), propertyID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				utils.WriteError(w, http.StatusNotFound, "Property not found")
				return
			}
			serverError(w, r, "Failed to fetch property", err)
			return
		}

		fav := models.SavedProperty{
			UserID:     userID,
			PropertyID: propertyID,
			CreatedAt:  time.Now().UTC(),
		}
		err = favorites.Add(r.Context(), &fav)
		if errors.Is(err, repository.ErrDuplicate) {
			contextkeys.Logger(r.Context()).Info("Property is already in favorites")
			utils.WriteError(w, http.StatusConflict, "Property is already in favorites")
			return
		}
		if err != nil {
			serverError(w, r, "Failed to add property to favorites", err)
			return
		}

		utils.WriteSuccess(w, http.StatusCreated, "Property added to favorites", fav)
	}
}

func GetFavorites(favorites repository.FavoriteStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := callerID(w, r)
		if !ok {
			return
		}

		saved, err := favorites.ListByUser(r.Context(), userID)
		if err != nil {
			serverError(w, r, "Failed to fetch favorite properties", err)
			return
		}
		for i := range saved {
			if saved[i].Property != nil {
				saved[i].Property.IsFavorite = true
			}
		}

		utils.WriteSuccess(w, http.StatusOK, "Fetched favorite properties", saved)
	}
}

func GetFavoriteIDs(favorites repository.FavoriteStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := callerID(w, r)
		if !ok {
			return
		}

		ids, err := favorites.PropertyIDs(r.Context(), userID)
		if err != nil {
			serverError(w, r, "Failed to fetch favorite ids", err)
			return
		}
		hexIDs := make([]string, 0, len(ids))
		for _, id := range ids {
			hexIDs = append(hexIDs, id.Hex())
		}

		utils.WriteSuccess(w, http.StatusOK, "Fetched favorite ids", hexIDs)
	}
}

func DeleteFavorite(favorites repository.FavoriteStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := callerID(w, r)
		if !ok {
			return
		}
		propertyID, ok := objectIDVar(w, r, "propertyId")
		if !ok {
			return
		}

		err := favorites.Remove(r.Context(), userID, propertyID)
		if errors.Is(err, repository.ErrNotFound) {
			utils.WriteError(w, http.StatusNotFound, "Favorite not found")
			return
		}
		if err != nil {
			serverError(w, r, "Failed to remove property from favorites", err)
			return
		}

		utils.WriteSuccess(w, http.StatusOK, "Property removed from favorites", nil)
	}
}

// ToggleFavorite saves an unsaved listing and unsaves a saved one.
func ToggleFavorite(favorites repository.FavoriteStore, listings repository.ListingStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := callerID(w, r)
		if !ok {
			return
		}
		propertyID, ok := objectIDVar(w, r, "propertyId")
		if !ok {
			return
		}

		exists, err := favorites.Exists(r.Context(), userID, propertyID)
		if err != nil {
			serverError(w, r, "Failed to check favorites", err)
			return
		}

		if exists {
			if err := favorites.Remove(r.Context(), userID, propertyID); err != nil && !errors.Is(err, repository.ErrNotFound) {
				serverError(w, r, "Failed to remove property from favorites", err)
				return
			}
			utils.WriteSuccess(w, http.StatusOK, "Property removed from favorites", map[string]interface{}{
				"propertyId": propertyID.Hex(),
				"saved":      false,
			})
			return
		}

		if _, err := listings.GetByID(r.Context(), propertyID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				utils.WriteError(w, http.StatusNotFound, "Property not found")
				return
			}
			serverError(w, r, "Failed to fetch property", err)
			return
		}
		fav := models.SavedProperty{UserID: userID, PropertyID: propertyID, CreatedAt: time.Now().UTC()}
		if err := favorites.Add(r.Context(), &fav); err != nil && !errors.Is(err, repository.ErrDuplicate) {
			serverError(w, r, "Failed to add property to favorites", err)
			return
		}

		utils.WriteSuccess(w, http.StatusOK, "Property added to favorites", map[string]interface{}{
			"propertyId": propertyID.Hex(),
			"saved":      true,
		})
	}
}
