package controllers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dcode-github/property_tours/catalog"
	"github.com/dcode-github/property_tours/contextkeys"
	"github.com/dcode-github/property_tours/contracts"
	"github.com/dcode-github/property_tours/events"
	"github.com/dcode-github/property_tours/filters"
	"github.com/dcode-github/property_tours/models"
	"github.com/dcode-github/property_tours/repository"
	"github.com/dcode-github/property_tours/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

func titleCity(city string) string {
	return cases.Title(language.Und).String(strings.TrimSpace(city))
}

// markFavorites flags the listings the caller has saved. A failed lookup
// leaves every flag false.
func markFavorites(ctx context.Context, favorites repository.FavoriteStore, userID string, listings []models.Listing) {
	if len(listings) == 0 {
		return
	}
	ids, err := favorites.PropertyIDs(ctx, userID)
	if err != nil {
		contextkeys.Logger(ctx).Warn("Failed to load favorite ids", slog.Any("error", err))
		return
	}
	saved := make(map[primitive.ObjectID]struct{}, len(ids))
	for _, id := range ids {
		saved[id] = struct{}{}
	}
	for i := range listings {
		_, listings[i].IsFavorite = saved[listings[i].ID]
	}
}

func GetAllProperties(cat *catalog.Catalog, favorites repository.FavoriteStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := callerID(w, r)
		if !ok {
			return
		}

		result := cat.Search(filters.FromQuery(r.URL.Query()))
		markFavorites(r.Context(), favorites, userID, result.Listings)

		contextkeys.Logger(r.Context()).Debug("Search served",
			slog.Int("total", result.Total),
			slog.Time("snapshot_loaded_at", cat.LoadedAt()))
		utils.WriteSuccess(w, http.StatusOK, "Fetched properties", result)
	}
}

func GetPropertyByID(listings repository.ListingStore, favorites repository.FavoriteStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := callerID(w, r)
		if !ok {
			return
		}
		id, ok := objectIDVar(w, r, "id")
		if !ok {
			return
		}

		var (
			listing *models.Listing
			saved   bool
		)
		g, ctx := errgroup.WithContext(r.Context())
		g.Go(func() error {
			var err error
			listing, err = listings.GetByID(ctx, id)
			return err
		})
		g.Go(func() error {
			var err error
			saved, err = favorites.Exists(ctx, userID, id)
			if err != nil {
				contextkeys.Logger(ctx).Warn("Failed to check favorite", slog.Any("error", err))
			}
			return nil
		})
		if err := g.Wait(); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				utils.WriteError(w, http.StatusNotFound, "Property not found")
				return
			}
			serverError(w, r, "Failed to fetch property", err)
			return
		}

		listing.IsFavorite = saved
		utils.WriteSuccess(w, http.StatusOK, "Fetched property", listing)
	}
}

func CreateProperty(listings repository.ListingStore, cat *catalog.Catalog, pub events.Publisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := callerID(w, r)
		if !ok {
			return
		}
		body, ok := readBody(w, r, contracts.Listing)
		if !ok {
			return
		}

		property := models.Listing{Available: true}
		if !decodeBody(w, r, body, &property) {
			return
		}

		now := time.Now().UTC()
		property.ID = primitive.NewObjectID()
		property.Title = strings.TrimSpace(property.Title)
		property.City = titleCity(property.City)
		property.CreatedBy = userID
		property.CreatedAt = now
		property.UpdatedAt = now
		if property.Amenities == nil {
			property.Amenities = []string{}
		}
		if property.Images == nil {
			property.Images = []string{}
		}

		if err := listings.Create(r.Context(), &property); err != nil {
			serverError(w, r, "Failed to create property", err)
			return
		}

		refreshCatalog(r.Context(), cat)
		publish(r.Context(), pub, events.ListingCreated, events.ListingChanged{ListingID: property.ID.Hex(), UserID: userID})

		utils.WriteSuccess(w, http.StatusCreated, "Property created", property)
	}
}

// listingPatch carries the mutable listing fields of an update request.
type listingPatch struct {
	Title        *string              `json:"title"`
	Description  *string              `json:"description"`
	PropertyType *models.PropertyType `json:"propertyType"`
	ListingType  *models.ListingType  `json:"listingType"`
	Price        *int64               `json:"price"`
	Location     *string              `json:"location"`
	City         *string              `json:"city"`
	Neighborhood *string              `json:"neighborhood"`
	Bedrooms     *int                 `json:"bedrooms"`
	Bathrooms    *int                 `json:"bathrooms"`
	SizeSqm      *float64             `json:"sizeSqm"`
	Amenities    []string             `json:"amenities"`
	Images       []string             `json:"images"`
	Featured     *bool                `json:"featured"`
	Available    *bool                `json:"available"`
}

func (p listingPatch) fields() map[string]interface{} {
	set := map[string]interface{}{}
	put := func(key string, present bool, v interface{}) {
		if present {
			set[key] = v
		}
	}
	if p.Title != nil {
		set["title"] = strings.TrimSpace(*p.Title)
	}
	if p.City != nil {
		set["city"] = titleCity(*p.City)
	}
	put("description", p.Description != nil, p.Description)
	put("propertyType", p.PropertyType != nil, p.PropertyType)
	put("listingType", p.ListingType != nil, p.ListingType)
	put("price", p.Price != nil, p.Price)
	put("location", p.Location != nil, p.Location)
	put("neighborhood", p.Neighborhood != nil, p.Neighborhood)
	put("bedrooms", p.Bedrooms != nil, p.Bedrooms)
	put("bathrooms", p.Bathrooms != nil, p.Bathrooms)
	put("sizeSqm", p.SizeSqm != nil, p.SizeSqm)
	put("amenities", p.Amenities != nil, p.Amenities)
	put("images", p.Images != nil, p.Images)
	put("featured", p.Featured != nil, p.Featured)
	put("available", p.Available != nil, p.Available)
	return set
}

// ownedListing loads the listing named by the "id" path variable and checks
// that the caller created it.
func ownedListing(w http.ResponseWriter, r *http.Request, listings repository.ListingStore, userID string) (*models.Listing, bool) {
	id, ok := objectIDVar(w, r, "id")
	if !ok {
		return nil, false
	}
	listing, err := listings.GetByID(r.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		utils.WriteError(w, http.StatusNotFound, "Property not found")
		return nil, false
	}
	if err != nil {
		serverError(w, r, "Failed to fetch property", err)
		return nil, false
	}
	if listing.CreatedBy != userID {
		contextkeys.Logger(r.Context()).Warn("Property owned by another user", slog.String("property_id", id.Hex()))
		utils.WriteError(w, http.StatusForbidden, "You can only modify your own properties")
		return nil, false
	}
	return listing, true
}

func UpdateProperty(listings repository.ListingStore, cat *catalog.Catalog, pub events.Publisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := callerID(w, r)
		if !ok {
			return
		}
		existing, ok := ownedListing(w, r, listings, userID)
		if !ok {
			return
		}
		body, ok := readBody(w, r, contracts.ListingUpdate)
		if !ok {
			return
		}

		var patch listingPatch
		if !decodeBody(w, r, body, &patch) {
			return
		}
		fields := patch.fields()
		fields["updatedAt"] = time.Now().UTC()

		err := listings.Update(r.Context(), existing.ID, userID, fields)
		if errors.Is(err, repository.ErrNotFound) {
			utils.WriteError(w, http.StatusNotFound, "Property not found")
			return
		}
		if err != nil {
			serverError(w, r, "Failed to update property", err)
			return
		}

		updated, err := listings.GetByID(r.Context(), existing.ID)
		if err != nil {
			serverError(w, r, "Failed to fetch property", err)
			return
		}

		refreshCatalog(r.Context(), cat)
		publish(r.Context(), pub, events.ListingUpdated, events.ListingChanged{ListingID: existing.ID.Hex(), UserID: userID})

		utils.WriteSuccess(w, http.StatusOK, "Property updated", updated)
	}
}

func DeleteProperty(listings repository.ListingStore, cat *catalog.Catalog, pub events.Publisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := callerID(w, r)
		if !ok {
			return
		}
		existing, ok := ownedListing(w, r, listings, userID)
		if !ok {
			return
		}

		err := listings.Delete(r.Context(), existing.ID, userID)
		if errors.Is(err, repository.ErrNotFound) {
			utils.WriteError(w, http.StatusNotFound, "Property not found")
			return
		}
		if err != nil {
			serverError(w, r, "Failed to delete property", err)
			return
		}

		refreshCatalog(r.Context(), cat)
		publish(r.Context(), pub, events.ListingDeleted, events.ListingChanged{ListingID: existing.ID.Hex(), UserID: userID})

		utils.WriteSuccess(w, http.StatusOK, "Property deleted", nil)
	}
}

// refreshCatalog reloads the snapshot so the writer sees its own change. The
// write already succeeded, so a failed reload is only logged.
func refreshCatalog(ctx context.Context, cat *catalog.Catalog) {
	if err := cat.Invalidate(ctx); err != nil {
		contextkeys.Logger(ctx).Error("Failed to refresh catalog", slog.Any("error", err))
	}
}
