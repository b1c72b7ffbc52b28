package routes

import (
	"log/slog"
	"time"

	"github.com/dcode-github/property_tours/catalog"
	"github.com/dcode-github/property_tours/controllers"
	"github.com/dcode-github/property_tours/events"
	"github.com/dcode-github/property_tours/middleware"
	"github.com/dcode-github/property_tours/repository"
	"github.com/gorilla/mux"
)

// SessionStore is the Redis backed store for revoked tokens and password
// reset tokens.
type SessionStore interface {
	middleware.RevocationChecker
	controllers.SessionRevoker
	controllers.ResetTokenStore
}

type TokenManager interface {
	middleware.TokenValidator
	controllers.TokenIssuer
}

type Deps struct {
	Listings     repository.ListingStore
	Favorites    repository.FavoriteStore
	Tours        repository.TourStore
	Users        repository.UserStore
	Profiles     repository.ProfileStore
	Catalog      *catalog.Catalog
	ListingCache controllers.ListingCache
	Sessions     SessionStore
	Tokens       TokenManager
	Publisher    events.Publisher
	TokenTTL     time.Duration
	ResetTTL     time.Duration
	Logger       *slog.Logger
	Clock        controllers.Clock
}

func Routes(router *mux.Router, d Deps) {
	if d.Clock == nil {
		d.Clock = time.Now
	}
	router.Use(middleware.RequestLogger(d.Logger))

	// Auth routes
	router.HandleFunc("/register", controllers.RegisterUser(d.Users, d.Profiles, d.Tokens, d.Publisher)).Methods("POST")
	router.HandleFunc("/login", controllers.LoginUser(d.Users, d.Tokens, d.Publisher)).Methods("POST")
	router.HandleFunc("/password/forgot", controllers.ForgotPassword(d.Users, d.Sessions, d.ResetTTL, d.Publisher)).Methods("POST")
	router.HandleFunc("/password/reset", controllers.ResetPassword(d.Users, d.Sessions)).Methods("POST")

	// Routes that require authentication
	authenticated := router.PathPrefix("/api").Subrouter()
	authenticated.Use(middleware.Auth(d.Tokens, d.Sessions))

	authenticated.HandleFunc("/logout", controllers.LogoutUser(d.Sessions, d.TokenTTL, d.Publisher)).Methods("POST")

	// Property routes
	authenticated.HandleFunc("/properties", controllers.GetAllProperties(d.Catalog, d.Favorites)).Methods("GET")
	authenticated.HandleFunc("/properties", controllers.CreateProperty(d.Listings, d.Catalog, d.Publisher)).Methods("POST")
	authenticated.HandleFunc("/properties/featured", controllers.GetFeaturedProperties(d.Listings, d.ListingCache, d.Favorites)).Methods("GET")
	authenticated.HandleFunc("/properties/{id}", controllers.GetPropertyByID(d.Listings, d.Favorites)).Methods("GET")
	authenticated.HandleFunc("/properties/{id}", controllers.UpdateProperty(d.Listings, d.Catalog, d.Publisher)).Methods("PUT")
	authenticated.HandleFunc("/properties/{id}", controllers.DeleteProperty(d.Listings, d.Catalog, d.Publisher)).Methods("DELETE")
	authenticated.HandleFunc("/properties/{id}/similar", controllers.GetSimilarProperties(d.Listings, d.ListingCache, d.Favorites)).Methods("GET")

	// Favorites routes
	authenticated.HandleFunc("/favorites", controllers.AddFavorite(d.Favorites, d.Listings)).Methods("POST")
	authenticated.HandleFunc("/favorites", controllers.GetFavorites(d.Favorites)).Methods("GET")
	authenticated.HandleFunc("/favorites/ids", controllers.GetFavoriteIDs(d.Favorites)).Methods("GET")
	authenticated.HandleFunc("/favorites/{propertyId}", controllers.DeleteFavorite(d.Favorites)).Methods("DELETE")
	authenticated.HandleFunc("/favorites/{propertyId}/toggle", controllers.ToggleFavorite(d.Favorites, d.Listings)).Methods("POST")

	// Virtual tour routes
	authenticated.HandleFunc("/tours", controllers.BookTour(d.Tours, d.Listings, d.Publisher, d.Clock)).Methods("POST")
	authenticated.HandleFunc("/tours", controllers.GetTours(d.Tours)).Methods("GET")
	authenticated.HandleFunc("/tours/{id}/cancel", controllers.CancelTour(d.Tours, d.Publisher)).Methods("POST")

	// Profile routes
	authenticated.HandleFunc("/profile", controllers.GetProfile(d.Profiles)).Methods("GET")
	authenticated.HandleFunc("/profile", controllers.UpdateProfile(d.Profiles)).Methods("PUT")
}
