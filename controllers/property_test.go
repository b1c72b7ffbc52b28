package controllers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dcode-github/property_tours/catalog"
	"github.com/dcode-github/property_tours/events"
	"github.com/dcode-github/property_tours/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type propertyFixture struct {
	listings  *memListings
	favorites *memFavorites
	catalog   *catalog.Catalog
	pub       *recordingPublisher
}

func newPropertyFixture(t *testing.T, seed ...models.Listing) *propertyFixture {
	listings := newMemListings(seed...)
	cat := catalog.New(listings, nil, nil)
	require.NoError(t, cat.Load(context.Background()))
	return &propertyFixture{
		listings:  listings,
		favorites: &memFavorites{listings: listings},
		catalog:   cat,
		pub:       &recordingPublisher{},
	}
}

type searchData struct {
	Listings []models.Listing `json:"listings"`
	Total    int              `json:"total"`
	Criteria struct {
		City     string `json:"city"`
		PriceMax string `json:"priceMax"`
	} `json:"criteria"`
}

func TestGetAllProperties(t *testing.T) {
	abuja := listing("Lekki flat", "Abuja", 2_000_000)
	lagos := listing("Ikoyi duplex", "Lagos", 5_000_000)
	hidden := listing("Hidden", "Abuja", 1_000, func(l *models.Listing) { l.Available = false })
	f := newPropertyFixture(t, abuja, lagos, hidden)
	require.NoError(t, f.favorites.Add(context.Background(), &models.SavedProperty{UserID: "user-1", PropertyID: abuja.ID}))

	rr, env := serve(t, GetAllProperties(f.catalog, f.favorites), request{
		method: http.MethodGet,
		path:   "/api/properties?city=%20abuja%20&priceMax=3000000&bedrooms=abc",
		userID: "user-1",
	})

	require.Equal(t, http.StatusOK, rr.Code)
	var data searchData
	decodeData(t, env, &data)
	require.Len(t, data.Listings, 1)
	assert.Equal(t, abuja.ID, data.Listings[0].ID)
	assert.True(t, data.Listings[0].IsFavorite)
	assert.Equal(t, 1, data.Total)
	assert.Equal(t, "abuja", data.Criteria.City)
	assert.Equal(t, "3000000", data.Criteria.PriceMax)
}

func TestGetAllProperties_NoCriteriaReturnsSnapshot(t *testing.T) {
	older := listing("Older", "Abuja", 1, createdAt(baseTime.Add(-time.Hour)))
	newer := listing("Newer", "Lagos", 1)
	f := newPropertyFixture(t, older, newer)

	_, env := serve(t, GetAllProperties(f.catalog, f.favorites), request{
		method: http.MethodGet, path: "/api/properties", userID: "user-1",
	})

	var data searchData
	decodeData(t, env, &data)
	require.Len(t, data.Listings, 2)
	assert.Equal(t, newer.ID, data.Listings[0].ID)
	assert.Equal(t, older.ID, data.Listings[1].ID)
	assert.False(t, data.Listings[0].IsFavorite)
}

func TestGetAllProperties_RequiresCaller(t *testing.T) {
	f := newPropertyFixture(t)
	rr, env := serve(t, GetAllProperties(f.catalog, f.favorites), request{method: http.MethodGet, path: "/api/properties"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.False(t, env.Success)
}

func TestGetPropertyByID(t *testing.T) {
	l := listing("Villa", "Abuja", 10)
	f := newPropertyFixture(t, l)
	require.NoError(t, f.favorites.Add(context.Background(), &models.SavedProperty{UserID: "user-1", PropertyID: l.ID}))

	t.Run("found", func(t *testing.T) {
		rr, env := serve(t, GetPropertyByID(f.listings, f.favorites), request{
			method: http.MethodGet, userID: "user-1", vars: map[string]string{"id": l.ID.Hex()},
		})
		require.Equal(t, http.StatusOK, rr.Code)
		var got models.Listing
		decodeData(t, env, &got)
		assert.Equal(t, "Villa", got.Title)
		assert.True(t, got.IsFavorite)
	})

	t.Run("missing", func(t *testing.T) {
		rr, _ := serve(t, GetPropertyByID(f.listings, f.favorites), request{
			method: http.MethodGet, userID: "user-1", vars: map[string]string{"id": "65f000000000000000000000"},
		})
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("malformed id", func(t *testing.T) {
		rr, _ := serve(t, GetPropertyByID(f.listings, f.favorites), request{
			method: http.MethodGet, userID: "user-1", vars: map[string]string{"id": "nope"},
		})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestCreateProperty(t *testing.T) {
	f := newPropertyFixture(t)
	body := `{"title":" Garden flat ","propertyType":"apartment","listingType":"for-rent",
		"price":1500000,"location":"Wuse 2","city":"port harcourt","bedrooms":3}`

	rr, env := serve(t, CreateProperty(f.listings, f.catalog, f.pub), request{
		method: http.MethodPost, body: body, userID: "owner-9",
	})

	require.Equal(t, http.StatusCreated, rr.Code, env.Message)
	var created models.Listing
	decodeData(t, env, &created)
	assert.Equal(t, "Garden flat", created.Title)
	assert.Equal(t, "Port Harcourt", created.City)
	assert.Equal(t, "owner-9", created.CreatedBy)
	assert.True(t, created.Available)
	assert.NotNil(t, created.Amenities)

	snapshot := f.catalog.Snapshot()
	require.Len(t, snapshot, 1)
	assert.Equal(t, created.ID, snapshot[0].ID)
	assert.Equal(t, []string{events.ListingCreated}, f.pub.types())
}

func TestCreateProperty_RejectsInvalidPayload(t *testing.T) {
	f := newPropertyFixture(t)

	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: `{`},
		{name: "missing price", body: `{"title":"x","propertyType":"apartment","listingType":"for-rent","location":"a","city":"b"}`},
		{name: "unknown type", body: `{"title":"x","propertyType":"castle","listingType":"for-rent","price":1,"location":"a","city":"b"}`},
		{name: "unknown field", body: `{"title":"x","propertyType":"studio","listingType":"for-rent","price":1,"location":"a","city":"b","createdBy":"me"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr, env := serve(t, CreateProperty(f.listings, f.catalog, f.pub), request{
				method: http.MethodPost, body: tt.body, userID: "owner-1",
			})
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.NotEmpty(t, env.Message)
		})
	}
	assert.Empty(t, f.pub.types())
}

func TestUpdateProperty(t *testing.T) {
	l := listing("Old title", "Abuja", 100)
	f := newPropertyFixture(t, l)
	vars := map[string]string{"id": l.ID.Hex()}

	t.Run("other user is forbidden", func(t *testing.T) {
		rr, _ := serve(t, UpdateProperty(f.listings, f.catalog, f.pub), request{
			method: http.MethodPut, body: `{"price":5}`, userID: "intruder", vars: vars,
		})
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("empty patch is rejected", func(t *testing.T) {
		rr, _ := serve(t, UpdateProperty(f.listings, f.catalog, f.pub), request{
			method: http.MethodPut, body: `{}`, userID: "owner-1", vars: vars,
		})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("owner updates", func(t *testing.T) {
		rr, env := serve(t, UpdateProperty(f.listings, f.catalog, f.pub), request{
			method: http.MethodPut, body: `{"price":250,"city":"lagos","available":false}`, userID: "owner-1", vars: vars,
		})
		require.Equal(t, http.StatusOK, rr.Code, env.Message)
		var got models.Listing
		decodeData(t, env, &got)
		assert.Equal(t, int64(250), got.Price)
		assert.Equal(t, "Lagos", got.City)
		assert.Equal(t, "Old title", got.Title)
		assert.False(t, got.Available)
		assert.Empty(t, f.catalog.Snapshot())
	})

	assert.Equal(t, []string{events.ListingUpdated}, f.pub.types())
}

func TestDeleteProperty(t *testing.T) {
	l := listing("Doomed", "Abuja", 100)
	f := newPropertyFixture(t, l)
	vars := map[string]string{"id": l.ID.Hex()}

	rr, _ := serve(t, DeleteProperty(f.listings, f.catalog, f.pub), request{
		method: http.MethodDelete, userID: "someone-else", vars: vars,
	})
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr, _ = serve(t, DeleteProperty(f.listings, f.catalog, f.pub), request{
		method: http.MethodDelete, userID: "owner-1", vars: vars,
	})
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, f.catalog.Snapshot())

	rr, _ = serve(t, DeleteProperty(f.listings, f.catalog, f.pub), request{
		method: http.MethodDelete, userID: "owner-1", vars: vars,
	})
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, []string{events.ListingDeleted}, f.pub.types())
}

func TestFeaturedAndSimilar(t *testing.T) {
	base := listing("Base", "Abuja", 1)
	var seed []models.Listing
	seed = append(seed, base)
	for i := 0; i < 8; i++ {
		seed = append(seed, listing("Featured", "Abuja", int64(i), func(l *models.Listing) {
			l.Featured = true
		}, createdAt(baseTime.Add(time.Duration(i)*time.Minute))))
	}
	seed = append(seed, listing("Elsewhere", "Lagos", 1))
	f := newPropertyFixture(t, seed...)

	_, env := serve(t, GetFeaturedProperties(f.listings, nil, f.favorites), request{
		method: http.MethodGet, userID: "user-1",
	})
	var featured []models.Listing
	decodeData(t, env, &featured)
	require.Len(t, featured, featuredLimit)
	assert.Equal(t, int64(7), featured[0].Price)

	_, env = serve(t, GetSimilarProperties(f.listings, nil, f.favorites), request{
		method: http.MethodGet, userID: "user-1", vars: map[string]string{"id": base.ID.Hex()},
	})
	var similar []models.Listing
	decodeData(t, env, &similar)
	require.Len(t, similar, similarLimit)
	for _, s := range similar {
		assert.Equal(t, "Abuja", s.City)
		assert.NotEqual(t, base.ID, s.ID)
	}

	rr, _ := serve(t, GetSimilarProperties(f.listings, nil, f.favorites), request{
		method: http.MethodGet, userID: "user-1", vars: map[string]string{"id": "65f000000000000000000000"},
	})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
