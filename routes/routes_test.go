package routes

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dcode-github/property_tours/utils"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter() *mux.Router {
	router := mux.NewRouter()
	Routes(router, Deps{
		Tokens: utils.NewTokenManager("test-key", time.Hour),
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	return router
}

func TestRoutes_Registered(t *testing.T) {
	var got []string
	err := newRouter().Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		tpl, err := route.GetPathTemplate()
		if err != nil {
			return nil
		}
		methods, err := route.GetMethods()
		if err != nil {
			return nil
		}
		for _, m := range methods {
			got = append(got, m+" "+tpl)
		}
		return nil
	})
	require.NoError(t, err)

	for _, want := range []string{
		"POST /register",
		"POST /login",
		"POST /password/forgot",
		"POST /password/reset",
		"POST /api/logout",
		"GET /api/properties",
		"POST /api/properties",
		"GET /api/properties/featured",
		"GET /api/properties/{id}",
		"PUT /api/properties/{id}",
		"DELETE /api/properties/{id}",
		"GET /api/properties/{id}/similar",
		"POST /api/favorites",
		"GET /api/favorites",
		"GET /api/favorites/ids",
		"DELETE /api/favorites/{propertyId}",
		"POST /api/favorites/{propertyId}/toggle",
		"POST /api/tours",
		"GET /api/tours",
		"POST /api/tours/{id}/cancel",
		"GET /api/profile",
		"PUT /api/profile",
	} {
		assert.Contains(t, got, want)
	}
}

func TestRoutes_APIRequiresToken(t *testing.T) {
	router := newRouter()
	for _, path := range []string{"/api/properties", "/api/favorites", "/api/tours", "/api/profile"} {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, rr.Code, path)
		assert.NotEmpty(t, rr.Header().Get("X-Trace-ID"))
	}
}

func TestRoutes_FeaturedIsNotAnID(t *testing.T) {
	var match mux.RouteMatch
	req := httptest.NewRequest(http.MethodGet, "/api/properties/featured", nil)
	require.True(t, newRouter().Match(req, &match))
	tpl, err := match.Route.GetPathTemplate()
	require.NoError(t, err)
	assert.Equal(t, "/api/properties/featured", tpl)
}
