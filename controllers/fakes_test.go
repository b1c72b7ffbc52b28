package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/dcode-github/property_tours/cache"
	"github.com/dcode-github/property_tours/contextkeys"
	"github.com/dcode-github/property_tours/models"
	"github.com/dcode-github/property_tours/repository"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// overlay applies a $set style field map to v by round-tripping through BSON.
func overlay(v interface{}, fields map[string]interface{}, out interface{}) error {
	doc, err := bson.Marshal(v)
	if err != nil {
		return err
	}
	var m bson.M
	if err := bson.Unmarshal(doc, &m); err != nil {
		return err
	}
	for k, f := range fields {
		m[k] = f
	}
	if doc, err = bson.Marshal(m); err != nil {
		return err
	}
	return bson.Unmarshal(doc, out)
}

type memListings struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]models.Listing
}

func newMemListings(seed ...models.Listing) *memListings {
	s := &memListings{byID: map[primitive.ObjectID]models.Listing{}}
	for _, l := range seed {
		s.byID[l.ID] = l
	}
	return s
}

func (s *memListings) sorted(keep func(models.Listing) bool, limit int64) []models.Listing {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Listing{}
	for _, l := range s.byID {
		if keep(l) {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out
}

func (s *memListings) ListAvailable(context.Context) ([]models.Listing, error) {
	return s.sorted(func(l models.Listing) bool { return l.Available }, 0), nil
}

func (s *memListings) ListFeatured(_ context.Context, limit int64) ([]models.Listing, error) {
	return s.sorted(func(l models.Listing) bool { return l.Available && l.Featured }, limit), nil
}

func (s *memListings) ListSimilar(_ context.Context, ref *models.Listing, limit int64) ([]models.Listing, error) {
	return s.sorted(func(l models.Listing) bool {
		return l.Available && l.City == ref.City && l.ID != ref.ID
	}, limit), nil
}

func (s *memListings) GetByID(_ context.Context, id primitive.ObjectID) (*models.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &l, nil
}

func (s *memListings) Create(_ context.Context, l *models.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l.ID.IsZero() {
		l.ID = primitive.NewObjectID()
	}
	s.byID[l.ID] = *l
	return nil
}

func (s *memListings) Update(_ context.Context, id primitive.ObjectID, owner string, fields map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.byID[id]
	if !ok || l.CreatedBy != owner {
		return repository.ErrNotFound
	}
	var updated models.Listing
	if err := overlay(l, fields, &updated); err != nil {
		return err
	}
	s.byID[id] = updated
	return nil
}

func (s *memListings) Delete(_ context.Context, id primitive.ObjectID, owner string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.byID[id]
	if !ok || l.CreatedBy != owner {
		return repository.ErrNotFound
	}
	delete(s.byID, id)
	return nil
}

type memFavorites struct {
	mu       sync.Mutex
	saved    []models.SavedProperty
	listings *memListings
}

func (s *memFavorites) Add(_ context.Context, fav *models.SavedProperty) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.saved {
		if f.UserID == fav.UserID && f.PropertyID == fav.PropertyID {
			return repository.ErrDuplicate
		}
	}
	fav.ID = primitive.NewObjectID()
	s.saved = append(s.saved, *fav)
	return nil
}

func (s *memFavorites) Remove(_ context.Context, userID string, propertyID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, f := range s.saved {
		if f.UserID == userID && f.PropertyID == propertyID {
			s.saved = append(s.saved[:i], s.saved[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (s *memFavorites) Exists(_ context.Context, userID string, propertyID primitive.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.saved {
		if f.UserID == userID && f.PropertyID == propertyID {
			return true, nil
		}
	}
	return false, nil
}

func (s *memFavorites) ListByUser(ctx context.Context, userID string) ([]models.SavedProperty, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.SavedProperty{}
	for i := len(s.saved) - 1; i >= 0; i-- {
		f := s.saved[i]
		if f.UserID != userID {
			continue
		}
		l, err := s.listings.GetByID(ctx, f.PropertyID)
		if err != nil {
			continue
		}
		f.Property = l
		out = append(out, f)
	}
	return out, nil
}

func (s *memFavorites) PropertyIDs(_ context.Context, userID string) ([]primitive.ObjectID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := []primitive.ObjectID{}
	for _, f := range s.saved {
		if f.UserID == userID {
			ids = append(ids, f.PropertyID)
		}
	}
	return ids, nil
}

type memTours struct {
	mu       sync.Mutex
	byID     map[primitive.ObjectID]models.VirtualTour
	listings *memListings
}

func newMemTours(listings *memListings) *memTours {
	return &memTours{byID: map[primitive.ObjectID]models.VirtualTour{}, listings: listings}
}

func (s *memTours) Create(_ context.Context, t *models.VirtualTour) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID.IsZero() {
		t.ID = primitive.NewObjectID()
	}
	s.byID[t.ID] = *t
	return nil
}

func (s *memTours) ListByUser(ctx context.Context, userID string) ([]models.VirtualTour, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.VirtualTour{}
	for _, t := range s.byID {
		if t.UserID == userID {
			t.Property, _ = s.listings.GetByID(ctx, t.PropertyID)
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ScheduledDate != out[j].ScheduledDate {
			return out[i].ScheduledDate < out[j].ScheduledDate
		}
		return out[i].ScheduledTime < out[j].ScheduledTime
	})
	return out, nil
}

func (s *memTours) GetByID(_ context.Context, id primitive.ObjectID) (*models.VirtualTour, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &t, nil
}

func (s *memTours) UpdateStatus(_ context.Context, id primitive.ObjectID, userID string, from []models.TourStatus, to models.TourStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.byID[id]
	if !ok || t.UserID != userID {
		return repository.ErrNotFound
	}
	for _, st := range from {
		if t.Status == st {
			t.Status = to
			s.byID[id] = t
			return nil
		}
	}
	return repository.ErrNotFound
}

type memUsers struct {
	mu   sync.Mutex
	byID map[string]models.User
}

func newMemUsers() *memUsers {
	return &memUsers{byID: map[string]models.User{}}
}

func (s *memUsers) Create(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.byID {
		if existing.Email == u.Email {
			return repository.ErrDuplicate
		}
	}
	u.ID = primitive.NewObjectID()
	s.byID[u.ID.Hex()] = *u
	return nil
}

func (s *memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.byID {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *memUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (s *memUsers) UpdatePassword(_ context.Context, id string, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Password = hash
	s.byID[id] = u
	return nil
}

func (s *memUsers) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.byID, id)
	return nil
}

type memProfiles struct {
	mu        sync.Mutex
	byID      map[string]models.Profile
	createErr error
}

func newMemProfiles() *memProfiles {
	return &memProfiles{byID: map[string]models.Profile{}}
}

func (s *memProfiles) Create(_ context.Context, p *models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	if _, ok := s.byID[p.ID]; ok {
		return repository.ErrDuplicate
	}
	s.byID[p.ID] = *p
	return nil
}

func (s *memProfiles) Get(_ context.Context, id string) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (s *memProfiles) Update(_ context.Context, id string, fields map[string]interface{}) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	var updated models.Profile
	if err := overlay(p, fields, &updated); err != nil {
		return nil, err
	}
	s.byID[id] = updated
	return &updated, nil
}

type memSessions struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	resets  map[string]string
}

func newMemSessions() *memSessions {
	return &memSessions{revoked: map[string]time.Time{}, resets: map[string]string{}}
}

func (s *memSessions) Revoke(_ context.Context, jti string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[jti] = expiresAt
	return nil
}

func (s *memSessions) SaveResetToken(_ context.Context, token, userID string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resets[token] = userID
	return nil
}

func (s *memSessions) ConsumeResetToken(_ context.Context, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	userID, ok := s.resets[token]
	if !ok {
		return "", cache.ErrTokenNotFound
	}
	delete(s.resets, token)
	return userID, nil
}

type published struct {
	eventType string
	payload   interface{}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []published
}

func (p *recordingPublisher) Publish(_ context.Context, eventType string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{eventType: eventType, payload: payload})
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := []string{}
	for _, e := range p.events {
		out = append(out, e.eventType)
	}
	return out
}

type request struct {
	method string
	path   string
	body   string
	userID string
	vars   map[string]string
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func serve(t *testing.T, h http.HandlerFunc, req request) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var body *bytes.Reader
	if req.body != "" {
		body = bytes.NewReader([]byte(req.body))
	} else {
		body = bytes.NewReader(nil)
	}
	target := req.path
	if target == "" {
		target = "/"
	}
	r := httptest.NewRequest(req.method, target, body)
	if req.userID != "" {
		r = r.WithContext(contextkeys.WithUserID(r.Context(), req.userID))
	}
	if req.vars != nil {
		r = mux.SetURLVars(r, req.vars)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, r)

	var env envelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env), rr.Body.String())
	return rr, env
}

func decodeData(t *testing.T, env envelope, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, v))
}

var baseTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func listing(title, city string, price int64, opts ...func(*models.Listing)) models.Listing {
	l := models.Listing{
		ID:           primitive.NewObjectID(),
		Title:        title,
		City:         city,
		Location:     city,
		Price:        price,
		PropertyType: models.PropertyApartment,
		ListingType:  models.ListingForRent,
		Bedrooms:     2,
		Available:    true,
		CreatedBy:    "owner-1",
		CreatedAt:    baseTime,
		UpdatedAt:    baseTime,
		Amenities:    []string{},
		Images:       []string{},
	}
	for _, o := range opts {
		o(&l)
	}
	return l
}

func createdAt(t time.Time) func(*models.Listing) {
	return func(l *models.Listing) { l.CreatedAt = t }
}
