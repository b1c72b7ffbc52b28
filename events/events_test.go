package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchTopic(t *testing.T) {
	cases := []struct {
		pattern, key string
		want         bool
	}{
		{"listing.created", "listing.created", true},
		{"listing.*", "listing.updated", true},
		{"listing.*", "listing", false},
		{"listing.*", "listing.a.b", false},
		{"listing.#", "listing", true},
		{"listing.#", "listing.a.b", true},
		{"#", "tour.booked", true},
		{"*.booked", "tour.booked", true},
		{"#.booked", "a.b.tour.booked", true},
		{"#.booked", "tour.cancelled", false},
		{"session.*", "listing.created", false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, matchTopic(c.pattern, c.key), "%s vs %s", c.pattern, c.key)
	}
}

func TestNewEventAndDecode(t *testing.T) {
	ev, err := NewEvent(TourBooked, TourChanged{TourID: "t1", Platform: "zoom"})
	require.NoError(t, err)

	_, err = uuid.Parse(ev.ID)
	assert.NoError(t, err)
	assert.Equal(t, TourBooked, ev.Type)
	assert.False(t, ev.OccurredAt.IsZero())

	var p TourChanged
	require.NoError(t, ev.Decode(&p))
	assert.Equal(t, "t1", p.TourID)
	assert.Equal(t, "zoom", p.Platform)
}

func TestRouter_Dispatch(t *testing.T) {
	r := NewRouter()
	var listingCalls, allCalls []string
	r.Handle("listing.#", func(_ context.Context, ev Event) error {
		listingCalls = append(listingCalls, ev.Type)
		return nil
	})
	r.Handle("#", func(_ context.Context, ev Event) error {
		allCalls = append(allCalls, ev.Type)
		return nil
	})
	r.Handle("listing.#", func(context.Context, Event) error { return nil })
	assert.Equal(t, []string{"listing.#", "#"}, r.Patterns())

	ev, err := NewEvent(ListingUpdated, ListingChanged{ListingID: "l1"})
	require.NoError(t, err)
	body, err := json.Marshal(ev)
	require.NoError(t, err)

	require.NoError(t, r.Dispatch(context.Background(), ListingUpdated, body))
	require.NoError(t, r.Dispatch(context.Background(), SessionSignedIn, []byte(`{"payload":{}}`)))

	assert.Equal(t, []string{ListingUpdated}, listingCalls)
	assert.Equal(t, []string{ListingUpdated, SessionSignedIn}, allCalls)
}

func TestRouter_DispatchErrors(t *testing.T) {
	r := NewRouter()
	boom := errors.New("boom")
	r.Handle("tour.*", func(context.Context, Event) error { return boom })

	err := r.Dispatch(context.Background(), TourBooked, []byte(`{"type":"tour.booked"}`))
	assert.ErrorIs(t, err, boom)

	err = r.Dispatch(context.Background(), TourBooked, []byte(`not json`))
	assert.Error(t, err)
}

func TestNoopPublisher(t *testing.T) {
	var p Publisher = NoopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), ListingCreated, nil))
}
