// Package events carries domain events over a RabbitMQ topic exchange.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	ListingCreated = "listing.created"
	ListingUpdated = "listing.updated"
	ListingDeleted = "listing.deleted"

	SessionSignedIn  = "session.signed_in"
	SessionSignedOut = "session.signed_out"

	TourBooked    = "tour.booked"
	TourCancelled = "tour.cancelled"

	PasswordResetRequested = "password.reset_requested"
)

type Event struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurredAt"`
	Payload    json.RawMessage `json:"payload"`
}

func NewEvent(eventType string, payload interface{}) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("encoding %s payload: %w", eventType, err)
	}
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Payload:    raw,
	}, nil
}

// Decode unmarshals the event payload into v.
func (e Event) Decode(v interface{}) error {
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("decoding %s payload: %w", e.Type, err)
	}
	return nil
}

type Publisher interface {
	Publish(ctx context.Context, eventType string, payload interface{}) error
}

// NoopPublisher drops every event. Used when the event bus is disabled.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, interface{}) error { return nil }

type ListingChanged struct {
	ListingID string `json:"listingId"`
	UserID    string `json:"userId"`
}

type SessionChanged struct {
	UserID string `json:"userId"`
}

type TourChanged struct {
	TourID        string `json:"tourId"`
	UserID        string `json:"userId"`
	ListingID     string `json:"listingId"`
	ScheduledDate string `json:"scheduledDate"`
	ScheduledTime string `json:"scheduledTime"`
	Platform      string `json:"platform"`
}

type PasswordReset struct {
	Email string `json:"email"`
	Token string `json:"token"`
}
