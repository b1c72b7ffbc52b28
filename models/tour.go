package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TourPlatform string

const (
	PlatformZoom       TourPlatform = "zoom"
	PlatformGoogleMeet TourPlatform = "google-meet"
	PlatformWhatsApp   TourPlatform = "whatsapp"
)

func (p TourPlatform) Valid() bool {
	switch p {
	case PlatformZoom, PlatformGoogleMeet, PlatformWhatsApp:
		return true
	}
	return false
}

type TourStatus string

const (
	TourPending   TourStatus = "pending"
	TourConfirmed TourStatus = "confirmed"
	TourCompleted TourStatus = "completed"
	TourCancelled TourStatus = "cancelled"
)

// Upcoming reports whether the tour still has to take place.
func (s TourStatus) Upcoming() bool {
	return s == TourPending || s == TourConfirmed
}

const (
	TourDateLayout = "2006-01-02"
	TourTimeLayout = "15:04"
)

type VirtualTour struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID        string             `bson:"userId" json:"userId"`
	PropertyID    primitive.ObjectID `bson:"propertyId" json:"propertyId"`
	ScheduledDate string             `bson:"scheduledDate" json:"scheduledDate"`
	ScheduledTime string             `bson:"scheduledTime" json:"scheduledTime"`
	Platform      TourPlatform       `bson:"platform" json:"platform"`
	Status        TourStatus         `bson:"status" json:"status"`
	MeetingLink   *string            `bson:"meetingLink,omitempty" json:"meetingLink"`
	Notes         *string            `bson:"notes,omitempty" json:"notes"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
	Property      *Listing           `bson:"property,omitempty" json:"property,omitempty"`
}
