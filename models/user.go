package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Email     string             `bson:"email" json:"email"`
	Password  string             `bson:"password" json:"-"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

type LookingFor string

const (
	LookingToRent      LookingFor = "rent"
	LookingToBuy       LookingFor = "buy"
	LookingForShortLet LookingFor = "short-let"
)

// Profile shares its id with the owning User.
type Profile struct {
	ID                 string      `bson:"_id" json:"id"`
	FullName           string      `bson:"fullName" json:"fullName"`
	PhoneNumber        *string     `bson:"phoneNumber,omitempty" json:"phoneNumber"`
	AvatarURL          *string     `bson:"avatarUrl,omitempty" json:"avatarUrl"`
	LookingFor         *LookingFor `bson:"lookingFor,omitempty" json:"lookingFor"`
	PreferredLocations []string    `bson:"preferredLocations" json:"preferredLocations"`
	CreatedAt          time.Time   `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time   `bson:"updatedAt" json:"updatedAt"`
}

func (l LookingFor) Valid() bool {
	switch l {
	case LookingToRent, LookingToBuy, LookingForShortLet:
		return true
	}
	return false
}
