package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SavedProperty struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID     string             `bson:"userId" json:"userId"`
	PropertyID primitive.ObjectID `bson:"propertyId" json:"propertyId"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	Property   *Listing           `bson:"property,omitempty" json:"property,omitempty"`
}
