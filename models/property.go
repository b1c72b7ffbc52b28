package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PropertyType string

const (
	PropertyApartment PropertyType = "apartment"
	PropertyDuplex    PropertyType = "duplex"
	PropertyStudio    PropertyType = "studio"
	PropertyLand      PropertyType = "land"
	PropertyVilla     PropertyType = "villa"
	PropertyMansion   PropertyType = "mansion"
)

var PropertyTypes = []PropertyType{
	PropertyApartment, PropertyDuplex, PropertyStudio, PropertyLand, PropertyVilla, PropertyMansion,
}

func (t PropertyType) Valid() bool {
	for _, v := range PropertyTypes {
		if v == t {
			return true
		}
	}
	return false
}

type ListingType string

const (
	ListingForSale  ListingType = "for-sale"
	ListingForRent  ListingType = "for-rent"
	ListingShortLet ListingType = "short-let"
)

var ListingTypes = []ListingType{ListingForSale, ListingForRent, ListingShortLet}

func (t ListingType) Valid() bool {
	for _, v := range ListingTypes {
		if v == t {
			return true
		}
	}
	return false
}

// Listing is a property offered for sale, rent or short-let. IsFavorite is
// computed per caller and never stored.
type Listing struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title        string             `bson:"title" json:"title"`
	Description  string             `bson:"description" json:"description"`
	PropertyType PropertyType       `bson:"propertyType" json:"propertyType"`
	ListingType  ListingType        `bson:"listingType" json:"listingType"`
	Price        int64              `bson:"price" json:"price"`
	Location     string             `bson:"location" json:"location"`
	City         string             `bson:"city" json:"city"`
	Neighborhood string             `bson:"neighborhood" json:"neighborhood"`
	Bedrooms     int                `bson:"bedrooms" json:"bedrooms"`
	Bathrooms    int                `bson:"bathrooms" json:"bathrooms"`
	SizeSqm      float64            `bson:"sizeSqm" json:"sizeSqm"`
	Amenities    []string           `bson:"amenities" json:"amenities"`
	Images       []string           `bson:"images" json:"images"`
	Featured     bool               `bson:"featured" json:"featured"`
	Available    bool               `bson:"available" json:"available"`
	CreatedBy    string             `bson:"createdBy" json:"createdBy"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
	IsFavorite   bool               `bson:"-" json:"isFavorite"`
}
