package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	MaxPhotos = 5
)

// Location is where an issue was reported.
type Location struct {
	Lat     float64 `bson:"lat" json:"lat"`
	Lng     float64 `bson:"lng" json:"lng"`
	Address string  `bson:"address" json:"address"`
}

// Issue represents a civic issue reported by a user
type Issue struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Photos      []string           `bson:"photos" json:"photos"`
	Location    Location           `bson:"location" json:"location"`
	Category    Category           `bson:"category" json:"category"`
	Status      Status             `bson:"status" json:"status"`
	Anonymous   bool               `bson:"anonymous" json:"anonymous"`
	CreatedBy   primitive.ObjectID `bson:"createdBy" json:"-"`
	Hidden      bool               `bson:"hidden" json:"hidden"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// AuthoredBy reports whether userID reported the issue.
func (i *Issue) AuthoredBy(userID primitive.ObjectID) bool {
	return !userID.IsZero() && i.CreatedBy == userID
}
