package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Collection-point status codes.
const (
	PointStatusFull        = "FULL"
	PointStatusAvailable   = "AVAILABLE"
	PointStatusMaintenance = "UNDER_MAINTENANCE"
)

// CollectionPoint is one entry of the waste collection-point catalog (a TPS,
// "tempat pembuangan sampah").
type CollectionPoint struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PointID     string             `bson:"pointID" json:"pointID"` // user-friendly unique ID, e.g. "tps-kenanga-01"
	Name        string             `bson:"name" json:"name"`
	Address     string             `bson:"address" json:"address"`
	Coordinates Coordinates        `bson:"coordinates" json:"coordinates"`
	Status      string             `bson:"status" json:"status"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}
