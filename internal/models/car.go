package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Car struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	OwnerID     primitive.ObjectID `json:"owner_id" bson:"owner_id" validate:"required"`
	CarNumber   string             `json:"car_number" bson:"car_number" validate:"required"`
	CarType     string             `json:"car_type" bson:"car_type"`
	IsAvailable bool               `json:"is_available" bson:"is_available" default:"true"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at" bson:"updated_at"`
}

// Assignable reports whether the car may be bound to an assignment. The
// caller supplies the set of cars currently bound to active assignments;
// that check lives outside the row itself.
func (c *Car) Assignable(boundCarIDs map[primitive.ObjectID]bool) bool {
	return c.IsAvailable && !boundCarIDs[c.ID]
}
