package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// VehicleOwner is the fleet-operator account that owns orders, drivers
// and cars.
type VehicleOwner struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	FullName      string             `json:"full_name" bson:"full_name" validate:"required"`
	PrimaryNumber string             `json:"primary_number" bson:"primary_number" validate:"required,phone"`
	Password      string             `json:"-" bson:"password"`
	Address       string             `json:"address" bson:"address"`
	LastLoginAt   *time.Time         `json:"last_login_at" bson:"last_login_at"`
	CreatedAt     time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at" bson:"updated_at"`
}
