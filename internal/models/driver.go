package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type DriverStatus string

const (
	DriverStatusOnline     DriverStatus = "ONLINE"
	DriverStatusOffline    DriverStatus = "OFFLINE"
	DriverStatusDriving    DriverStatus = "DRIVING"
	DriverStatusProcessing DriverStatus = "PROCESSING"
	DriverStatusBlocked    DriverStatus = "BLOCKED"
)

type Driver struct {
	ID                primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	OwnerID           primitive.ObjectID  `json:"owner_id" bson:"owner_id" validate:"required"`
	FullName          string              `json:"full_name" bson:"full_name" validate:"required"`
	PrimaryNumber     string              `json:"primary_number" bson:"primary_number" validate:"required,phone"`
	Password          string              `json:"-" bson:"password"`
	LicenseNumber     string              `json:"license_number" bson:"license_number"`
	Status            DriverStatus        `json:"driver_status" bson:"driver_status" default:"PROCESSING"`
	CurrentAssignment *primitive.ObjectID `json:"current_assignment" bson:"current_assignment"`
	LastLoginAt       *time.Time          `json:"last_login_at" bson:"last_login_at"`
	CreatedAt         time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at" bson:"updated_at"`
}

// Assignable reports whether the driver may be bound to an assignment.
// PROCESSING means identity verification is incomplete and is never
// assignable.
func (d *Driver) Assignable() bool {
	switch d.Status {
	case DriverStatusProcessing, DriverStatusOffline, DriverStatusBlocked:
		return false
	}
	return d.CurrentAssignment == nil
}
