package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AssignmentStatus string

const (
	AssignmentStatusAccepted   AssignmentStatus = "ACCEPTED"
	AssignmentStatusResourced  AssignmentStatus = "RESOURCED"
	AssignmentStatusInProgress AssignmentStatus = "IN_PROGRESS"
	AssignmentStatusCompleted  AssignmentStatus = "COMPLETED"
	AssignmentStatusCancelled  AssignmentStatus = "CANCELLED"
	AssignmentStatusExpired    AssignmentStatus = "EXPIRED"
)

// Assignment tracks one order's journey from acceptance to settlement.
// Version increments on every committed transition and backs the
// compare-and-set writes in the repository.
type Assignment struct {
	ID        primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	OrderID   primitive.ObjectID  `json:"order_id" bson:"order_id"`
	OwnerID   primitive.ObjectID  `json:"owner_id" bson:"owner_id"`
	DriverID  *primitive.ObjectID `json:"driver_id" bson:"driver_id"`
	CarID     *primitive.ObjectID `json:"car_id" bson:"car_id"`
	Status    AssignmentStatus    `json:"assignment_status" bson:"assignment_status"`
	Version   int64               `json:"version" bson:"version"`
	AssignedAt time.Time          `json:"assigned_at" bson:"assigned_at"`
	ExpiresAt time.Time           `json:"expires_at" bson:"expires_at"`

	ResourcedAt *time.Time `json:"resourced_at" bson:"resourced_at"`
	StartedAt   *time.Time `json:"started_at" bson:"started_at"`
	CompletedAt *time.Time `json:"completed_at" bson:"completed_at"`
	CancelledAt *time.Time `json:"cancelled_at" bson:"cancelled_at"`

	StartKM       *int64 `json:"start_km" bson:"start_km"`
	EndKM         *int64 `json:"end_km" bson:"end_km"`
	StartEvidence string `json:"start_odometer_evidence" bson:"start_odometer_evidence"`
	EndEvidence   string `json:"end_odometer_evidence" bson:"end_odometer_evidence"`

	DistanceKM   int64   `json:"distance_km" bson:"distance_km"`
	Fare         float64 `json:"fare" bson:"fare"`
	CancelReason string  `json:"cancel_reason,omitempty" bson:"cancel_reason,omitempty"`

	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// allowedTransitions is the full transition graph. Terminal states have
// no outgoing edges, which is what makes transitions monotonic: once
// completed, cancelled or expired, an assignment never moves again.
var allowedTransitions = map[AssignmentStatus][]AssignmentStatus{
	AssignmentStatusAccepted:   {AssignmentStatusResourced, AssignmentStatusCancelled, AssignmentStatusExpired},
	AssignmentStatusResourced:  {AssignmentStatusInProgress, AssignmentStatusCancelled},
	AssignmentStatusInProgress: {AssignmentStatusCompleted},
	AssignmentStatusCompleted:  {},
	AssignmentStatusCancelled:  {},
	AssignmentStatusExpired:    {},
}

func CanTransition(from, to AssignmentStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ApplyTransition moves the assignment to the target status, stamps the
// matching timestamp and bumps the version. It mutates nothing on an
// illegal edge.
func ApplyTransition(a *Assignment, to AssignmentStatus, now time.Time) error {
	if !CanTransition(a.Status, to) {
		return fmt.Errorf("illegal transition %s -> %s", a.Status, to)
	}

	a.Status = to
	a.Version++
	a.UpdatedAt = now

	switch to {
	case AssignmentStatusResourced:
		a.ResourcedAt = &now
	case AssignmentStatusInProgress:
		a.StartedAt = &now
	case AssignmentStatusCompleted:
		a.CompletedAt = &now
	case AssignmentStatusCancelled, AssignmentStatusExpired:
		a.CancelledAt = &now
	}
	return nil
}

func (a *Assignment) IsTerminal() bool {
	return len(allowedTransitions[a.Status]) == 0
}

// LapsedUnresourced reports whether the acceptance window elapsed before
// any driver or car was bound. Expiry is applied lazily on read; nothing
// runs a timer against the stored row.
func (a *Assignment) LapsedUnresourced(now time.Time) bool {
	return a.Status == AssignmentStatusAccepted && now.After(a.ExpiresAt)
}
