package interfaces

import (
	"context"
	"errors"

	"dropcars/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrStaleWrite is returned when a compare-and-set update finds the stored
// assignment at a different (status, version) than the caller observed.
var ErrStaleWrite = errors.New("assignment was modified concurrently")

type AssignmentRepository interface {
	Create(ctx context.Context, assignment *models.Assignment) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Assignment, error)
	GetByOrderID(ctx context.Context, orderID primitive.ObjectID) (*models.Assignment, error)
	// Replace persists a mutated assignment only if the stored row still
	// carries the given pre-mutation status and version; otherwise it
	// returns ErrStaleWrite.
	Replace(ctx context.Context, assignment *models.Assignment, fromStatus models.AssignmentStatus, fromVersion int64) error
	// ActiveCarIDs returns the cars bound to assignments that are not yet
	// terminal, for the car assignability predicate.
	ActiveCarIDs(ctx context.Context, ownerID primitive.ObjectID) (map[primitive.ObjectID]bool, error)
}
