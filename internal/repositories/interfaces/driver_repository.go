package interfaces

import (
	"context"

	"dropcars/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type DriverRepository interface {
	Create(ctx context.Context, driver *models.Driver) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Driver, error)
	GetByPrimaryNumber(ctx context.Context, primaryNumber string) (*models.Driver, error)
	ListByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]*models.Driver, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.DriverStatus) error
	SetCurrentAssignment(ctx context.Context, id primitive.ObjectID, assignmentID *primitive.ObjectID) error
	UpdateLastLogin(ctx context.Context, id primitive.ObjectID) error
}
