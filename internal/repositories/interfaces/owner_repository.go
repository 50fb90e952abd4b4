package interfaces

import (
	"context"

	"dropcars/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OwnerRepository interface {
	Create(ctx context.Context, owner *models.VehicleOwner) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.VehicleOwner, error)
	GetByPrimaryNumber(ctx context.Context, primaryNumber string) (*models.VehicleOwner, error)
	UpdateLastLogin(ctx context.Context, id primitive.ObjectID) error
}
