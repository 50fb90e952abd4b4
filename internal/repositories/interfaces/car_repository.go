package interfaces

import (
	"context"

	"dropcars/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CarRepository interface {
	Create(ctx context.Context, car *models.Car) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Car, error)
	ListByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]*models.Car, error)
	SetAvailability(ctx context.Context, id primitive.ObjectID, available bool) error
}
