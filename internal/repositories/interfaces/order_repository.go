package interfaces

import (
	"context"

	"dropcars/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	ListPendingByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]*models.Order, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to models.TripStatus) error
}
