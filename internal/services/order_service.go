package services

import (
	"context"
	"fmt"

	"dropcars/internal/models"
	"dropcars/internal/repositories/interfaces"
	"dropcars/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderService discovers candidate orders for the authenticated owner.
// Orders are created by the external dispatch collaborator and observed
// read-only here until accepted.
type OrderService interface {
	ListPendingOrders(ctx context.Context, ownerID primitive.ObjectID) ([]*models.Order, error)
	GetOrder(ctx context.Context, ownerID, orderID primitive.ObjectID) (*models.Order, error)
}

type orderService struct {
	orderRepo interfaces.OrderRepository
	logger    *logger.Logger
}

func NewOrderService(orderRepo interfaces.OrderRepository, log *logger.Logger) OrderService {
	return &orderService{
		orderRepo: orderRepo,
		logger:    log,
	}
}

func (s *orderService) ListPendingOrders(ctx context.Context, ownerID primitive.ObjectID) ([]*models.Order, error) {
	orders, err := s.orderRepo.ListPendingByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending orders: %w", err)
	}
	return orders, nil
}

func (s *orderService) GetOrder(ctx context.Context, ownerID, orderID primitive.ObjectID) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: order %s", ErrNotFound, orderID.Hex())
	}
	// A foreign owner's order reads as absent rather than leaking the
	// customer's details.
	if order.OwnerID != ownerID {
		return nil, fmt.Errorf("%w: order %s", ErrNotFound, orderID.Hex())
	}
	return order, nil
}
