package services

import (
	"context"
	"errors"
	"testing"

	"dropcars/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestGetOrderHidesForeignOwnersOrder(t *testing.T) {
	ctx := context.Background()
	orders := newFakeOrderRepo()
	svc := NewOrderService(orders, testLogger(t))

	ownerID := primitive.NewObjectID()
	order := &models.Order{
		OwnerID:        ownerID,
		TripType:       models.TripTypeOneway,
		CustomerName:   "Meena S",
		CustomerNumber: "+919876543210",
		PickupLocation: "Chennai",
		EstimatedKM:    120,
		CostPerKM:      11,
	}
	if err := orders.Create(ctx, order); err != nil {
		t.Fatalf("seed order: %v", err)
	}

	if _, err := svc.GetOrder(ctx, primitive.NewObjectID(), order.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for a foreign owner, got %v", err)
	}

	got, err := svc.GetOrder(ctx, ownerID, order.ID)
	if err != nil {
		t.Fatalf("owning owner should read the order: %v", err)
	}
	if got.CustomerNumber != order.CustomerNumber {
		t.Errorf("customer number = %q, want %q", got.CustomerNumber, order.CustomerNumber)
	}
}

func TestListPendingOrdersScopedToOwner(t *testing.T) {
	ctx := context.Background()
	orders := newFakeOrderRepo()
	svc := NewOrderService(orders, testLogger(t))

	ownerID := primitive.NewObjectID()
	mine := &models.Order{OwnerID: ownerID, TripType: models.TripTypeOneway, PickupLocation: "Chennai"}
	foreign := &models.Order{OwnerID: primitive.NewObjectID(), TripType: models.TripTypeOneway, PickupLocation: "Madurai"}
	for _, o := range []*models.Order{mine, foreign} {
		if err := orders.Create(ctx, o); err != nil {
			t.Fatalf("seed order: %v", err)
		}
	}

	got, err := svc.ListPendingOrders(ctx, ownerID)
	if err != nil {
		t.Fatalf("ListPendingOrders: %v", err)
	}
	if len(got) != 1 || got[0].ID != mine.ID {
		t.Fatalf("expected only the owner's pending order, got %d entries", len(got))
	}
}
