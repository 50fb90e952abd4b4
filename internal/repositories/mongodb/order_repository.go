package mongodb

import (
	"context"
	"fmt"
	"time"

	"dropcars/internal/models"
	"dropcars/internal/repositories/interfaces"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type orderRepository struct {
	collection *mongo.Collection
}

func NewOrderRepository(db *mongo.Database) interfaces.OrderRepository {
	return &orderRepository{
		collection: db.Collection("orders"),
	}
}

func (r *orderRepository) Create(ctx context.Context, order *models.Order) error {
	order.ID = primitive.NewObjectID()
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt
	if order.TripStatus == "" {
		order.TripStatus = models.TripStatusPending
	}

	if _, err := r.collection.InsertOne(ctx, order); err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

func (r *orderRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	var order models.Order
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("order not found")
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return &order, nil
}

func (r *orderRepository) ListPendingByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]*models.Order, error) {
	filter := bson.M{
		"owner_id":    ownerID,
		"trip_status": models.TripStatusPending,
	}
	opts := options.Find().SetSort(bson.M{"created_at": -1})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending orders: %w", err)
	}
	defer cursor.Close(ctx)

	orders := []*models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("failed to decode pending orders: %w", err)
	}
	return orders, nil
}

// UpdateStatus moves the order's trip status only if it still carries the
// expected current status.
func (r *orderRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to models.TripStatus) error {
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id, "trip_status": from},
		bson.M{"$set": bson.M{"trip_status": to, "updated_at": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("order is no longer %s", from)
	}
	return nil
}
