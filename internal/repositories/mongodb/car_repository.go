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
)

type carRepository struct {
	collection *mongo.Collection
}

func NewCarRepository(db *mongo.Database) interfaces.CarRepository {
	return &carRepository{
		collection: db.Collection("cars"),
	}
}

func (r *carRepository) Create(ctx context.Context, car *models.Car) error {
	car.ID = primitive.NewObjectID()
	car.CreatedAt = time.Now()
	car.UpdatedAt = car.CreatedAt

	if _, err := r.collection.InsertOne(ctx, car); err != nil {
		return fmt.Errorf("failed to create car: %w", err)
	}
	return nil
}

func (r *carRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Car, error) {
	var car models.Car
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&car)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("car not found")
		}
		return nil, fmt.Errorf("failed to get car: %w", err)
	}
	return &car, nil
}

func (r *carRepository) ListByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]*models.Car, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"owner_id": ownerID})
	if err != nil {
		return nil, fmt.Errorf("failed to list cars: %w", err)
	}
	defer cursor.Close(ctx)

	cars := []*models.Car{}
	if err := cursor.All(ctx, &cars); err != nil {
		return nil, fmt.Errorf("failed to decode cars: %w", err)
	}
	return cars, nil
}

func (r *carRepository) SetAvailability(ctx context.Context, id primitive.ObjectID, available bool) error {
	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"is_available": available, "updated_at": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to update car availability: %w", err)
	}
	return nil
}
