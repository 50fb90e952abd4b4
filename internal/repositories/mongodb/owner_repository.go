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

type ownerRepository struct {
	collection *mongo.Collection
}

func NewOwnerRepository(db *mongo.Database) interfaces.OwnerRepository {
	return &ownerRepository{
		collection: db.Collection("vehicle_owners"),
	}
}

func (r *ownerRepository) Create(ctx context.Context, owner *models.VehicleOwner) error {
	owner.ID = primitive.NewObjectID()
	owner.CreatedAt = time.Now()
	owner.UpdatedAt = owner.CreatedAt

	if _, err := r.collection.InsertOne(ctx, owner); err != nil {
		return fmt.Errorf("failed to create vehicle owner: %w", err)
	}
	return nil
}

func (r *ownerRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.VehicleOwner, error) {
	var owner models.VehicleOwner
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&owner)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("vehicle owner not found")
		}
		return nil, fmt.Errorf("failed to get vehicle owner: %w", err)
	}
	return &owner, nil
}

func (r *ownerRepository) GetByPrimaryNumber(ctx context.Context, primaryNumber string) (*models.VehicleOwner, error) {
	var owner models.VehicleOwner
	err := r.collection.FindOne(ctx, bson.M{"primary_number": primaryNumber}).Decode(&owner)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("vehicle owner not found")
		}
		return nil, fmt.Errorf("failed to get vehicle owner by number: %w", err)
	}
	return &owner, nil
}

func (r *ownerRepository) UpdateLastLogin(ctx context.Context, id primitive.ObjectID) error {
	now := time.Now()
	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"last_login_at": now, "updated_at": now}},
	)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}
