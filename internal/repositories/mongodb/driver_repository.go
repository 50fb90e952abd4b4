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

type driverRepository struct {
	collection *mongo.Collection
}

func NewDriverRepository(db *mongo.Database) interfaces.DriverRepository {
	return &driverRepository{
		collection: db.Collection("drivers"),
	}
}

func (r *driverRepository) Create(ctx context.Context, driver *models.Driver) error {
	driver.ID = primitive.NewObjectID()
	driver.CreatedAt = time.Now()
	driver.UpdatedAt = driver.CreatedAt
	if driver.Status == "" {
		driver.Status = models.DriverStatusProcessing
	}

	if _, err := r.collection.InsertOne(ctx, driver); err != nil {
		return fmt.Errorf("failed to create driver: %w", err)
	}
	return nil
}

func (r *driverRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Driver, error) {
	var driver models.Driver
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&driver)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("driver not found")
		}
		return nil, fmt.Errorf("failed to get driver: %w", err)
	}
	return &driver, nil
}

func (r *driverRepository) GetByPrimaryNumber(ctx context.Context, primaryNumber string) (*models.Driver, error) {
	var driver models.Driver
	err := r.collection.FindOne(ctx, bson.M{"primary_number": primaryNumber}).Decode(&driver)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("driver not found")
		}
		return nil, fmt.Errorf("failed to get driver by number: %w", err)
	}
	return &driver, nil
}

func (r *driverRepository) ListByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]*models.Driver, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"owner_id": ownerID})
	if err != nil {
		return nil, fmt.Errorf("failed to list drivers: %w", err)
	}
	defer cursor.Close(ctx)

	drivers := []*models.Driver{}
	if err := cursor.All(ctx, &drivers); err != nil {
		return nil, fmt.Errorf("failed to decode drivers: %w", err)
	}
	return drivers, nil
}

func (r *driverRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.DriverStatus) error {
	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"driver_status": status, "updated_at": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to update driver status: %w", err)
	}
	return nil
}

func (r *driverRepository) SetCurrentAssignment(ctx context.Context, id primitive.ObjectID, assignmentID *primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"current_assignment": assignmentID, "updated_at": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to set current assignment: %w", err)
	}
	return nil
}

func (r *driverRepository) UpdateLastLogin(ctx context.Context, id primitive.ObjectID) error {
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
