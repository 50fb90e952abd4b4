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

type assignmentRepository struct {
	collection *mongo.Collection
}

func NewAssignmentRepository(db *mongo.Database) interfaces.AssignmentRepository {
	return &assignmentRepository{
		collection: db.Collection("assignments"),
	}
}

func (r *assignmentRepository) Create(ctx context.Context, assignment *models.Assignment) error {
	assignment.ID = primitive.NewObjectID()
	assignment.AssignedAt = time.Now()
	assignment.UpdatedAt = assignment.AssignedAt

	if _, err := r.collection.InsertOne(ctx, assignment); err != nil {
		return fmt.Errorf("failed to create assignment: %w", err)
	}
	return nil
}

func (r *assignmentRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Assignment, error) {
	var assignment models.Assignment
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&assignment)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("assignment not found")
		}
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}
	return &assignment, nil
}

func (r *assignmentRepository) GetByOrderID(ctx context.Context, orderID primitive.ObjectID) (*models.Assignment, error) {
	var assignment models.Assignment
	err := r.collection.FindOne(ctx, bson.M{"order_id": orderID}).Decode(&assignment)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get assignment by order: %w", err)
	}
	return &assignment, nil
}

// Replace is the compare-and-set write backing every state transition. The
// filter pins the pre-mutation status and version, so a transition raced by
// another device surfaces as ErrStaleWrite instead of a silent overwrite.
func (r *assignmentRepository) Replace(ctx context.Context, assignment *models.Assignment, fromStatus models.AssignmentStatus, fromVersion int64) error {
	filter := bson.M{
		"_id":               assignment.ID,
		"assignment_status": fromStatus,
		"version":           fromVersion,
	}

	result, err := r.collection.ReplaceOne(ctx, filter, assignment)
	if err != nil {
		return fmt.Errorf("failed to replace assignment: %w", err)
	}
	if result.MatchedCount == 0 {
		return interfaces.ErrStaleWrite
	}
	return nil
}

func (r *assignmentRepository) ActiveCarIDs(ctx context.Context, ownerID primitive.ObjectID) (map[primitive.ObjectID]bool, error) {
	filter := bson.M{
		"owner_id": ownerID,
		"assignment_status": bson.M{"$in": []models.AssignmentStatus{
			models.AssignmentStatusResourced,
			models.AssignmentStatusInProgress,
		}},
		"car_id": bson.M{"$ne": nil},
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list active assignments: %w", err)
	}
	defer cursor.Close(ctx)

	bound := make(map[primitive.ObjectID]bool)
	for cursor.Next(ctx) {
		var assignment models.Assignment
		if err := cursor.Decode(&assignment); err != nil {
			return nil, fmt.Errorf("failed to decode assignment: %w", err)
		}
		if assignment.CarID != nil {
			bound[*assignment.CarID] = true
		}
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate active assignments: %w", err)
	}
	return bound, nil
}
