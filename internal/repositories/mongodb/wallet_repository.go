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

type walletRepository struct {
	collection *mongo.Collection
}

func NewWalletRepository(db *mongo.Database) interfaces.WalletRepository {
	return &walletRepository{
		collection: db.Collection("wallet_transactions"),
	}
}

func (r *walletRepository) Append(ctx context.Context, txn *models.WalletTransaction) error {
	txn.ID = primitive.NewObjectID()
	txn.CreatedAt = time.Now()

	if _, err := r.collection.InsertOne(ctx, txn); err != nil {
		return fmt.Errorf("failed to append wallet transaction: %w", err)
	}
	return nil
}

func (r *walletRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.WalletTransaction, error) {
	var txn models.WalletTransaction
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&txn)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("wallet transaction not found")
		}
		return nil, fmt.Errorf("failed to get wallet transaction: %w", err)
	}
	return &txn, nil
}

func (r *walletRepository) GetByGatewayOrderID(ctx context.Context, ownerID primitive.ObjectID, gatewayOrderID string) (*models.WalletTransaction, error) {
	filter := bson.M{
		"owner_id":                  ownerID,
		"metadata.gateway_order_id": gatewayOrderID,
	}
	var txn models.WalletTransaction
	err := r.collection.FindOne(ctx, filter).Decode(&txn)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("wallet transaction not found")
		}
		return nil, fmt.Errorf("failed to get wallet transaction by gateway order: %w", err)
	}
	return &txn, nil
}

func (r *walletRepository) ListByOwner(ctx context.Context, ownerID primitive.ObjectID, limit int64) ([]*models.WalletTransaction, error) {
	opts := options.Find().SetSort(bson.M{"created_at": -1})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := r.collection.Find(ctx, bson.M{"owner_id": ownerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list wallet transactions: %w", err)
	}
	defer cursor.Close(ctx)

	txns := []*models.WalletTransaction{}
	if err := cursor.All(ctx, &txns); err != nil {
		return nil, fmt.Errorf("failed to decode wallet transactions: %w", err)
	}
	return txns, nil
}

// BalanceByOwner recomputes the balance from the ledger itself: the sum of
// completed credits minus completed debits. The ledger is the source of
// truth; cached balances are overwritten with this value, never merged.
func (r *walletRepository) BalanceByOwner(ctx context.Context, ownerID primitive.ObjectID) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"owner_id": ownerID,
			"status":   models.TransactionStatusCompleted,
		}}},
		{{Key: "$group", Value: bson.M{
			"_id": nil,
			"balance": bson.M{"$sum": bson.M{"$cond": bson.A{
				bson.M{"$eq": bson.A{"$type", models.TransactionTypeDebit}},
				bson.M{"$multiply": bson.A{"$amount", -1}},
				"$amount",
			}}},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("failed to aggregate wallet balance: %w", err)
	}
	defer cursor.Close(ctx)

	var results []struct {
		Balance float64 `bson:"balance"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, fmt.Errorf("failed to decode wallet balance: %w", err)
	}
	if len(results) == 0 {
		return 0, nil
	}
	return results[0].Balance, nil
}

func (r *walletRepository) MarkStatus(ctx context.Context, id primitive.ObjectID, status models.TransactionStatus) error {
	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status}},
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction status: %w", err)
	}
	return nil
}
