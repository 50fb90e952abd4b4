package interfaces

import (
	"context"

	"dropcars/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type WalletRepository interface {
	// Append writes one immutable ledger entry.
	Append(ctx context.Context, txn *models.WalletTransaction) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.WalletTransaction, error)
	GetByGatewayOrderID(ctx context.Context, ownerID primitive.ObjectID, gatewayOrderID string) (*models.WalletTransaction, error)
	ListByOwner(ctx context.Context, ownerID primitive.ObjectID, limit int64) ([]*models.WalletTransaction, error)
	// BalanceByOwner computes the running sum over completed transactions.
	BalanceByOwner(ctx context.Context, ownerID primitive.ObjectID) (float64, error)
	MarkStatus(ctx context.Context, id primitive.ObjectID, status models.TransactionStatus) error
}
