package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TransactionType string
type TransactionStatus string

const (
	TransactionTypeCredit TransactionType = "credit"
	TransactionTypeDebit  TransactionType = "debit"

	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
)

// WalletTransaction is one entry in the owner's append-only ledger.
// Immutable once written; the balance is the running sum over completed
// entries.
type WalletTransaction struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	OwnerID       primitive.ObjectID `json:"owner_id" bson:"owner_id" validate:"required"`
	Type          TransactionType    `json:"type" bson:"type" validate:"required"`
	Status        TransactionStatus  `json:"status" bson:"status" default:"pending"`
	Amount        float64            `json:"amount" bson:"amount" validate:"required,gt=0"`
	Description   string             `json:"description" bson:"description"`
	Metadata      map[string]string  `json:"metadata" bson:"metadata"`
	BalanceBefore float64            `json:"balance_before" bson:"balance_before"`
	BalanceAfter  float64            `json:"balance_after" bson:"balance_after"`
	CreatedAt     time.Time          `json:"created_at" bson:"created_at"`
}

// SignedAmount folds the transaction direction into the amount.
func (t *WalletTransaction) SignedAmount() float64 {
	if t.Type == TransactionTypeDebit {
		return -t.Amount
	}
	return t.Amount
}
