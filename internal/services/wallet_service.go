package services

import (
	"context"
	"fmt"
	"time"

	"dropcars/internal/models"
	"dropcars/internal/repositories/interfaces"
	"dropcars/internal/utils"
	"dropcars/pkg/cache"
	"dropcars/pkg/logger"
	"dropcars/pkg/payment"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WalletService is the owner's append-only ledger. The ledger in the store
// is the source of truth for the balance; the cached balance is overwritten
// on every recompute, never merged.
type WalletService interface {
	Credit(ctx context.Context, ownerID primitive.ObjectID, amount float64, description string, metadata map[string]string) (float64, error)
	Debit(ctx context.Context, ownerID primitive.ObjectID, amount float64, description string, metadata map[string]string) (float64, error)
	Balance(ctx context.Context, ownerID primitive.ObjectID) (float64, error)
	Transactions(ctx context.Context, ownerID primitive.ObjectID, limit int64) ([]*models.WalletTransaction, error)
	InitiateTopup(ctx context.Context, ownerID primitive.ObjectID, amount float64) (*TopupOrder, error)
	ConfirmTopup(ctx context.Context, ownerID primitive.ObjectID, gatewayOrderID, paymentID, signature string) (float64, error)
}

type TopupOrder struct {
	GatewayOrderID string  `json:"gateway_order_id"`
	Amount         float64 `json:"amount"`
	Currency       string  `json:"currency"`
}

type walletService struct {
	walletRepo interfaces.WalletRepository
	gateway    payment.TopupGateway
	cache      *cache.RedisCache
	// Overdraft rejection is a policy flag: the observed system does not
	// enforce it, so the default is off.
	preventOverdraft bool
	logger           *logger.Logger
}

func NewWalletService(
	walletRepo interfaces.WalletRepository,
	gateway payment.TopupGateway,
	redisCache *cache.RedisCache,
	preventOverdraft bool,
	log *logger.Logger,
) WalletService {
	return &walletService{
		walletRepo:       walletRepo,
		gateway:          gateway,
		cache:            redisCache,
		preventOverdraft: preventOverdraft,
		logger:           log,
	}
}

func (s *walletService) Credit(ctx context.Context, ownerID primitive.ObjectID, amount float64, description string, metadata map[string]string) (float64, error) {
	if amount <= 0 {
		return 0, NewValidationError("amount", "must be positive")
	}
	return s.append(ctx, ownerID, models.TransactionTypeCredit, amount, description, metadata)
}

func (s *walletService) Debit(ctx context.Context, ownerID primitive.ObjectID, amount float64, description string, metadata map[string]string) (float64, error) {
	if amount <= 0 {
		return 0, NewValidationError("amount", "must be positive")
	}

	if s.preventOverdraft {
		balance, err := s.walletRepo.BalanceByOwner(ctx, ownerID)
		if err != nil {
			return 0, fmt.Errorf("failed to check balance: %w", err)
		}
		if amount > balance {
			return balance, ErrInsufficientFunds
		}
	}

	return s.append(ctx, ownerID, models.TransactionTypeDebit, amount, description, metadata)
}

func (s *walletService) append(ctx context.Context, ownerID primitive.ObjectID, txnType models.TransactionType, amount float64, description string, metadata map[string]string) (float64, error) {
	before, err := s.walletRepo.BalanceByOwner(ctx, ownerID)
	if err != nil {
		return 0, fmt.Errorf("failed to read balance: %w", err)
	}

	txn := &models.WalletTransaction{
		OwnerID:       ownerID,
		Type:          txnType,
		Status:        models.TransactionStatusCompleted,
		Amount:        utils.RoundCurrency(amount),
		Description:   description,
		Metadata:      metadata,
		BalanceBefore: before,
	}
	txn.BalanceAfter = utils.RoundCurrency(before + txn.SignedAmount())

	if err := s.walletRepo.Append(ctx, txn); err != nil {
		return 0, err
	}

	s.overwriteCachedBalance(ctx, ownerID, txn.BalanceAfter)

	s.logger.WithOwnerID(ownerID).WithFields(map[string]interface{}{
		"type":   string(txnType),
		"amount": txn.Amount,
	}).Info("Wallet transaction posted")

	return txn.BalanceAfter, nil
}

// Balance recomputes from the ledger and overwrites the cached value.
func (s *walletService) Balance(ctx context.Context, ownerID primitive.ObjectID) (float64, error) {
	balance, err := s.walletRepo.BalanceByOwner(ctx, ownerID)
	if err != nil {
		return 0, fmt.Errorf("failed to compute balance: %w", err)
	}
	s.overwriteCachedBalance(ctx, ownerID, balance)
	return balance, nil
}

func (s *walletService) Transactions(ctx context.Context, ownerID primitive.ObjectID, limit int64) ([]*models.WalletTransaction, error) {
	txns, err := s.walletRepo.ListByOwner(ctx, ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return txns, nil
}

// InitiateTopup creates a payment-gateway order and records a pending
// credit carrying the gateway order id. The credit completes only on a
// signed confirmation.
func (s *walletService) InitiateTopup(ctx context.Context, ownerID primitive.ObjectID, amount float64) (*TopupOrder, error) {
	if amount < utils.MinTopupAmount || amount > utils.MaxTopupAmount {
		return nil, NewValidationError("amount", fmt.Sprintf("must be between %.0f and %.0f", utils.MinTopupAmount, utils.MaxTopupAmount))
	}
	if s.gateway == nil {
		return nil, fmt.Errorf("payment gateway is not configured")
	}

	gatewayOrderID, err := s.gateway.CreateTopupOrder(ctx, amount, utils.DefaultCurrency, ownerID.Hex())
	if err != nil {
		return nil, fmt.Errorf("failed to create top-up order: %w", err)
	}

	before, err := s.walletRepo.BalanceByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to read balance: %w", err)
	}

	txn := &models.WalletTransaction{
		OwnerID:     ownerID,
		Type:        models.TransactionTypeCredit,
		Status:      models.TransactionStatusPending,
		Amount:      utils.RoundCurrency(amount),
		Description: "Wallet top-up",
		Metadata: map[string]string{
			"gateway_order_id": gatewayOrderID,
		},
		BalanceBefore: before,
		BalanceAfter:  before,
	}
	if err := s.walletRepo.Append(ctx, txn); err != nil {
		return nil, err
	}

	return &TopupOrder{
		GatewayOrderID: gatewayOrderID,
		Amount:         txn.Amount,
		Currency:       utils.DefaultCurrency,
	}, nil
}

func (s *walletService) ConfirmTopup(ctx context.Context, ownerID primitive.ObjectID, gatewayOrderID, paymentID, signature string) (float64, error) {
	if s.gateway == nil {
		return 0, fmt.Errorf("payment gateway is not configured")
	}
	if !s.gateway.VerifySignature(gatewayOrderID, paymentID, signature) {
		return 0, fmt.Errorf("invalid payment signature")
	}

	txn, err := s.walletRepo.GetByGatewayOrderID(ctx, ownerID, gatewayOrderID)
	if err != nil {
		return 0, ErrNotFound
	}
	if txn.Status == models.TransactionStatusCompleted {
		// Confirmation retries are no-ops.
		return s.Balance(ctx, ownerID)
	}

	if err := s.walletRepo.MarkStatus(ctx, txn.ID, models.TransactionStatusCompleted); err != nil {
		return 0, err
	}

	s.logger.WithOwnerID(ownerID).WithField("gateway_order_id", gatewayOrderID).Info("Wallet top-up confirmed")

	return s.Balance(ctx, ownerID)
}

func (s *walletService) overwriteCachedBalance(ctx context.Context, ownerID primitive.ObjectID, balance float64) {
	if s.cache == nil {
		return
	}
	key := utils.CacheWalletBalancePrefix + ownerID.Hex()
	if err := s.cache.Set(ctx, key, balance, 10*time.Minute); err != nil {
		s.logger.WithError(err).WithOwnerID(ownerID).Debug("Failed to cache wallet balance")
	}
}
