package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"dropcars/internal/models"
	"dropcars/internal/repositories/interfaces"
	"dropcars/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.NewLogger(&logger.Config{Level: "error", Format: "text", Output: "stderr"})
	if err != nil {
		t.Fatalf("failed to build test logger: %v", err)
	}
	return log
}

type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[primitive.ObjectID]*models.Order
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[primitive.ObjectID]*models.Order)}
}

func (r *fakeOrderRepo) Create(ctx context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}
	if order.TripStatus == "" {
		order.TripStatus = models.TripStatusPending
	}
	clone := *order
	r.orders[order.ID] = &clone
	return nil
}

func (r *fakeOrderRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("order not found")
	}
	clone := *order
	return &clone, nil
}

func (r *fakeOrderRepo) ListPendingByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.Order{}
	for _, order := range r.orders {
		if order.OwnerID == ownerID && order.TripStatus == models.TripStatusPending {
			clone := *order
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to models.TripStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok || order.TripStatus != from {
		return fmt.Errorf("order not in status %s", from)
	}
	order.TripStatus = to
	return nil
}

type fakeAssignmentRepo struct {
	mu          sync.Mutex
	assignments map[primitive.ObjectID]*models.Assignment

	replaceErr error
}

func newFakeAssignmentRepo() *fakeAssignmentRepo {
	return &fakeAssignmentRepo{assignments: make(map[primitive.ObjectID]*models.Assignment)}
}

func (r *fakeAssignmentRepo) Create(ctx context.Context, assignment *models.Assignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if assignment.ID.IsZero() {
		assignment.ID = primitive.NewObjectID()
	}
	clone := *assignment
	r.assignments[assignment.ID] = &clone
	return nil
}

func (r *fakeAssignmentRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	assignment, ok := r.assignments[id]
	if !ok {
		return nil, fmt.Errorf("assignment not found")
	}
	clone := *assignment
	return &clone, nil
}

func (r *fakeAssignmentRepo) GetByOrderID(ctx context.Context, orderID primitive.ObjectID) (*models.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, assignment := range r.assignments {
		if assignment.OrderID == orderID {
			clone := *assignment
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *fakeAssignmentRepo) Replace(ctx context.Context, assignment *models.Assignment, fromStatus models.AssignmentStatus, fromVersion int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.replaceErr != nil {
		return r.replaceErr
	}
	stored, ok := r.assignments[assignment.ID]
	if !ok || stored.Status != fromStatus || stored.Version != fromVersion {
		return interfaces.ErrStaleWrite
	}
	clone := *assignment
	r.assignments[assignment.ID] = &clone
	return nil
}

func (r *fakeAssignmentRepo) ActiveCarIDs(ctx context.Context, ownerID primitive.ObjectID) (map[primitive.ObjectID]bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	bound := make(map[primitive.ObjectID]bool)
	for _, assignment := range r.assignments {
		if assignment.OwnerID != ownerID || assignment.CarID == nil {
			continue
		}
		if assignment.Status == models.AssignmentStatusResourced || assignment.Status == models.AssignmentStatusInProgress {
			bound[*assignment.CarID] = true
		}
	}
	return bound, nil
}

type fakeDriverRepo struct {
	mu      sync.Mutex
	drivers map[primitive.ObjectID]*models.Driver
	listErr error
}

func newFakeDriverRepo() *fakeDriverRepo {
	return &fakeDriverRepo{drivers: make(map[primitive.ObjectID]*models.Driver)}
}

func (r *fakeDriverRepo) Create(ctx context.Context, driver *models.Driver) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if driver.ID.IsZero() {
		driver.ID = primitive.NewObjectID()
	}
	clone := *driver
	r.drivers[driver.ID] = &clone
	return nil
}

func (r *fakeDriverRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Driver, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	driver, ok := r.drivers[id]
	if !ok {
		return nil, fmt.Errorf("driver not found")
	}
	clone := *driver
	return &clone, nil
}

func (r *fakeDriverRepo) GetByPrimaryNumber(ctx context.Context, primaryNumber string) (*models.Driver, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, driver := range r.drivers {
		if driver.PrimaryNumber == primaryNumber {
			clone := *driver
			return &clone, nil
		}
	}
	return nil, fmt.Errorf("driver not found")
}

func (r *fakeDriverRepo) ListByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]*models.Driver, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := []*models.Driver{}
	for _, driver := range r.drivers {
		if driver.OwnerID == ownerID {
			clone := *driver
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakeDriverRepo) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.DriverStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	driver, ok := r.drivers[id]
	if !ok {
		return fmt.Errorf("driver not found")
	}
	driver.Status = status
	return nil
}

func (r *fakeDriverRepo) SetCurrentAssignment(ctx context.Context, id primitive.ObjectID, assignmentID *primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	driver, ok := r.drivers[id]
	if !ok {
		return fmt.Errorf("driver not found")
	}
	driver.CurrentAssignment = assignmentID
	return nil
}

func (r *fakeDriverRepo) UpdateLastLogin(ctx context.Context, id primitive.ObjectID) error {
	return nil
}

type fakeCarRepo struct {
	mu      sync.Mutex
	cars    map[primitive.ObjectID]*models.Car
	listErr error
}

func newFakeCarRepo() *fakeCarRepo {
	return &fakeCarRepo{cars: make(map[primitive.ObjectID]*models.Car)}
}

func (r *fakeCarRepo) Create(ctx context.Context, car *models.Car) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if car.ID.IsZero() {
		car.ID = primitive.NewObjectID()
	}
	clone := *car
	r.cars[car.ID] = &clone
	return nil
}

func (r *fakeCarRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Car, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	car, ok := r.cars[id]
	if !ok {
		return nil, fmt.Errorf("car not found")
	}
	clone := *car
	return &clone, nil
}

func (r *fakeCarRepo) ListByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]*models.Car, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := []*models.Car{}
	for _, car := range r.cars {
		if car.OwnerID == ownerID {
			clone := *car
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakeCarRepo) SetAvailability(ctx context.Context, id primitive.ObjectID, available bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	car, ok := r.cars[id]
	if !ok {
		return fmt.Errorf("car not found")
	}
	car.IsAvailable = available
	return nil
}

type fakeWalletRepo struct {
	mu   sync.Mutex
	txns []*models.WalletTransaction
}

func newFakeWalletRepo() *fakeWalletRepo {
	return &fakeWalletRepo{}
}

func (r *fakeWalletRepo) Append(ctx context.Context, txn *models.WalletTransaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if txn.ID.IsZero() {
		txn.ID = primitive.NewObjectID()
	}
	clone := *txn
	r.txns = append(r.txns, &clone)
	return nil
}

func (r *fakeWalletRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.WalletTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, txn := range r.txns {
		if txn.ID == id {
			clone := *txn
			return &clone, nil
		}
	}
	return nil, fmt.Errorf("transaction not found")
}

func (r *fakeWalletRepo) GetByGatewayOrderID(ctx context.Context, ownerID primitive.ObjectID, gatewayOrderID string) (*models.WalletTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, txn := range r.txns {
		if txn.OwnerID == ownerID && txn.Metadata["gateway_order_id"] == gatewayOrderID {
			clone := *txn
			return &clone, nil
		}
	}
	return nil, fmt.Errorf("wallet transaction not found")
}

func (r *fakeWalletRepo) ListByOwner(ctx context.Context, ownerID primitive.ObjectID, limit int64) ([]*models.WalletTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.WalletTransaction{}
	for i := len(r.txns) - 1; i >= 0; i-- {
		if r.txns[i].OwnerID != ownerID {
			continue
		}
		clone := *r.txns[i]
		out = append(out, &clone)
		if limit > 0 && int64(len(out)) >= limit {
			break
		}
	}
	return out, nil
}

func (r *fakeWalletRepo) BalanceByOwner(ctx context.Context, ownerID primitive.ObjectID) (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var balance float64
	for _, txn := range r.txns {
		if txn.OwnerID == ownerID && txn.Status == models.TransactionStatusCompleted {
			balance += txn.SignedAmount()
		}
	}
	return balance, nil
}

func (r *fakeWalletRepo) MarkStatus(ctx context.Context, id primitive.ObjectID, status models.TransactionStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, txn := range r.txns {
		if txn.ID == id {
			txn.Status = status
			return nil
		}
	}
	return fmt.Errorf("transaction not found")
}

type recordingSMS struct {
	mu       sync.Mutex
	messages []string
}

func (s *recordingSMS) Send(ctx context.Context, to, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, message)
	return nil
}
