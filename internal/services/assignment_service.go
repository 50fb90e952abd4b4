package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dropcars/internal/models"
	"dropcars/internal/repositories/interfaces"
	"dropcars/internal/utils"
	"dropcars/pkg/logger"
	"dropcars/pkg/sms"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AssignmentService is the state machine governing an order's life from
// acceptance through settlement. Every transition is validated locally,
// then committed with a compare-and-set write; no partial transition is
// ever committed on error.
type AssignmentService interface {
	Accept(ctx context.Context, ownerID, orderID primitive.ObjectID) (*models.Assignment, error)
	BindResources(ctx context.Context, ownerID, assignmentID, driverID, carID primitive.ObjectID) (*models.Assignment, error)
	StartTrip(ctx context.Context, driverID, assignmentID primitive.ObjectID, startKM int64, startEvidence string) (*models.Assignment, error)
	EndTrip(ctx context.Context, driverID, assignmentID primitive.ObjectID, endKM int64, endEvidence string, customerAcknowledged bool) (*models.Assignment, error)
	Cancel(ctx context.Context, ownerID, assignmentID primitive.ObjectID, reason string) (*models.Assignment, error)
	GetForOrder(ctx context.Context, ownerID, orderID primitive.ObjectID) (*models.Assignment, error)
}

type assignmentService struct {
	orderRepo      interfaces.OrderRepository
	assignmentRepo interfaces.AssignmentRepository
	driverRepo     interfaces.DriverRepository
	carRepo        interfaces.CarRepository
	wallet         WalletService
	smsSender      sms.Sender
	acceptTTL      time.Duration
	commission     float64
	now            func() time.Time
	logger         *logger.Logger
}

func NewAssignmentService(
	orderRepo interfaces.OrderRepository,
	assignmentRepo interfaces.AssignmentRepository,
	driverRepo interfaces.DriverRepository,
	carRepo interfaces.CarRepository,
	wallet WalletService,
	smsSender sms.Sender,
	acceptTTL time.Duration,
	commission float64,
	log *logger.Logger,
) AssignmentService {
	return &assignmentService{
		orderRepo:      orderRepo,
		assignmentRepo: assignmentRepo,
		driverRepo:     driverRepo,
		carRepo:        carRepo,
		wallet:         wallet,
		smsSender:      smsSender,
		acceptTTL:      acceptTTL,
		commission:     commission,
		now:            time.Now,
		logger:         log,
	}
}

// Accept creates the assignment for a pending order. Re-accepting an order
// the same owner already accepted returns the existing assignment.
func (s *assignmentService) Accept(ctx context.Context, ownerID, orderID primitive.ObjectID) (*models.Assignment, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: order %s", ErrNotFound, orderID.Hex())
	}
	if order.OwnerID != ownerID {
		return nil, fmt.Errorf("order does not belong to this owner")
	}

	existing, err := s.assignmentRepo.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if existing.OwnerID != ownerID {
			return nil, fmt.Errorf("order already accepted by another owner")
		}
		return existing, nil
	}

	if order.TripStatus != models.TripStatusPending {
		return nil, fmt.Errorf("%w: order is %s, not pending", ErrPrecondition, order.TripStatus)
	}

	// The conditional order update is the acceptance lock: two owners (or
	// a double tap) racing here leave exactly one winner.
	if err := s.orderRepo.UpdateStatus(ctx, orderID, models.TripStatusPending, models.TripStatusAssigned); err != nil {
		if existing, getErr := s.assignmentRepo.GetByOrderID(ctx, orderID); getErr == nil && existing != nil && existing.OwnerID == ownerID {
			return existing, nil
		}
		return nil, fmt.Errorf("%w: order is no longer pending", ErrPrecondition)
	}

	now := s.now()
	assignment := &models.Assignment{
		OrderID:   orderID,
		OwnerID:   ownerID,
		Status:    models.AssignmentStatusAccepted,
		ExpiresAt: now.Add(s.acceptTTL),
		UpdatedAt: now,
	}
	if err := s.assignmentRepo.Create(ctx, assignment); err != nil {
		return nil, err
	}

	s.logger.WithOwnerID(ownerID).WithOrderID(orderID).WithAssignmentID(assignment.ID).Info("Order accepted")
	return assignment, nil
}

// BindResources binds a driver and car to an accepted assignment. The
// assignability predicate is re-checked at bind time: a driver who went
// offline between listing and binding is rejected, not silently accepted.
func (s *assignmentService) BindResources(ctx context.Context, ownerID, assignmentID, driverID, carID primitive.ObjectID) (*models.Assignment, error) {
	assignment, err := s.loadLive(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if assignment.OwnerID != ownerID {
		return nil, fmt.Errorf("assignment does not belong to this owner")
	}
	if assignment.Status != models.AssignmentStatusAccepted {
		return nil, fmt.Errorf("%w: assignment is %s, not accepted", ErrPrecondition, assignment.Status)
	}

	driver, err := s.driverRepo.GetByID(ctx, driverID)
	if err != nil {
		return nil, fmt.Errorf("%w: driver %s", ErrNotFound, driverID.Hex())
	}
	if !driver.Assignable() {
		return nil, fmt.Errorf("%w: driver is %s", ErrNotAssignable, driver.Status)
	}

	car, err := s.carRepo.GetByID(ctx, carID)
	if err != nil {
		return nil, fmt.Errorf("%w: car %s", ErrNotFound, carID.Hex())
	}
	bound, err := s.assignmentRepo.ActiveCarIDs(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if !car.Assignable(bound) {
		return nil, fmt.Errorf("%w: car %s is unavailable", ErrNotAssignable, car.CarNumber)
	}

	fromStatus, fromVersion := assignment.Status, assignment.Version
	assignment.DriverID = &driverID
	assignment.CarID = &carID
	if err := models.ApplyTransition(assignment, models.AssignmentStatusResourced, s.now()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPrecondition, err)
	}
	if err := s.assignmentRepo.Replace(ctx, assignment, fromStatus, fromVersion); err != nil {
		return nil, err
	}

	if err := s.driverRepo.SetCurrentAssignment(ctx, driverID, &assignment.ID); err != nil {
		s.logger.WithError(err).WithDriverID(driverID).Warn("Failed to mark driver's current assignment")
	}

	s.notifyCustomer(ctx, assignment, driver, car)

	s.logger.WithOwnerID(ownerID).WithAssignmentID(assignmentID).WithDriverID(driverID).Info("Assignment resourced")
	return assignment, nil
}

func (s *assignmentService) StartTrip(ctx context.Context, driverID, assignmentID primitive.ObjectID, startKM int64, startEvidence string) (*models.Assignment, error) {
	if startEvidence == "" {
		return nil, NewValidationError("start_odometer_evidence", "is required")
	}
	if startKM < 0 {
		return nil, NewValidationError("start_km", "must be non-negative")
	}

	assignment, err := s.loadLive(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if assignment.DriverID == nil || *assignment.DriverID != driverID {
		return nil, fmt.Errorf("trip is not assigned to this driver")
	}
	if assignment.Status != models.AssignmentStatusResourced {
		return nil, fmt.Errorf("%w: assignment is %s, not resourced", ErrPrecondition, assignment.Status)
	}

	fromStatus, fromVersion := assignment.Status, assignment.Version
	assignment.StartKM = &startKM
	assignment.StartEvidence = startEvidence
	if err := models.ApplyTransition(assignment, models.AssignmentStatusInProgress, s.now()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPrecondition, err)
	}
	if err := s.assignmentRepo.Replace(ctx, assignment, fromStatus, fromVersion); err != nil {
		return nil, err
	}

	if err := s.orderRepo.UpdateStatus(ctx, assignment.OrderID, models.TripStatusAssigned, models.TripStatusInProgress); err != nil {
		s.logger.WithError(err).WithOrderID(assignment.OrderID).Warn("Failed to mirror order status")
	}
	if err := s.driverRepo.UpdateStatus(ctx, driverID, models.DriverStatusDriving); err != nil {
		s.logger.WithError(err).WithDriverID(driverID).Warn("Failed to mark driver driving")
	}

	s.logger.WithDriverID(driverID).WithAssignmentID(assignmentID).WithField("start_km", startKM).Info("Trip started")
	return assignment, nil
}

// EndTrip settles the trip: it derives distance and fare, posts the fixed
// platform commission debit tagged with the assignment id, and completes
// the assignment. A successful prior StartTrip for the same assignment is
// a hard precondition, not just a status check, so a stale end-trip
// re-submission after a cancel elsewhere cannot settle.
func (s *assignmentService) EndTrip(ctx context.Context, driverID, assignmentID primitive.ObjectID, endKM int64, endEvidence string, customerAcknowledged bool) (*models.Assignment, error) {
	if endEvidence == "" {
		return nil, NewValidationError("end_odometer_evidence", "is required")
	}
	if !customerAcknowledged {
		return nil, NewValidationError("customer_acknowledged", "customer must acknowledge trip completion")
	}

	assignment, err := s.loadLive(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if assignment.DriverID == nil || *assignment.DriverID != driverID {
		return nil, fmt.Errorf("trip is not assigned to this driver")
	}
	if assignment.StartKM == nil || assignment.StartedAt == nil {
		return nil, fmt.Errorf("%w: trip was never started", ErrPrecondition)
	}
	if assignment.Status != models.AssignmentStatusInProgress {
		return nil, fmt.Errorf("%w: assignment is %s, not in progress", ErrPrecondition, assignment.Status)
	}
	if endKM <= *assignment.StartKM {
		return nil, NewValidationError("end_km", "must be strictly greater than start km")
	}

	order, err := s.orderRepo.GetByID(ctx, assignment.OrderID)
	if err != nil {
		return nil, fmt.Errorf("%w: order %s", ErrNotFound, assignment.OrderID.Hex())
	}

	distance := endKM - *assignment.StartKM
	fare := utils.Fare(distance, order.PerKMPrice())

	// Debit before the transition commit; any failed commit is
	// compensated with a matching credit so the ledger nets to zero.
	if _, err := s.wallet.Debit(ctx, assignment.OwnerID, s.commission, "Platform commission", map[string]string{
		"assignment_id": assignment.ID.Hex(),
	}); err != nil {
		return nil, fmt.Errorf("failed to post commission: %w", err)
	}

	fromStatus, fromVersion := assignment.Status, assignment.Version
	assignment.EndKM = &endKM
	assignment.EndEvidence = endEvidence
	assignment.DistanceKM = distance
	assignment.Fare = fare
	if err := models.ApplyTransition(assignment, models.AssignmentStatusCompleted, s.now()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPrecondition, err)
	}
	if err := s.assignmentRepo.Replace(ctx, assignment, fromStatus, fromVersion); err != nil {
		if _, creditErr := s.wallet.Credit(ctx, assignment.OwnerID, s.commission, "Commission reversal", map[string]string{
			"assignment_id": assignment.ID.Hex(),
		}); creditErr != nil {
			s.logger.WithError(creditErr).WithAssignmentID(assignmentID).Error("Failed to reverse commission after failed completion write")
		}
		return nil, err
	}

	if err := s.orderRepo.UpdateStatus(ctx, assignment.OrderID, models.TripStatusInProgress, models.TripStatusCompleted); err != nil {
		s.logger.WithError(err).WithOrderID(assignment.OrderID).Warn("Failed to mirror order status")
	}
	s.releaseDriver(ctx, driverID)

	s.logger.WithDriverID(driverID).WithAssignmentID(assignmentID).WithFields(map[string]interface{}{
		"distance_km": distance,
		"fare":        fare,
	}).Info("Trip completed")
	return assignment, nil
}

func (s *assignmentService) Cancel(ctx context.Context, ownerID, assignmentID primitive.ObjectID, reason string) (*models.Assignment, error) {
	assignment, err := s.loadLive(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if assignment.OwnerID != ownerID {
		return nil, fmt.Errorf("assignment does not belong to this owner")
	}

	boundDriver := assignment.DriverID

	fromStatus, fromVersion := assignment.Status, assignment.Version
	assignment.CancelReason = reason
	if err := models.ApplyTransition(assignment, models.AssignmentStatusCancelled, s.now()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPrecondition, err)
	}
	if err := s.assignmentRepo.Replace(ctx, assignment, fromStatus, fromVersion); err != nil {
		return nil, err
	}

	if err := s.orderRepo.UpdateStatus(ctx, assignment.OrderID, models.TripStatusAssigned, models.TripStatusCancelled); err != nil {
		s.logger.WithError(err).WithOrderID(assignment.OrderID).Warn("Failed to mirror order status")
	}
	if boundDriver != nil {
		s.releaseDriver(ctx, *boundDriver)
	}

	s.logger.WithOwnerID(ownerID).WithAssignmentID(assignmentID).WithField("reason", reason).Info("Assignment cancelled")
	return assignment, nil
}

func (s *assignmentService) GetForOrder(ctx context.Context, ownerID, orderID primitive.ObjectID) (*models.Assignment, error) {
	assignment, err := s.assignmentRepo.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	// A foreign owner's assignment reads as absent rather than leaking
	// the customer's details.
	if assignment == nil || assignment.OwnerID != ownerID {
		return nil, fmt.Errorf("%w: no assignment for order %s", ErrNotFound, orderID.Hex())
	}
	if assignment.LapsedUnresourced(s.now()) {
		return s.expire(ctx, assignment)
	}
	return assignment, nil
}

// loadLive fetches an assignment and applies lazy expiry: an accepted
// assignment whose window elapsed before resourcing is terminal on read.
func (s *assignmentService) loadLive(ctx context.Context, assignmentID primitive.ObjectID) (*models.Assignment, error) {
	assignment, err := s.assignmentRepo.GetByID(ctx, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("%w: assignment %s", ErrNotFound, assignmentID.Hex())
	}
	if assignment.LapsedUnresourced(s.now()) {
		return s.expire(ctx, assignment)
	}
	return assignment, nil
}

func (s *assignmentService) expire(ctx context.Context, assignment *models.Assignment) (*models.Assignment, error) {
	fromStatus, fromVersion := assignment.Status, assignment.Version
	assignment.CancelReason = "acceptance window elapsed"
	if err := models.ApplyTransition(assignment, models.AssignmentStatusExpired, s.now()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPrecondition, err)
	}
	if err := s.assignmentRepo.Replace(ctx, assignment, fromStatus, fromVersion); err != nil && !errors.Is(err, interfaces.ErrStaleWrite) {
		return nil, err
	}
	if err := s.orderRepo.UpdateStatus(ctx, assignment.OrderID, models.TripStatusAssigned, models.TripStatusCancelled); err != nil {
		s.logger.WithError(err).WithOrderID(assignment.OrderID).Warn("Failed to mirror order status")
	}
	s.logger.WithAssignmentID(assignment.ID).Info("Assignment expired unresourced")
	return assignment, nil
}

func (s *assignmentService) releaseDriver(ctx context.Context, driverID primitive.ObjectID) {
	if err := s.driverRepo.SetCurrentAssignment(ctx, driverID, nil); err != nil {
		s.logger.WithError(err).WithDriverID(driverID).Warn("Failed to clear driver's current assignment")
	}
	if err := s.driverRepo.UpdateStatus(ctx, driverID, models.DriverStatusOnline); err != nil {
		s.logger.WithError(err).WithDriverID(driverID).Warn("Failed to restore driver status")
	}
}

// notifyCustomer texts the driver and car details to the order's customer.
// Delivery failure never fails the binding.
func (s *assignmentService) notifyCustomer(ctx context.Context, assignment *models.Assignment, driver *models.Driver, car *models.Car) {
	if s.smsSender == nil {
		return
	}
	order, err := s.orderRepo.GetByID(ctx, assignment.OrderID)
	if err != nil || order.CustomerNumber == "" {
		return
	}
	message := fmt.Sprintf("Drop Cars: %s (%s) has been assigned to your trip.", driver.FullName, car.CarNumber)
	if err := s.smsSender.Send(ctx, order.CustomerNumber, message); err != nil {
		s.logger.WithError(err).WithAssignmentID(assignment.ID).Warn("Failed to notify customer")
	}
}
