package services

import (
	"context"

	"dropcars/internal/models"
	"dropcars/internal/repositories/interfaces"
	"dropcars/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ResourceService lists the owner's assignable drivers and cars. The
// assignability predicate runs here, over the full fetched roster, rather
// than relying on the backend store to pre-filter: the same roster feeds
// both assignment and management views, so filtering stays a pure function
// over already-fetched rows.
//
// On fetch failure both methods return an empty slice alongside the error;
// callers render the empty set. Offering no driver is safer than offering
// a stale one.
type ResourceService interface {
	ListAssignableDrivers(ctx context.Context, ownerID primitive.ObjectID) ([]*models.Driver, error)
	ListAssignableCars(ctx context.Context, ownerID primitive.ObjectID) ([]*models.Car, error)
	SetDriverStatus(ctx context.Context, driverID primitive.ObjectID, status models.DriverStatus) error
}

type resourceService struct {
	driverRepo     interfaces.DriverRepository
	carRepo        interfaces.CarRepository
	assignmentRepo interfaces.AssignmentRepository
	logger         *logger.Logger
}

func NewResourceService(
	driverRepo interfaces.DriverRepository,
	carRepo interfaces.CarRepository,
	assignmentRepo interfaces.AssignmentRepository,
	log *logger.Logger,
) ResourceService {
	return &resourceService{
		driverRepo:     driverRepo,
		carRepo:        carRepo,
		assignmentRepo: assignmentRepo,
		logger:         log,
	}
}

func (s *resourceService) ListAssignableDrivers(ctx context.Context, ownerID primitive.ObjectID) ([]*models.Driver, error) {
	roster, err := s.driverRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		s.logger.WithError(err).WithOwnerID(ownerID).Warn("Driver roster fetch failed, returning empty assignable set")
		return []*models.Driver{}, err
	}
	return FilterAssignableDrivers(roster), nil
}

func (s *resourceService) ListAssignableCars(ctx context.Context, ownerID primitive.ObjectID) ([]*models.Car, error) {
	roster, err := s.carRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		s.logger.WithError(err).WithOwnerID(ownerID).Warn("Car roster fetch failed, returning empty assignable set")
		return []*models.Car{}, err
	}

	bound, err := s.assignmentRepo.ActiveCarIDs(ctx, ownerID)
	if err != nil {
		s.logger.WithError(err).WithOwnerID(ownerID).Warn("Active assignment fetch failed, returning empty assignable set")
		return []*models.Car{}, err
	}

	return FilterAssignableCars(roster, bound), nil
}

func (s *resourceService) SetDriverStatus(ctx context.Context, driverID primitive.ObjectID, status models.DriverStatus) error {
	driver, err := s.driverRepo.GetByID(ctx, driverID)
	if err != nil {
		return ErrNotFound
	}
	switch driver.Status {
	case models.DriverStatusProcessing, models.DriverStatusBlocked:
		// Verification and moderation states are backend-owned; the driver
		// cannot toggle out of them.
		return ErrPrecondition
	}
	if status != models.DriverStatusOnline && status != models.DriverStatusOffline {
		return NewValidationError("driver_status", "must be ONLINE or OFFLINE")
	}
	return s.driverRepo.UpdateStatus(ctx, driverID, status)
}

// FilterAssignableDrivers applies the driver assignability predicate.
func FilterAssignableDrivers(roster []*models.Driver) []*models.Driver {
	assignable := []*models.Driver{}
	for _, d := range roster {
		if d.Assignable() {
			assignable = append(assignable, d)
		}
	}
	return assignable
}

// FilterAssignableCars applies the car assignability predicate given the
// set of cars already bound to active assignments.
func FilterAssignableCars(roster []*models.Car, bound map[primitive.ObjectID]bool) []*models.Car {
	assignable := []*models.Car{}
	for _, c := range roster {
		if c.Assignable(bound) {
			assignable = append(assignable, c)
		}
	}
	return assignable
}
