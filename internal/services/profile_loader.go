package services

import (
	"context"
	"fmt"

	"dropcars/internal/models"
	"dropcars/internal/repositories/interfaces"
	"dropcars/internal/session"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// profileLoader backs session resolution with the live account records.
// A credential whose account no longer exists, or whose driver has been
// blocked, fails the load and degrades the session to a forced re-login.
type profileLoader struct {
	ownerRepo  interfaces.OwnerRepository
	driverRepo interfaces.DriverRepository
}

func NewProfileLoader(ownerRepo interfaces.OwnerRepository, driverRepo interfaces.DriverRepository) session.ProfileLoader {
	return &profileLoader{ownerRepo: ownerRepo, driverRepo: driverRepo}
}

func (p *profileLoader) LoadProfile(ctx context.Context, cred *session.Credential) error {
	userID, err := primitive.ObjectIDFromHex(cred.UserID)
	if err != nil {
		return fmt.Errorf("malformed credential user id: %w", err)
	}

	switch cred.Role {
	case session.RoleOwner:
		if _, err := p.ownerRepo.GetByID(ctx, userID); err != nil {
			return fmt.Errorf("failed to load owner profile: %w", err)
		}
	case session.RoleDriver:
		driver, err := p.driverRepo.GetByID(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to load driver profile: %w", err)
		}
		if driver.Status == models.DriverStatusBlocked {
			return fmt.Errorf("driver account is blocked")
		}
	default:
		return fmt.Errorf("unknown credential role %q", cred.Role)
	}
	return nil
}
