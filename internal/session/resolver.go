package session

import (
	"context"

	"dropcars/pkg/logger"
)

// ResolveActive decides which role is authoritative for a session that may
// hold both an owner and a driver credential:
//   - only one credential present: that role wins;
//   - both present: the strictly later last_login_at wins, ties favor owner;
//   - neither present: no authoritative role.
//
// The losing credential is left untouched. It is not logged out, merely not
// current, and becomes authoritative again if a later login moves its
// timestamp ahead.
func ResolveActive(owner, driver *Credential) Role {
	switch {
	case owner == nil && driver == nil:
		return RoleNone
	case driver == nil:
		return RoleOwner
	case owner == nil:
		return RoleDriver
	case driver.LastLoginAt.After(owner.LastLoginAt):
		return RoleDriver
	default:
		return RoleOwner
	}
}

// ProfileLoader loads the cached profile snapshot for a resolved role.
type ProfileLoader interface {
	LoadProfile(ctx context.Context, cred *Credential) error
}

// Resolver determines the authoritative role at process start and loads
// its profile into the session.
type Resolver struct {
	store    Store
	profiles ProfileLoader
	logger   *logger.Logger
}

func NewResolver(store Store, profiles ProfileLoader, log *logger.Logger) *Resolver {
	return &Resolver{store: store, profiles: profiles, logger: log}
}

// Resolve reads both roles' credentials and returns the authoritative one.
// A profile snapshot that fails to load degrades to no authoritative role;
// the caller must force a re-login.
func (r *Resolver) Resolve(ctx context.Context, deviceID string) (Role, *Credential, error) {
	owner, err := r.store.Get(ctx, deviceID, RoleOwner)
	if err != nil {
		return RoleNone, nil, err
	}
	driver, err := r.store.Get(ctx, deviceID, RoleDriver)
	if err != nil {
		return RoleNone, nil, err
	}

	role := ResolveActive(owner, driver)
	if role == RoleNone {
		return RoleNone, nil, nil
	}

	cred := owner
	if role == RoleDriver {
		cred = driver
	}

	if r.profiles != nil {
		if err := r.profiles.LoadProfile(ctx, cred); err != nil {
			r.logger.WithError(err).WithField("role", string(role)).Warn("Profile snapshot load failed, forcing re-login")
			return RoleNone, nil, nil
		}
	}

	return role, cred, nil
}
