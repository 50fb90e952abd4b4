package session

import (
	"context"
	"fmt"
	"time"

	"dropcars/internal/utils"
	"dropcars/pkg/cache"

	"github.com/redis/go-redis/v9"
)

type Role string

const (
	RoleNone   Role = ""
	RoleOwner  Role = "owner"
	RoleDriver Role = "driver"
)

// Credential is one role's stored bearer token. Exactly one credential per
// role may exist at a time for a device; a new login for a role overwrites
// that role's credential only.
type Credential struct {
	Role        Role      `json:"role"`
	Token       string    `json:"token"`
	UserID      string    `json:"user_id"`
	LastLoginAt time.Time `json:"last_login_at"`
}

// Store persists per-role credentials keyed by device.
type Store interface {
	Save(ctx context.Context, deviceID string, cred *Credential) error
	Get(ctx context.Context, deviceID string, role Role) (*Credential, error)
	Delete(ctx context.Context, deviceID string, role Role) error
}

type redisStore struct {
	cache *cache.RedisCache
	ttl   time.Duration
}

func NewRedisStore(c *cache.RedisCache, ttl time.Duration) Store {
	return &redisStore{cache: c, ttl: ttl}
}

func credentialKey(deviceID string, role Role) string {
	return fmt.Sprintf("%s%s:%s", utils.CacheCredentialPrefix, role, deviceID)
}

func (s *redisStore) Save(ctx context.Context, deviceID string, cred *Credential) error {
	if cred == nil || cred.Role == RoleNone {
		return fmt.Errorf("credential role is required")
	}
	if err := s.cache.Set(ctx, credentialKey(deviceID, cred.Role), cred, s.ttl); err != nil {
		return fmt.Errorf("failed to save credential: %w", err)
	}
	return nil
}

func (s *redisStore) Get(ctx context.Context, deviceID string, role Role) (*Credential, error) {
	var cred Credential
	err := s.cache.Get(ctx, credentialKey(deviceID, role), &cred)
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load credential: %w", err)
	}
	return &cred, nil
}

func (s *redisStore) Delete(ctx context.Context, deviceID string, role Role) error {
	if err := s.cache.Delete(ctx, credentialKey(deviceID, role)); err != nil {
		return fmt.Errorf("failed to delete credential: %w", err)
	}
	return nil
}
