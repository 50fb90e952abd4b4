package session

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store, used when no Redis is configured and
// by tests.
type MemoryStore struct {
	mu    sync.RWMutex
	creds map[string]*Credential
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{creds: make(map[string]*Credential)}
}

func (s *MemoryStore) Save(_ context.Context, deviceID string, cred *Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *cred
	s.creds[credentialKey(deviceID, cred.Role)] = &c
	return nil
}

func (s *MemoryStore) Get(_ context.Context, deviceID string, role Role) (*Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cred, ok := s.creds[credentialKey(deviceID, role)]
	if !ok {
		return nil, nil
	}
	c := *cred
	return &c, nil
}

func (s *MemoryStore) Delete(_ context.Context, deviceID string, role Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.creds, credentialKey(deviceID, role))
	return nil
}
