package store

import (
	"context"
	"sync"
	"time"

	"github.com/signet-labs/signet/ports"
)

// MemoryTokenStore is an in-memory revocation list, suitable for tests and
// single-instance deployments.
type MemoryTokenStore struct {
	revoked map[string]time.Time
	mu      sync.RWMutex
}

// NewMemoryTokenStore creates a new in-memory token store.
func NewMemoryTokenStore() ports.TokenStore {
	return &MemoryTokenStore{
		revoked: make(map[string]time.Time),
	}
}

// Revoke marks a JTI as revoked until its TTL elapses.
func (s *MemoryTokenStore) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[jti] = time.Now().Add(ttl)
	return nil
}

// IsRevoked reports whether a JTI is currently revoked. Lapsed entries are
// dropped lazily on read.
func (s *MemoryTokenStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	s.mu.RLock()
	expiry, exists := s.revoked[jti]
	s.mu.RUnlock()

	if !exists {
		return false, nil
	}
	if time.Now().After(expiry) {
		s.mu.Lock()
		if stored, ok := s.revoked[jti]; ok && !stored.After(expiry) {
			delete(s.revoked, jti)
		}
		s.mu.Unlock()
		return false, nil
	}
	return true, nil
}
