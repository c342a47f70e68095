package auth

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryKeyStore is an in-memory KeyStore for tests and local runs.
type MemoryKeyStore struct {
	mu   sync.RWMutex
	keys map[string]APIKey // by id
}

var _ KeyStore = (*MemoryKeyStore)(nil)

// NewMemoryKeyStore returns an empty in-memory key store.
func NewMemoryKeyStore() *MemoryKeyStore {
	return &MemoryKeyStore{keys: make(map[string]APIKey)}
}

func (s *MemoryKeyStore) CreateKey(_ context.Context, key *APIKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if key.CreatedAt.IsZero() {
		key.CreatedAt = time.Now().UTC()
	}
	s.keys[key.ID] = *key
	return nil
}

func (s *MemoryKeyStore) FindKey(_ context.Context, tenantID, fingerprint string) (*APIKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, k := range s.keys {
		if k.TenantID == tenantID && k.Fingerprint == fingerprint {
			found := k
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryKeyStore) RevokeKey(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k, ok := s.keys[id]
	if !ok {
		return ErrNotFound
	}
	k.Status = KeyStatusRevoked
	s.keys[id] = k
	return nil
}

func (s *MemoryKeyStore) ListKeys(_ context.Context, tenantID string) ([]*APIKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*APIKey
	for _, k := range s.keys {
		if k.TenantID == tenantID {
			item := k
			out = append(out, &item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
