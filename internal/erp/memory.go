package erp

import (
	"context"
	"sort"
	"sync"
	"time"

	"erpgate.dev/internal/ids"
)

// MemoryStore is an in-memory Store for tests and local runs.
type MemoryStore struct {
	mu        sync.RWMutex
	customers map[string][]Customer // by tenant
	invoices  map[string][]Invoice
	payments  map[string][]Payment
	items     map[string]map[string]Item // tenant -> item id -> item
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		customers: make(map[string][]Customer),
		invoices:  make(map[string][]Invoice),
		payments:  make(map[string][]Payment),
		items:     make(map[string]map[string]Item),
	}
}

func (s *MemoryStore) ListCustomers(_ context.Context, tenantID string, limit int) ([]Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clip(s.customers[tenantID], limit), nil
}

func (s *MemoryStore) CreateCustomer(_ context.Context, tenantID string, c *Customer) error {
	if c.Name == "" {
		return ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == "" {
		c.ID = ids.New()
	}
	now := time.Now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now
	s.customers[tenantID] = append(s.customers[tenantID], *c)
	return nil
}

func (s *MemoryStore) ListInvoices(_ context.Context, tenantID, status string, limit int) ([]Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := s.invoices[tenantID]
	if status == "" {
		return clip(all, limit), nil
	}
	var filtered []Invoice
	for _, inv := range all {
		if inv.Status == status {
			filtered = append(filtered, inv)
		}
	}
	return clip(filtered, limit), nil
}

func (s *MemoryStore) CreateInvoice(_ context.Context, tenantID string, inv *Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if inv.ID == "" {
		inv.ID = ids.New()
	}
	if inv.IssuedAt.IsZero() {
		inv.IssuedAt = time.Now().UTC()
	}
	s.invoices[tenantID] = append(s.invoices[tenantID], *inv)
	return nil
}

func (s *MemoryStore) ListPayments(_ context.Context, tenantID string, limit int) ([]Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clip(s.payments[tenantID], limit), nil
}

func (s *MemoryStore) CreatePayment(_ context.Context, tenantID string, p *Payment) error {
	if p.InvoiceID == "" || p.Amount <= 0 {
		return ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = ids.New()
	}
	p.CreatedAt = time.Now().UTC()
	s.payments[tenantID] = append(s.payments[tenantID], *p)
	return nil
}

func (s *MemoryStore) ListItems(_ context.Context, tenantID string, limit int) ([]Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Item
	for _, it := range s.items[tenantID] {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return clip(out, limit), nil
}

func (s *MemoryStore) CreateItem(_ context.Context, tenantID string, it *Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if it.ID == "" {
		it.ID = ids.New()
	}
	it.UpdatedAt = time.Now().UTC()
	if s.items[tenantID] == nil {
		s.items[tenantID] = make(map[string]Item)
	}
	s.items[tenantID][it.ID] = *it
	return nil
}

func (s *MemoryStore) AdjustItem(_ context.Context, tenantID, itemID string, delta int64) (*Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[tenantID][itemID]
	if !ok {
		return nil, ErrNotFound
	}
	it.Quantity += delta
	it.UpdatedAt = time.Now().UTC()
	s.items[tenantID][itemID] = it
	return &it, nil
}

func clip[T any](in []T, limit int) []T {
	out := make([]T, len(in))
	copy(out, in)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
