// Package tenant defines the customer-account model the gateway partitions
// all data by.
package tenant

import (
	"context"
	"errors"
	"time"
)

const (
	StatusActive    = "active"
	StatusInactive  = "inactive"
	StatusSuspended = "suspended"
)

// ErrNotFound is returned by stores when a tenant is absent.
var ErrNotFound = errors.New("tenant: not found")

// Tenant is a customer account. The gateway only ever reads it; suspension
// and reactivation happen out of band.
type Tenant struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Active reports whether requests on behalf of this tenant are admissible.
func (t *Tenant) Active() bool { return t.Status == StatusActive }

// Store is the persistence contract for tenants.
type Store interface {
	GetTenant(ctx context.Context, id string) (*Tenant, error)
	CreateTenant(ctx context.Context, t *Tenant) error
	SetStatus(ctx context.Context, id, status string) error
	ListTenants(ctx context.Context) ([]*Tenant, error)
}
