package auth

import (
	"context"
	"errors"

	"erpgate.dev/internal/tenant"
)

// Guard enforces tenant isolation. It re-reads tenant status on every request
// rather than caching it: staleness here is a security property, a suspended
// tenant must stop being served immediately.
type Guard struct {
	tenants tenant.Store
}

// NewGuard constructs a Guard over the given tenant store.
func NewGuard(tenants tenant.Store) *Guard {
	return &Guard{tenants: tenants}
}

// CheckTenant confirms the principal may act on requestedTenant. The tenant
// id a credential resolved to always wins over anything supplied in the
// request; a mismatch is rejected before the tenant is even looked up.
func (g *Guard) CheckTenant(ctx context.Context, p Principal, requestedTenant string) error {
	if requestedTenant == "" {
		return ErrTenantRequired
	}
	if p.TenantID != "" && p.TenantID != requestedTenant {
		return ErrTenantMismatch
	}
	t, err := g.tenants.GetTenant(ctx, requestedTenant)
	if err != nil {
		if errors.Is(err, tenant.ErrNotFound) {
			return ErrTenantNotFound
		}
		return err
	}
	if !t.Active() {
		return ErrTenantInactive
	}
	return nil
}
