package erp

import "context"

// Store is the persistence contract consumed by the gateway's resource
// handlers.
type Store interface {
	ListCustomers(ctx context.Context, tenantID string, limit int) ([]Customer, error)
	CreateCustomer(ctx context.Context, tenantID string, c *Customer) error

	ListInvoices(ctx context.Context, tenantID, status string, limit int) ([]Invoice, error)
	CreateInvoice(ctx context.Context, tenantID string, inv *Invoice) error
	ListPayments(ctx context.Context, tenantID string, limit int) ([]Payment, error)
	CreatePayment(ctx context.Context, tenantID string, p *Payment) error

	ListItems(ctx context.Context, tenantID string, limit int) ([]Item, error)
	CreateItem(ctx context.Context, tenantID string, it *Item) error
	// AdjustItem atomically applies delta to the item quantity and returns the
	// updated row. Missing item yields ErrNotFound.
	AdjustItem(ctx context.Context, tenantID, itemID string, delta int64) (*Item, error)
}
