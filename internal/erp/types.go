// Package erp holds the resource types served through the gateway. All data
// is partitioned by tenant id; store operations take the tenant as their
// first argument and must never return rows belonging to another tenant.
package erp

import (
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("erp: not found")
	ErrInvalidInput = errors.New("erp: invalid input")
)

// Customer is a CRM contact.
type Customer struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Invoice statuses are free-form strings owned by the finance module; the
// gateway only filters on them.
type Invoice struct {
	ID         string    `json:"id"`
	CustomerID string    `json:"customer_id,omitempty"`
	Status     string    `json:"status"`
	Amount     int64     `json:"amount"` // minor units
	Currency   string    `json:"currency"`
	IssuedAt   time.Time `json:"issued_at"`
}

// Payment records money received against an invoice.
type Payment struct {
	ID        string    `json:"id"`
	InvoiceID string    `json:"invoice_id"`
	Amount    int64     `json:"amount"` // minor units
	Method    string    `json:"method"`
	CreatedAt time.Time `json:"created_at"`
}

// Item is an inventory stock line.
type Item struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	SKU       string    `json:"sku,omitempty"`
	Quantity  int64     `json:"quantity"`
	UpdatedAt time.Time `json:"updated_at"`
}
