// Package pg is the PostgreSQL persistence layer. One Store backs the tenant
// registry, the API key store, and the ERP resources.
package pg

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"erpgate.dev/internal/auth"
	"erpgate.dev/internal/erp"
	"erpgate.dev/internal/ids"
	"erpgate.dev/internal/tenant"
)

type Store struct {
	db *sql.DB
}

var (
	_ tenant.Store  = (*Store)(nil)
	_ auth.KeyStore = (*Store)(nil)
	_ erp.Store     = (*Store)(nil)
)

func Open(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	// Tuned pool defaults; adjust under load tests
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return &Store{db: db}, nil
}

// NewStore wraps an existing handle; used by tests.
func NewStore(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }

// --- tenant.Store ---

func (s *Store) GetTenant(ctx context.Context, id string) (*tenant.Tenant, error) {
	var t tenant.Tenant
	err := s.db.QueryRowContext(ctx, `
		select id, name, status, created_at, updated_at
		from tenants where id=$1
	`, id).Scan(&t.ID, &t.Name, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, tenant.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Store) CreateTenant(ctx context.Context, t *tenant.Tenant) error {
	if t.ID == "" {
		t.ID = ids.New()
	}
	if t.Status == "" {
		t.Status = tenant.StatusActive
	}
	now := time.Now().UTC()
	t.CreatedAt, t.UpdatedAt = now, now
	_, err := s.db.ExecContext(ctx, `
		insert into tenants(id, name, status, created_at, updated_at)
		values ($1,$2,$3,$4,$5)
	`, t.ID, t.Name, t.Status, t.CreatedAt, t.UpdatedAt)
	return err
}

func (s *Store) SetStatus(ctx context.Context, id, status string) error {
	res, err := s.db.ExecContext(ctx, `
		update tenants set status=$2, updated_at=now() where id=$1
	`, id, status)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return tenant.ErrNotFound
	}
	return nil
}

func (s *Store) ListTenants(ctx context.Context) ([]*tenant.Tenant, error) {
	rows, err := s.db.QueryContext(ctx, `
		select id, name, status, created_at, updated_at
		from tenants order by created_at asc
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*tenant.Tenant
	for rows.Next() {
		var t tenant.Tenant
		if err := rows.Scan(&t.ID, &t.Name, &t.Status, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}

// --- auth.KeyStore ---

func (s *Store) CreateKey(ctx context.Context, key *auth.APIKey) error {
	_, err := s.db.ExecContext(ctx, `
		insert into api_keys(id, tenant_id, fingerprint, secret_hash, capabilities, status, created_at)
		values ($1,$2,$3,$4,$5,$6,$7)
	`, key.ID, key.TenantID, key.Fingerprint, key.SecretHash,
		joinCaps(key.Capabilities), key.Status, key.CreatedAt)
	return err
}

func (s *Store) FindKey(ctx context.Context, tenantID, fingerprint string) (*auth.APIKey, error) {
	var (
		key      auth.APIKey
		caps     string
		lastUsed sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, `
		select id, tenant_id, fingerprint, secret_hash, capabilities, status, created_at, last_used_at
		from api_keys where tenant_id=$1 and fingerprint=$2
	`, tenantID, fingerprint).Scan(
		&key.ID, &key.TenantID, &key.Fingerprint, &key.SecretHash,
		&caps, &key.Status, &key.CreatedAt, &lastUsed,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, auth.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	key.Capabilities = parseCaps(caps)
	if lastUsed.Valid {
		key.LastUsedAt = lastUsed.Time
	}
	return &key, nil
}

func (s *Store) RevokeKey(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `
		update api_keys set status=$2 where id=$1
	`, id, auth.KeyStatusRevoked)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return auth.ErrNotFound
	}
	return nil
}

func (s *Store) ListKeys(ctx context.Context, tenantID string) ([]*auth.APIKey, error) {
	rows, err := s.db.QueryContext(ctx, `
		select id, tenant_id, fingerprint, secret_hash, capabilities, status, created_at, last_used_at
		from api_keys where tenant_id=$1 order by created_at asc
	`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*auth.APIKey
	for rows.Next() {
		var (
			key      auth.APIKey
			caps     string
			lastUsed sql.NullTime
		)
		if err := rows.Scan(
			&key.ID, &key.TenantID, &key.Fingerprint, &key.SecretHash,
			&caps, &key.Status, &key.CreatedAt, &lastUsed,
		); err != nil {
			return nil, err
		}
		key.Capabilities = parseCaps(caps)
		if lastUsed.Valid {
			key.LastUsedAt = lastUsed.Time
		}
		out = append(out, &key)
	}
	return out, rows.Err()
}

// TouchKey records last use; callers fire it best-effort off the hot path.
func (s *Store) TouchKey(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `
		update api_keys set last_used_at=now() where id=$1
	`, id)
	return err
}

// --- erp.Store ---

func (s *Store) ListCustomers(ctx context.Context, tenantID string, limit int) ([]erp.Customer, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		select id, name, email, phone, created_at, updated_at
		from customers where tenant_id=$1
		order by created_at asc limit $2
	`, tenantID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []erp.Customer
	for rows.Next() {
		var c erp.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) CreateCustomer(ctx context.Context, tenantID string, c *erp.Customer) error {
	if c.Name == "" {
		return erp.ErrInvalidInput
	}
	if c.ID == "" {
		c.ID = ids.New()
	}
	now := time.Now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now
	_, err := s.db.ExecContext(ctx, `
		insert into customers(id, tenant_id, name, email, phone, created_at, updated_at)
		values ($1,$2,$3,$4,$5,$6,$7)
	`, c.ID, tenantID, c.Name, c.Email, c.Phone, c.CreatedAt, c.UpdatedAt)
	return err
}

func (s *Store) ListInvoices(ctx context.Context, tenantID, status string, limit int) ([]erp.Invoice, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		select id, coalesce(customer_id,''), status, amount, currency, issued_at
		from invoices
		where tenant_id=$1 and ($2='' or status=$2)
		order by issued_at asc limit $3
	`, tenantID, status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []erp.Invoice
	for rows.Next() {
		var inv erp.Invoice
		if err := rows.Scan(&inv.ID, &inv.CustomerID, &inv.Status, &inv.Amount, &inv.Currency, &inv.IssuedAt); err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

func (s *Store) CreateInvoice(ctx context.Context, tenantID string, inv *erp.Invoice) error {
	if inv.ID == "" {
		inv.ID = ids.New()
	}
	if inv.IssuedAt.IsZero() {
		inv.IssuedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		insert into invoices(id, tenant_id, customer_id, status, amount, currency, issued_at)
		values ($1,$2,nullif($3,''),$4,$5,$6,$7)
	`, inv.ID, tenantID, inv.CustomerID, inv.Status, inv.Amount, inv.Currency, inv.IssuedAt)
	return err
}

func (s *Store) ListPayments(ctx context.Context, tenantID string, limit int) ([]erp.Payment, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		select id, invoice_id, amount, method, created_at
		from payments where tenant_id=$1
		order by created_at asc limit $2
	`, tenantID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []erp.Payment
	for rows.Next() {
		var p erp.Payment
		if err := rows.Scan(&p.ID, &p.InvoiceID, &p.Amount, &p.Method, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) CreatePayment(ctx context.Context, tenantID string, p *erp.Payment) error {
	if p.InvoiceID == "" || p.Amount <= 0 {
		return erp.ErrInvalidInput
	}
	if p.ID == "" {
		p.ID = ids.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		insert into payments(id, tenant_id, invoice_id, amount, method, created_at)
		values ($1,$2,$3,$4,$5,$6)
	`, p.ID, tenantID, p.InvoiceID, p.Amount, p.Method, p.CreatedAt)
	return err
}

func (s *Store) ListItems(ctx context.Context, tenantID string, limit int) ([]erp.Item, error) {
	if limit <= 0 || limit > 1000 {
		limit = 200
	}
	rows, err := s.db.QueryContext(ctx, `
		select id, name, coalesce(sku,''), quantity, updated_at
		from inventory_items where tenant_id=$1
		order by id asc limit $2
	`, tenantID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []erp.Item
	for rows.Next() {
		var it erp.Item
		if err := rows.Scan(&it.ID, &it.Name, &it.SKU, &it.Quantity, &it.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (s *Store) CreateItem(ctx context.Context, tenantID string, it *erp.Item) error {
	if it.ID == "" {
		it.ID = ids.New()
	}
	it.UpdatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		insert into inventory_items(id, tenant_id, name, sku, quantity, updated_at)
		values ($1,$2,$3,nullif($4,''),$5,$6)
	`, it.ID, tenantID, it.Name, it.SKU, it.Quantity, it.UpdatedAt)
	return err
}

func (s *Store) AdjustItem(ctx context.Context, tenantID, itemID string, delta int64) (*erp.Item, error) {
	var it erp.Item
	err := s.db.QueryRowContext(ctx, `
		update inventory_items
		set quantity = quantity + $3, updated_at = now()
		where tenant_id=$1 and id=$2
		returning id, name, coalesce(sku,''), quantity, updated_at
	`, tenantID, itemID, delta).Scan(&it.ID, &it.Name, &it.SKU, &it.Quantity, &it.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, erp.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// --- helpers ---

// Capabilities travel as a comma-joined text column; the closed capability
// vocabulary never contains commas.
func joinCaps(set auth.CapabilitySet) string {
	caps := set.Sorted()
	parts := make([]string, len(caps))
	for i, c := range caps {
		parts[i] = string(c)
	}
	return strings.Join(parts, ",")
}

func parseCaps(s string) auth.CapabilitySet {
	var caps []auth.Capability
	for _, part := range strings.Split(s, ",") {
		c, err := auth.ParseCapability(part)
		if err != nil {
			continue
		}
		caps = append(caps, c)
	}
	return auth.NewCapabilitySet(caps)
}
