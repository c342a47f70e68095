// Package migrate applies versioned SQL schema files against Postgres and
// keeps the applied history in a bookkeeping table.
package migrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"
)

const defaultTable = "schema_migrations"

// Runner executes .up.sql / .down.sql pairs from a file system, typically the
// embedded migrations package.
type Runner struct {
	db    *sql.DB
	fsys  fs.FS
	table string
}

// Option configures Runner.
type Option func(*Runner)

// WithTable overrides the default bookkeeping table.
func WithTable(name string) Option {
	return func(r *Runner) {
		if name != "" {
			r.table = name
		}
	}
}

// NewRunner constructs a Runner over fsys.
func NewRunner(db *sql.DB, fsys fs.FS, opts ...Option) *Runner {
	r := &Runner{db: db, fsys: fsys, table: defaultTable}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Up applies all pending migrations in name order.
func (r *Runner) Up(ctx context.Context) error {
	if err := r.ensureTable(ctx); err != nil {
		return err
	}
	applied, err := r.applied(ctx)
	if err != nil {
		return err
	}
	files, err := r.collect(".up.sql")
	if err != nil {
		return err
	}
	for _, name := range files {
		if applied[name] {
			continue
		}
		if err := r.exec(ctx, name); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
		if _, err := r.db.ExecContext(ctx,
			fmt.Sprintf(`insert into %s(name, applied_at) values ($1, $2)`, r.table),
			name, time.Now().UTC()); err != nil {
			return err
		}
	}
	return nil
}

// Down rolls back the most recently applied migration.
func (r *Runner) Down(ctx context.Context) error {
	if err := r.ensureTable(ctx); err != nil {
		return err
	}
	history, err := r.History(ctx)
	if err != nil {
		return err
	}
	if len(history) == 0 {
		return errors.New("no migrations applied")
	}
	last := history[len(history)-1]
	down := strings.TrimSuffix(last, ".up.sql") + ".down.sql"
	if _, err := fs.Stat(r.fsys, down); err != nil {
		return fmt.Errorf("missing down migration for %s", last)
	}
	if err := r.exec(ctx, down); err != nil {
		return fmt.Errorf("rollback migration %s: %w", last, err)
	}
	_, err = r.db.ExecContext(ctx,
		fmt.Sprintf(`delete from %s where name = $1`, r.table), last)
	return err
}

// History returns applied migrations in application order.
func (r *Runner) History(ctx context.Context) ([]string, error) {
	if err := r.ensureTable(ctx); err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx,
		fmt.Sprintf(`select name from %s order by applied_at asc`, r.table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

// Pending returns migrations present in the file system but not yet applied.
func (r *Runner) Pending(ctx context.Context) ([]string, error) {
	if err := r.ensureTable(ctx); err != nil {
		return nil, err
	}
	applied, err := r.applied(ctx)
	if err != nil {
		return nil, err
	}
	files, err := r.collect(".up.sql")
	if err != nil {
		return nil, err
	}
	var out []string
	for _, name := range files {
		if !applied[name] {
			out = append(out, name)
		}
	}
	return out, nil
}

func (r *Runner) ensureTable(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, fmt.Sprintf(`
		create table if not exists %s (
			name text primary key,
			applied_at timestamptz not null default now()
		)`, r.table))
	return err
}

func (r *Runner) applied(ctx context.Context) (map[string]bool, error) {
	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(`select name from %s`, r.table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out[name] = true
	}
	return out, rows.Err()
}

func (r *Runner) exec(ctx context.Context, name string) error {
	raw, err := fs.ReadFile(r.fsys, name)
	if err != nil {
		return err
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	for _, stmt := range splitStatements(string(raw)) {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *Runner) collect(suffix string) ([]string, error) {
	entries, err := fs.ReadDir(r.fsys, ".")
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasSuffix(e.Name(), suffix) {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

// splitStatements splits on semicolons outside of single-quoted strings.
func splitStatements(input string) []string {
	var stmts []string
	var current strings.Builder
	var inString bool
	for _, r := range input {
		switch r {
		case '\'':
			current.WriteRune(r)
			inString = !inString
		case ';':
			current.WriteRune(r)
			if !inString {
				stmts = append(stmts, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(r)
		}
	}
	if strings.TrimSpace(current.String()) != "" {
		stmts = append(stmts, current.String())
	}
	return stmts
}
