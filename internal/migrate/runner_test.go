package migrate

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestUpAppliesPendingInOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	fsys := fstest.MapFS{
		"0001_first.up.sql":   {Data: []byte("create table a (id text);")},
		"0001_first.down.sql": {Data: []byte("drop table a;")},
		"0002_second.up.sql":  {Data: []byte("create table b (id text);\ncreate index b_idx on b(id);")},
	}

	mock.ExpectExec("create table if not exists schema_migrations").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("select name from schema_migrations").
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("0001_first.up.sql"))

	// Only the second migration is pending; its two statements run in one tx.
	mock.ExpectBegin()
	mock.ExpectExec("create table b").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("create index b_idx").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()
	mock.ExpectExec("insert into schema_migrations").
		WithArgs("0002_second.up.sql", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	r := NewRunner(db, fsys)
	if err := r.Up(context.Background()); err != nil {
		t.Fatalf("Up: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDownRequiresHistory(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("create table if not exists schema_migrations").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("create table if not exists schema_migrations").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("select name from schema_migrations").
		WillReturnRows(sqlmock.NewRows([]string{"name"}))

	r := NewRunner(db, fstest.MapFS{})
	if err := r.Down(context.Background()); err == nil {
		t.Fatal("expected error when nothing is applied")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSplitStatements(t *testing.T) {
	stmts := splitStatements("insert into t values ('a;b'); select 1;")
	if len(stmts) != 2 {
		t.Fatalf("expected 2 statements, got %d: %q", len(stmts), stmts)
	}
	if stmts[0] != "insert into t values ('a;b');" {
		t.Fatalf("semicolon inside string split: %q", stmts[0])
	}
}
