package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"erpgate.dev/internal/migrate"
	"erpgate.dev/migrations"
)

func main() {
	log.SetFlags(0)
	dsn := flag.String("dsn", os.Getenv("GATE_PG_DSN"), "PostgreSQL DSN")
	flag.Parse()

	if *dsn == "" {
		log.Fatal("missing DSN: provide via -dsn or GATE_PG_DSN")
	}
	if len(flag.Args()) == 0 {
		log.Fatal("usage: migrate [up|down|status|pending]")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := sql.Open("pgx", *dsn)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	runner := migrate.NewRunner(db, migrations.FS)

	switch flag.Arg(0) {
	case "up":
		err = runner.Up(ctx)
	case "down":
		err = runner.Down(ctx)
	case "status":
		var history []string
		history, err = runner.History(ctx)
		if err == nil {
			for _, item := range history {
				fmt.Println(item)
			}
		}
	case "pending":
		var pending []string
		pending, err = runner.Pending(ctx)
		if err == nil {
			for _, item := range pending {
				fmt.Println(item)
			}
		}
	default:
		log.Fatalf("unknown command %q", flag.Arg(0))
	}
	if err != nil {
		log.Fatalf("migrate %s: %v", flag.Arg(0), err)
	}
}
