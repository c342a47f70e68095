// keytool mints, lists, and revokes tenant API keys. The raw key is printed
// exactly once at mint time; only hashes reach the database.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"erpgate.dev/internal/auth"
	"erpgate.dev/internal/store/pg"
)

func main() {
	log.SetFlags(0)
	var (
		dsn      = flag.String("dsn", os.Getenv("GATE_PG_DSN"), "PostgreSQL DSN")
		tenantID = flag.String("tenant", "", "tenant id")
		caps     = flag.String("caps", "", "comma-separated capabilities, e.g. crm.read,finance.write")
		keyID    = flag.String("id", "", "key id (revoke)")
	)
	flag.Parse()

	if *dsn == "" {
		log.Fatal("missing DSN: provide via -dsn or GATE_PG_DSN")
	}
	if len(flag.Args()) == 0 {
		log.Fatal("usage: keytool [mint|list|revoke]")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := pg.Open(*dsn)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer store.Close()

	switch flag.Arg(0) {
	case "mint":
		if *tenantID == "" {
			log.Fatal("mint requires -tenant")
		}
		set, err := parseCaps(*caps)
		if err != nil {
			log.Fatalf("parse caps: %v", err)
		}
		raw, rec, err := auth.MintKey(*tenantID, set)
		if err != nil {
			log.Fatalf("mint: %v", err)
		}
		if err := store.CreateKey(ctx, &rec); err != nil {
			log.Fatalf("store key: %v", err)
		}
		fmt.Printf("id:  %s\n", rec.ID)
		fmt.Printf("key: %s\n", raw)
		fmt.Println("store the key now; it cannot be recovered")
	case "list":
		if *tenantID == "" {
			log.Fatal("list requires -tenant")
		}
		keys, err := store.ListKeys(ctx, *tenantID)
		if err != nil {
			log.Fatalf("list: %v", err)
		}
		for _, k := range keys {
			fmt.Printf("%s\t%s\t%s\t%s\n", k.ID, k.Status, capsString(k), k.CreatedAt.Format(time.RFC3339))
		}
	case "revoke":
		if *keyID == "" {
			log.Fatal("revoke requires -id")
		}
		if err := store.RevokeKey(ctx, *keyID); err != nil {
			log.Fatalf("revoke: %v", err)
		}
		fmt.Printf("revoked %s\n", *keyID)
	default:
		log.Fatalf("unknown command %q", flag.Arg(0))
	}
}

func parseCaps(s string) (auth.CapabilitySet, error) {
	var caps []auth.Capability
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		c, err := auth.ParseCapability(part)
		if err != nil {
			return nil, err
		}
		caps = append(caps, c)
	}
	return auth.NewCapabilitySet(caps), nil
}

func capsString(k *auth.APIKey) string {
	caps := k.Capabilities.Sorted()
	parts := make([]string, len(caps))
	for i, c := range caps {
		parts[i] = string(c)
	}
	return strings.Join(parts, ",")
}
